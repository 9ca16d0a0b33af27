package engine

import (
	"fmt"
	"time"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
)

// Barcode verification messages
const (
	MsgBarcodeNotFound = "Barcode not found."
	MsgOutOfStock      = "Batch is out of stock."
	MsgExpired         = "Batch has expired."
	MsgNoPendingPick   = "Batch is not part of any active pending pick list."
	MsgVerified        = "Batch verified."
)

// BarcodeVerification is the result of scanning a batch barcode at the pick face
type BarcodeVerification struct {
	IsValid      bool           `json:"is_valid"`
	Messages     []string       `json:"messages"`
	Batch        *domain.Batch  `json:"batch,omitempty"`
	PendingPicks []*domain.Pick `json:"pending_picks,omitempty"`
}

// VerifyBarcode checks a scanned batch against its stock, expiry and the
// active pending picks that reference it. batch is nil when the barcode is
// unknown. An expiry inside the window is a warning and does not invalidate.
func VerifyBarcode(batch *domain.Batch, activePicks []*domain.Pick, now time.Time, windowDays int) BarcodeVerification {
	if batch == nil {
		return BarcodeVerification{IsValid: false, Messages: []string{MsgBarcodeNotFound}}
	}

	result := BarcodeVerification{
		IsValid:      true,
		Messages:     []string{},
		Batch:        batch,
		PendingPicks: activePicks,
	}
	invalid := func(msg string) {
		result.IsValid = false
		result.Messages = append(result.Messages, msg)
	}

	if batch.Status != domain.BatchAvailable {
		invalid(fmt.Sprintf("Batch status is %s.", batch.Status))
	}
	if batch.Quantity <= 0 {
		invalid(MsgOutOfStock)
	}

	today := domain.Day(now)
	expiry := domain.Day(batch.ExpiryDate)
	switch {
	case expiry.Before(today):
		invalid(MsgExpired)
	case !expiry.After(today.AddDate(0, 0, windowDays)):
		result.Messages = append(result.Messages, fmt.Sprintf("Batch expires within %d days.", windowDays))
	}

	if len(activePicks) == 0 {
		invalid(MsgNoPendingPick)
	}

	if result.IsValid {
		result.Messages = append(result.Messages, MsgVerified)
	}
	return result
}
