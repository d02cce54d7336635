package paystack

import (
	"encoding/json"
	"errors"
	"fmt"
)

// EventChargeSuccess is the only event type that triggers reconciliation.
const EventChargeSuccess = "charge.success"

// SignatureHeader carries the HMAC-SHA512 hex digest of the raw webhook body.
const SignatureHeader = "x-paystack-signature"

var ErrMalformedEvent = errors.New("malformed paystack event")

type Event struct {
	Event string    `json:"event"`
	Data  EventData `json:"data"`
}

type EventData struct {
	Reference string `json:"reference"`
	// Amount is in kobo (minor units).
	Amount   int64    `json:"amount"`
	Customer Customer `json:"customer"`
	Metadata Metadata `json:"metadata"`
}

type Customer struct {
	Email string `json:"email"`
}

// Metadata is the typed shape of the free-form metadata attached at payment
// initialization. order_id is the only field this system sets itself; the
// buyer fields arrive on payments initiated by older storefront clients.
type Metadata struct {
	OrderID         string `json:"order_id"`
	StoreID         string `json:"store_id,omitempty"`
	ProductID       string `json:"product_id,omitempty"`
	BuyerName       string `json:"buyer_name,omitempty"`
	BuyerPhone      string `json:"buyer_phone,omitempty"`
	DeliveryType    string `json:"delivery_type,omitempty"`
	DeliveryAddress string `json:"delivery_address,omitempty"` // serialized JSON
	Quantity        int    `json:"quantity,omitempty"`
	SelectedVariant string `json:"selected_variant,omitempty"` // serialized JSON
}

// ParseEvent decodes and validates a webhook body that already passed
// signature verification. Validation failures are malformed-payload errors,
// not security events.
func ParseEvent(body []byte) (*Event, error) {
	var evt Event
	if err := json.Unmarshal(body, &evt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if evt.Event == "" {
		return nil, fmt.Errorf("%w: missing event type", ErrMalformedEvent)
	}
	if evt.Event == EventChargeSuccess {
		if evt.Data.Reference == "" {
			return nil, fmt.Errorf("%w: charge.success without reference", ErrMalformedEvent)
		}
		if evt.Data.Amount < 0 {
			return nil, fmt.Errorf("%w: negative amount", ErrMalformedEvent)
		}
	}
	return &evt, nil
}

// ToNaira converts a kobo amount to naira for display and logging. Ledger
// amounts stay in kobo.
func ToNaira(kobo int64) float64 { return float64(kobo) / 100 }
