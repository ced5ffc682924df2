package models

import (
	"fmt"
	"strings"
)

// DiscountCode is a single-use promotional code. Earned codes (completed
// tasting or guided purchase) carry a higher percentage than codes handed
// out on request.
type DiscountCode struct {
	Code       string `json:"code"`
	Percentage int    `json:"discount_percentage"`
	Earned     bool   `json:"earned"`
}

// ShippingInfo holds customer delivery details collected during purchase
// assistance. Treat every field as PII: log only through the sanitizer.
type ShippingInfo struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

// Validate applies the minimal field checks from the purchase flow.
func (si *ShippingInfo) Validate() error {
	if len(strings.TrimSpace(si.FullName)) < 3 {
		return fmt.Errorf("full name must be at least 3 characters")
	}
	if !strings.Contains(si.Email, "@") {
		return fmt.Errorf("email address is not valid")
	}
	if digitCount(si.Phone) < 10 {
		return fmt.Errorf("phone must have at least 10 digits")
	}
	if len(strings.TrimSpace(si.Address)) < 5 {
		return fmt.Errorf("address is incomplete")
	}
	return nil
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// Order summarizes a purchase-assistance request: the beers the customer
// wants and direct links into the store for each of them.
type Order struct {
	ID            string            `json:"order_id"`
	Beers         []string          `json:"beers"`
	PurchaseLinks map[string]string `json:"purchase_links"`
	DiscountCode  string            `json:"discount_code,omitempty"`
}

// PaymentLink is a checkout link generated for a confirmed order.
type PaymentLink struct {
	OrderID  string  `json:"order_id"`
	URL      string  `json:"payment_link"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	// ExpiresIn is a human-readable validity window shown to the customer.
	ExpiresIn string `json:"expires_in"`
}
