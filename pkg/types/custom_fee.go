package types

import (
	"database/sql/driver"
	"encoding/json"
)

// CustomFee is an admin-entered fixed charge line. Custom fees are never
// percentages and tax the same way automatic fees do.
type CustomFee struct {
	Name        string `json:"name"`
	AmountCents int64  `json:"amount_cents"`
}

// CustomFees is a slice persisted as JSONB.
type CustomFees []CustomFee

// TotalCents sums the fee amounts.
func (c CustomFees) TotalCents() int64 {
	var total int64
	for _, fee := range c {
		total += fee.AmountCents
	}
	return total
}

// Value serializes the custom fees to JSON.
func (c CustomFees) Value() (driver.Value, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c)
}

// Scan decodes JSONB into the custom fee slice.
func (c *CustomFees) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded CustomFees
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*c = decoded
	return nil
}
