package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DiscountKind tags the two shapes a discount can take.
type DiscountKind string

const (
	DiscountFixed      DiscountKind = "fixed"
	DiscountPercentage DiscountKind = "percentage"
)

// Discount is a named reduction applied against the pre-discount subtotal.
// The kind is a tagged variant: a discount is either a fixed amount in cents
// or a percentage, never both. Construct values through FixedDiscount or
// PercentDiscount so the invalid both-set state cannot exist.
type Discount struct {
	Name        string
	kind        DiscountKind
	amountCents int64
	percent     float64
}

// FixedDiscount builds a fixed-amount discount.
func FixedDiscount(name string, amountCents int64) Discount {
	return Discount{Name: name, kind: DiscountFixed, amountCents: amountCents}
}

// PercentDiscount builds a percentage-of-subtotal discount.
func PercentDiscount(name string, percent float64) Discount {
	return Discount{Name: name, kind: DiscountPercentage, percent: percent}
}

// Kind returns the discount variant tag.
func (d Discount) Kind() DiscountKind {
	return d.kind
}

// AmountCents returns the fixed amount for fixed discounts, 0 otherwise.
func (d Discount) AmountCents() int64 {
	if d.kind == DiscountFixed {
		return d.amountCents
	}
	return 0
}

// Percent returns the percentage for percentage discounts, 0 otherwise.
func (d Discount) Percent() float64 {
	if d.kind == DiscountPercentage {
		return d.percent
	}
	return 0
}

// ValueAgainst resolves the discount contribution against the given subtotal.
// Percentage discounts are rounded half away from zero.
func (d Discount) ValueAgainst(subtotalCents int64) int64 {
	switch d.kind {
	case DiscountFixed:
		return d.amountCents
	case DiscountPercentage:
		return decimal.NewFromInt(subtotalCents).
			Mul(decimal.NewFromFloat(d.percent)).
			Div(decimal.NewFromInt(100)).
			Round(0).
			IntPart()
	}
	return 0
}

type discountJSON struct {
	Name        string       `json:"name"`
	Kind        DiscountKind `json:"kind"`
	AmountCents int64        `json:"amount_cents,omitempty"`
	Percent     float64      `json:"percent,omitempty"`
}

// MarshalJSON serializes the tagged variant.
func (d Discount) MarshalJSON() ([]byte, error) {
	return json.Marshal(discountJSON{
		Name:        d.Name,
		Kind:        d.kind,
		AmountCents: d.amountCents,
		Percent:     d.percent,
	})
}

// UnmarshalJSON decodes a discount, preferring the fixed amount when a stored
// row carries both fields.
func (d *Discount) UnmarshalJSON(data []byte) error {
	var raw discountJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if strings.TrimSpace(raw.Name) == "" {
		return fmt.Errorf("discount: missing name")
	}
	switch {
	case raw.AmountCents != 0 || raw.Kind == DiscountFixed:
		*d = FixedDiscount(raw.Name, raw.AmountCents)
	case raw.Kind == DiscountPercentage || raw.Percent != 0:
		*d = PercentDiscount(raw.Name, raw.Percent)
	default:
		*d = FixedDiscount(raw.Name, 0)
	}
	return nil
}

// Discounts is a slice persisted as JSONB.
type Discounts []Discount

// Value serializes the discounts to JSON.
func (d Discounts) Value() (driver.Value, error) {
	if d == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(d)
}

// Scan decodes JSONB into the discount slice.
func (d *Discounts) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded Discounts
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*d = decoded
	return nil
}
