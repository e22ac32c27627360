package types

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
)

// ZoneOverride pins a flat travel fee to a single ZIP code, bypassing the
// distance formula entirely.
type ZoneOverride struct {
	Zip      string `json:"zip"`
	FeeCents int64  `json:"fee_cents"`
}

// ZoneOverrides is the ordered override list persisted as JSONB.
type ZoneOverrides []ZoneOverride

// Lookup returns the flat fee for the ZIP, exact match only.
func (z ZoneOverrides) Lookup(zip string) (int64, bool) {
	trimmed := strings.TrimSpace(zip)
	if trimmed == "" {
		return 0, false
	}
	for _, zone := range z {
		if zone.Zip == trimmed {
			return zone.FeeCents, true
		}
	}
	return 0, false
}

// Value serializes the overrides to JSON.
func (z ZoneOverrides) Value() (driver.Value, error) {
	if z == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(z)
}

// Scan decodes JSONB into the override slice.
func (z *ZoneOverrides) Scan(value interface{}) error {
	if value == nil {
		*z = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded ZoneOverrides
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*z = decoded
	return nil
}

// SameDayTier is one row of the same-day-pickup fee matrix. Rows are
// evaluated top to bottom; the first row whose conditions all hold wins.
type SameDayTier struct {
	MinUnits          int   `json:"min_units"`
	RequiresGenerator bool  `json:"requires_generator"`
	MinSubtotalCents  int64 `json:"min_subtotal_cents"`
	FeeCents          int64 `json:"fee_cents"`
}

// Matches reports whether the tier applies to the given event shape.
func (t SameDayTier) Matches(unitCount int, hasGenerator bool, subtotalCents int64) bool {
	if unitCount < t.MinUnits {
		return false
	}
	if t.RequiresGenerator && !hasGenerator {
		return false
	}
	return subtotalCents >= t.MinSubtotalCents
}

// SameDayTiers is the ordered fee matrix persisted as JSONB.
type SameDayTiers []SameDayTier

// Value serializes the tiers to JSON.
func (t SameDayTiers) Value() (driver.Value, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t)
}

// Scan decodes JSONB into the tier slice.
func (t *SameDayTiers) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded SameDayTiers
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*t = decoded
	return nil
}
