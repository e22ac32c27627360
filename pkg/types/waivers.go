package types

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/bouncehq/rentals-backend/pkg/enums"
)

// Waiver records an admin zeroing a single fee line. Reason is required when
// the waiver is applied; the original amount stays reconstructable from the
// other persisted order facts.
type Waiver struct {
	Waived bool   `json:"waived"`
	Reason string `json:"reason,omitempty"`
}

// FeeWaivers keys the per-fee waivers persisted on an order.
type FeeWaivers map[enums.FeeKind]Waiver

// IsWaived reports whether the named fee has an active waiver.
func (f FeeWaivers) IsWaived(kind enums.FeeKind) bool {
	if f == nil {
		return false
	}
	return f[kind].Waived
}

// Value serializes the waivers to JSON.
func (f FeeWaivers) Value() (driver.Value, error) {
	if f == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(f)
}

// Scan decodes JSONB into the waiver map.
func (f *FeeWaivers) Scan(value interface{}) error {
	if value == nil {
		*f = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded FeeWaivers
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*f = decoded
	return nil
}
