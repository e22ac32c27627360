package pricing

import (
	"fmt"
	"strings"

	"github.com/bouncehq/rentals-backend/pkg/db/models"
)

// TravelQuote is the resolved travel fee plus the metadata the invoice and
// admin screens display.
type TravelQuote struct {
	FeeCents       int64   `json:"fee_cents"`
	Miles          float64 `json:"miles"`
	IsFlatFee      bool    `json:"is_flat_fee"`
	IsIncludedCity bool    `json:"is_included_city"`
	Label          string  `json:"label"`
}

// ResolveTravelFee applies the zone rules in order, first match wins:
// flat-fee ZIP override, included city, beyond base radius, within radius.
// The function is pure so the customer quote flow and the admin travel
// calculator resolve identically.
func ResolveTravelFee(miles float64, city, zip string, rules *models.PricingRules) TravelQuote {
	if rules == nil {
		return TravelQuote{Miles: miles, Label: labelMiles(miles) + " - no pricing rules"}
	}

	if flat, ok := rules.ZoneOverrides.Lookup(zip); ok {
		return TravelQuote{
			FeeCents:  flat,
			Miles:     miles,
			IsFlatFee: true,
			Label:     fmt.Sprintf("%s - flat fee zone (ZIP %s)", labelMiles(miles), strings.TrimSpace(zip)),
		}
	}

	if matchesIncludedCity(city, rules.IncludedCities) {
		return TravelQuote{
			Miles:          miles,
			IsIncludedCity: true,
			Label:          fmt.Sprintf("%s - free delivery city (%s)", labelMiles(miles), strings.TrimSpace(city)),
		}
	}

	if miles > rules.BaseRadiusMiles {
		chargeable := miles - rules.BaseRadiusMiles
		return TravelQuote{
			FeeCents: mulMiles(chargeable, rules.PerMileCents),
			Miles:    miles,
			Label:    fmt.Sprintf("%s - %.1f mi beyond %.0f mi base radius", labelMiles(miles), chargeable, rules.BaseRadiusMiles),
		}
	}

	return TravelQuote{
		Miles: miles,
		Label: fmt.Sprintf("%s - within %.0f mi base radius", labelMiles(miles), rules.BaseRadiusMiles),
	}
}

func matchesIncludedCity(city string, included []string) bool {
	trimmed := strings.TrimSpace(city)
	if trimmed == "" {
		return false
	}
	for _, candidate := range included {
		if strings.EqualFold(strings.TrimSpace(candidate), trimmed) {
			return true
		}
	}
	return false
}

func labelMiles(miles float64) string {
	return fmt.Sprintf("%.1f mi", miles)
}
