package controllers

import (
	"net/http"

	"github.com/bouncehq/rentals-backend/api/responses"
	"github.com/bouncehq/rentals-backend/api/validators"
	"github.com/bouncehq/rentals-backend/internal/pricingrules"
	pkgerrors "github.com/bouncehq/rentals-backend/pkg/errors"
	"github.com/bouncehq/rentals-backend/pkg/logger"
)

// PricingRulesGet returns the single active pricing configuration.
func PricingRulesGet(svc pricingrules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing rules service unavailable"))
			return
		}

		rules, err := svc.Current(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if rules == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "pricing rules are not configured"))
			return
		}
		responses.WriteSuccess(w, rules)
	}
}

// PricingRulesUpdate replaces the pricing configuration wholesale.
func PricingRulesUpdate(svc pricingrules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing rules service unavailable"))
			return
		}

		var input pricingrules.UpdateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rules, err := svc.Update(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rules)
	}
}
