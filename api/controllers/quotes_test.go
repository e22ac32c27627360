package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/bouncehq/rentals-backend/internal/pricing"
	"github.com/bouncehq/rentals-backend/internal/quotes"
	pkgerrors "github.com/bouncehq/rentals-backend/pkg/errors"
	"github.com/bouncehq/rentals-backend/pkg/types"
)

func validQuoteBody() string {
	return `{
		"items": [
			{"unit_id": "` + uuid.NewString() + `", "name": "Castle Combo", "mode": "dry", "unit_price_cents": 10000, "qty": 1}
		],
		"event": {
			"event_date": "2026-07-10T00:00:00Z",
			"city": "Northville",
			"zip": "48167",
			"lat": 42.43,
			"lng": -83.48
		}
	}`
}

func TestQuoteCreateSuccess(t *testing.T) {
	svc := &stubQuoteService{result: &quotes.QuoteResult{
		Breakdown: pricing.Breakdown{SubtotalCents: 10000, TotalCents: 10600},
	}}
	handler := QuoteCreate(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/public/v1/quotes", strings.NewReader(validQuoteBody()))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if svc.got == nil {
		t.Fatal("service never called")
	}
	if len(svc.got.Items) != 1 || svc.got.Items[0].Name != "Castle Combo" {
		t.Fatalf("items = %#v", svc.got.Items)
	}
	if svc.got.Event.City != "Northville" {
		t.Fatalf("city = %q", svc.got.Event.City)
	}
}

func TestQuoteCreateAppliesDefaults(t *testing.T) {
	svc := &stubQuoteService{result: &quotes.QuoteResult{}}
	handler := QuoteCreate(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/public/v1/quotes", strings.NewReader(validQuoteBody()))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if svc.got == nil {
		t.Fatal("service never called")
	}
	if svc.got.Event.Surface != "grass" {
		t.Fatalf("surface = %q, want grass default", svc.got.Event.Surface)
	}
	if svc.got.Event.Pickup != "next_day" {
		t.Fatalf("pickup = %q, want next_day default", svc.got.Event.Pickup)
	}
	if svc.got.Event.LocationType != "residential" {
		t.Fatalf("location = %q, want residential default", svc.got.Event.LocationType)
	}
}

func TestQuoteCreateRejectsEmptyCart(t *testing.T) {
	svc := &stubQuoteService{}
	handler := QuoteCreate(svc, nil)

	body := `{"items": [], "event": {"event_date": "2026-07-10T00:00:00Z"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/public/v1/quotes", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if svc.got != nil {
		t.Fatal("service must not run on invalid input")
	}
}

func TestQuoteCreatePropagatesServiceErrors(t *testing.T) {
	svc := &stubQuoteService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "pricing rules are not configured")}
	handler := QuoteCreate(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/public/v1/quotes", strings.NewReader(validQuoteBody()))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}

	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeStateConflict) {
		t.Fatalf("code = %q", envelope.Error.Code)
	}
}

func TestTravelQuoteRequiresCalculator(t *testing.T) {
	handler := TravelQuote(nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/public/v1/quotes/travel", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

type stubQuoteService struct {
	result *quotes.QuoteResult
	err    error
	got    *quotes.QuoteInput
}

func (s *stubQuoteService) Quote(_ context.Context, input quotes.QuoteInput) (*quotes.QuoteResult, error) {
	s.got = &input
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}
