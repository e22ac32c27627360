package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bouncehq/rentals-backend/internal/pricing"
	"github.com/bouncehq/rentals-backend/internal/pricingrules"
	"github.com/bouncehq/rentals-backend/internal/quotes"
	"github.com/bouncehq/rentals-backend/pkg/config"
	"github.com/bouncehq/rentals-backend/pkg/db/models"
	"github.com/bouncehq/rentals-backend/pkg/enums"
	pkgerrors "github.com/bouncehq/rentals-backend/pkg/errors"
	"github.com/bouncehq/rentals-backend/pkg/maps"
	"github.com/bouncehq/rentals-backend/pkg/types"
)

func testRules() *models.PricingRules {
	return &models.PricingRules{
		ID:                      uuid.New(),
		BaseRadiusMiles:         10,
		PerMileCents:            250,
		SurfaceSandbagFeeCents:  5000,
		ResidentialMultiplier:   1,
		CommercialMultiplier:    1,
		GeneratorFeeSingleCents: 10000,
		SameDayFlatFeeCents:     7500,
		DepositPerUnitCents:     5000,
		ExtraDayPercent:         15,
	}
}

func newTestService(t *testing.T, rulesSvc pricingrules.Service, miles float64) (Service, *stubOrdersRepo) {
	t.Helper()
	repo := newStubOrdersRepo()
	resolver := quotes.NewDistanceResolver(stubRouteClient{miles: miles}, nil, nil, nil, time.Second)
	svc, err := NewService(repo, stubTx{}, rulesSvc, resolver, config.WarehouseConfig{Lat: 42.37, Lng: -83.35}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo
}

func validCreateInput() CreateInput {
	return CreateInput{
		Customer: CustomerInput{Name: "Dana Price", Email: "dana@example.com"},
		Items: []pricing.CartItem{
			{UnitID: uuid.New(), Name: "Castle Combo", Mode: enums.RentalModeDry, UnitPriceCents: 10000, Qty: 1},
			{UnitID: uuid.New(), Name: "Tropical Slide", Mode: enums.RentalModeWater, UnitPriceCents: 5000, Qty: 1},
		},
		Event: EventInput{
			EventDate:    time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC),
			LocationType: enums.LocationResidential,
			Address: types.Address{
				Line1:      "100 Main St",
				City:       "Northville",
				State:      "MI",
				PostalCode: "48167",
				Lat:        42.43,
				Lng:        -83.48,
			},
			Surface: enums.SurfaceGrass,
			Pickup:  enums.PickupNextDay,
		},
	}
}

func TestCreatePersistsComputedTotals(t *testing.T) {
	svc, repo := newTestService(t, stubRulesService{rules: testRules()}, 25)

	order, err := svc.Create(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if order.Status != enums.OrderStatusDraft {
		t.Fatalf("status = %s, want draft", order.Status)
	}
	if order.SubtotalCents != 15000 {
		t.Fatalf("subtotal = %d, want 15000", order.SubtotalCents)
	}
	// 15 chargeable miles at 250/mi.
	if order.TravelFeeCents != 3750 {
		t.Fatalf("travel fee = %d, want 3750", order.TravelFeeCents)
	}
	if order.TaxCents != 1125 {
		t.Fatalf("tax = %d, want 1125", order.TaxCents)
	}
	if order.TotalCents != 19875 {
		t.Fatalf("total = %d, want 19875", order.TotalCents)
	}
	if order.DepositDueCents != 10000 {
		t.Fatalf("deposit = %d, want 10000", order.DepositDueCents)
	}
	if order.RulesSnapshot == nil {
		t.Fatal("expected rules snapshot on the order")
	}
	if order.TravelTotalMiles == nil || *order.TravelTotalMiles != 25 {
		t.Fatalf("miles = %v, want 25", order.TravelTotalMiles)
	}

	stored, err := repo.FindByID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(stored.Items) != 2 {
		t.Fatalf("stored items = %d, want 2", len(stored.Items))
	}
}

func TestCreateValidatesInput(t *testing.T) {
	svc, _ := newTestService(t, stubRulesService{rules: testRules()}, 5)

	input := validCreateInput()
	input.Items = nil
	if _, err := svc.Create(context.Background(), input); err == nil {
		t.Fatal("expected error for empty cart")
	}

	input = validCreateInput()
	input.Customer.Name = "  "
	_, err := svc.Create(context.Background(), input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestCreateRequiresRules(t *testing.T) {
	svc, _ := newTestService(t, stubRulesService{}, 5)

	_, err := svc.Create(context.Background(), validCreateInput())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("err = %v, want state conflict", err)
	}
}

func TestStatusTransitions(t *testing.T) {
	svc, _ := newTestService(t, stubRulesService{rules: testRules()}, 5)
	ctx := context.Background()

	order, err := svc.Create(ctx, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Complete(ctx, order.ID); err == nil {
		t.Fatal("expected completing a draft to fail")
	}

	confirmed, err := svc.Confirm(ctx, order.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != enums.OrderStatusConfirmed {
		t.Fatalf("status = %s, want confirmed", confirmed.Status)
	}

	completed, err := svc.Complete(ctx, order.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != enums.OrderStatusCompleted {
		t.Fatalf("status = %s, want completed", completed.Status)
	}

	_, err = svc.Cancel(ctx, order.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("err = %v, want state conflict canceling a completed order", err)
	}
}

func TestSetWaiverRecomputesTotals(t *testing.T) {
	svc, _ := newTestService(t, stubRulesService{rules: testRules()}, 25)
	ctx := context.Background()

	order, err := svc.Create(ctx, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.SetWaiver(ctx, order.ID, WaiverInput{Kind: enums.FeeKindTravel, Waived: true})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("err = %v, want validation error without a reason", err)
	}

	waived, err := svc.SetWaiver(ctx, order.ID, WaiverInput{Kind: enums.FeeKindTravel, Waived: true, Reason: "repeat customer"})
	if err != nil {
		t.Fatalf("set waiver: %v", err)
	}
	if waived.TravelFeeCents != 0 {
		t.Fatalf("travel fee = %d, want 0 after waiver", waived.TravelFeeCents)
	}
	if waived.TaxCents != 900 {
		t.Fatalf("tax = %d, want 900", waived.TaxCents)
	}
	if waived.TotalCents != 15900 {
		t.Fatalf("total = %d, want 15900", waived.TotalCents)
	}

	restored, err := svc.SetWaiver(ctx, order.ID, WaiverInput{Kind: enums.FeeKindTravel, Waived: false})
	if err != nil {
		t.Fatalf("unset waiver: %v", err)
	}
	if restored.TravelFeeCents != 3750 {
		t.Fatalf("travel fee = %d, want 3750 after unwaiving", restored.TravelFeeCents)
	}
	if restored.TotalCents != 19875 {
		t.Fatalf("total = %d, want 19875 after unwaiving", restored.TotalCents)
	}
}

func TestGetIncludesOriginalFees(t *testing.T) {
	svc, _ := newTestService(t, stubRulesService{rules: testRules()}, 25)
	ctx := context.Background()

	order, err := svc.Create(ctx, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.SetWaiver(ctx, order.ID, WaiverInput{Kind: enums.FeeKindTravel, Waived: true, Reason: "comp"}); err != nil {
		t.Fatalf("set waiver: %v", err)
	}

	detail, err := svc.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.Order.TravelFeeCents != 0 {
		t.Fatalf("stored travel fee = %d, want 0", detail.Order.TravelFeeCents)
	}
	if detail.Reconstruction.TravelFeeCents != 3750 {
		t.Fatalf("reconstructed travel fee = %d, want 3750", detail.Reconstruction.TravelFeeCents)
	}
}

func TestCreateNormalizesCommercialPickup(t *testing.T) {
	svc, repo := newTestService(t, stubRulesService{rules: testRules()}, 5)
	ctx := context.Background()

	input := validCreateInput()
	input.Event.LocationType = enums.LocationCommercial
	input.Event.Pickup = enums.PickupNextDay
	input.Event.EventEndDate = input.Event.EventDate.AddDate(0, 0, 2)

	order, err := svc.Create(ctx, input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if order.Pickup != enums.PickupSameDay {
		t.Fatalf("pickup = %s, want same_day", order.Pickup)
	}
	if !order.EventEndDate.Equal(order.EventDate) {
		t.Fatalf("end date = %v, want collapsed to %v", order.EventEndDate, order.EventDate)
	}
	if order.SameDayFeeCents != 7500 {
		t.Fatalf("same-day fee = %d, want 7500", order.SameDayFeeCents)
	}
	// Same-day fee is charged but never taxed, and the collapsed date range
	// means no extra-day charges.
	if order.SubtotalCents != 15000 {
		t.Fatalf("subtotal = %d, want 15000", order.SubtotalCents)
	}
	if order.TaxCents != 900 {
		t.Fatalf("tax = %d, want 900", order.TaxCents)
	}
	if order.TotalCents != 23400 {
		t.Fatalf("total = %d, want 23400", order.TotalCents)
	}

	stored, err := repo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored.Pickup != enums.PickupSameDay {
		t.Fatalf("stored pickup = %s, want same_day", stored.Pickup)
	}

	if _, err := svc.SetWaiver(ctx, order.ID, WaiverInput{Kind: enums.FeeKindSameDay, Waived: true, Reason: "repeat customer"}); err != nil {
		t.Fatalf("set waiver: %v", err)
	}

	detail, err := svc.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.Order.SameDayFeeCents != 0 {
		t.Fatalf("stored same-day fee = %d, want 0", detail.Order.SameDayFeeCents)
	}
	if detail.Reconstruction.SameDayFeeCents != 7500 {
		t.Fatalf("reconstructed same-day fee = %d, want 7500", detail.Reconstruction.SameDayFeeCents)
	}

	summary, err := svc.InvoiceSummary(ctx, order.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.IsMultiDay {
		t.Fatal("summary flagged multi-day after same-day collapse")
	}
}

func TestLoadNormalizesLegacyRows(t *testing.T) {
	svc, repo := newTestService(t, stubRulesService{rules: testRules()}, 5)
	ctx := context.Background()

	// A commercial row persisted with its raw pickup preference, same-day fee
	// already waived.
	legacy := &models.Order{
		ID:           uuid.New(),
		Status:       enums.OrderStatusConfirmed,
		CustomerName: "Dana Price",
		EventDate:    time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC),
		LocationType: enums.LocationCommercial,
		Surface:      enums.SurfaceGrass,
		Pickup:       enums.PickupNextDay,
		Items: []models.OrderItem{
			{ID: uuid.New(), Name: "Castle Combo", UnitPriceCents: 10000, Qty: 1},
		},
		SubtotalCents: 10000,
		Waivers: types.FeeWaivers{
			enums.FeeKindSameDay: {Waived: true, Reason: "comp"},
		},
		RulesSnapshot: testRules(),
	}
	repo.orders[legacy.ID] = legacy

	detail, err := svc.Get(ctx, legacy.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.Order.Pickup != enums.PickupSameDay {
		t.Fatalf("pickup = %s, want same_day", detail.Order.Pickup)
	}
	if detail.Reconstruction.SameDayFeeCents != 7500 {
		t.Fatalf("reconstructed same-day fee = %d, want 7500", detail.Reconstruction.SameDayFeeCents)
	}
}

func TestDiscountLifecycle(t *testing.T) {
	svc, _ := newTestService(t, stubRulesService{rules: testRules()}, 5)
	ctx := context.Background()

	order, err := svc.Create(ctx, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	discounted, err := svc.AddDiscount(ctx, order.ID, types.PercentDiscount("Spring Promo", 10))
	if err != nil {
		t.Fatalf("add discount: %v", err)
	}
	// 15000 - 1500, taxed at 6%.
	if discounted.TotalCents != 14310 {
		t.Fatalf("total = %d, want 14310", discounted.TotalCents)
	}

	_, err = svc.AddDiscount(ctx, order.ID, types.FixedDiscount("spring promo", 500))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("err = %v, want conflict for duplicate name", err)
	}

	removed, err := svc.RemoveDiscount(ctx, order.ID, "Spring Promo")
	if err != nil {
		t.Fatalf("remove discount: %v", err)
	}
	if removed.TotalCents != 15900 {
		t.Fatalf("total = %d, want 15900 after removal", removed.TotalCents)
	}

	_, err = svc.RemoveDiscount(ctx, order.ID, "missing")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestCustomFeeLifecycle(t *testing.T) {
	svc, _ := newTestService(t, stubRulesService{rules: testRules()}, 5)
	ctx := context.Background()

	order, err := svc.Create(ctx, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	withFee, err := svc.AddCustomFee(ctx, order.ID, types.CustomFee{Name: "Stairs carry", AmountCents: 2000})
	if err != nil {
		t.Fatalf("add fee: %v", err)
	}
	// Taxable base 17000 at 6%.
	if withFee.TaxCents != 1020 {
		t.Fatalf("tax = %d, want 1020", withFee.TaxCents)
	}

	_, err = svc.AddCustomFee(ctx, order.ID, types.CustomFee{Name: "Free thing", AmountCents: 0})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("err = %v, want validation error", err)
	}

	removed, err := svc.RemoveCustomFee(ctx, order.ID, "stairs carry")
	if err != nil {
		t.Fatalf("remove fee: %v", err)
	}
	if removed.TaxCents != 900 {
		t.Fatalf("tax = %d, want 900 after removal", removed.TaxCents)
	}
}

func TestCustomDepositOverrideAndClear(t *testing.T) {
	svc, _ := newTestService(t, stubRulesService{rules: testRules()}, 5)
	ctx := context.Background()

	order, err := svc.Create(ctx, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if order.DepositDueCents != 10000 {
		t.Fatalf("default deposit = %d, want 10000", order.DepositDueCents)
	}

	zero := int64(0)
	overridden, err := svc.SetCustomDeposit(ctx, order.ID, &zero)
	if err != nil {
		t.Fatalf("set deposit: %v", err)
	}
	if overridden.DepositDueCents != 0 {
		t.Fatalf("deposit = %d, want 0 override", overridden.DepositDueCents)
	}

	cleared, err := svc.SetCustomDeposit(ctx, order.ID, nil)
	if err != nil {
		t.Fatalf("clear deposit: %v", err)
	}
	if cleared.DepositDueCents != 10000 {
		t.Fatalf("deposit = %d, want default restored", cleared.DepositDueCents)
	}
}

func TestRecordDepositPaymentAccumulates(t *testing.T) {
	svc, _ := newTestService(t, stubRulesService{rules: testRules()}, 5)
	ctx := context.Background()

	order, err := svc.Create(ctx, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.RecordDepositPayment(ctx, order.ID, -500); err == nil {
		t.Fatal("expected error for negative payment")
	}

	if _, err := svc.RecordDepositPayment(ctx, order.ID, 4000); err != nil {
		t.Fatalf("record payment: %v", err)
	}
	paid, err := svc.RecordDepositPayment(ctx, order.ID, 6000)
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if paid.DepositPaidCents != 10000 {
		t.Fatalf("deposit paid = %d, want 10000", paid.DepositPaidCents)
	}
}

func TestClosedOrdersRejectEdits(t *testing.T) {
	svc, _ := newTestService(t, stubRulesService{rules: testRules()}, 5)
	ctx := context.Background()

	order, err := svc.Create(ctx, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Cancel(ctx, order.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	_, err = svc.SetTip(ctx, order.ID, 1000)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("err = %v, want state conflict", err)
	}
}

func TestRulesSnapshotInsulatesFromRuleEdits(t *testing.T) {
	rulesSvc := &mutableRulesService{rules: testRules()}
	svc, _ := newTestService(t, rulesSvc, 25)
	ctx := context.Background()

	order, err := svc.Create(ctx, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// A later rule edit must not move the booked order's travel fee.
	doubled := testRules()
	doubled.PerMileCents = 500
	rulesSvc.rules = doubled

	updated, err := svc.SetTip(ctx, order.ID, 2000)
	if err != nil {
		t.Fatalf("set tip: %v", err)
	}
	if updated.TravelFeeCents != 3750 {
		t.Fatalf("travel fee = %d, want 3750 from snapshot", updated.TravelFeeCents)
	}
	if updated.TipCents != 2000 {
		t.Fatalf("tip = %d, want 2000", updated.TipCents)
	}
}

func TestInvoiceSummaryReflectsStoredOrder(t *testing.T) {
	svc, _ := newTestService(t, stubRulesService{rules: testRules()}, 25)
	ctx := context.Background()

	order, err := svc.Create(ctx, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.RecordDepositPayment(ctx, order.ID, 5000); err != nil {
		t.Fatalf("record payment: %v", err)
	}

	summary, err := svc.InvoiceSummary(ctx, order.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalCents != 19875 {
		t.Fatalf("total = %d, want 19875", summary.TotalCents)
	}
	if summary.BalanceDueCents != 9875 {
		t.Fatalf("balance = %d, want 9875", summary.BalanceDueCents)
	}
	if len(summary.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(summary.Items))
	}
}

func TestGetUnknownOrder(t *testing.T) {
	svc, _ := newTestService(t, stubRulesService{rules: testRules()}, 5)

	_, err := svc.Get(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("err = %v, want not found", err)
	}
}

type stubOrdersRepo struct {
	orders map[uuid.UUID]*models.Order
}

func newStubOrdersRepo() *stubOrdersRepo {
	return &stubOrdersRepo{orders: map[uuid.UUID]*models.Order{}}
}

func (r *stubOrdersRepo) WithTx(*gorm.DB) Repository { return r }

func (r *stubOrdersRepo) Create(_ context.Context, order *models.Order) (*models.Order, error) {
	copied := *order
	r.orders[order.ID] = &copied
	return order, nil
}

func (r *stubOrdersRepo) CreateItems(_ context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	if order, ok := r.orders[items[0].OrderID]; ok {
		order.Items = items
	}
	return nil
}

func (r *stubOrdersRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (r *stubOrdersRepo) List(context.Context, ListFilters) ([]models.Order, error) {
	out := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		out = append(out, *order)
	}
	return out, nil
}

func (r *stubOrdersRepo) Save(_ context.Context, order *models.Order) (*models.Order, error) {
	copied := *order
	r.orders[order.ID] = &copied
	return order, nil
}

type stubTx struct{}

func (stubTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubRulesService struct {
	rules *models.PricingRules
}

func (s stubRulesService) Current(context.Context) (*models.PricingRules, error) {
	return s.rules, nil
}

func (s stubRulesService) Update(context.Context, pricingrules.UpdateInput) (*models.PricingRules, error) {
	return s.rules, nil
}

func (s stubRulesService) EnsureSeeded(context.Context) (*models.PricingRules, error) {
	return s.rules, nil
}

type mutableRulesService struct {
	rules *models.PricingRules
}

func (s *mutableRulesService) Current(context.Context) (*models.PricingRules, error) {
	return s.rules, nil
}

func (s *mutableRulesService) Update(context.Context, pricingrules.UpdateInput) (*models.PricingRules, error) {
	return s.rules, nil
}

func (s *mutableRulesService) EnsureSeeded(context.Context) (*models.PricingRules, error) {
	return s.rules, nil
}

type stubRouteClient struct {
	miles float64
}

func (s stubRouteClient) DrivingRoute(context.Context, maps.LatLng, maps.LatLng) (*maps.Route, error) {
	return &maps.Route{Miles: s.miles}, nil
}
