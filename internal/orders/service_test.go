package orders

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rafaelquintero/bazario-backend/internal/catalog"
	"github.com/rafaelquintero/bazario-backend/internal/settlement"
	"github.com/rafaelquintero/bazario-backend/internal/wallet"
	"github.com/rafaelquintero/bazario-backend/pkg/config"
	"github.com/rafaelquintero/bazario-backend/pkg/db/models"
	"github.com/rafaelquintero/bazario-backend/pkg/enums"
	pkgerrors "github.com/rafaelquintero/bazario-backend/pkg/errors"
	"github.com/rafaelquintero/bazario-backend/pkg/logger"
	"github.com/rafaelquintero/bazario-backend/pkg/pagination"
)

// ---- fakes ----

type fakeOrdersRepo struct {
	orders     map[uuid.UUID]*models.Order
	nextNumber int64
}

func newFakeOrdersRepo() *fakeOrdersRepo {
	return &fakeOrdersRepo{orders: map[uuid.UUID]*models.Order{}, nextNumber: 100000}
}

func (r *fakeOrdersRepo) WithTx(*gorm.DB) Repository { return r }

func (r *fakeOrdersRepo) Create(_ context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.CreatedAt = time.Now().UTC()
	r.orders[order.ID] = order
	return nil
}

func (r *fakeOrdersRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (r *fakeOrdersRepo) List(_ context.Context, scope ListScope, _ *time.Time, _ *uuid.UUID, limit int) ([]models.Order, error) {
	var list []models.Order
	for _, order := range r.orders {
		if scope.CustomerID != nil && order.CustomerID != *scope.CustomerID {
			continue
		}
		if scope.SellerID != nil && (order.SellerID == nil || *order.SellerID != *scope.SellerID) {
			continue
		}
		if scope.Status != nil && order.Status != *scope.Status {
			continue
		}
		list = append(list, *order)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].OrderNumber > list[j].OrderNumber })
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *fakeOrdersRepo) UpdateStatus(_ context.Context, orderID uuid.UUID, from, to enums.OrderStatus) (bool, error) {
	order, ok := r.orders[orderID]
	if !ok || order.Status != from {
		return false, nil
	}
	order.Status = to
	return true, nil
}

func (r *fakeOrdersRepo) NextOrderNumber(context.Context) (int64, error) {
	r.nextNumber++
	return r.nextNumber, nil
}

type fakeCatalogRepo struct {
	products map[uuid.UUID]models.Product
}

func (r *fakeCatalogRepo) WithTx(*gorm.DB) catalog.Repository { return r }

func (r *fakeCatalogRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if product, ok := r.products[id]; ok {
			out = append(out, product)
		}
	}
	return out, nil
}

type fakeWalletService struct {
	applied  []wallet.ApplyInput
	applyErr error
}

func (w *fakeWalletService) Apply(_ context.Context, _ *gorm.DB, input wallet.ApplyInput) (*models.WalletLedgerEntry, error) {
	if w.applyErr != nil {
		return nil, w.applyErr
	}
	w.applied = append(w.applied, input)
	return &models.WalletLedgerEntry{
		HolderKind:  input.HolderKind,
		HolderID:    input.HolderID,
		Direction:   input.Direction,
		AmountCents: input.AmountCents,
		Reason:      input.Reason,
		OrderID:     input.OrderID,
	}, nil
}

func (w *fakeWalletService) Balance(context.Context, enums.HolderKind, uuid.UUID) (*models.WalletAccount, error) {
	return &models.WalletAccount{}, nil
}

func (w *fakeWalletService) Entries(context.Context, enums.HolderKind, uuid.UUID, pagination.Params) ([]models.WalletLedgerEntry, string, error) {
	return nil, "", nil
}

func (w *fakeWalletService) Withdraw(context.Context, enums.HolderKind, uuid.UUID, int64) (*models.WalletLedgerEntry, error) {
	return nil, nil
}

func (w *fakeWalletService) Deposit(context.Context, enums.HolderKind, uuid.UUID, int64) (*models.WalletLedgerEntry, error) {
	return nil, nil
}

type fakeEngine struct {
	settled  []uuid.UUID
	reversed []uuid.UUID
	triggers []string
}

func (e *fakeEngine) Settle(_ context.Context, _ *gorm.DB, order *models.Order, _ string) (*settlement.Split, error) {
	if order.PaymentStatus != enums.PaymentStatusUnpaid {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadySettled, "already settled")
	}
	order.PaymentStatus = enums.PaymentStatusPaid
	e.settled = append(e.settled, order.ID)
	return &settlement.Split{}, nil
}

func (e *fakeEngine) Reverse(_ context.Context, _ *gorm.DB, order *models.Order, trigger string) error {
	if order.PaymentStatus != enums.PaymentStatusPaid {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "never settled")
	}
	order.PaymentStatus = enums.PaymentStatusRefunded
	e.reversed = append(e.reversed, order.ID)
	e.triggers = append(e.triggers, trigger)
	return nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fixture struct {
	svc     Service
	repo    *fakeOrdersRepo
	catalog *fakeCatalogRepo
	wallets *fakeWalletService
	engine  *fakeEngine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := newFakeOrdersRepo()
	cat := &fakeCatalogRepo{products: map[uuid.UUID]models.Product{}}
	wallets := &fakeWalletService{}
	engine := &fakeEngine{}
	business := config.NewBusinessConfig(uuid.New(), decimal.NewFromInt(10), 50)

	svc, err := NewService(repo, cat, wallets, engine, business, fakeTxRunner{}, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	return &fixture{svc: svc, repo: repo, catalog: cat, wallets: wallets, engine: engine}
}

func (f *fixture) addProduct(sellerID *uuid.UUID, priceCents int64) models.Product {
	product := models.Product{
		ID:         uuid.New(),
		SellerID:   sellerID,
		Name:       "test product",
		PriceCents: priceCents,
	}
	f.catalog.products[product.ID] = product
	return product
}

// ---- coupon allocation ----

func TestAllocateCouponProportional(t *testing.T) {
	groups := []*fulfillerGroup{
		{subtotalCents: 500},
		{subtotalCents: 300},
		{subtotalCents: 200},
	}
	require.NoError(t, allocateCoupon(groups, 100))
	assert.Equal(t, int64(50), groups[0].couponCents)
	assert.Equal(t, int64(30), groups[1].couponCents)
	assert.Equal(t, int64(20), groups[2].couponCents)
}

func TestAllocateCouponDistributesRemainder(t *testing.T) {
	groups := []*fulfillerGroup{
		{subtotalCents: 333},
		{subtotalCents: 333},
		{subtotalCents: 334},
	}
	require.NoError(t, allocateCoupon(groups, 100))

	var total int64
	for _, group := range groups {
		total += group.couponCents
	}
	assert.Equal(t, int64(100), total, "shares must sum to the coupon exactly")
	assert.Equal(t, int64(34), groups[2].couponCents, "largest remainder takes the leftover cent")
}

func TestAllocateCouponRejectsOversizedCoupon(t *testing.T) {
	groups := []*fulfillerGroup{{subtotalCents: 80}}
	err := allocateCoupon(groups, 100)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "got %v", err)
}

// ---- PlaceOrder ----

func TestPlaceOrderSplitsCartPerFulfiller(t *testing.T) {
	f := newFixture(t)
	sellerA := uuid.New()
	sellerB := uuid.New()
	platformProduct := f.addProduct(nil, 400)
	productA := f.addProduct(&sellerA, 300)
	productB := f.addProduct(&sellerB, 300)

	created, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID:      uuid.New(),
		PaymentMethod:   enums.PaymentMethodCOD,
		ShippingAddress: "1 Mercado St",
		CouponCents:     100,
		Items: []CartItem{
			{ProductID: productA.ID, Qty: 1},
			{ProductID: platformProduct.ID, Qty: 1},
			{ProductID: productB.ID, Qty: 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, created, 3)

	// Platform group always comes first.
	assert.Equal(t, enums.FulfillerKindPlatform, created[0].FulfillerKind)
	assert.Equal(t, enums.FulfillerKindSeller, created[1].FulfillerKind)
	assert.Equal(t, enums.FulfillerKindSeller, created[2].FulfillerKind)

	var couponTotal int64
	for _, order := range created {
		assert.Equal(t, int64(50), order.DeliveryCents)
		assert.Equal(t, order.TotalCents, sumLineItems(order.Items)-order.CouponCents+order.DeliveryCents)
		assert.Equal(t, enums.OrderStatusPending, order.Status)
		assert.Equal(t, enums.PaymentStatusUnpaid, order.PaymentStatus)
		couponTotal += order.CouponCents
	}
	assert.Equal(t, int64(100), couponTotal)

	// COD captures at delivery, so nothing settled yet.
	assert.Empty(t, f.engine.settled)
	assert.Empty(t, f.wallets.applied)
}

func sumLineItems(items []models.OrderLineItem) int64 {
	var total int64
	for _, item := range items {
		total += item.TotalCents
	}
	return total
}

func TestPlaceOrderOnlineSettlesAtCreation(t *testing.T) {
	f := newFixture(t)
	sellerID := uuid.New()
	product := f.addProduct(&sellerID, 1130)

	created, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID:           uuid.New(),
		PaymentMethod:        enums.PaymentMethodOnline,
		ShippingAddress:      "1 Mercado St",
		GatewayTransactionID: "gw-789",
		Items:                []CartItem{{ProductID: product.ID, Qty: 1}},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, []uuid.UUID{created[0].ID}, f.engine.settled)
	assert.Empty(t, f.wallets.applied, "online payments never touch the customer wallet")
}

func TestPlaceOrderWalletDebitsThenSettles(t *testing.T) {
	f := newFixture(t)
	customerID := uuid.New()
	sellerID := uuid.New()
	product := f.addProduct(&sellerID, 1130)

	created, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID:      customerID,
		PaymentMethod:   enums.PaymentMethodWallet,
		ShippingAddress: "1 Mercado St",
		Items:           []CartItem{{ProductID: product.ID, Qty: 1}},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)

	require.Len(t, f.wallets.applied, 1)
	debit := f.wallets.applied[0]
	assert.Equal(t, enums.HolderKindCustomer, debit.HolderKind)
	assert.Equal(t, customerID, debit.HolderID)
	assert.Equal(t, enums.EntryDirectionDebit, debit.Direction)
	assert.Equal(t, created[0].TotalCents, debit.AmountCents)
	assert.Equal(t, wallet.ReasonOrderPayment, debit.Reason)
	assert.False(t, debit.AllowNegative, "order payments are funds enforced")

	assert.Equal(t, []uuid.UUID{created[0].ID}, f.engine.settled)
}

func TestPlaceOrderWalletInsufficientFundsAborts(t *testing.T) {
	f := newFixture(t)
	f.wallets.applyErr = pkgerrors.New(pkgerrors.CodeInsufficientFunds, "wallet balance is insufficient")
	sellerID := uuid.New()
	product := f.addProduct(&sellerID, 1130)

	_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID:      uuid.New(),
		PaymentMethod:   enums.PaymentMethodWallet,
		ShippingAddress: "1 Mercado St",
		Items:           []CartItem{{ProductID: product.ID, Qty: 1}},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientFunds), "got %v", err)
	assert.Empty(t, f.engine.settled)
}

func TestPlaceOrderValidation(t *testing.T) {
	f := newFixture(t)
	sellerID := uuid.New()
	product := f.addProduct(&sellerID, 500)

	cases := map[string]PlaceOrderInput{
		"missing customer": {
			PaymentMethod:   enums.PaymentMethodCOD,
			ShippingAddress: "addr",
			Items:           []CartItem{{ProductID: product.ID, Qty: 1}},
		},
		"bad payment method": {
			CustomerID:      uuid.New(),
			PaymentMethod:   "barter",
			ShippingAddress: "addr",
			Items:           []CartItem{{ProductID: product.ID, Qty: 1}},
		},
		"blank address": {
			CustomerID:    uuid.New(),
			PaymentMethod: enums.PaymentMethodCOD,
			Items:         []CartItem{{ProductID: product.ID, Qty: 1}},
		},
		"empty cart": {
			CustomerID:      uuid.New(),
			PaymentMethod:   enums.PaymentMethodCOD,
			ShippingAddress: "addr",
		},
		"zero qty": {
			CustomerID:      uuid.New(),
			PaymentMethod:   enums.PaymentMethodCOD,
			ShippingAddress: "addr",
			Items:           []CartItem{{ProductID: product.ID, Qty: 0}},
		},
		"online without gateway reference": {
			CustomerID:      uuid.New(),
			PaymentMethod:   enums.PaymentMethodOnline,
			ShippingAddress: "addr",
			Items:           []CartItem{{ProductID: product.ID, Qty: 1}},
		},
	}
	for name, input := range cases {
		_, err := f.svc.PlaceOrder(context.Background(), input)
		require.Error(t, err, name)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "%s: got %v", name, err)
	}
}

func TestPlaceOrderRejectsCouponCoveringFullTotal(t *testing.T) {
	f := newFixture(t)
	sellerID := uuid.New()
	product := f.addProduct(&sellerID, 500)

	// With no delivery charge a coupon equal to the subtotal would produce a
	// zero-total order; that must fail validation, not settlement.
	business := config.NewBusinessConfig(uuid.New(), decimal.NewFromInt(10), 0)
	svc, err := NewService(f.repo, f.catalog, f.wallets, f.engine, business, fakeTxRunner{}, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)

	_, err = svc.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID:      uuid.New(),
		PaymentMethod:   enums.PaymentMethodWallet,
		ShippingAddress: "1 Mercado St",
		CouponCents:     500,
		Items:           []CartItem{{ProductID: product.ID, Qty: 1}},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "got %v", err)
	assert.Empty(t, f.engine.settled)
	assert.Empty(t, f.wallets.applied)
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID:      uuid.New(),
		PaymentMethod:   enums.PaymentMethodCOD,
		ShippingAddress: "addr",
		Items:           []CartItem{{ProductID: uuid.New(), Qty: 1}},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

// ---- AdvanceStatus ----

func placeCODOrder(t *testing.T, f *fixture, sellerID uuid.UUID) *models.Order {
	t.Helper()

	product := f.addProduct(&sellerID, 1130)
	created, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID:      uuid.New(),
		PaymentMethod:   enums.PaymentMethodCOD,
		ShippingAddress: "1 Mercado St",
		Items:           []CartItem{{ProductID: product.ID, Qty: 1}},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	return f.repo.orders[created[0].ID]
}

func advance(t *testing.T, f *fixture, orderID uuid.UUID, actor Actor, statuses ...enums.OrderStatus) {
	t.Helper()
	for _, status := range statuses {
		_, err := f.svc.AdvanceStatus(context.Background(), orderID, status, actor)
		require.NoError(t, err, "advancing to %s", status)
	}
}

func TestAdvanceStatusHappyPath(t *testing.T) {
	f := newFixture(t)
	sellerID := uuid.New()
	order := placeCODOrder(t, f, sellerID)
	actor := Actor{UserID: uuid.New(), Role: enums.ActorRoleSeller, SellerID: &sellerID}

	advance(t, f, order.ID, actor, enums.OrderStatusConfirmed, enums.OrderStatusProcessing, enums.OrderStatusShipped)
	assert.Equal(t, enums.OrderStatusShipped, order.Status)
	assert.Empty(t, f.engine.settled, "no settlement before delivery on COD")
}

func TestAdvanceStatusDeliveredSettlesCOD(t *testing.T) {
	f := newFixture(t)
	sellerID := uuid.New()
	order := placeCODOrder(t, f, sellerID)
	actor := Actor{UserID: uuid.New(), Role: enums.ActorRoleSeller, SellerID: &sellerID}

	advance(t, f, order.ID, actor,
		enums.OrderStatusConfirmed, enums.OrderStatusProcessing, enums.OrderStatusShipped, enums.OrderStatusDelivered)

	assert.Equal(t, enums.OrderStatusDelivered, order.Status)
	assert.Equal(t, []uuid.UUID{order.ID}, f.engine.settled)
	assert.Equal(t, enums.PaymentStatusPaid, order.PaymentStatus)
}

func TestAdvanceStatusRejectsSkippedStates(t *testing.T) {
	f := newFixture(t)
	sellerID := uuid.New()
	order := placeCODOrder(t, f, sellerID)
	actor := Actor{UserID: uuid.New(), Role: enums.ActorRoleSeller, SellerID: &sellerID}

	_, err := f.svc.AdvanceStatus(context.Background(), order.ID, enums.OrderStatusDelivered, actor)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict), "got %v", err)
	assert.Empty(t, f.engine.settled)
}

func TestAdvanceStatusRejectsDirectCancel(t *testing.T) {
	f := newFixture(t)
	sellerID := uuid.New()
	order := placeCODOrder(t, f, sellerID)
	actor := Actor{UserID: uuid.New(), Role: enums.ActorRoleAdmin}

	_, err := f.svc.AdvanceStatus(context.Background(), order.ID, enums.OrderStatusCancelled, actor)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestAdvanceStatusForeignSellerForbidden(t *testing.T) {
	f := newFixture(t)
	order := placeCODOrder(t, f, uuid.New())
	otherSeller := uuid.New()
	actor := Actor{UserID: uuid.New(), Role: enums.ActorRoleSeller, SellerID: &otherSeller}

	_, err := f.svc.AdvanceStatus(context.Background(), order.ID, enums.OrderStatusConfirmed, actor)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden), "got %v", err)
}

func TestAdvanceStatusOnlineUnpaidCannotDeliver(t *testing.T) {
	f := newFixture(t)
	sellerID := uuid.New()
	order := placeCODOrder(t, f, sellerID)
	// Force the inconsistent shape: an online order that somehow lost its capture.
	order.PaymentMethod = enums.PaymentMethodOnline
	order.PaymentStatus = enums.PaymentStatusUnpaid
	actor := Actor{UserID: uuid.New(), Role: enums.ActorRoleSeller, SellerID: &sellerID}

	advance(t, f, order.ID, actor, enums.OrderStatusConfirmed, enums.OrderStatusProcessing, enums.OrderStatusShipped)

	_, err := f.svc.AdvanceStatus(context.Background(), order.ID, enums.OrderStatusDelivered, actor)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict), "got %v", err)
	assert.Empty(t, f.engine.settled)
}

// ---- CancelOrder ----

func TestCancelUnpaidOrderMovesNoMoney(t *testing.T) {
	f := newFixture(t)
	order := placeCODOrder(t, f, uuid.New())
	actor := Actor{UserID: order.CustomerID, Role: enums.ActorRoleCustomer}

	updated, err := f.svc.CancelOrder(context.Background(), order.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, updated.Status)
	assert.Empty(t, f.engine.reversed)
}

func TestCancelPaidOrderReverses(t *testing.T) {
	f := newFixture(t)
	sellerID := uuid.New()
	product := f.addProduct(&sellerID, 1130)

	created, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID:           uuid.New(),
		PaymentMethod:        enums.PaymentMethodOnline,
		ShippingAddress:      "1 Mercado St",
		GatewayTransactionID: "gw-1",
		Items:                []CartItem{{ProductID: product.ID, Qty: 1}},
	})
	require.NoError(t, err)
	order := f.repo.orders[created[0].ID]

	actor := Actor{UserID: order.CustomerID, Role: enums.ActorRoleCustomer}
	updated, err := f.svc.CancelOrder(context.Background(), order.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, updated.Status)
	assert.Equal(t, []uuid.UUID{order.ID}, f.engine.reversed)
	assert.Equal(t, []string{settlement.TriggerCancel}, f.engine.triggers)
}

func TestCancelShippedOrderRejected(t *testing.T) {
	f := newFixture(t)
	sellerID := uuid.New()
	order := placeCODOrder(t, f, sellerID)
	seller := Actor{UserID: uuid.New(), Role: enums.ActorRoleSeller, SellerID: &sellerID}
	advance(t, f, order.ID, seller, enums.OrderStatusConfirmed, enums.OrderStatusProcessing, enums.OrderStatusShipped)

	actor := Actor{UserID: order.CustomerID, Role: enums.ActorRoleCustomer}
	_, err := f.svc.CancelOrder(context.Background(), order.ID, actor)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict), "got %v", err)
}

func TestCancelByForeignCustomerForbidden(t *testing.T) {
	f := newFixture(t)
	order := placeCODOrder(t, f, uuid.New())

	actor := Actor{UserID: uuid.New(), Role: enums.ActorRoleCustomer}
	_, err := f.svc.CancelOrder(context.Background(), order.ID, actor)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden), "got %v", err)
}

func TestCancelBySellerForbidden(t *testing.T) {
	f := newFixture(t)
	sellerID := uuid.New()
	order := placeCODOrder(t, f, sellerID)

	actor := Actor{UserID: uuid.New(), Role: enums.ActorRoleSeller, SellerID: &sellerID}
	_, err := f.svc.CancelOrder(context.Background(), order.ID, actor)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden), "got %v", err)
}

// ---- scoping ----

func TestListOrdersScopesToActor(t *testing.T) {
	f := newFixture(t)
	sellerID := uuid.New()
	mine := placeCODOrder(t, f, sellerID)
	placeCODOrder(t, f, uuid.New())

	customer := Actor{UserID: mine.CustomerID, Role: enums.ActorRoleCustomer}
	list, _, err := f.svc.ListOrders(context.Background(), customer, ListOrdersFilter{}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	seller := Actor{UserID: uuid.New(), Role: enums.ActorRoleSeller, SellerID: &sellerID}
	list, _, err = f.svc.ListOrders(context.Background(), seller, ListOrdersFilter{}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	admin := Actor{UserID: uuid.New(), Role: enums.ActorRoleAdmin}
	list, _, err = f.svc.ListOrders(context.Background(), admin, ListOrdersFilter{}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestGetOrderHidesForeignOrders(t *testing.T) {
	f := newFixture(t)
	order := placeCODOrder(t, f, uuid.New())

	_, err := f.svc.GetOrder(context.Background(), order.ID, Actor{UserID: uuid.New(), Role: enums.ActorRoleCustomer})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden), "got %v", err)

	got, err := f.svc.GetOrder(context.Background(), order.ID, Actor{UserID: order.CustomerID, Role: enums.ActorRoleCustomer})
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}
