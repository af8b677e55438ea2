package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafaelquintero/bazario-backend/internal/catalog"
	"github.com/rafaelquintero/bazario-backend/internal/settlement"
	"github.com/rafaelquintero/bazario-backend/internal/wallet"
	"github.com/rafaelquintero/bazario-backend/pkg/config"
	"github.com/rafaelquintero/bazario-backend/pkg/db/models"
	"github.com/rafaelquintero/bazario-backend/pkg/enums"
	apperrors "github.com/rafaelquintero/bazario-backend/pkg/errors"
	"github.com/rafaelquintero/bazario-backend/pkg/logger"
	"github.com/rafaelquintero/bazario-backend/pkg/pagination"
)

// Service defines the order lifecycle operations.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) ([]models.Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID, actor Actor) (*models.Order, error)
	ListOrders(ctx context.Context, actor Actor, filter ListOrdersFilter, page pagination.Params) ([]models.Order, string, error)
	AdvanceStatus(ctx context.Context, orderID uuid.UUID, to enums.OrderStatus, actor Actor) (*models.Order, error)
	CancelOrder(ctx context.Context, orderID uuid.UUID, actor Actor) (*models.Order, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     Repository
	catalog  catalog.Repository
	wallets  wallet.Service
	engine   settlement.Engine
	business config.BusinessConfig
	tx       txRunner
	logg     *logger.Logger
}

// NewService wires the orders service with its dependencies.
func NewService(repo Repository, cat catalog.Repository, wallets wallet.Service, engine settlement.Engine, business config.BusinessConfig, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if cat == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if wallets == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	if engine == nil {
		return nil, fmt.Errorf("settlement engine required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		catalog:  cat,
		wallets:  wallets,
		engine:   engine,
		business: business,
		tx:       tx,
		logg:     logg,
	}, nil
}

// fulfillerGroup is one order-to-be: every cart line that the same party
// fulfills, with its pre-coupon subtotal.
type fulfillerGroup struct {
	kind          enums.FulfillerKind
	sellerID      *uuid.UUID
	items         []models.OrderLineItem
	subtotalCents int64
	couponCents   int64
}

func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) ([]models.Order, error) {
	if err := validatePlaceOrder(input); err != nil {
		return nil, err
	}

	groups, err := s.buildGroups(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := allocateCoupon(groups, input.CouponCents); err != nil {
		return nil, err
	}
	for _, group := range groups {
		if group.subtotalCents-group.couponCents+s.business.DeliveryChargeCents <= 0 {
			return nil, apperrors.New(apperrors.CodeValidation,
				"coupon cannot cover an order's full total")
		}
	}

	created := make([]models.Order, 0, len(groups))
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		for _, group := range groups {
			number, err := repo.NextOrderNumber(ctx)
			if err != nil {
				return fmt.Errorf("allocating order number: %w", err)
			}

			order := &models.Order{
				OrderNumber:     number,
				CustomerID:      input.CustomerID,
				FulfillerKind:   group.kind,
				SellerID:        group.sellerID,
				Status:          enums.OrderStatusPending,
				PaymentStatus:   enums.PaymentStatusUnpaid,
				PaymentMethod:   input.PaymentMethod,
				TotalCents:      group.subtotalCents - group.couponCents + s.business.DeliveryChargeCents,
				DeliveryCents:   s.business.DeliveryChargeCents,
				CouponCents:     group.couponCents,
				ShippingAddress: input.ShippingAddress,
				Items:           group.items,
			}
			if err := repo.Create(ctx, order); err != nil {
				return fmt.Errorf("creating order: %w", err)
			}

			if input.PaymentMethod == enums.PaymentMethodWallet {
				if _, err := s.wallets.Apply(ctx, tx, wallet.ApplyInput{
					HolderKind:      enums.HolderKindCustomer,
					HolderID:        input.CustomerID,
					Direction:       enums.EntryDirectionDebit,
					AmountCents:     order.TotalCents,
					Reason:          wallet.ReasonOrderPayment,
					OrderID:         &order.ID,
					CreateIfMissing: true,
				}); err != nil {
					return err
				}
			}

			if input.PaymentMethod.CapturesAtCreation() {
				if _, err := s.engine.Settle(ctx, tx, order, input.GatewayTransactionID); err != nil {
					return err
				}
			}

			created = append(created, *order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithUserID(ctx, input.CustomerID.String()),
		fmt.Sprintf("placed %d order(s)", len(created)))
	return created, nil
}

func (s *service) buildGroups(ctx context.Context, input PlaceOrderInput) ([]*fulfillerGroup, error) {
	ids := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading products: %w", err)
	}
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	grouped := map[string]*fulfillerGroup{}
	for _, item := range input.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("product %s not found", item.ProductID))
		}

		key := "platform"
		kind := enums.FulfillerKindPlatform
		var sellerID *uuid.UUID
		if product.SellerID != nil {
			key = product.SellerID.String()
			kind = enums.FulfillerKindSeller
			sellerID = product.SellerID
		}

		group, ok := grouped[key]
		if !ok {
			group = &fulfillerGroup{kind: kind, sellerID: sellerID}
			grouped[key] = group
		}

		unitNet := product.PriceCents + product.TaxCents - product.DiscountCents
		if unitNet <= 0 {
			return nil, apperrors.New(apperrors.CodeValidation,
				fmt.Sprintf("product %s has a non-positive unit price", product.ID))
		}
		lineTotal := unitNet * int64(item.Qty)

		group.items = append(group.items, models.OrderLineItem{
			ProductID:      product.ID,
			Name:           product.Name,
			UnitPriceCents: product.PriceCents,
			TaxCents:       product.TaxCents,
			DiscountCents:  product.DiscountCents,
			ThumbnailURL:   product.ThumbnailURL,
			Qty:            item.Qty,
			TotalCents:     lineTotal,
		})
		group.subtotalCents += lineTotal
	}

	// Deterministic order: platform group first, then sellers by id.
	keys := make([]string, 0, len(grouped))
	for key := range grouped {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == "platform" {
			return true
		}
		if keys[j] == "platform" {
			return false
		}
		return keys[i] < keys[j]
	})

	groups := make([]*fulfillerGroup, 0, len(keys))
	for _, key := range keys {
		groups = append(groups, grouped[key])
	}
	return groups, nil
}

// allocateCoupon distributes the coupon across groups proportionally to their
// subtotals, assigning the rounding remainder by largest fractional part so
// the shares always sum to the coupon exactly.
func allocateCoupon(groups []*fulfillerGroup, couponCents int64) error {
	if couponCents == 0 {
		return nil
	}

	var total int64
	for _, group := range groups {
		total += group.subtotalCents
	}
	if couponCents > total {
		return apperrors.New(apperrors.CodeValidation, "coupon exceeds the cart subtotal")
	}

	type share struct {
		group     *fulfillerGroup
		remainder int64
	}
	shares := make([]share, 0, len(groups))

	var allocated int64
	for _, group := range groups {
		base := couponCents * group.subtotalCents / total
		group.couponCents = base
		allocated += base
		shares = append(shares, share{
			group:     group,
			remainder: couponCents * group.subtotalCents % total,
		})
	}

	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].remainder > shares[j].remainder
	})
	for i := int64(0); i < couponCents-allocated; i++ {
		shares[i].group.couponCents++
	}
	return nil
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID, actor Actor) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "order id is required")
	}

	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "order not found")
		}
		return nil, fmt.Errorf("loading order: %w", err)
	}
	if err := authorizeOrderAccess(order, actor); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, actor Actor, filter ListOrdersFilter, page pagination.Params) ([]models.Order, string, error) {
	scope := ListScope{Status: filter.Status}
	switch actor.Role {
	case enums.ActorRoleCustomer:
		id := actor.UserID
		scope.CustomerID = &id
	case enums.ActorRoleSeller:
		if actor.SellerID == nil {
			return nil, "", apperrors.New(apperrors.CodeForbidden, "seller scope is required")
		}
		scope.SellerID = actor.SellerID
	case enums.ActorRoleAdmin:
		// unrestricted
	default:
		return nil, "", apperrors.New(apperrors.CodeForbidden, "unknown actor role")
	}

	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(page.Limit)
	var list []models.Order
	if cursor != nil {
		list, err = s.repo.List(ctx, scope, &cursor.CreatedAt, &cursor.ID, limit+1)
	} else {
		list, err = s.repo.List(ctx, scope, nil, nil, limit+1)
	}
	if err != nil {
		return nil, "", fmt.Errorf("listing orders: %w", err)
	}

	next := ""
	if len(list) > limit {
		list = list[:limit]
		last := list[len(list)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return list, next, nil
}

func (s *service) AdvanceStatus(ctx context.Context, orderID uuid.UUID, to enums.OrderStatus, actor Actor) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "order id is required")
	}
	if !advanceableStatuses[to] {
		return nil, apperrors.New(apperrors.CodeValidation,
			fmt.Sprintf("status %q cannot be set directly", to))
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.GetByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "order not found")
			}
			return fmt.Errorf("loading order: %w", err)
		}

		if err := authorizeFulfillerAction(order, actor); err != nil {
			return err
		}
		if err := ValidateTransition(order.Status, to); err != nil {
			return err
		}

		if to == enums.OrderStatusDelivered && order.PaymentStatus == enums.PaymentStatusUnpaid {
			if order.PaymentMethod != enums.PaymentMethodCOD {
				return apperrors.New(apperrors.CodeStateConflict,
					"order cannot be delivered before its payment is captured")
			}
			if _, err := s.engine.Settle(ctx, tx, order, ""); err != nil {
				return err
			}
		}

		ok, err := repo.UpdateStatus(ctx, orderID, order.Status, to)
		if err != nil {
			return fmt.Errorf("updating status: %w", err)
		}
		if !ok {
			return apperrors.New(apperrors.CodeStateConflict, "order status changed concurrently")
		}

		updated, err = repo.GetByID(ctx, orderID)
		if err != nil {
			return fmt.Errorf("reloading order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithOrderID(ctx, orderID.String()), fmt.Sprintf("order moved to %s", to))
	return updated, nil
}

func (s *service) CancelOrder(ctx context.Context, orderID uuid.UUID, actor Actor) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "order id is required")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.GetByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "order not found")
			}
			return fmt.Errorf("loading order: %w", err)
		}

		switch actor.Role {
		case enums.ActorRoleAdmin:
		case enums.ActorRoleCustomer:
			if order.CustomerID != actor.UserID {
				return apperrors.New(apperrors.CodeForbidden, "order belongs to another customer")
			}
		default:
			return apperrors.New(apperrors.CodeForbidden, "only the customer or an admin can cancel")
		}

		if order.Status != enums.OrderStatusPending && order.Status != enums.OrderStatusConfirmed {
			return apperrors.New(apperrors.CodeStateConflict,
				fmt.Sprintf("order in status %s can no longer be cancelled", order.Status))
		}

		if order.PaymentStatus == enums.PaymentStatusPaid {
			if err := s.engine.Reverse(ctx, tx, order, settlement.TriggerCancel); err != nil {
				return err
			}
		}

		ok, err := repo.UpdateStatus(ctx, orderID, order.Status, enums.OrderStatusCancelled)
		if err != nil {
			return fmt.Errorf("updating status: %w", err)
		}
		if !ok {
			return apperrors.New(apperrors.CodeStateConflict, "order status changed concurrently")
		}

		updated, err = repo.GetByID(ctx, orderID)
		if err != nil {
			return fmt.Errorf("reloading order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithOrderID(ctx, orderID.String()), "order cancelled")
	return updated, nil
}

func authorizeOrderAccess(order *models.Order, actor Actor) error {
	switch actor.Role {
	case enums.ActorRoleAdmin:
		return nil
	case enums.ActorRoleCustomer:
		if order.CustomerID == actor.UserID {
			return nil
		}
	case enums.ActorRoleSeller:
		if actor.SellerID != nil && order.SellerID != nil && *order.SellerID == *actor.SellerID {
			return nil
		}
	}
	return apperrors.New(apperrors.CodeForbidden, "order is not visible to this actor")
}

func authorizeFulfillerAction(order *models.Order, actor Actor) error {
	switch actor.Role {
	case enums.ActorRoleAdmin:
		return nil
	case enums.ActorRoleSeller:
		if actor.SellerID != nil && order.SellerID != nil && *order.SellerID == *actor.SellerID {
			return nil
		}
	}
	return apperrors.New(apperrors.CodeForbidden, "only the fulfiller or an admin can update order status")
}

func validatePlaceOrder(input PlaceOrderInput) error {
	if input.CustomerID == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "customer id is required")
	}
	if !input.PaymentMethod.IsValid() {
		return apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.PaymentMethod))
	}
	if strings.TrimSpace(input.ShippingAddress) == "" {
		return apperrors.New(apperrors.CodeValidation, "shipping address is required")
	}
	if input.CouponCents < 0 {
		return apperrors.New(apperrors.CodeValidation, "coupon must be non-negative")
	}
	if len(input.Items) == 0 {
		return apperrors.New(apperrors.CodeValidation, "cart is empty")
	}
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return apperrors.New(apperrors.CodeValidation, "cart item is missing a product id")
		}
		if item.Qty <= 0 {
			return apperrors.New(apperrors.CodeValidation, "cart item quantity must be positive")
		}
	}
	if input.PaymentMethod == enums.PaymentMethodOnline && strings.TrimSpace(input.GatewayTransactionID) == "" {
		return apperrors.New(apperrors.CodeValidation, "online payments require a gateway transaction id")
	}
	return nil
}
