package returns

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafaelquintero/bazario-backend/internal/orders"
	"github.com/rafaelquintero/bazario-backend/internal/settlement"
	pkgdb "github.com/rafaelquintero/bazario-backend/pkg/db"
	"github.com/rafaelquintero/bazario-backend/pkg/db/models"
	"github.com/rafaelquintero/bazario-backend/pkg/enums"
	apperrors "github.com/rafaelquintero/bazario-backend/pkg/errors"
	"github.com/rafaelquintero/bazario-backend/pkg/logger"
	"github.com/rafaelquintero/bazario-backend/pkg/pagination"
)

// Service defines the return workflow operations.
type Service interface {
	File(ctx context.Context, input FileInput) (*models.ReturnRequest, error)
	List(ctx context.Context, actor orders.Actor, page pagination.Params) ([]models.ReturnRequest, string, error)
	Resolve(ctx context.Context, requestID uuid.UUID, decision enums.ReturnStatus, adminResponse string, actor orders.Actor) (*models.ReturnRequest, error)
}

// FileInput carries a customer's return request.
type FileInput struct {
	OrderID     uuid.UUID
	CustomerID  uuid.UUID
	Reason      string
	Description *string
	ProofImages []string
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo   Repository
	orders orders.Repository
	engine settlement.Engine
	tx     txRunner
	logg   *logger.Logger
}

// NewService wires the returns service with its dependencies.
func NewService(repo Repository, ordersRepo orders.Repository, engine settlement.Engine, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("returns repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
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
		repo:   repo,
		orders: ordersRepo,
		engine: engine,
		tx:     tx,
		logg:   logg,
	}, nil
}

func (s *service) File(ctx context.Context, input FileInput) (*models.ReturnRequest, error) {
	if input.OrderID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "order id is required")
	}
	if input.CustomerID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "customer id is required")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "reason is required")
	}

	order, err := s.orders.GetByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "order not found")
		}
		return nil, fmt.Errorf("loading order: %w", err)
	}
	if order.CustomerID != input.CustomerID {
		return nil, apperrors.New(apperrors.CodeForbidden, "order belongs to another customer")
	}
	if order.Status != enums.OrderStatusDelivered {
		return nil, apperrors.New(apperrors.CodeStateConflict, "only delivered orders can be returned")
	}

	open, err := s.repo.HasOpenRequest(ctx, input.OrderID, input.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("checking open requests: %w", err)
	}
	if open {
		return nil, apperrors.New(apperrors.CodeConflict, "a return request for this order is already open")
	}

	request := &models.ReturnRequest{
		OrderID:     input.OrderID,
		CustomerID:  input.CustomerID,
		SellerID:    order.SellerID,
		Reason:      input.Reason,
		Description: input.Description,
		ProofImages: input.ProofImages,
		Status:      enums.ReturnStatusPending,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		// Lost a filing race; the partial unique index on open requests
		// rejected the second row.
		if pkgdb.IsUniqueViolation(err, "") {
			return nil, apperrors.New(apperrors.CodeConflict, "a return request for this order is already open")
		}
		return nil, fmt.Errorf("creating return request: %w", err)
	}

	s.logg.Info(s.logg.WithOrderID(ctx, input.OrderID.String()), "return request filed")
	return request, nil
}

func (s *service) List(ctx context.Context, actor orders.Actor, page pagination.Params) ([]models.ReturnRequest, string, error) {
	scope := ListScope{}
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
	var list []models.ReturnRequest
	if cursor != nil {
		list, err = s.repo.List(ctx, scope, &cursor.CreatedAt, &cursor.ID, limit+1)
	} else {
		list, err = s.repo.List(ctx, scope, nil, nil, limit+1)
	}
	if err != nil {
		return nil, "", fmt.Errorf("listing return requests: %w", err)
	}

	next := ""
	if len(list) > limit {
		list = list[:limit]
		last := list[len(list)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return list, next, nil
}

func (s *service) Resolve(ctx context.Context, requestID uuid.UUID, decision enums.ReturnStatus, adminResponse string, actor orders.Actor) (*models.ReturnRequest, error) {
	if requestID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "request id is required")
	}
	if decision != enums.ReturnStatusApproved && decision != enums.ReturnStatusDenied && decision != enums.ReturnStatusReturned {
		return nil, apperrors.New(apperrors.CodeValidation,
			fmt.Sprintf("decision must be approved, denied or returned, got %q", decision))
	}
	if actor.Role != enums.ActorRoleAdmin {
		return nil, apperrors.New(apperrors.CodeForbidden, "only admins resolve return requests")
	}

	var resolved *models.ReturnRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ordersRepo := s.orders.WithTx(tx)

		request, err := repo.GetByID(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "return request not found")
			}
			return fmt.Errorf("loading return request: %w", err)
		}
		if request.Status == enums.ReturnStatusReturned {
			return apperrors.New(apperrors.CodeStateConflict, "return request is already finalized")
		}

		order, err := ordersRepo.GetByID(ctx, request.OrderID)
		if err != nil {
			return fmt.Errorf("loading order: %w", err)
		}

		ok, err := repo.Resolve(ctx, requestID, decision, adminResponse)
		if err != nil {
			return fmt.Errorf("resolving return request: %w", err)
		}
		if !ok {
			return apperrors.New(apperrors.CodeStateConflict, "return request was finalized concurrently")
		}

		switch decision {
		case enums.ReturnStatusReturned:
			if err := s.engine.Reverse(ctx, tx, order, settlement.TriggerReturn); err != nil {
				return err
			}
			moved, err := ordersRepo.UpdateStatus(ctx, order.ID, enums.OrderStatusDelivered, enums.OrderStatusReturned)
			if err != nil {
				return fmt.Errorf("updating order status: %w", err)
			}
			if !moved {
				return apperrors.New(apperrors.CodeStateConflict, "order left the delivered state concurrently")
			}
		case enums.ReturnStatusApproved, enums.ReturnStatusDenied:
			// Annotation only. If a previous resolution moved the order out of
			// delivered without money movement, put it back.
			if order.Status == enums.OrderStatusReturned && order.PaymentStatus != enums.PaymentStatusRefunded {
				if _, err := ordersRepo.UpdateStatus(ctx, order.ID, enums.OrderStatusReturned, enums.OrderStatusDelivered); err != nil {
					return fmt.Errorf("restoring order status: %w", err)
				}
			}
		}

		resolved, err = repo.GetByID(ctx, requestID)
		if err != nil {
			return fmt.Errorf("reloading return request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithOrderID(ctx, resolved.OrderID.String()),
		fmt.Sprintf("return request resolved as %s", decision))
	return resolved, nil
}
