package returns

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rafaelquintero/bazario-backend/api/middleware"
	"github.com/rafaelquintero/bazario-backend/api/responses"
	"github.com/rafaelquintero/bazario-backend/api/validators"
	internalreturns "github.com/rafaelquintero/bazario-backend/internal/returns"
	"github.com/rafaelquintero/bazario-backend/pkg/enums"
	pkgerrors "github.com/rafaelquintero/bazario-backend/pkg/errors"
	"github.com/rafaelquintero/bazario-backend/pkg/logger"
	"github.com/rafaelquintero/bazario-backend/pkg/pagination"
)

type fileReturnRequest struct {
	OrderID     string   `json:"order_id" validate:"required,uuid4"`
	Reason      string   `json:"reason" validate:"required"`
	Description *string  `json:"description,omitempty"`
	ProofImages []string `json:"proof_images,omitempty" validate:"max=10"`
}

type resolveReturnRequest struct {
	Decision      string `json:"decision" validate:"required,oneof=approved denied returned"`
	AdminResponse string `json:"admin_response,omitempty"`
}

// File records a customer's return request for a delivered order.
func File(svc internalreturns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "returns service unavailable"))
			return
		}

		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload fileReturnRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := uuid.Parse(payload.OrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		request, err := svc.File(r.Context(), internalreturns.FileInput{
			OrderID:     orderID,
			CustomerID:  actor.UserID,
			Reason:      payload.Reason,
			Description: payload.Description,
			ProofImages: payload.ProofImages,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, request)
	}
}

// List returns the actor's return-request page, newest first.
func List(svc internalreturns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "returns service unavailable"))
			return
		}

		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, next, err := svc.List(r.Context(), actor, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"return_requests": list,
			"next_cursor":     next,
		})
	}
}

// Resolve applies an admin decision to a return request.
func Resolve(svc internalreturns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "returns service unavailable"))
			return
		}

		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		raw := strings.TrimSpace(chi.URLParam(r, "requestId"))
		if raw == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "request id is required"))
			return
		}
		requestID, err := uuid.Parse(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request id"))
			return
		}

		var payload resolveReturnRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		decision, err := enums.ParseReturnStatus(payload.Decision)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid decision"))
			return
		}

		resolved, err := svc.Resolve(r.Context(), requestID, decision, payload.AdminResponse, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resolved)
	}
}
