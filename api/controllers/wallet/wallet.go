package wallet

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rafaelquintero/bazario-backend/api/middleware"
	"github.com/rafaelquintero/bazario-backend/api/responses"
	"github.com/rafaelquintero/bazario-backend/api/validators"
	internalwallet "github.com/rafaelquintero/bazario-backend/internal/wallet"
	"github.com/rafaelquintero/bazario-backend/pkg/config"
	"github.com/rafaelquintero/bazario-backend/pkg/enums"
	pkgerrors "github.com/rafaelquintero/bazario-backend/pkg/errors"
	"github.com/rafaelquintero/bazario-backend/pkg/logger"
	"github.com/rafaelquintero/bazario-backend/pkg/pagination"
)

type withdrawRequest struct {
	AmountCents int64 `json:"amount_cents" validate:"required,min=1"`
}

// holderFromActor maps the authenticated actor onto a wallet holder.
// Customers and sellers see their own wallet; admins see the platform's.
func holderFromActor(r *http.Request, business config.BusinessConfig) (enums.HolderKind, uuid.UUID, error) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		return "", uuid.Nil, err
	}
	switch actor.Role {
	case enums.ActorRoleCustomer:
		return enums.HolderKindCustomer, actor.UserID, nil
	case enums.ActorRoleSeller:
		if actor.SellerID == nil {
			return "", uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "seller scope is required")
		}
		return enums.HolderKindSeller, *actor.SellerID, nil
	case enums.ActorRoleAdmin:
		return enums.HolderKindPlatform, business.PlatformHolderID(), nil
	}
	return "", uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "unknown actor role")
}

// Balance returns the actor's wallet account.
func Balance(svc internalwallet.Service, business config.BusinessConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		kind, holderID, err := holderFromActor(r, business)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		account, err := svc.Balance(r.Context(), kind, holderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, account)
	}
}

// Transactions returns the actor's ledger page, newest first.
func Transactions(svc internalwallet.Service, business config.BusinessConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		kind, holderID, err := holderFromActor(r, business)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, next, err := svc.Entries(r.Context(), kind, holderID, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"entries":     entries,
			"next_cursor": next,
		})
	}
}

// Withdraw debits the actor's wallet, funds enforced.
func Withdraw(svc internalwallet.Service, business config.BusinessConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		kind, holderID, err := holderFromActor(r, business)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if kind == enums.HolderKindPlatform {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "platform funds are not withdrawable here"))
			return
		}

		var payload withdrawRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.Withdraw(r.Context(), kind, holderID, payload.AmountCents)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entry)
	}
}
