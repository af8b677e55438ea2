package middleware

import (
	"context"

	"github.com/google/uuid"

	internalorders "github.com/rafaelquintero/bazario-backend/internal/orders"
	"github.com/rafaelquintero/bazario-backend/pkg/enums"
	pkgerrors "github.com/rafaelquintero/bazario-backend/pkg/errors"
)

// ActorFromContext rebuilds the typed actor the services expect from the
// values the auth middleware seeded.
func ActorFromContext(ctx context.Context) (internalorders.Actor, error) {
	rawUser := UserIDFromContext(ctx)
	if rawUser == "" {
		return internalorders.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(rawUser)
	if err != nil {
		return internalorders.Actor{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}

	role, err := enums.ParseActorRole(RoleFromContext(ctx))
	if err != nil {
		return internalorders.Actor{}, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "invalid actor role")
	}

	actor := internalorders.Actor{UserID: userID, Role: role}
	if raw := SellerIDFromContext(ctx); raw != "" {
		sellerID, err := uuid.Parse(raw)
		if err != nil {
			return internalorders.Actor{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid seller id")
		}
		actor.SellerID = &sellerID
	}
	return actor, nil
}
