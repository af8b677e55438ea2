package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rafaelquintero/bazario-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	Role     enums.ActorRole
	SellerID *uuid.UUID
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to clients. SellerID is
// populated only for seller tokens and scopes their order/wallet access.
type AccessTokenClaims struct {
	UserID   uuid.UUID       `json:"user_id"`
	Role     enums.ActorRole `json:"role"`
	SellerID *uuid.UUID      `json:"seller_id,omitempty"`
	jwt.RegisteredClaims
}
