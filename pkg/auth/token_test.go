package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rafaelquintero/bazario-backend/pkg/config"
	"github.com/rafaelquintero/bazario-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "bazario",
		ExpirationMinutes: 60,
	}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	sellerID := uuid.New()
	payload := AccessTokenPayload{
		UserID:   uuid.New(),
		Role:     enums.ActorRoleSeller,
		SellerID: &sellerID,
	}

	token, err := MintAccessToken(cfg, time.Now(), payload)
	if err != nil {
		t.Fatalf("MintAccessToken returned unexpected error: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("ParseAccessToken returned unexpected error: %v", err)
	}
	if claims.UserID != payload.UserID {
		t.Fatalf("expected user id %s, got %s", payload.UserID, claims.UserID)
	}
	if claims.Role != enums.ActorRoleSeller {
		t.Fatalf("expected seller role, got %s", claims.Role)
	}
	if claims.SellerID == nil || *claims.SellerID != sellerID {
		t.Fatalf("expected seller id %s, got %v", sellerID, claims.SellerID)
	}
	if claims.ID == "" {
		t.Fatal("expected a generated jti")
	}
}

func TestMintRequiresSellerScopeForSellerTokens(t *testing.T) {
	_, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.ActorRoleSeller,
	})
	if err == nil {
		t.Fatal("expected error for seller token without seller id")
	}
}

func TestMintRejectsUnknownRole(t *testing.T) {
	_, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   "superuser",
	})
	if err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.ActorRoleCustomer,
	})
	if err != nil {
		t.Fatalf("MintAccessToken returned unexpected error: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.ActorRoleCustomer,
	})
	if err != nil {
		t.Fatalf("MintAccessToken returned unexpected error: %v", err)
	}

	other := cfg
	other.Secret = "another-secret"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected signature mismatch to be rejected")
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.ActorRoleCustomer,
	})
	if err != nil {
		t.Fatalf("MintAccessToken returned unexpected error: %v", err)
	}

	other := cfg
	other.Issuer = "someone-else"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected issuer mismatch to be rejected")
	}
}
