package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/scholarly-app/scholarly-backend/pkg/config"
	"github.com/scholarly-app/scholarly-backend/pkg/enums"
)

var testJWT = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "scholarly-test",
	ExpirationMinutes: 15,
}

func TestMintAndParseRoundTrip(t *testing.T) {
	payload := AccessTokenPayload{
		AccountID:       uuid.New(),
		ProfileID:       uuid.New(),
		Role:            enums.RoleAdmin,
		ProfileComplete: true,
		JTI:             "jti-1",
	}

	signed, err := MintAccessToken(testJWT, time.Now(), payload)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := ParseAccessToken(testJWT, signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.ProfileID != payload.ProfileID {
		t.Errorf("profile id mismatch: %s != %s", claims.ProfileID, payload.ProfileID)
	}
	if claims.Role != enums.RoleAdmin {
		t.Errorf("role mismatch: %s", claims.Role)
	}
	if !claims.ProfileComplete {
		t.Error("completion flag lost")
	}
	if claims.ID != "jti-1" {
		t.Errorf("jti mismatch: %s", claims.ID)
	}
}

func TestMintRejectsInvalidRole(t *testing.T) {
	_, err := MintAccessToken(testJWT, time.Now(), AccessTokenPayload{Role: enums.Role("root")})
	if err == nil {
		t.Fatal("expected error for invalid role")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	signed, err := MintAccessToken(testJWT, time.Now(), AccessTokenPayload{Role: enums.RoleUser})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := testJWT
	other.Secret = "different"
	if _, err := ParseAccessToken(other, signed); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestParseAllowExpired(t *testing.T) {
	signed, err := MintAccessToken(testJWT, time.Now().Add(-2*time.Hour), AccessTokenPayload{Role: enums.RoleUser, JTI: "stale"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := ParseAccessToken(testJWT, signed); err == nil {
		t.Fatal("expected expiry error on strict parse")
	}

	claims, err := ParseAccessTokenAllowExpired(testJWT, signed)
	if err != nil {
		t.Fatalf("lenient parse: %v", err)
	}
	if claims.ID != "stale" {
		t.Errorf("jti mismatch: %s", claims.ID)
	}
}
