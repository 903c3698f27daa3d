// Package fakes holds test doubles shared by package tests.
package fakes

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const signingKey = "westmarch-test-signing-key"

// AccessToken issues an HS256 access token with simplejwt style claims
// that expires in one hour.
func AccessToken(t testing.TB, userID int64, username string, staff bool) string {
	t.Helper()
	return SignedToken(t, jwt.MapClaims{
		"token_type": "access",
		"user_id":    userID,
		"username":   username,
		"is_staff":   staff,
		"exp":        time.Now().Add(time.Hour).Unix(),
	})
}

// ExpiredAccessToken issues an access token that expired an hour ago.
func ExpiredAccessToken(t testing.TB, userID int64, username string) string {
	t.Helper()
	return SignedToken(t, jwt.MapClaims{
		"token_type": "access",
		"user_id":    userID,
		"username":   username,
		"exp":        time.Now().Add(-time.Hour).Unix(),
	})
}

// RefreshToken issues an opaque-looking refresh credential.
func RefreshToken(t testing.TB, userID int64) string {
	t.Helper()
	return SignedToken(t, jwt.MapClaims{
		"token_type": "refresh",
		"user_id":    userID,
		"exp":        time.Now().Add(24 * time.Hour).Unix(),
	})
}

// SignedToken signs arbitrary claims.
func SignedToken(t testing.TB, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}
