package auth

import (
	"time"

	"golang.org/x/oauth2"
)

// expirySkew treats tokens as expired slightly early so requests do not race the deadline.
const expirySkew = 10 * time.Second

// TokenRecord is the token set returned by the provider's token endpoint.
type TokenRecord struct {
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	TokenType    string    `json:"token_type"`
	Expiry       time.Time `json:"expiry"`
}

func newTokenRecord(t *oauth2.Token) *TokenRecord {
	return &TokenRecord{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Expiry:       t.Expiry,
	}
}

// Token converts the record back into an [oauth2.Token].
func (t *TokenRecord) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Expiry:       t.Expiry,
	}
}

// Expired reports whether the access token is past its expiry at now.
// A zero expiry never expires.
func (t *TokenRecord) Expired(now time.Time) bool {
	if t.Expiry.IsZero() {
		return false
	}
	return !now.Add(expirySkew).Before(t.Expiry)
}

// Refreshable reports whether a refresh token is available.
func (t *TokenRecord) Refreshable() bool {
	return t.RefreshToken != ""
}
