package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer mints and validates signed access tokens and generates opaque
// refresh tokens. Key material is fixed at construction; nothing rereads it.
type TokenIssuer struct {
	secret    []byte
	issuer    string
	audience  string
	accessTTL time.Duration
}

type AccessClaims struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

func NewTokenIssuer(secret []byte, issuer, audience string, accessTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:    secret,
		issuer:    issuer,
		audience:  audience,
		accessTTL: accessTTL,
	}
}

func (t *TokenIssuer) AccessTTL() time.Duration {
	return t.accessTTL
}

func (t *TokenIssuer) IssueAccessToken(userID int64, username, email string, roles []string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(t.accessTTL)
	claims := AccessClaims{
		Username: username,
		Email:    email,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    t.issuer,
			Audience:  jwt.ClaimStrings{t.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateAccessToken verifies signature, issuer, audience and expiry with
// zero clock-skew tolerance. Every failure collapses to ErrToken so callers
// cannot tell a bad signature from an expired token.
func (t *TokenIssuer) ValidateAccessToken(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, t.keyFunc,
		jwt.WithIssuer(t.issuer),
		jwt.WithAudience(t.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrToken
	}
	return claims, nil
}

// ParseExpiredAccessToken checks signature, issuer and audience but not
// expiry. The refresh flow calls it because the access token is expected to
// have expired by the time it is exchanged.
func (t *TokenIssuer) ParseExpiredAccessToken(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, t.keyFunc,
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, ErrToken
	}
	if claims.Issuer != t.issuer || !containsAudience(claims.Audience, t.audience) {
		return nil, ErrToken
	}
	return claims, nil
}

func (t *TokenIssuer) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, ErrToken
	}
	return t.secret, nil
}

func containsAudience(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}

// IssueRefreshToken returns 32 bytes of CSPRNG output, base64url encoded.
// The value carries no claims; it only means anything as a store lookup key.
func (t *TokenIssuer) IssueRefreshToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// HashRefreshToken is applied before a refresh token touches the database,
// so a leaked users table cannot be replayed into live sessions.
func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
