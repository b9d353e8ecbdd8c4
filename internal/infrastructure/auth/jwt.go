package auth

import (
	"errors"
	"time"

	"github.com/erp/retail/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTenantClaim is the claim read when the config names none
const DefaultTenantClaim = "tenant_id"

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingTenantID  = errors.New("missing tenant id in claims")
	ErrInvalidTenantID  = errors.New("tenant id in claims is not a UUID")
)

// Claims are the parts of a bearer token the service relies on
type Claims struct {
	Subject  string
	TenantID uuid.UUID
	IssuedAt time.Time
}

// TokenVerifier checks HS256 bearer tokens and extracts the tenant they carry.
// Tokens are issued elsewhere; Issue exists for tooling and tests.
type TokenVerifier struct {
	secret      []byte
	issuer      string
	tenantClaim string
}

// NewTokenVerifier creates a verifier from the JWT config
func NewTokenVerifier(cfg config.JWTConfig) *TokenVerifier {
	claim := cfg.TenantClaim
	if claim == "" {
		claim = DefaultTenantClaim
	}
	return &TokenVerifier{
		secret:      []byte(cfg.Secret),
		issuer:      cfg.Issuer,
		tenantClaim: claim,
	}
}

// Verify validates the signature and time claims of tokenString and returns
// its claims. The tenant claim must hold a non-nil UUID.
func (v *TokenVerifier) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.Parse(tokenString, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	raw, _ := mapClaims[v.tenantClaim].(string)
	if raw == "" {
		return nil, ErrMissingTenantID
	}
	tenantID, err := uuid.Parse(raw)
	if err != nil || tenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}

	claims := &Claims{TenantID: tenantID}
	claims.Subject, _ = mapClaims.GetSubject()
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	return claims, nil
}

// Issue signs a token for tenantID that expires after ttl
func (v *TokenVerifier) Issue(tenantID uuid.UUID, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		v.tenantClaim: tenantID.String(),
		"sub":         subject,
		"iat":         jwt.NewNumericDate(now),
		"exp":         jwt.NewNumericDate(now.Add(ttl)),
	}
	if v.issuer != "" {
		claims["iss"] = v.issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
