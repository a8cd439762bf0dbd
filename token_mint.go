package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// SessionTokenOptions controls how MintSessionToken issues tokens.
type SessionTokenOptions struct {
	// TTL overrides the default token expiration.
	TTL time.Duration
	// Issuer overrides the default issuer if provided.
	Issuer string
	// Audience overrides the default audience if provided.
	Audience []string
	// IssuedAt overrides the issuance time. Zero uses time.Now().
	IssuedAt time.Time
}

const (
	defaultTokenTTL    = 24 * time.Hour
	defaultTokenIssuer = "eventify"
)

// MintSessionToken signs the given member claims with HS256. Primarily a
// development and test helper; production tokens come from the auth
// endpoint.
func MintSessionToken(secret []byte, claims *MemberClaims, opts SessionTokenOptions) (string, time.Time, error) {
	if len(secret) == 0 {
		return "", time.Time{}, goerrors.New("signing secret is required", goerrors.CategoryBadInput)
	}
	if claims == nil {
		return "", time.Time{}, goerrors.New("claims are required", goerrors.CategoryBadInput)
	}

	if err := claims.Validate(); err != nil {
		return "", time.Time{}, err
	}

	ttl := opts.TTL
	if ttl == 0 {
		ttl = defaultTokenTTL
	}
	if ttl < 0 {
		return "", time.Time{}, goerrors.New("token TTL must be non-negative", goerrors.CategoryBadInput)
	}

	issuer := opts.Issuer
	if issuer == "" {
		issuer = defaultTokenIssuer
	}

	issuedAt := opts.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}

	expiresAt := issuedAt.Add(ttl)

	claims.Issuer = issuer
	if claims.Subject == "" {
		claims.Subject = claims.ID
	}
	if len(opts.Audience) > 0 {
		aud := make(jwt.ClaimStrings, len(opts.Audience))
		copy(aud, opts.Audience)
		claims.Audience = aud
	}
	claims.IssuedAt = jwt.NewNumericDate(issuedAt)
	claims.ExpiresAt = jwt.NewNumericDate(expiresAt)

	ensureTokenID(&claims.RegisteredClaims)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, goerrors.Wrap(err, goerrors.CategoryInternal, "could not sign session token")
	}

	return token, expiresAt, nil
}

func ensureTokenID(rc *jwt.RegisteredClaims) {
	if rc.ID == "" {
		rc.ID = uuid.NewString()
	}
}
