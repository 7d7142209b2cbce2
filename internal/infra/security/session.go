package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"
)

// SessionIssuer implements port.SessionIssuer by signing HS256 JWTs. The
// resulting token is opaque to this service; downstream API gateways validate
// and consume it.
type SessionIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionIssuer constructs a JWT session issuer.
func NewSessionIssuer(secret, issuer string, ttl time.Duration) (*SessionIssuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &SessionIssuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock overrides the clock, primarily for tests.
func (s *SessionIssuer) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Issue signs a session token carrying the provided claims.
func (s *SessionIssuer) Issue(claims map[string]string) (string, error) {
	now := s.now().UTC()

	mapClaims := jwt.MapClaims{
		"iss": s.issuer,
		"iat": jwt.NewNumericDate(now),
		"nbf": jwt.NewNumericDate(now),
		"exp": jwt.NewNumericDate(now.Add(s.ttl)),
		"jti": uuid.NewString(),
	}
	for k, v := range claims {
		mapClaims[k] = v
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	return signed, nil
}

// Parse validates a session token's signature and registered claims and
// returns the string claims it carries.
func (s *SessionIssuer) Parse(signed string) (map[string]string, error) {
	token, err := jwt.Parse(signed, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return s.now().UTC() }),
	)
	if err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type %T", token.Claims)
	}

	claims := make(map[string]string, len(mapClaims))
	for k, v := range mapClaims {
		if str, ok := v.(string); ok {
			claims[k] = str
		}
	}

	return claims, nil
}
