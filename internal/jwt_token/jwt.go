package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "keydesk/pkg/domain-errors"
)

// Claims are the JWT claims carried by intake tokens. Subject identifies the
// form frontend the token was minted for.
type Claims struct {
	jwt.RegisteredClaims
}

// IntakeTokenService mints and validates the bearer tokens the form frontend
// presents on the intake endpoint.
type IntakeTokenService struct {
	signingKey []byte
	issuer     string
}

func NewIntakeTokenService(signingKey string, issuer string) *IntakeTokenService {
	return &IntakeTokenService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
	}
}

// Generate mints a token for an intake source. Used by operators to provision
// the form frontend and by tests.
func (s *IntakeTokenService) Generate(subject string, expiresIn time.Duration) (string, error) {
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// Verify validates a token's signature, expiry and issuer.
func (s *IntakeTokenService) Verify(tokenString string) error {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	if !parsed.Valid {
		return dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	return nil
}
