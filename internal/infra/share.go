package infra

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrSharingDisabled is returned when no SHARE_SECRET is configured.
	ErrSharingDisabled = errors.New("share links are disabled")
	ErrInvalidShare    = errors.New("invalid share token")
	ErrShareExpired    = errors.New("share token expired")
)

const shareAudience = "challan-download"

// ShareClaims are embedded in every share link token.
type ShareClaims struct {
	ChallanNo string `json:"challan_no"`
	jwt.RegisteredClaims
}

// ShareSigner issues and verifies HS256 tokens granting read access to a
// single challan PDF.
type ShareSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewShareSigner(secret string, ttl time.Duration) *ShareSigner {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &ShareSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *ShareSigner) Enabled() bool { return s != nil && len(s.secret) > 0 }

// Sign returns a token for the challan and its expiry.
func (s *ShareSigner) Sign(id uuid.UUID, challanNo string) (string, time.Time, error) {
	if !s.Enabled() {
		return "", time.Time{}, ErrSharingDisabled
	}
	now := s.now()
	exp := now.Add(s.ttl)
	claims := ShareClaims{
		ChallanNo: challanNo,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			Audience:  jwt.ClaimStrings{shareAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign share token: %w", err)
	}
	return token, exp, nil
}

// Parse verifies the token and returns the challan id it grants.
func (s *ShareSigner) Parse(token string) (uuid.UUID, error) {
	if !s.Enabled() {
		return uuid.Nil, ErrSharingDisabled
	}
	claims := &ShareClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	},
		jwt.WithAudience(shareAudience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, ErrShareExpired
		}
		return uuid.Nil, ErrInvalidShare
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidShare
	}
	return id, nil
}
