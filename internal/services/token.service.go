package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/transitops/ticket-backoffice/internal/model"
)

var (
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrWrongTokenUse = errors.New("token used for the wrong purpose")
)

const (
	tokenUseAccess  = "access"
	tokenUseRefresh = "refresh"
)

// SessionClaims is what both access and refresh tokens carry.
type SessionClaims struct {
	UserID    int64  `json:"uid"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	CompanyID *int64 `json:"company_id,omitempty"`
	DeviceUID string `json:"device_uid,omitempty"`
	TokenUse  string `json:"use"`
	jwt.RegisteredClaims
}

// TokenPair is what a successful admission hands back to the transport
// layer, which sets both as HTTP-only cookies.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

type TokenService struct {
	secret        []byte
	accessMaxAge  time.Duration
	refreshMaxAge time.Duration
}

func NewTokenService(secret string, accessMaxAge, refreshMaxAge time.Duration) *TokenService {
	return &TokenService{
		secret:        []byte(secret),
		accessMaxAge:  accessMaxAge,
		refreshMaxAge: refreshMaxAge,
	}
}

func (s *TokenService) IssuePair(user *model.User, deviceUID string) (*TokenPair, error) {
	now := time.Now()

	access, accessExp, err := s.sign(user, deviceUID, tokenUseAccess, now, s.accessMaxAge)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.sign(user, deviceUID, tokenUseRefresh, now, s.refreshMaxAge)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *TokenService) sign(user *model.User, deviceUID, use string, now time.Time, maxAge time.Duration) (string, time.Time, error) {
	expiresAt := now.Add(maxAge)

	claims := SessionClaims{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      string(user.Role),
		CompanyID: user.CompanyID,
		DeviceUID: deviceUID,
		TokenUse:  use,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, expiresAt, nil
}

func (s *TokenService) ParseAccess(token string) (*SessionClaims, error) {
	return s.parse(token, tokenUseAccess)
}

func (s *TokenService) ParseRefresh(token string) (*SessionClaims, error) {
	return s.parse(token, tokenUseRefresh)
}

func (s *TokenService) parse(token, expectedUse string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	if claims.TokenUse != expectedUse {
		return nil, ErrWrongTokenUse
	}

	return claims, nil
}
