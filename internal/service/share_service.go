package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fretnav/api/internal/model"
)

const shareIssuer = "fretnav-api"

var ErrInvalidShareToken = errors.New("invalid share token")

// ViewClaims carries a fretboard view inside a signed share token.
type ViewClaims struct {
	View model.FretboardRequest `json:"view"`
	jwt.RegisteredClaims
}

// ShareService signs fretboard views into links and reads them back
type ShareService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewShareService(secret string, ttl time.Duration) *ShareService {
	return &ShareService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Create signs req. The view is normalized first so equal views yield equal
// payloads.
func (s *ShareService) Create(req *model.FretboardRequest) (*model.ShareResponse, error) {
	view := *req
	view.Normalize()

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := ViewClaims{
		View: view,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    shareIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign share token: %w", err)
	}

	return &model.ShareResponse{
		Token:     signed,
		Path:      "/api/share/" + signed,
		ExpiresAt: expiresAt.UTC(),
	}, nil
}

// Resolve verifies a share token and returns the view it carries.
func (s *ShareService) Resolve(tokenString string) (*model.FretboardRequest, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ViewClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithIssuer(shareIssuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShareToken, err)
	}

	claims, ok := token.Claims.(*ViewClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidShareToken
	}

	return &claims.View, nil
}
