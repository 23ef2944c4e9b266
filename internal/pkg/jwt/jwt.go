package jwt

import (
	"errors"
	"time"

	"foodbridge/internal/domain/actor"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims carries the caller identity issued by the auth collaborator.
// The core trusts these values; it never verifies credentials itself.
type Claims struct {
	UserID      uuid.UUID `json:"user_id"`
	OrgID       uuid.UUID `json:"org_id"`
	Role        string    `json:"role"`
	Affiliation string    `json:"affiliation"`
	jwt.RegisteredClaims
}

type Service struct {
	secretKey     []byte
	tokenDuration time.Duration
}

func NewService(secretKey string, tokenDuration time.Duration) *Service {
	return &Service{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
	}
}

func (s *Service) GenerateToken(a actor.Actor) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:      a.ID,
		OrgID:       a.OrgID,
		Role:        a.Role.String(),
		Affiliation: a.Affiliation.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenDuration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secretKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// ToActor converts validated claims back into a domain actor.
func (c *Claims) ToActor() (actor.Actor, error) {
	role, err := actor.NewRole(c.Role)
	if err != nil {
		return actor.Actor{}, err
	}
	affiliation, err := actor.NewTierAffiliation(c.Affiliation)
	if err != nil {
		return actor.Actor{}, err
	}
	return actor.New(c.UserID, c.OrgID, role, affiliation), nil
}
