package auth

import (
	"errors"
	"time"

	"bloodalert/config"
	"bloodalert/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Session is the authenticated caller, resolved once per request or connection.
type Session struct {
	UserID string
	Email  string
	Role   domain.Role
	Token  string
}

func (s *Session) IsAdmin() bool { return s != nil && s.Role.IsAdmin() }

func GenerateAccessToken(cfg *config.JWTConfig, userID, email string, role domain.Role) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.AccessExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    cfg.Issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.AccessSecret))
}

var ErrInvalidToken = errors.New("invalid token")

func ParseAccessToken(cfg *config.JWTConfig, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.AccessSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SessionFromToken parses tokenString and normalises the embedded role.
func SessionFromToken(cfg *config.JWTConfig, tokenString string) (*Session, error) {
	claims, err := ParseAccessToken(cfg, tokenString)
	if err != nil {
		return nil, err
	}
	return &Session{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   domain.ResolveRole(string(claims.Role), ""),
		Token:  tokenString,
	}, nil
}
