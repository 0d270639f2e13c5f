package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/KRoses96/Neverita/internal/config"
)

var ErrInvalidToken = errors.New("invalid token")

const devUserID = "dev-user"

// Service issues and verifies the HS256 access tokens of the dev auth
// mode. There is no account store: the token's subject is the user ID
// every request is scoped by.
type Service struct {
	config *config.Config
}

func NewService(cfg *config.Config) *Service {
	return &Service{config: cfg}
}

// SignInDev issues a token for the given user, or the shared dev user
// when none is named.
func (s *Service) SignInDev(userID string) (*DevAuthResponse, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = devUserID
	}

	ttl := time.Duration(s.config.JWTTTLMinutes) * time.Minute
	accessToken, err := s.generateJWT(userID, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate dev JWT: %w", err)
	}

	return &DevAuthResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(ttl.Seconds()),
		UserID:      userID,
	}, nil
}

func (s *Service) generateJWT(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iss": s.config.JWTIssuer,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// VerifyJWT validates a token and returns its subject.
func (s *Service) VerifyJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || strings.TrimSpace(sub) == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
