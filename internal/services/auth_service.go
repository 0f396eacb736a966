package services

import (
	"crypto/subtle"
	"fmt"
	"log"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// AuthService verifies the single administrative credential and issues API
// tokens for it. The credential is resolved once at process start from
// configuration; there is no runtime mutation and no user store.
type AuthService struct {
	username     string
	passwordHash []byte
	jwtSecret    []byte
	tokenDurat   time.Duration // Duration for which JWT is valid
}

// NewAuthService hashes the configured admin password and builds the service.
func NewAuthService(username, password, jwtSecret string) (*AuthService, error) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}
	return &AuthService{
		username:     username,
		passwordHash: passwordHash,
		jwtSecret:    []byte(jwtSecret),
		tokenDurat:   24 * time.Hour, // Token valid for 24 hours
	}, nil
}

// Authenticate checks a username/password pair against the admin credential.
// The same error is returned for a wrong username and a wrong password.
func (s *AuthService) Authenticate(username, password string) error {
	if subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) != 1 {
		// Still burn a bcrypt comparison so both failure paths cost the same.
		_ = bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
		return fmt.Errorf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return fmt.Errorf("invalid credentials")
	}
	return nil
}

// IssueToken generates a signed JWT for an authenticated username.
func (s *AuthService) IssueToken(username string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"exp":      time.Now().Add(s.tokenDurat).Unix(), // Token expiration time
		"iat":      time.Now().Unix(),                   // Issued at time
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}
