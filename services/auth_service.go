package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService issues and validates tokens for the operator surface. There
// are no end users here; the HTTP layer exists only for the scheduler and
// the pool admin.
type AuthService struct {
	jwtSecret     []byte
	adminUser     string
	adminPassHash string
	tokenExpiry   time.Duration
}

// AdminClaims represents the claims in an operator token
type AdminClaims struct {
	Subject string `json:"sub_name"`
	jwt.RegisteredClaims
}

// NewAuthService creates an auth service. adminPassHash is a bcrypt hash of
// the admin password, supplied through configuration.
func NewAuthService(jwtSecret, adminUser, adminPassHash string, tokenExpiry time.Duration) *AuthService {
	return &AuthService{
		jwtSecret:     []byte(jwtSecret),
		adminUser:     adminUser,
		adminPassHash: adminPassHash,
		tokenExpiry:   tokenExpiry,
	}
}

// Login verifies admin credentials and returns a signed token
func (a *AuthService) Login(user, password string) (string, error) {
	if user != a.adminUser || a.adminPassHash == "" {
		return "", errors.New("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.adminPassHash), []byte(password)); err != nil {
		return "", errors.New("invalid credentials")
	}
	return a.generateToken(user)
}

func (a *AuthService) generateToken(user string) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		Subject: user,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "loserpool-go",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

// ValidateToken validates a token and returns its claims
func (a *AuthService) ValidateToken(tokenString string) (*AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*AdminClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
