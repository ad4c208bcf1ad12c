package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenIssuer значение claim iss для выдаваемых токенов
const tokenIssuer = "deltasync"

// ClientClaims представляет JWT claims клиента синхронизации
type ClientClaims struct {
	ClientID string `json:"client_id"`
	// Admin разрешает административные операции (импорт)
	Admin bool `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// JWTConfig содержит конфигурацию для JWT
type JWTConfig struct {
	Secret   []byte
	TokenTTL time.Duration
}

// Enabled reports whether bearer authentication is configured
func (c JWTConfig) Enabled() bool {
	return len(c.Secret) > 0
}

// GenerateClientToken создает новый JWT для клиента
// Возвращает токен и время его истечения
func GenerateClientToken(cfg JWTConfig, clientID string) (string, time.Time, error) {
	return generateToken(cfg, clientID, false)
}

// GenerateAdminToken создает JWT с правом на административные операции
func GenerateAdminToken(cfg JWTConfig, clientID string) (string, time.Time, error) {
	return generateToken(cfg, clientID, true)
}

func generateToken(cfg JWTConfig, clientID string, admin bool) (string, time.Time, error) {
	if !cfg.Enabled() {
		return "", time.Time{}, errors.New("jwt secret is not configured")
	}

	now := time.Now()
	expiresAt := now.Add(cfg.TokenTTL)

	claims := ClientClaims{
		ClientID: clientID,
		Admin:    admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(cfg.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateClientToken валидирует и парсит JWT клиента
func ValidateClientToken(cfg JWTConfig, tokenString string) (*ClientClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ClientClaims{}, func(token *jwt.Token) (any, error) {
		// Проверяем что используется правильный алгоритм подписи
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return cfg.Secret, nil
	}, jwt.WithIssuer(tokenIssuer))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*ClientClaims)
	if !ok || !token.Valid || claims.ClientID == "" {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
