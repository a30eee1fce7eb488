package utils

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	ScopeStaff      = "staff"
	ScopeTableOrder = "table_order"
	ScopeOrderTrack = "order_track"

	tokenIssuer = "RestoBar"
)

var (
	JWTSecret = []byte("RestoBarDevSecret")

	ErrInvalidToken = errors.New("invalid or expired token")
)

func SetJWTSecret(secret string) {
	if secret != "" {
		JWTSecret = []byte(secret)
	}
}

// CustomClaims authenticates staff (ADMIN, WAITER, KITCHEN) on HTTP and websocket.
type CustomClaims struct {
	UserID   uint   `json:"user_id"`
	Role     string `json:"role"`
	BranchID *uint  `json:"branch_id,omitempty"`
	Scope    string `json:"scope"`
	jwt.RegisteredClaims
}

// TableClaims grants order creation limited to one table and optionally one session.
type TableClaims struct {
	TableID   uint   `json:"table_id"`
	BranchID  uint   `json:"branch_id"`
	SessionID *uint  `json:"session_id,omitempty"`
	Scope     string `json:"scope"`
	jwt.RegisteredClaims
}

// TrackingClaims grants read-only access to one order's status.
type TrackingClaims struct {
	OrderID    uint   `json:"order_id"`
	PublicCode string `json:"public_code"`
	Scope      string `json:"scope"`
	jwt.RegisteredClaims
}

func registered(ttl time.Duration) (jwt.RegisteredClaims, time.Time) {
	now := time.Now()
	exp := now.Add(ttl)
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    tokenIssuer,
	}, exp
}

func sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(JWTSecret)
}

func parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return JWTSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer))
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

func GenerateToken(userID uint, role string, branchID *uint, ttl time.Duration) (string, error) {
	rc, _ := registered(ttl)
	return sign(&CustomClaims{
		UserID:           userID,
		Role:             role,
		BranchID:         branchID,
		Scope:            ScopeStaff,
		RegisteredClaims: rc,
	})
}

func ParseToken(tokenString string) (*CustomClaims, error) {
	if IsTokenBlacklisted(tokenString) {
		return nil, ErrInvalidToken
	}
	claims := &CustomClaims{}
	if err := parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Scope != ScopeStaff || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func GenerateTableToken(tableID, branchID uint, sessionID *uint, ttl time.Duration) (string, time.Time, error) {
	rc, exp := registered(ttl)
	token, err := sign(&TableClaims{
		TableID:          tableID,
		BranchID:         branchID,
		SessionID:        sessionID,
		Scope:            ScopeTableOrder,
		RegisteredClaims: rc,
	})
	return token, exp, err
}

func ParseTableToken(tokenString string) (*TableClaims, error) {
	claims := &TableClaims{}
	if err := parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Scope != ScopeTableOrder || claims.TableID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func GenerateTrackingToken(orderID uint, publicCode string, ttl time.Duration) (string, error) {
	rc, _ := registered(ttl)
	return sign(&TrackingClaims{
		OrderID:          orderID,
		PublicCode:       publicCode,
		Scope:            ScopeOrderTrack,
		RegisteredClaims: rc,
	})
}

func ParseTrackingToken(tokenString string) (*TrackingClaims, error) {
	claims := &TrackingClaims{}
	if err := parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Scope != ScopeOrderTrack {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

var (
	blacklistedTokens = make(map[string]time.Time)
	blacklistMutex    sync.RWMutex
)

// BlacklistToken rejects the token until it would have expired anyway.
func BlacklistToken(token string, until time.Time) {
	blacklistMutex.Lock()
	defer blacklistMutex.Unlock()
	blacklistedTokens[token] = until

	now := time.Now()
	for t, expiry := range blacklistedTokens {
		if now.After(expiry) {
			delete(blacklistedTokens, t)
		}
	}
}

func IsTokenBlacklisted(token string) bool {
	blacklistMutex.RLock()
	defer blacklistMutex.RUnlock()
	expiry, exists := blacklistedTokens[token]
	return exists && time.Now().Before(expiry)
}
