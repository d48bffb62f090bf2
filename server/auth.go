package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"k8s.io/klog/v2"
)

const jwtExpiry = 30 * 24 * time.Hour

// ErrInvalidToken is returned for tokens that fail validation
var ErrInvalidToken = errors.New("invalid token")

// Auth issues and validates guest tokens
type Auth struct {
	db        *DB
	jwtSecret []byte
}

// NewAuth creates a new Auth handler. A non-empty secret (hex or plain)
// overrides the one stored in the database.
func NewAuth(db *DB, secret string) *Auth {
	var key []byte
	if secret != "" {
		if b, err := hex.DecodeString(secret); err == nil && len(b) >= 16 {
			key = b
		} else {
			key = []byte(secret)
		}
	} else {
		key = loadOrCreateSecret(db)
	}
	return &Auth{db: db, jwtSecret: key}
}

// loadOrCreateSecret loads the JWT secret from the database, or generates
// and persists a new one if none exists.
func loadOrCreateSecret(db *DB) []byte {
	if db != nil {
		if h := db.GetSetting("jwt_secret"); h != "" {
			if b, err := hex.DecodeString(h); err == nil && len(b) == 32 {
				return b
			}
		}
	}
	// Generate a new secret
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic("failed to generate JWT secret: " + err.Error())
	}
	if db != nil {
		if err := db.SetSetting("jwt_secret", hex.EncodeToString(secret)); err != nil {
			klog.Warningf("could not persist JWT secret: %v", err)
		}
	}
	return secret
}

// RegisterGuest stores a new guest and returns its ID and token
func (a *Auth) RegisterGuest(name string) (int64, string, error) {
	if a.db == nil {
		return 0, "", errors.New("no database")
	}
	id, err := a.db.CreateGuest(name)
	if err != nil {
		return 0, "", err
	}
	token, err := a.generateToken(id, name)
	if err != nil {
		return 0, "", fmt.Errorf("sign token: %w", err)
	}
	return id, token, nil
}

// ValidateToken validates a JWT and returns (playerID, name, error)
func (a *Auth) ValidateToken(tokenStr string) (int64, string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return 0, "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, "", ErrInvalidToken
	}

	pidFloat, ok := claims["pid"].(float64)
	if !ok {
		return 0, "", fmt.Errorf("%w: missing pid", ErrInvalidToken)
	}
	name, ok := claims["name"].(string)
	if !ok {
		return 0, "", fmt.Errorf("%w: missing name", ErrInvalidToken)
	}

	return int64(pidFloat), name, nil
}

func (a *Auth) generateToken(playerID int64, name string) (string, error) {
	claims := jwt.MapClaims{
		"pid":  playerID,
		"name": name,
		"exp":  time.Now().Add(jwtExpiry).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

// GenerateGuestName creates a guest name like "Guest_a3f2c1"
func GenerateGuestName() string {
	b := make([]byte, 3)
	rand.Read(b)
	return "Guest_" + hex.EncodeToString(b)
}
