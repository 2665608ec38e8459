package jwtinfra

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"

	"github.com/alerta-api/internal/config"
)

// Claims holds the JWT payload fields. Tokens are issued by the identity
// service; this API only verifies them.
type Claims struct {
	UserID               string   `json:"user_id"`
	Role                 string   `json:"role"`
	CustomerID           string   `json:"customer_id"`
	MonitoredCustomerIDs []string `json:"monitored_customer_ids,omitempty"`
	jwt.RegisteredClaims
}

// Provider verifies RS256 JWTs against the issuer's public key.
type Provider struct {
	publicKey *rsa.PublicKey
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	pubBytes, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return &Provider{publicKey: pubKey}, nil
}

func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.publicKey, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
