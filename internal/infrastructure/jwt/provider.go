package jwtinfra

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/voyago-api/internal/config"
	"github.com/voyago-api/internal/domain"
)

// purposeReset marks tokens that are only valid for completing a password
// reset. Session tokens carry no purpose, so the two can never be swapped.
const purposeReset = "password_reset"

// Claims holds the JWT payload fields.
type Claims struct {
	UserID  string `json:"user_id"`
	Role    string `json:"role,omitempty"`
	Purpose string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

// Provider signs and verifies RS256 JWTs.
type Provider struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	tokenTTL   time.Duration
	resetTTL   time.Duration
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	privBytes, err := os.ReadFile(cfg.JWTPrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privBytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	pubBytes, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	return &Provider{
		privateKey: privKey,
		publicKey:  pubKey,
		tokenTTL:   cfg.TokenTTL,
		resetTTL:   cfg.ResetTokenTTL,
	}, nil
}

// Sign issues a session token for the user.
func (p *Provider) Sign(userID, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(p.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(p.privateKey)
}

// Verify parses and validates a session token. Tokens carrying a purpose
// claim are rejected here; they are not session tokens.
func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	claims, err := p.parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != "" {
		return nil, errors.New("not a session token")
	}
	return claims, nil
}

// SignPasswordReset issues a short-lived single-purpose reset token.
func (p *Provider) SignPasswordReset(userID string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:  userID,
		Purpose: purposeReset,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(p.resetTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(p.privateKey)
}

// VerifyPasswordReset validates a reset token and returns the user it was
// issued for. Expired tokens map to domain.ErrExpired so callers can
// distinguish them from malformed or mispurposed ones.
func (p *Provider) VerifyPasswordReset(tokenStr string) (string, error) {
	claims, err := p.parse(tokenStr)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("reset token expired: %w", domain.ErrExpired)
		}
		return "", err
	}
	if claims.Purpose != purposeReset {
		return "", errors.New("not a password reset token")
	}
	return claims.UserID, nil
}

func (p *Provider) parse(tokenStr string) (*Claims, error) {
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
