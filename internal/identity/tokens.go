package identity

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/acme/storefront/internal/models"
	"github.com/go-jose/go-jose/v3"
	"github.com/golang-jwt/jwt/v5"
)

// IDTokenClaims is the payload of an issued ID token
type IDTokenClaims struct {
	jwt.RegisteredClaims
	Nonce             string `json:"nonce,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
	Name              string `json:"name,omitempty"`
}

// AccessTokenClaims is the payload of an issued access token
type AccessTokenClaims struct {
	jwt.RegisteredClaims
	Scope    string `json:"scope,omitempty"`
	ClientID string `json:"client_id"`
}

// Signer issues RS256 tokens and publishes the matching key set
type Signer struct {
	key    *rsa.PrivateKey
	keyID  string
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner creates a signer for issuer whose tokens live for ttl
func NewSigner(key *rsa.PrivateKey, issuer string, ttl time.Duration) (*Signer, error) {
	kid, err := keyID(&key.PublicKey)
	if err != nil {
		return nil, err
	}

	return &Signer{
		key:    key,
		keyID:  kid,
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// TTL is the lifetime of issued tokens
func (s *Signer) TTL() time.Duration {
	return s.ttl
}

func (s *Signer) registered(subject, audience string) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   subject,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
}

// IDToken signs an ID token for user addressed to the client
func (s *Signer) IDToken(user *models.User, clientID, nonce string) (string, error) {
	return s.sign(IDTokenClaims{
		RegisteredClaims:  s.registered(user.ID, clientID),
		Nonce:             nonce,
		PreferredUsername: user.Username,
		Name:              user.DisplayName,
	})
}

// AccessToken signs a bearer token for user
func (s *Signer) AccessToken(user *models.User, clientID, scope string) (string, error) {
	claims := AccessTokenClaims{
		RegisteredClaims: s.registered(user.ID, s.issuer),
		Scope:            scope,
		ClientID:         clientID,
	}
	claims.ID = newCode()
	return s.sign(claims)
}

func (s *Signer) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = s.keyID

	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token issued by this signer and decodes it into claims
func (s *Signer) Parse(raw string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return &s.key.PublicKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	return err
}

// JWKS returns the public key set clients use to verify tokens
func (s *Signer) JWKS() jose.JSONWebKeySet {
	return jose.JSONWebKeySet{
		Keys: []jose.JSONWebKey{{
			Key:       &s.key.PublicKey,
			KeyID:     s.keyID,
			Algorithm: string(jose.RS256),
			Use:       "sig",
		}},
	}
}
