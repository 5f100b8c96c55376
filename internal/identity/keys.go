package identity

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"github.com/go-jose/go-jose/v3"
)

const generatedKeyBits = 2048

// ErrUnsupportedKey is returned when a PEM file does not hold an RSA private key
var ErrUnsupportedKey = errors.New("signing key must be an RSA private key")

// LoadSigningKey reads a PEM encoded RSA private key from path. An empty path
// generates an ephemeral key, so tokens do not survive a restart.
func LoadSigningKey(path string) (*rsa.PrivateKey, error) {
	if path == "" {
		key, err := rsa.GenerateKey(rand.Reader, generatedKeyBits)
		if err != nil {
			return nil, fmt.Errorf("failed to generate signing key: %w", err)
		}
		return key, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read signing key: %w", err)
	}
	return ParseSigningKey(data)
}

// ParseSigningKey decodes a PKCS#1 or PKCS#8 PEM block
func ParseSigningKey(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in signing key")
	}

	switch block.Type {
	case "RSA PRIVATE KEY":
		key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PKCS#1 key: %w", err)
		}
		return key, nil
	case "PRIVATE KEY":
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PKCS#8 key: %w", err)
		}
		key, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, ErrUnsupportedKey
		}
		return key, nil
	default:
		return nil, fmt.Errorf("%w: PEM type %q", ErrUnsupportedKey, block.Type)
	}
}

// keyID derives a stable kid from the RFC 7638 thumbprint of the public key
func keyID(pub *rsa.PublicKey) (string, error) {
	thumb, err := (&jose.JSONWebKey{Key: pub}).Thumbprint(crypto.SHA256)
	if err != nil {
		return "", fmt.Errorf("failed to compute key thumbprint: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(thumb[:12]), nil
}
