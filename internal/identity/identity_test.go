package identity

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"
	"time"

	"github.com/acme/storefront/internal/config"
	"github.com/acme/storefront/internal/models"
	"github.com/acme/storefront/internal/services"
	"github.com/stretchr/testify/require"
)

const (
	testClientID     = "storefront"
	testClientSecret = "s3cret+/="
	testRedirectURI  = "http://shop.test/callback"
	testUsername     = "sam"
	testPassword     = "correct-horse"
)

var (
	keyOnce sync.Once
	testKey *rsa.PrivateKey
)

func signingKey(t testing.TB) *rsa.PrivateKey {
	t.Helper()
	keyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		testKey = key
	})
	return testKey
}

// MockUserAuthenticator is a mock implementation of UserAuthenticator for testing
type MockUserAuthenticator struct {
	AuthenticateFunc func(context.Context, string, string) (*models.User, error)
}

func (m *MockUserAuthenticator) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, username, password)
	}
	if username == testUsername && password == testPassword {
		return &models.User{ID: "0b6c7a52-4c1e-4a57-9d43-1c2f7f1e2a10", Username: testUsername, DisplayName: "Sam Shopper"}, nil
	}
	return nil, services.ErrInvalidCredentials
}

func testConfig(issuer string) *config.IdentityConfig {
	return &config.IdentityConfig{
		Port:         "9000",
		Issuer:       issuer,
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
		RedirectURIs: []string{testRedirectURI},
		TemplatesDir: "../../templates",
		CodeTTL:      time.Minute,
		TokenTTL:     time.Hour,
		LoginRate:    100,
		LoginBurst:   100,
	}
}

func newTestServer(t *testing.T, cfg *config.IdentityConfig, users UserAuthenticator) *Server {
	t.Helper()
	if users == nil {
		users = &MockUserAuthenticator{}
	}
	srv, err := NewServer(cfg, users, signingKey(t))
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	return srv
}
