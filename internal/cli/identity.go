package cli

import (
	"net"
	"net/http"

	"github.com/acme/storefront/internal/config"
	"github.com/acme/storefront/internal/identity"
)

// IdentityServer is the part of identity.Server the CLI drives
type IdentityServer interface {
	Handler() http.Handler
	Close()
}

var _ IdentityServer = (*identity.Server)(nil)

// RunIdentity starts the identity provider and blocks until shutdown
func RunIdentity(cfg *config.IdentityConfig, srv IdentityServer) error {
	listener, server, err := StartIdentity(cfg, srv)
	if err != nil {
		return err
	}
	defer listener.Close()
	defer srv.Close()

	return WaitForShutdown(server, nil)
}

// StartIdentity starts the identity provider in the background
func StartIdentity(cfg *config.IdentityConfig, srv IdentityServer) (net.Listener, *http.Server, error) {
	return Listen(cfg.Port, srv.Handler())
}
