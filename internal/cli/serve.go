package cli

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/acme/storefront/internal/auth"
	"github.com/acme/storefront/internal/config"
	"github.com/acme/storefront/internal/telemetry"
)

// ServerDependencies holds all dependencies needed for the storefront server
type ServerDependencies struct {
	ServerConfig    config.ServerConfig
	Sessions        auth.SessionStore
	CatalogHandler  http.Handler
	ProductHandler  http.Handler
	LoginHandler    http.Handler
	CallbackHandler http.Handler
	LogoutHandler   http.Handler
}

// StorefrontRoutes builds the storefront's routed handler
func StorefrontRoutes(deps ServerDependencies) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /{$}", telemetry.Middleware("catalog", deps.CatalogHandler))
	mux.Handle("GET /product/{id}", telemetry.Middleware("product", deps.ProductHandler))
	mux.Handle("GET /login", telemetry.Middleware("login", deps.LoginHandler))
	mux.Handle("GET /callback", telemetry.Middleware("callback", deps.CallbackHandler))
	mux.Handle("POST /logout", telemetry.Middleware("logout", deps.LogoutHandler))
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(deps.ServerConfig.StaticDir))))
	mux.Handle("GET /metrics", telemetry.Handler())

	return auth.Middleware(deps.Sessions)(mux)
}

// RunServe starts the storefront web server
func RunServe(deps ServerDependencies) error {
	listener, server, err := StartServer(deps)
	if err != nil {
		return err
	}
	defer listener.Close()

	return WaitForShutdown(server, nil)
}

// StartServer creates and starts the storefront server, returning the listener and server
func StartServer(deps ServerDependencies) (net.Listener, *http.Server, error) {
	return Listen(deps.ServerConfig.Port, StorefrontRoutes(deps))
}

// Listen serves handler on port in the background
func Listen(port string, handler http.Handler) (net.Listener, *http.Server, error) {
	// Create listener
	addr := fmt.Sprintf(":%s", port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create listener: %w", err)
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server listening on %s", listener.Addr().String())
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	return listener, server, nil
}

// WaitForShutdown waits for a shutdown signal and gracefully shuts down the server
// If shutdown channel is nil, a new channel will be created and registered with signal.Notify
func WaitForShutdown(server *http.Server, shutdown chan os.Signal) error {
	return WaitForShutdownWithTimeout(server, shutdown, 30*time.Second)
}

// WaitForShutdownWithTimeout allows specifying a custom shutdown timeout (primarily for testing)
func WaitForShutdownWithTimeout(server *http.Server, shutdown chan os.Signal, shutdownTimeout time.Duration) error {
	if shutdown == nil {
		shutdown = make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
		defer signal.Stop(shutdown)
	}

	sig := <-shutdown
	log.Printf("Received signal: %v, shutting down server...", sig)

	// Give outstanding requests time to complete
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		// http.Server.Close does not surface listener close errors, so this
		// branch only reports failures from the server itself.
		if err := server.Close(); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	log.Println("Server stopped")
	return nil
}
