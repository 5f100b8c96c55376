package cli

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/acme/storefront/internal/auth"
	"github.com/acme/storefront/internal/config"
)

// mockHandler answers every request with response
func mockHandler(response string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(response))
	})
}

// createTestDeps wires mock page handlers behind an in-memory session store
func createTestDeps(port string) ServerDependencies {
	return ServerDependencies{
		ServerConfig:    config.ServerConfig{Port: port, StaticDir: "../../static"},
		Sessions:        auth.NewMemorySessionStore(time.Hour),
		CatalogHandler:  mockHandler("catalog"),
		ProductHandler:  mockHandler("product"),
		LoginHandler:    mockHandler("login"),
		CallbackHandler: mockHandler("callback"),
		LogoutHandler:   mockHandler("logout"),
	}
}

// baseURL returns the loopback URL for listener once it accepts requests
func baseURL(t *testing.T, listener net.Listener) string {
	t.Helper()
	url := fmt.Sprintf("http://localhost:%d", listener.Addr().(*net.TCPAddr).Port)

	deadline := time.Now().Add(2 * time.Second)
	for {
		conn, err := net.Dial("tcp", listener.Addr().String())
		if err == nil {
			conn.Close()
			return url
		}
		if time.Now().After(deadline) {
			t.Fatalf("server at %s never accepted connections: %v", url, err)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func send(t *testing.T, req *http.Request) (string, int) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", req.Method, req.URL, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return string(body), resp.StatusCode
}

func TestListen_Errors(t *testing.T) {
	occupied, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("Failed to occupy a port: %v", err)
	}
	defer occupied.Close()

	tests := []struct {
		name string
		port string
	}{
		{name: "port out of range", port: "99999"},
		{name: "port already in use", port: fmt.Sprint(occupied.Addr().(*net.TCPAddr).Port)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listener, server, err := Listen(tt.port, mockHandler("unused"))

			if err == nil {
				listener.Close()
				server.Close()
				t.Fatal("Expected listen error, got nil")
			}
			if listener != nil || server != nil {
				t.Error("Expected no listener or server on failure")
			}
		})
	}
}

func TestStartServer_ServesStorefrontOverHTTP(t *testing.T) {
	// GIVEN
	deps := createTestDeps("0")
	deps.CatalogHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := auth.UserFromContext(r.Context()); user != nil {
			fmt.Fprintf(w, "catalog for %s", user.Username)
			return
		}
		w.Write([]byte("catalog"))
	})
	session, err := deps.Sessions.Create(context.Background(), auth.User{Subject: "s1", Username: "sam"})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	listener, server, err := StartServer(deps)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	defer listener.Close()
	defer server.Close()
	url := baseURL(t, listener)

	tests := []struct {
		name           string
		method         string
		path           string
		cookie         string
		expectedStatus int
		expectedBody   string
	}{
		{name: "anonymous catalog", method: http.MethodGet, path: "/", expectedStatus: http.StatusOK, expectedBody: "catalog"},
		{name: "session cookie resolves user", method: http.MethodGet, path: "/", cookie: session.ID, expectedStatus: http.StatusOK, expectedBody: "catalog for sam"},
		{name: "unknown session stays anonymous", method: http.MethodGet, path: "/", cookie: "forged", expectedStatus: http.StatusOK, expectedBody: "catalog"},
		{name: "logout over POST", method: http.MethodPost, path: "/logout", cookie: session.ID, expectedStatus: http.StatusOK, expectedBody: "logout"},
		{name: "logout over GET", method: http.MethodGet, path: "/logout", expectedStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, url+tt.path, nil)
			if err != nil {
				t.Fatalf("Failed to build request: %v", err)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: tt.cookie})
			}

			body, status := send(t, req)

			if status != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, status)
			}
			if tt.expectedBody != "" && body != tt.expectedBody {
				t.Errorf("Expected '%s', got '%s'", tt.expectedBody, body)
			}
		})
	}
}

func TestWaitForShutdownWithTimeout(t *testing.T) {
	tests := []struct {
		name         string
		handlerDelay time.Duration
		timeout      time.Duration
		wantDrained  bool
	}{
		{name: "drains in-flight request", handlerDelay: 200 * time.Millisecond, timeout: 5 * time.Second, wantDrained: true},
		{name: "closes after timeout", handlerDelay: 3 * time.Second, timeout: time.Nanosecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN
			started := make(chan struct{})
			var once sync.Once
			deps := createTestDeps("0")
			deps.CatalogHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				once.Do(func() { close(started) })
				select {
				case <-time.After(tt.handlerDelay):
					w.Write([]byte("slow catalog"))
				case <-r.Context().Done():
				}
			})

			listener, server, err := StartServer(deps)
			if err != nil {
				t.Fatalf("Failed to start server: %v", err)
			}
			defer listener.Close()
			url := baseURL(t, listener)

			drained := make(chan bool, 1)
			go func() {
				resp, err := http.Get(url + "/")
				if err != nil {
					drained <- false
					return
				}
				defer resp.Body.Close()
				body, _ := io.ReadAll(resp.Body)
				drained <- string(body) == "slow catalog"
			}()
			<-started

			// WHEN
			shutdown := make(chan os.Signal, 1)
			shutdown <- syscall.SIGTERM
			err = WaitForShutdownWithTimeout(server, shutdown, tt.timeout)

			// THEN
			if err != nil {
				t.Errorf("Expected nil error, got: %v", err)
			}
			select {
			case got := <-drained:
				if got != tt.wantDrained {
					t.Errorf("Expected request drained = %v, got %v", tt.wantDrained, got)
				}
			case <-time.After(5 * time.Second):
				t.Fatal("In-flight request never finished")
			}
		})
	}
}

func TestRunServe_StartupFailure(t *testing.T) {
	err := RunServe(createTestDeps("99999"))

	if err == nil {
		t.Error("Expected error for invalid port, got nil")
	}
}
