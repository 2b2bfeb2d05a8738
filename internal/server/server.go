// Package server assembles the HTTP handler tree: Connect services behind
// the interceptor chain, health and metrics endpoints, and the static UI.
package server

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/dinnerpicker/internal/auth"
	"github.com/mmynk/dinnerpicker/internal/menu"
	"github.com/mmynk/dinnerpicker/internal/metrics"
	"github.com/mmynk/dinnerpicker/internal/middleware"
	"github.com/mmynk/dinnerpicker/internal/selection"
	"github.com/mmynk/dinnerpicker/internal/service"
	"github.com/mmynk/dinnerpicker/pkg/api/apiconnect"
)

// apiPrefix marks Connect routes; unknown paths under it are 404, not the UI.
const apiPrefix = "/dinner.v1."

// Deps are the components the handler tree is built from. Metrics may be nil.
type Deps struct {
	Selections    *selection.Service
	Menus         *menu.Provider
	Authenticator auth.Authenticator
	JWTManager    *auth.JWTManager
	Metrics       *metrics.Metrics
	StaticDir     string
}

// New returns the root handler, wrapped with h2c for HTTP/2 without TLS.
func New(deps Deps) http.Handler {
	interceptors := []connect.Interceptor{middleware.LoggingInterceptor()}
	if deps.Metrics != nil {
		interceptors = append(interceptors, deps.Metrics.Interceptor())
	}
	interceptors = append(interceptors, middleware.RequireAuth(deps.JWTManager, deps.Authenticator,
		apiconnect.AuthServiceLoginProcedure,
		apiconnect.MenuServiceGetMenuProcedure,
	))
	opts := connect.WithInterceptors(interceptors...)

	mux := http.NewServeMux()

	// Register Connect services
	mux.Handle(apiconnect.NewSelectionServiceHandler(service.NewSelectionService(deps.Selections, deps.Metrics), opts))
	mux.Handle(apiconnect.NewMenuServiceHandler(service.NewMenuService(deps.Menus), opts))
	mux.Handle(apiconnect.NewAuthServiceHandler(service.NewAuthService(deps.Authenticator, deps.JWTManager, slog.Default()), opts))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics.Handler())
	}

	mux.Handle("/", staticHandler(deps.StaticDir))

	// Add logging and CORS middleware
	return h2c.NewHandler(loggingMiddleware(corsMiddleware(mux)), &http2.Server{})
}

// staticHandler serves files from dir, falling back to index.html for
// unknown paths.
func staticHandler(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, apiPrefix) {
			http.NotFound(w, r)
			return
		}

		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(dir, filepath.Clean("/"+urlPath))

		info, err := os.Stat(filePath)
		if err != nil || info.IsDir() {
			index := filepath.Join(dir, "index.html")
			if _, err := os.Stat(index); err != nil {
				http.NotFound(w, r)
				return
			}
			http.ServeFile(w, r, index)
			return
		}

		http.ServeFile(w, r, filePath)
	})
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Password, X-Request-Id, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "X-Request-Id, Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
