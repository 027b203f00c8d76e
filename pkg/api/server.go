package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cbodonnell/tabletop/pkg/api/handlers"
	"github.com/cbodonnell/tabletop/pkg/api/middleware"
	authproviders "github.com/cbodonnell/tabletop/pkg/auth/providers"
	"github.com/cbodonnell/tabletop/pkg/game"
	"github.com/cbodonnell/tabletop/pkg/log"
	"github.com/cbodonnell/tabletop/pkg/network"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type APIServer struct {
	server *http.Server
	tls    *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Port        int
	TLS         *TLSConfig
	AllowOrigin string
	Router      *game.Router
	Hub         *network.Hub
	// AuthProvider guards every mutating request when set
	AuthProvider authproviders.AuthProvider
	// Gatherer is exposed on /metrics when set
	Gatherer prometheus.Gatherer
}

// NewAPIServer creates a new http.Server for handling API requests
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: NewHandler(opts),
	}
	return &APIServer{
		server: server,
		tls:    opts.TLS,
	}
}

// NewHandler builds the routes of the API server
func NewHandler(opts NewAPIServerOptions) http.Handler {
	allowOrigin := opts.AllowOrigin
	if allowOrigin == "" {
		allowOrigin = "*"
	}

	r := mux.NewRouter()
	r.Use(middleware.NewRequestIDMiddleware(), middleware.NewLoggingMiddleware())

	r.HandleFunc("/healthz", handlers.HandleHealthz()).Methods(http.MethodGet)
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	games := r.PathPrefix("/api/board-game").Subrouter()
	games.HandleFunc("/{gameId}/state", handlers.HandleGetState(opts.Router)).Methods(http.MethodGet)
	if opts.Hub != nil {
		wsOpts := network.WSOptions{OriginPatterns: []string{allowOrigin}}
		games.HandleFunc("/{gameId}/ws", handlers.HandleSubscribe(opts.Router, opts.Hub, wsOpts)).Methods(http.MethodGet)
	}

	actions := games.Methods(http.MethodPost).Subrouter()
	if opts.AuthProvider != nil {
		actions.Use(middleware.NewAuthMiddleware(opts.AuthProvider))
	}
	actions.HandleFunc("", handlers.HandleCreateGame())
	actions.HandleFunc("/{gameId}", handlers.HandleActionRequest(opts.Router))
	actions.HandleFunc("/{gameId}/{action}", handlers.HandleAction(opts.Router))

	return middleware.NewCORSMiddleware(allowOrigin)(r)
}

// Start starts the APIServer
func (s *APIServer) Start() {
	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return
		}
		log.Error("API server error: %v", err)
	}
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
