package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/omriShneor/alfred_line/internal/calstore"
	"github.com/omriShneor/alfred_line/internal/database"
	"github.com/omriShneor/alfred_line/internal/logger"
	"github.com/omriShneor/alfred_line/internal/metrics"
	"github.com/omriShneor/alfred_line/internal/source"
)

type Server struct {
	db            *database.DB
	calendars     calstore.Store
	metrics       *metrics.Metrics
	logger        *zap.Logger
	msgChan       chan<- source.Message
	channelSecret string
	publicBaseURL string
	httpSrv       *http.Server
	port          int
}

// ServerConfig holds everything the HTTP server needs.
type ServerConfig struct {
	DB            *database.DB
	Calendars     calstore.Store
	Metrics       *metrics.Metrics
	Logger        *zap.Logger
	MessageChan   chan<- source.Message
	ChannelSecret string
	PublicBaseURL string
	Port          int
}

func New(cfg ServerConfig) *Server {
	l := cfg.Logger
	if l == nil {
		l = zap.NewNop()
	}

	s := &Server{
		db:            cfg.DB,
		calendars:     cfg.Calendars,
		metrics:       cfg.Metrics,
		logger:        l,
		msgChan:       cfg.MessageChan,
		channelSecret: cfg.ChannelSecret,
		publicBaseURL: cfg.PublicBaseURL,
		port:          cfg.Port,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      logger.Middleware(l, mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", s.handleHealthCheck)
	mux.Handle("GET /metrics", s.metrics.Handler())

	// LINE webhook
	mux.HandleFunc("POST /callback", s.handleCallback)

	// Calendar downloads
	mux.HandleFunc("GET /calendar/{id}", s.handleCalendarDownload)
	mux.HandleFunc("GET /calendar/{id}/qr", s.handleCalendarQR)
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.Int("port", s.port))
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Handler returns the server's HTTP handler for testing purposes
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}
