// Package server exposes the console's JSON API to the dashboard front end.
package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/kogase-admin/analytics"
	"github.com/jrsteele09/kogase-admin/auth"
	"github.com/jrsteele09/kogase-admin/health"
	"github.com/jrsteele09/kogase-admin/iam"
	"github.com/jrsteele09/kogase-admin/internal/config"
	"github.com/jrsteele09/kogase-admin/telemetry"
	"github.com/rs/zerolog"
)

// Services are the backend facades the handlers call.
type Services struct {
	Auth      *auth.Service
	IAM       *iam.Service
	Telemetry *telemetry.Service
	Analytics *analytics.Loader
	Health    *health.Monitor
}

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	log      zerolog.Logger
	services Services
}

type Option func(*Server)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

func New(config config.Config, services Services, options ...Option) (*Server, error) {
	switch {
	case config == nil:
		return nil, fmt.Errorf("[Server New] config is required")
	case services.Auth == nil:
		return nil, fmt.Errorf("[Server New] auth service is required")
	case services.IAM == nil:
		return nil, fmt.Errorf("[Server New] iam service is required")
	case services.Telemetry == nil:
		return nil, fmt.Errorf("[Server New] telemetry service is required")
	case services.Analytics == nil:
		return nil, fmt.Errorf("[Server New] analytics loader is required")
	case services.Health == nil:
		return nil, fmt.Errorf("[Server New] health monitor is required")
	}

	s := &Server{
		mux:      http.NewServeMux(),
		config:   config,
		log:      zerolog.Nop(),
		services: services,
	}
	for _, opt := range options {
		opt(s)
	}
	s.env = config.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler http.HandlerFunc) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Routes lists the registered patterns in registration order.
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			s.logRoute(parts[0], parts[1])
		} else {
			s.logRoute("", parts[0])
		}
	}
}

func (s *Server) logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	s.log.Info().Msgf("[%-19s] %s", color+paddedMethod+ResetColor, path)
}
