package server

import (
	"net/http"
	"strconv"

	"github.com/jrsteele09/kogase-admin/analytics"
	"github.com/jrsteele09/kogase-admin/auth"
	interrors "github.com/jrsteele09/kogase-admin/internal/errors"
	"github.com/jrsteele09/kogase-admin/telemetry"
	"github.com/jrsteele09/kogase-admin/users"
)

// HealthHandler reports the last known backend availability.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.services.Health.State())
	}
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.LoginRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		user, err := s.services.Auth.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req users.RegisterRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		user, err := s.services.Auth.Register(r.Context(), req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, user)
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.services.Auth.Logout(r.Context()); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// MeHandler returns the signed-in operator.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			s.writeError(w, r, interrors.ErrNotAuthenticated)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func (s *Server) ProjectsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.services.IAM.Projects(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func (s *Server) EventDefinitionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		definitions, err := s.services.Telemetry.EventDefinitions(r.Context(), r.PathValue("projectId"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, definitions)
	}
}

// SessionsHandler lists play sessions of ?project=, or of every project when
// it is empty or "all". userId, page, pageSize and active narrow the list.
func (s *Server) SessionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, err := intParam(q.Get("page"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		pageSize, err := intParam(q.Get("pageSize"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		filter := telemetry.SessionFilter{
			UserID:     q.Get("userId"),
			ActiveOnly: q.Get("active") == "true",
			Page:       page,
			PageSize:   pageSize,
		}

		var sessions []telemetry.PlaySession
		if project := q.Get("project"); project == "" || project == analytics.AllProjects {
			sessions, err = s.services.Telemetry.AllPlaySessions(r.Context(), filter)
		} else {
			sessions, err = s.services.Telemetry.PlaySessions(r.Context(), project, filter)
		}
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if sessions == nil {
			sessions = []telemetry.PlaySession{}
		}
		writeJSON(w, http.StatusOK, sessions)
	}
}

// AnalyticsHandler aggregates ?project= (default "all") over ?timeframe=
// (default "7d").
func (s *Server) AnalyticsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		tf, err := analytics.ParseTimeframe(q.Get("timeframe"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		scope := q.Get("project")
		if scope == "" {
			scope = analytics.AllProjects
		}

		report, err := s.services.Analytics.Load(r.Context(), scope, tf)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func (s *Server) NoContentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, interrors.Wrapf(errBadRequest, "%q is not a valid number", v)
	}
	return n, nil
}
