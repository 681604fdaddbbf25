package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jrsteele09/kogase-admin/apiclient"
	interrors "github.com/jrsteele09/kogase-admin/internal/errors"
)

const contentTypeJSON = "application/json"

var errBadRequest = errors.New("invalid request")

// errorResponse is the body of every failed API call. FieldErrors holds the
// first backend message per form field.
type errorResponse struct {
	Message     string            `json:"message"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request failed")
	} else {
		s.log.Debug().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request rejected")
	}
	writeJSON(w, status, resp)
}

// errorStatus maps err onto the status and body returned to the front end.
// Backend errors keep their status, except that an unreachable backend is a
// 502 and a lost credential a 401.
func errorStatus(err error) (int, errorResponse) {
	if apiErr, ok := apiclient.AsAPIError(err); ok {
		resp := errorResponse{Message: apiErr.Message}
		if len(apiErr.FieldErrors) > 0 {
			resp.FieldErrors = apiErr.FirstFieldErrors()
		}
		switch {
		case apiErr.Kind == apiclient.KindTransport:
			return http.StatusBadGateway, resp
		case apiErr.Kind == apiclient.KindAuthentication:
			return http.StatusUnauthorized, resp
		case apiErr.Status == apiclient.StatusNoResponse:
			return http.StatusInternalServerError, resp
		}
		return apiErr.Status, resp
	}

	switch {
	case interrors.Is(err, interrors.ErrNotAuthenticated),
		interrors.Is(err, interrors.ErrSessionExpired):
		return http.StatusUnauthorized, errorResponse{Message: err.Error()}
	case interrors.Is(err, errBadRequest),
		interrors.Is(err, interrors.ErrInvalidCredentials),
		interrors.Is(err, interrors.ErrInvalidTimeframe),
		interrors.Is(err, interrors.ErrMissingID),
		interrors.Is(err, interrors.ErrMissingProjectID),
		interrors.Is(err, interrors.ErrMissingMetric):
		return http.StatusBadRequest, errorResponse{Message: err.Error()}
	}
	return http.StatusInternalServerError, errorResponse{Message: interrors.ErrInternal.Error()}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return interrors.Wrapf(errBadRequest, "decode body: %s", err.Error())
	}
	return nil
}
