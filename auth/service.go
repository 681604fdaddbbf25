// Package auth manages the operator's sign-in state against the Kogase
// backend: login, registration, verification and logout, plus the device and
// session records the backend keeps per sign-in.
package auth

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/kogase-admin/apiclient"
	"github.com/jrsteele09/kogase-admin/credentials"
	"github.com/jrsteele09/kogase-admin/iam"
	interrors "github.com/jrsteele09/kogase-admin/internal/errors"
	"github.com/jrsteele09/kogase-admin/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	deviceType        = "console"
	defaultAppVersion = "1.0.0"
)

// Service is the process-wide session layer. It is created once at startup
// and owns the transitions of the credential store: Login and Register fill
// it, Logout and a failed credential recovery empty it. Listeners are told
// about every transition.
type Service struct {
	client     *apiclient.Client
	store      *credentials.Store
	identities *iam.Service
	log        zerolog.Logger
	nowTime    func() time.Time
	appVersion string

	mu           sync.Mutex
	listeners    map[int]Listener
	nextListener int
	unsubscribe  func()
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

func WithLogger(log zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = log
	}
}

// WithAppVersion sets the version reported when registering this device
func WithAppVersion(version string) ServiceOption {
	return func(s *Service) {
		s.appVersion = version
	}
}

// NewService wires the session layer to client. It subscribes to the
// client's credential recovery failures and turns each into a forced logout.
func NewService(client *apiclient.Client, identities *iam.Service, options ...ServiceOption) (*Service, error) {
	if client == nil {
		return nil, errors.New("[NewService] client is required")
	}
	if identities == nil {
		return nil, errors.New("[NewService] identity service is required")
	}

	s := &Service{
		client:     client,
		store:      client.Store(),
		identities: identities,
		log:        zerolog.Nop(),
		nowTime:    time.Now,
		appVersion: defaultAppVersion,
		listeners:  make(map[int]Listener),
	}
	for _, opt := range options {
		opt(s)
	}

	s.unsubscribe = client.Subscribe(s.onAuthFailure)
	return s, nil
}

// Close detaches the service from the client.
func (s *Service) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// onAuthFailure runs after the client has already purged the credential.
func (s *Service) onAuthFailure(apiErr *apiclient.APIError) {
	s.log.Info().Err(apiErr).Msg("credential could not be recovered, logging out")
	if err := s.store.Clear(); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear auth data")
	}
	s.emit(Event{Type: EventLoggedOut, Reason: interrors.Wrapf(interrors.ErrSessionExpired, "%s", apiErr.Message)})
}

// CurrentUser returns the cached identity of the signed-in operator.
func (s *Service) CurrentUser() (*users.User, bool) {
	if !s.store.IsAuthenticated() {
		return nil, false
	}
	return s.store.Identity()
}

func (s *Service) IsAuthenticated() bool {
	return s.store.IsAuthenticated()
}

// Login exchanges email and password for a credential pair, fetches the
// profile of the returned user with the fresh token and saves both.
func (s *Service) Login(ctx context.Context, email, password string) (*users.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, interrors.ErrInvalidCredentials
	}

	s.log.Debug().Str("email", email).Msg("attempting login")
	resp, err := apiclient.Post[AuthResponse](ctx, s.client, "auth/login",
		LoginRequest{Email: email, Password: password}, apiclient.WithoutAuth())
	if err != nil {
		return nil, errors.Wrap(err, "Service.Login auth/login")
	}
	if resp.UserID == "" {
		return nil, errors.Wrap(interrors.ErrMissingUserID, "Service.Login")
	}

	user, err := s.identities.User(ctx, resp.UserID, apiclient.WithBearer(resp.Token))
	if err != nil {
		return nil, errors.Wrap(err, "Service.Login User")
	}

	if err := s.store.Save(resp.OAuthToken(), user); err != nil {
		return nil, errors.Wrap(err, "Service.Login Save")
	}
	s.log.Debug().Str("userId", user.ID).Str("name", user.Name()).Msg("login successful")

	s.emit(Event{Type: EventLoggedIn, User: user})
	return user, nil
}

// Register creates the account and then logs it in.
func (s *Service) Register(ctx context.Context, req users.RegisterRequest) (*users.User, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, interrors.ErrInvalidCredentials
	}
	if _, err := s.identities.RegisterUser(ctx, req); err != nil {
		return nil, errors.Wrap(err, "Service.Register RegisterUser")
	}
	s.log.Debug().Str("email", req.Email).Msg("user registered, logging in")
	return s.Login(ctx, req.Email, req.Password)
}

// Verify asks the backend whether the stored token is still valid. Only an
// explicit 401 counts as invalid; any other failure is assumed valid so a
// flaky backend does not sign the operator out.
func (s *Service) Verify(ctx context.Context) bool {
	err := s.client.Do(ctx, http.MethodGet, "auth/verify", nil, nil, apiclient.SkipRefresh())
	if err == nil {
		return true
	}
	if apiclient.IsUnauthorized(err) {
		s.log.Debug().Msg("token verification failed: unauthorized")
		return false
	}
	s.log.Debug().Err(err).Msg("token verification error, assuming valid")
	return true
}

// Initialize restores the signed-in state at startup. The cached identity is
// returned when a token and identity are both present and the token
// verifies; otherwise the store is cleared.
func (s *Service) Initialize(ctx context.Context) (*users.User, error) {
	_, hasToken := s.store.AccessToken()
	identity, hasIdentity := s.store.Identity()
	if !hasToken || !hasIdentity {
		if err := s.store.Clear(); err != nil {
			return nil, errors.Wrap(err, "Service.Initialize Clear")
		}
		return nil, interrors.ErrNotAuthenticated
	}

	if !s.Verify(ctx) {
		if err := s.store.Clear(); err != nil {
			return nil, errors.Wrap(err, "Service.Initialize Clear")
		}
		return nil, interrors.ErrSessionExpired
	}
	return identity, nil
}

// Logout tells the backend this device is signing out and clears the
// credential whatever the outcome of that call.
func (s *Service) Logout(ctx context.Context) error {
	user, _ := s.store.Identity()

	if s.store.IsAuthenticated() {
		deviceID, err := s.store.DeviceID()
		if err == nil {
			err = s.client.Do(ctx, http.MethodPost, "auth/logout", logoutRequest{DeviceID: deviceID}, nil, apiclient.SkipRefresh())
		}
		if err != nil {
			s.log.Debug().Err(err).Msg("error during logout call")
		}
	}

	if err := s.store.Clear(); err != nil {
		return errors.Wrap(err, "Service.Logout Clear")
	}
	s.emit(Event{Type: EventLoggedOut, User: user})
	return nil
}

// RefreshUserData reloads the signed-in user's profile into the cache. A
// 401 that survived credential recovery logs the operator out.
func (s *Service) RefreshUserData(ctx context.Context) (*users.User, error) {
	identity, ok := s.CurrentUser()
	if !ok {
		return nil, interrors.ErrNotAuthenticated
	}

	user, err := s.identities.User(ctx, identity.ID)
	if err != nil {
		// a failed credential recovery has already logged the operator out
		if apiErr, ok := apiclient.AsAPIError(err); ok && apiErr.Status == http.StatusUnauthorized &&
			apiErr.Kind != apiclient.KindAuthentication {
			_ = s.Logout(ctx)
		}
		return nil, errors.Wrap(err, "Service.RefreshUserData User")
	}

	token, ok := s.store.Credential()
	if !ok {
		return nil, interrors.ErrNotAuthenticated
	}
	if err := s.store.Save(token, user); err != nil {
		return nil, errors.Wrap(err, "Service.RefreshUserData Save")
	}
	return user, nil
}

// RefreshToken forces a credential refresh, sharing any refresh already in
// flight.
func (s *Service) RefreshToken(ctx context.Context) (string, error) {
	return s.client.RefreshToken(ctx)
}

// RegisterDevice records this installation with the backend. When the
// backend cannot be reached a locally built record is returned instead.
func (s *Service) RegisterDevice(ctx context.Context, projectID string) (*Device, error) {
	deviceID, err := s.store.DeviceID()
	if err != nil {
		return nil, errors.Wrap(err, "Service.RegisterDevice DeviceID")
	}
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	req := registerDeviceRequest{
		DeviceID:   deviceID,
		DeviceType: deviceType,
		DeviceName: hostname,
		OS:         runtime.GOOS,
		OSVersion:  "unknown",
		AppVersion: s.appVersion,
		ProjectID:  projectID,
	}
	device, err := apiclient.Post[Device](ctx, s.client, "auth/devices", req, apiclient.WithoutAuth())
	if err != nil {
		s.log.Debug().Err(err).Msg("error registering device, using local record")
		now := s.nowTime()
		return &Device{
			ID:         deviceID,
			DeviceID:   deviceID,
			DeviceType: req.DeviceType,
			DeviceName: req.DeviceName,
			OS:         req.OS,
			OSVersion:  req.OSVersion,
			AppVersion: req.AppVersion,
			ProjectID:  projectID,
			LastSeen:   now,
			IsActive:   true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}, nil
	}
	return &device, nil
}

func (s *Service) CreateSession(ctx context.Context, projectID string) (*Session, error) {
	deviceID, err := s.store.DeviceID()
	if err != nil {
		return nil, errors.Wrap(err, "Service.CreateSession DeviceID")
	}
	session, err := apiclient.Post[Session](ctx, s.client, "auth/sessions", createSessionRequest{ProjectID: projectID, DeviceID: deviceID})
	if err != nil {
		return nil, errors.Wrap(err, "Service.CreateSession")
	}
	return &session, nil
}

func (s *Service) EndSession(ctx context.Context, sessionID string) (*Session, error) {
	p, err := apiclient.ResourcePath("auth/sessions", sessionID, "end")
	if err != nil {
		return nil, errors.Wrap(err, "Service.EndSession")
	}
	session, err := apiclient.Put[Session](ctx, s.client, p, struct{}{})
	if err != nil {
		return nil, errors.Wrap(err, "Service.EndSession")
	}
	return &session, nil
}

// UserSessions lists the operator's sessions. Failures yield an empty list.
func (s *Service) UserSessions(ctx context.Context) []Session {
	sessions, err := apiclient.Get[[]Session](ctx, s.client, "auth/sessions/user")
	if err != nil {
		s.log.Debug().Err(err).Msg("error fetching user sessions")
		return []Session{}
	}
	if sessions == nil {
		return []Session{}
	}
	return sessions
}

// UserDevices lists the operator's devices. Failures yield an empty list.
func (s *Service) UserDevices(ctx context.Context) []Device {
	devices, err := apiclient.Get[[]Device](ctx, s.client, "auth/devices/user")
	if err != nil {
		s.log.Debug().Err(err).Msg("error fetching user devices")
		return []Device{}
	}
	if devices == nil {
		return []Device{}
	}
	return devices
}
