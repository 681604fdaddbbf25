package credentials

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/kogase-admin/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// Store is the process-wide holder of the current credential pair, the
// cached identity of the signed-in user and the device identifier.
//
// It is created once at startup, mutated only through Save, UpdateToken and
// Clear, and emptied on logout. Reads and writes are serialized, so no reader
// observes a token without its matching identity.
type Store struct {
	repo  Repo
	mu    sync.RWMutex
	log   zerolog.Logger
	newID func() string
}

type StoreOption func(*Store)

func WithLogger(log zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.log = log
	}
}

// WithIDGenerator replaces the device identifier generator (primarily for testing)
func WithIDGenerator(newID func() string) StoreOption {
	return func(s *Store) {
		s.newID = newID
	}
}

func NewStore(repo Repo, options ...StoreOption) (*Store, error) {
	if repo == nil {
		return nil, errors.New("[NewStore] repo is required")
	}
	s := &Store{
		repo:  repo,
		log:   zerolog.Nop(),
		newID: uuid.NewString,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

func (s *Store) AccessToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(AccessTokenKey)
}

func (s *Store) RefreshToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(RefreshTokenKey)
}

func (s *Store) IsAuthenticated() bool {
	_, ok := s.AccessToken()
	return ok
}

// Identity returns the cached profile of the signed-in user. An unreadable
// cache entry is reported as absent.
func (s *Store) Identity() (*users.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, ok := s.get(UserKey)
	if !ok {
		return nil, false
	}
	var u users.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.log.Warn().Err(err).Msg("cached user data is not valid JSON")
		return nil, false
	}
	return &u, true
}

// Credential returns the current pair as an oauth2 token. Expiry comes from
// the access token's exp claim and is zero when the token is not a JWT.
func (s *Store) Credential() (*oauth2.Token, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	access, ok := s.get(AccessTokenKey)
	if !ok {
		return nil, false
	}
	refresh, _ := s.get(RefreshTokenKey)
	token := &oauth2.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
	}
	if exp, ok := TokenExpiry(access); ok {
		token.Expiry = exp
	}
	return token, true
}

// Save persists the credential pair together with the identity it belongs to.
// token.Expiry is not stored; Credential derives it from the access token.
func (s *Store) Save(token *oauth2.Token, identity *users.User) error {
	if token == nil || token.AccessToken == "" {
		return errors.New("Store.Save access token is required")
	}
	if identity == nil {
		return errors.New("Store.Save identity is required")
	}
	userData, err := json.Marshal(identity)
	if err != nil {
		return errors.Wrap(err, "Store.Save marshal identity")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Debug().Str("userId", identity.ID).Time("expires", token.Expiry).Msg("saving auth data")
	if err := s.repo.SetMany(map[string]string{
		AccessTokenKey:  token.AccessToken,
		RefreshTokenKey: token.RefreshToken,
		UserKey:         string(userData),
	}); err != nil {
		return errors.Wrap(err, "Store.Save SetMany")
	}
	return nil
}

// UpdateToken replaces the credential pair after a refresh, keeping the
// cached identity.
func (s *Store) UpdateToken(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return errors.New("Store.UpdateToken access token is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.SetMany(map[string]string{
		AccessTokenKey:  token.AccessToken,
		RefreshTokenKey: token.RefreshToken,
	}); err != nil {
		return errors.Wrap(err, "Store.UpdateToken SetMany")
	}
	return nil
}

// Clear removes the credential pair and identity. The device identifier is
// kept so it stays stable across sign-ins.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Debug().Msg("clearing auth data")
	if err := s.repo.Delete(AccessTokenKey, RefreshTokenKey, UserKey); err != nil {
		return errors.Wrap(err, "Store.Clear Delete")
	}
	return nil
}

// DeviceID returns the persisted device identifier, generating and storing
// one on first use.
func (s *Store) DeviceID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok, err := s.repo.Get(DeviceIDKey)
	if err != nil {
		return "", errors.Wrap(err, "Store.DeviceID Get")
	}
	if ok && id != "" {
		return id, nil
	}

	id = s.newID()
	if err := s.repo.SetMany(map[string]string{DeviceIDKey: id}); err != nil {
		return "", errors.Wrap(err, "Store.DeviceID SetMany")
	}
	return id, nil
}

// get must be called with s.mu held.
func (s *Store) get(key string) (string, bool) {
	value, ok, err := s.repo.Get(key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("credential storage read failed")
		return "", false
	}
	if !ok || value == "" {
		return "", false
	}
	return value, true
}
