package auth

import (
	"crypto/rand"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nibzard/todo-cli/internal/jsonfile"
)

// DefaultSessionTTL is how long a login stays valid.
const DefaultSessionTTL = 24 * time.Hour

const keySize = 32

//go:embed session.schema.json
var sessionSchemaJSON string

var sessionSchema = jsonfile.MustCompileSchema("session.schema.json", sessionSchemaJSON)

// SessionSchema returns the schema the session file is validated against.
func SessionSchema() *jsonfile.Schema { return sessionSchema }

// Session is proof of a successful login, valid until ExpiresAt.
type Session struct {
	Username  string    `json:"username"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Token     string    `json:"token"`
}

// ValidAt reports whether the session has not expired at now.
func (s Session) ValidAt(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// Remaining returns the time left before expiry, or zero once expired.
func (s Session) Remaining(now time.Time) time.Duration {
	if !s.ValidAt(now) {
		return 0
	}
	return s.ExpiresAt.Sub(now)
}

// SessionsOption configures a Sessions manager.
type SessionsOption func(*Sessions)

// WithSessionTTL overrides DefaultSessionTTL.
func WithSessionTTL(ttl time.Duration) SessionsOption {
	return func(s *Sessions) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithSessionsClock sets the time source for issuing and expiry checks.
func WithSessionsClock(now func() time.Time) SessionsOption {
	return func(s *Sessions) { s.now = now }
}

// WithSessionsLogger sets the logger.
func WithSessionsLogger(logger *log.Logger) SessionsOption {
	return func(s *Sessions) { s.logger = logger }
}

// Sessions manages the single persisted session.
type Sessions struct {
	mu      sync.Mutex
	path    string
	keyPath string
	ttl     time.Duration
	now     func() time.Time
	logger  *log.Logger
}

// NewSessions returns a manager for the session file at path, signing tokens
// with the key stored at keyPath. Nothing is read until first use.
func NewSessions(path, keyPath string, opts ...SessionsOption) *Sessions {
	s := &Sessions{
		path:    path,
		keyPath: keyPath,
		ttl:     DefaultSessionTTL,
		now:     time.Now,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start replaces any existing session with a new one for username.
func (s *Sessions) Start(username string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, err := s.signingKey(true)
	if err != nil {
		return Session{}, err
	}

	now := s.now()
	sess := Session{
		Username:  username,
		IssuedAt:  now.UTC(),
		ExpiresAt: now.Add(s.ttl).UTC(),
	}
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(sess.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		ID:        uuid.NewString(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return Session{}, fmt.Errorf("sign session token: %w", err)
	}
	sess.Token = token

	if err := jsonfile.Save(s.path, sess, 0o600); err != nil {
		return Session{}, err
	}
	s.logger.Info("session started", "username", username, "expires_at", sess.ExpiresAt)
	return sess, nil
}

// Current returns the persisted session if it exists, verifies, and has not
// expired. Read failures are returned as errors; everything else that makes a
// session unusable reports ok=false.
func (s *Sessions) Current() (sess Session, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found, err := jsonfile.Load(s.path, sessionSchema, &sess)
	if err != nil {
		return Session{}, false, err
	}
	if !found {
		return Session{}, false, nil
	}

	if !sess.ValidAt(s.now()) {
		s.logger.Debug("session expired", "username", sess.Username, "expires_at", sess.ExpiresAt)
		return Session{}, false, nil
	}

	key, err := s.signingKey(false)
	if err != nil {
		return Session{}, false, err
	}
	if key == nil {
		s.logger.Warn("session key missing, ignoring session")
		return Session{}, false, nil
	}
	if err := verifyToken(sess, key); err != nil {
		s.logger.Warn("session token rejected", "err", err)
		return Session{}, false, nil
	}
	return sess, true, nil
}

// Require returns the current session or ErrNotAuthenticated.
func (s *Sessions) Require() (Session, error) {
	sess, ok, err := s.Current()
	if err != nil {
		return Session{}, err
	}
	if !ok {
		return Session{}, ErrNotAuthenticated
	}
	return sess, nil
}

// End removes the persisted session. Ending when logged out is not an error.
func (s *Sessions) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := jsonfile.Remove(s.path); err != nil {
		return err
	}
	s.logger.Info("session ended")
	return nil
}

func verifyToken(sess Session, key []byte) error {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(sess.Token, &claims,
		func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		// Expiry is checked against the session record with full precision.
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return err
	}
	if claims.Subject != sess.Username {
		return fmt.Errorf("token subject %q does not match session user %q", claims.Subject, sess.Username)
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Unix() != sess.ExpiresAt.Unix() {
		return errors.New("token expiry does not match session")
	}
	if claims.IssuedAt == nil || claims.IssuedAt.Unix() != sess.IssuedAt.Unix() {
		return errors.New("token issue time does not match session")
	}
	return nil
}

// signingKey reads the session key. When create is set a missing key is
// generated and stored; otherwise a missing key returns nil.
func (s *Sessions) signingKey(create bool) ([]byte, error) {
	data, err := os.ReadFile(s.keyPath)
	switch {
	case err == nil:
		key, err := hex.DecodeString(strings.TrimSpace(string(data)))
		if err != nil || len(key) != keySize {
			return nil, &jsonfile.StorageError{Op: "parse", Path: s.keyPath, Err: errors.New("malformed session key")}
		}
		return key, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, &jsonfile.StorageError{Op: "read", Path: s.keyPath, Err: err}
	case !create:
		return nil, nil
	}

	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate session key: %w", err)
	}
	if err := jsonfile.WriteAtomic(s.keyPath, []byte(hex.EncodeToString(key)+"\n"), 0o600); err != nil {
		return nil, err
	}
	return key, nil
}
