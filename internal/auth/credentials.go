package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	_ "embed"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/nibzard/todo-cli/internal/jsonfile"
)

// Password policy defaults.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 128
	MaxUsernameLength = 64

	saltSize = 16
)

//go:embed users.schema.json
var usersSchemaJSON string

var usersSchema = jsonfile.MustCompileSchema("users.schema.json", usersSchemaJSON)

// UsersSchema returns the schema the users file is validated against.
func UsersSchema() *jsonfile.Schema { return usersSchema }

// User is a registered account.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	Salt         string    `json:"salt"`
	CreatedAt    time.Time `json:"created_at"`
}

type usersFile struct {
	SchemaVersion int    `json:"schema_version"`
	Users         []User `json:"users"`
}

// PasswordPolicy bounds acceptable password lengths.
type PasswordPolicy struct {
	MinLength int
	MaxLength int
}

// DefaultPasswordPolicy returns the documented password policy.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{MinLength: MinPasswordLength, MaxLength: MaxPasswordLength}
}

// Check returns ErrWeakPassword when password falls outside the policy.
func (p PasswordPolicy) Check(password string) error {
	minLen := p.MinLength
	if minLen < 1 {
		minLen = 1
	}
	if len(password) < minLen {
		return fmt.Errorf("%w: must be at least %d characters", ErrWeakPassword, minLen)
	}
	if p.MaxLength > 0 && len(password) > p.MaxLength {
		return fmt.Errorf("%w: must be at most %d characters", ErrWeakPassword, p.MaxLength)
	}
	return nil
}

// NormalizeUsername trims and validates a username.
func NormalizeUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", fmt.Errorf("%w: cannot be empty", ErrInvalidUsername)
	}
	if len(username) > MaxUsernameLength {
		return "", fmt.Errorf("%w: must be at most %d characters", ErrInvalidUsername, MaxUsernameLength)
	}
	if strings.IndexFunc(username, unicode.IsSpace) >= 0 {
		return "", fmt.Errorf("%w: cannot contain whitespace", ErrInvalidUsername)
	}
	return username, nil
}

// CredentialsOption configures a Credentials store.
type CredentialsOption func(*Credentials)

// WithPasswordPolicy overrides the default password policy.
func WithPasswordPolicy(p PasswordPolicy) CredentialsOption {
	return func(c *Credentials) { c.policy = p }
}

// WithBcryptCost overrides bcrypt.DefaultCost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) CredentialsOption {
	return func(c *Credentials) { c.cost = cost }
}

// WithCredentialsClock sets the time source used for created_at.
func WithCredentialsClock(now func() time.Time) CredentialsOption {
	return func(c *Credentials) { c.now = now }
}

// WithCredentialsLogger sets the logger.
func WithCredentialsLogger(logger *log.Logger) CredentialsOption {
	return func(c *Credentials) { c.logger = logger }
}

// Credentials is the user store backed by the users file.
type Credentials struct {
	mu     sync.Mutex
	path   string
	users  []User
	policy PasswordPolicy
	cost   int
	now    func() time.Time
	logger *log.Logger

	// dummyHash is compared against when the username is unknown.
	dummyHash []byte
}

// OpenCredentials loads the users file at path. A missing file is an empty store.
func OpenCredentials(path string, opts ...CredentialsOption) (*Credentials, error) {
	c := &Credentials{
		path:   path,
		policy: DefaultPasswordPolicy(),
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}

	users, err := loadUsers(path)
	if err != nil {
		return nil, err
	}
	c.users = users

	c.dummyHash, err = bcrypt.GenerateFromPassword([]byte("todo-cli-dummy-password"), c.cost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt cost %d: %w", c.cost, err)
	}
	return c, nil
}

// Reload re-reads the users file. On error the loaded users are kept.
func (c *Credentials) Reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	users, err := loadUsers(c.path)
	if err != nil {
		return err
	}
	c.users = users
	return nil
}

func loadUsers(path string) ([]User, error) {
	var f usersFile
	if _, err := jsonfile.Load(path, usersSchema, &f); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(f.Users))
	for _, u := range f.Users {
		if seen[u.Username] {
			return nil, &jsonfile.StorageError{Op: "validate", Path: path, Err: fmt.Errorf("duplicate username %q", u.Username)}
		}
		seen[u.Username] = true
	}
	return f.Users, nil
}

// Register creates a user. Nothing is persisted when validation fails.
func (c *Credentials) Register(username, password string) (User, error) {
	username, err := NormalizeUsername(username)
	if err != nil {
		return User{}, err
	}
	if err := c.policy.Check(password); err != nil {
		return User{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.find(username) >= 0 {
		return User{}, fmt.Errorf("%w: %s", ErrDuplicateUser, username)
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return User{}, fmt.Errorf("generate salt: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword(prehash(password, salt), c.cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		Username:     username,
		PasswordHash: string(hash),
		Salt:         base64.StdEncoding.EncodeToString(salt),
		CreatedAt:    c.now().UTC(),
	}

	next := make([]User, len(c.users), len(c.users)+1)
	copy(next, c.users)
	next = append(next, user)
	if err := jsonfile.Save(c.path, usersFile{SchemaVersion: 1, Users: next}, 0o600); err != nil {
		return User{}, err
	}
	c.users = next

	c.logger.Info("user registered", "username", username)
	return user, nil
}

// Verify checks a username/password pair. Unknown users and wrong passwords
// are indistinguishable to the caller.
func (c *Credentials) Verify(username, password string) error {
	username = strings.TrimSpace(username)

	c.mu.Lock()
	idx := c.find(username)
	var user User
	if idx >= 0 {
		user = c.users[idx]
	}
	c.mu.Unlock()

	if idx < 0 {
		// Burn the same bcrypt work as a real comparison.
		_ = bcrypt.CompareHashAndPassword(c.dummyHash, prehash(password, make([]byte, saltSize)))
		c.logger.Debug("login rejected", "reason", "unknown user")
		return ErrInvalidCredentials
	}

	salt, err := base64.StdEncoding.DecodeString(user.Salt)
	if err != nil {
		return fmt.Errorf("decode salt for %s: %w", username, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), prehash(password, salt)); err != nil {
		c.logger.Debug("login rejected", "reason", "password mismatch")
		return ErrInvalidCredentials
	}
	return nil
}

// Exists reports whether username is registered.
func (c *Credentials) Exists(username string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.find(username) >= 0
}

func (c *Credentials) find(username string) int {
	for i := range c.users {
		if c.users[i].Username == username {
			return i
		}
	}
	return -1
}

func prehash(password string, salt []byte) []byte {
	mac := hmac.New(sha256.New, salt)
	mac.Write([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(mac.Sum(nil)))
}
