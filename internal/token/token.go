package token

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"projecthub/internal/model"
	"projecthub/pkg/apierror"
)

// Class selects which signing secret and lifetime a token belongs to.
// Access and refresh tokens are signed with distinct secrets so that a leak
// of the access secret never allows forging refresh tokens.
type Class int

const (
	Access Class = iota
	Refresh
)

type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type Claims struct {
	Subject string
	Expiry  time.Time
}

type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Manager issues and verifies signed tokens. It is a pure function of its
// configuration; it never touches storage.
type Manager struct {
	cfg Config
}

func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("token: both signing secrets are required")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token: both token lifetimes must be positive")
	}

	return &Manager{cfg: cfg}, nil
}

// IssuePair signs an access and a refresh token for the given subject, each
// with its class secret and lifetime.
func (m *Manager) IssuePair(userID string) (Pair, error) {
	access, err := m.sign(userID, Access)
	if err != nil {
		return Pair{}, err
	}

	refresh, err := m.sign(userID, Refresh)
	if err != nil {
		return Pair{}, err
	}

	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// Verify checks signature, structure and expiry against the given class
// secret and extracts the subject. It does not consult the credential store;
// matching a refresh token against the persisted slot is the session
// manager's job.
func (m *Manager) Verify(tokenString string, class Class) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalid()
		}
		return m.secret(class), nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, errInvalid()
	}

	registered, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || registered.Subject == "" || registered.ExpiresAt == nil {
		return Claims{}, errInvalid()
	}

	return Claims{Subject: registered.Subject, Expiry: registered.ExpiresAt.Time}, nil
}

func (m *Manager) AccessTTL() time.Duration {
	return m.cfg.AccessTTL
}

func (m *Manager) RefreshTTL() time.Duration {
	return m.cfg.RefreshTTL
}

// SignAccess mints a fresh access token alone, used by refresh where the
// persisted refresh token stays in place.
func (m *Manager) SignAccess(userID string) (string, error) {
	return m.sign(userID, Access)
}

func (m *Manager) sign(userID string, class Class) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		// NumericDate truncates to whole seconds, so without a unique ID two
		// tokens signed in the same second would be byte-identical and a
		// second login could not displace the first one's refresh token.
		ID:        uuid.NewString(),
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl(class))),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret(class))
	if err != nil {
		return "", apierror.New("INTERNAL", "failed to sign token", "", http.StatusInternalServerError)
	}

	return signed, nil
}

func (m *Manager) secret(class Class) []byte {
	if class == Refresh {
		return m.cfg.RefreshSecret
	}
	return m.cfg.AccessSecret
}

func (m *Manager) ttl(class Class) time.Duration {
	if class == Refresh {
		return m.cfg.RefreshTTL
	}
	return m.cfg.AccessTTL
}

func errInvalid() *apierror.APIError {
	return apierror.New("TOKEN_INVALID", model.ErrTokenInvalid.Error(), "", http.StatusUnauthorized)
}
