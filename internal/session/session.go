package session

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/BruksfildServices01/barber-calendar/internal/models"
)

// DefaultTTL is how long a login stays valid.
const DefaultTTL = 24 * time.Hour

var (
	ErrInvalidCredentials = errors.New("session: invalid credentials")
	ErrInvalidToken       = errors.New("session: invalid token")
	ErrExpired            = errors.New("session: expired")
)

// Expired reports whether a session issued at issuedAt is over at now.
func Expired(issuedAt, now time.Time) bool {
	return ExpiredAfter(issuedAt, now, DefaultTTL)
}

// ExpiredAfter is Expired with an explicit lifetime. A session is still
// valid at exactly issuedAt+ttl.
func ExpiredAfter(issuedAt, now time.Time, ttl time.Duration) bool {
	return now.Sub(issuedAt) > ttl
}

// Credentials describes the single admin account.
type Credentials struct {
	Email        string
	Name         string
	PasswordHash string
}

// HashPassword returns a bcrypt hash suitable for Credentials.PasswordHash.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Session is what a successful login hands back to the client.
type Session struct {
	Token     string      `json:"token"`
	User      models.User `json:"user"`
	IssuedAt  time.Time   `json:"issuedAt"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// Manager issues and verifies HS256 session tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	admin  Credentials
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration, admin Credentials, now func() time.Time) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		admin:  admin,
		now:    now,
	}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Login checks the admin credentials and issues a session.
func (m *Manager) Login(email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(m.admin.Email)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(m.admin.PasswordHash), []byte(password))
	if !emailOK || passErr != nil {
		return nil, ErrInvalidCredentials
	}

	user := models.User{
		ID:    "admin",
		Email: m.admin.Email,
		Name:  m.admin.Name,
		Role:  models.RoleAdmin,
	}
	return m.Issue(user)
}

// Issue signs a token for user.
func (m *Manager) Issue(user models.User) (*Session, error) {
	issuedAt := m.now().Truncate(time.Second)

	claims := Claims{
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(m.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("session: sign: %w", err)
	}

	return &Session{
		Token:     token,
		User:      user,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(m.ttl),
	}, nil
}

// Verify parses token and returns the user it was issued for. Expiry is
// decided by ExpiredAfter against the manager's clock, not by the jwt library.
func (m *Manager) Verify(token string) (*models.User, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(
		token,
		claims,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.IssuedAt == nil || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	if ExpiredAfter(claims.IssuedAt.Time, m.now(), m.ttl) {
		return nil, ErrExpired
	}

	return &models.User{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  claims.Role,
	}, nil
}
