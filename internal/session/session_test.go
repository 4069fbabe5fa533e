package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/BruksfildServices01/barber-calendar/internal/models"
)

func newTestManager(t *testing.T, now *time.Time) *Manager {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("admin111"), bcrypt.MinCost)
	require.NoError(t, err)

	return NewManager("test-secret", 0, Credentials{
		Email:        "Admin@Admin.com",
		Name:         "Administrator",
		PasswordHash: string(hash),
	}, func() time.Time { return *now })
}

func TestExpired(t *testing.T) {
	issued := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

	assert.False(t, Expired(issued, issued))
	assert.False(t, Expired(issued, issued.Add(24*time.Hour)))
	assert.True(t, Expired(issued, issued.Add(24*time.Hour+time.Millisecond)))
	assert.True(t, ExpiredAfter(issued, issued.Add(2*time.Minute), time.Minute))
}

func TestLoginAndVerify(t *testing.T) {
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	m := newTestManager(t, &now)

	s, err := m.Login(" admin@admin.com ", "admin111")
	require.NoError(t, err)
	assert.NotEmpty(t, s.Token)
	assert.Equal(t, models.RoleAdmin, s.User.Role)
	assert.Equal(t, now.Add(DefaultTTL), s.ExpiresAt)

	user, err := m.Verify(s.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin@admin.com", user.Email)
	assert.Equal(t, "Administrator", user.Name)
	assert.Equal(t, "admin", user.ID)
}

func TestLogin_WrongCredentials(t *testing.T) {
	now := time.Now()
	m := newTestManager(t, &now)

	_, err := m.Login("admin@admin.com", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = m.Login("other@admin.com", "admin111")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerify_Expiry(t *testing.T) {
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	m := newTestManager(t, &now)

	s, err := m.Login("admin@admin.com", "admin111")
	require.NoError(t, err)

	now = now.Add(24 * time.Hour)
	_, err = m.Verify(s.Token)
	assert.NoError(t, err)

	now = now.Add(time.Second)
	_, err = m.Verify(s.Token)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerify_RejectsForeignTokens(t *testing.T) {
	now := time.Now()
	m := newTestManager(t, &now)
	other := NewManager("other-secret", 0, Credentials{}, func() time.Time { return now })

	s, err := other.Issue(models.User{ID: "admin", Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = m.Verify(s.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret")))
}
