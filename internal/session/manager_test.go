package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"receipt-portal/internal/models"
)

func testManager(t *testing.T) (*Manager, *time.Time) {
	t.Helper()

	db, err := bbolt.Open(filepath.Join(t.TempDir(), "sessions.db"), 0600, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m, err := NewManager(db, 30*time.Minute, 24*time.Hour, false)
	require.NoError(t, err)

	clock := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }
	return m, &clock
}

func TestStartAndValidate(t *testing.T) {
	m, _ := testManager(t)

	sess, err := m.Start("Alice@Example.com", models.RoleRecipient)
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)
	assert.Equal(t, "alice@example.com", sess.Identity)

	got, status, err := m.Validate(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, status)
	assert.Equal(t, sess.Identity, got.Identity)
	assert.Equal(t, models.RoleRecipient, got.Role)
}

func TestValidateUnknownToken(t *testing.T) {
	m, _ := testManager(t)

	sess, status, err := m.Validate("no-such-token")
	require.NoError(t, err)
	assert.Nil(t, sess)
	assert.Equal(t, StatusNone, status)
}

func TestRecipientExpiry(t *testing.T) {
	m, clock := testManager(t)

	sess, err := m.Start("alice@example.com", models.RoleRecipient)
	require.NoError(t, err)

	// Just inside the 24h window
	*clock = clock.Add(24 * time.Hour)
	_, status, err := m.Validate(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, status)

	// Past it
	*clock = clock.Add(time.Minute)
	got, status, err := m.Validate(sess.Token)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, StatusExpired, status)

	// Expired sessions are deleted on detection, so a second check is None
	_, status, err = m.Validate(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, StatusNone, status)
}

func TestAdminExpiresBeforeRecipient(t *testing.T) {
	m, clock := testManager(t)

	admin, err := m.Start("admin@example.com", models.RoleAdmin)
	require.NoError(t, err)
	recipient, err := m.Start("alice@example.com", models.RoleRecipient)
	require.NoError(t, err)

	*clock = clock.Add(31 * time.Minute)

	_, status, err := m.Validate(admin.Token)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, status)

	_, status, err = m.Validate(recipient.Token)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, status)
}

func TestTouchExtendsSession(t *testing.T) {
	m, clock := testManager(t)

	sess, err := m.Start("admin@example.com", models.RoleAdmin)
	require.NoError(t, err)

	// Activity every 20 minutes keeps a 30 minute window alive indefinitely
	for i := 0; i < 5; i++ {
		*clock = clock.Add(20 * time.Minute)
		_, status, err := m.Validate(sess.Token)
		require.NoError(t, err)
		require.Equal(t, StatusActive, status)
		require.NoError(t, m.Touch(sess.Token))
	}

	*clock = clock.Add(20 * time.Minute)
	_, status, err := m.Validate(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, status)
}

func TestEndIsIdempotent(t *testing.T) {
	m, _ := testManager(t)

	sess, err := m.Start("alice@example.com", models.RoleRecipient)
	require.NoError(t, err)

	require.NoError(t, m.End(sess.Token))
	require.NoError(t, m.End(sess.Token))
	require.NoError(t, m.End("never-existed"))

	_, status, err := m.Validate(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, StatusNone, status)
}

func TestSessionsSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sessions.db")

	db, err := bbolt.Open(path, 0600, nil)
	require.NoError(t, err)
	m, err := NewManager(db, 30*time.Minute, 24*time.Hour, false)
	require.NoError(t, err)

	sess, err := m.Start("alice@example.com", models.RoleRecipient)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = bbolt.Open(path, 0600, nil)
	require.NoError(t, err)
	defer db.Close()
	m, err = NewManager(db, 30*time.Minute, 24*time.Hour, false)
	require.NoError(t, err)

	got, status, err := m.Validate(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, status)
	assert.Equal(t, "alice@example.com", got.Identity)
}
