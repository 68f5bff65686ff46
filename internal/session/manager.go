package session

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"go.etcd.io/bbolt"

	"receipt-portal/internal/auth"
	"receipt-portal/internal/models"
)

const bucketName = "sessions"

// Status distinguishes "expired" from "never logged in" so the caller can
// present a distinct message for each.
type Status int

const (
	StatusNone Status = iota
	StatusActive
	StatusExpired
)

// Session represents one authenticated context.
type Session struct {
	Token        string      `json:"token"`
	Identity     string      `json:"identity"`
	Role         models.Role `json:"role"`
	CreatedAt    time.Time   `json:"created_at"`
	LastActivity time.Time   `json:"last_activity"`
}

// Manager tracks authenticated identities with independent per-role expiry
// windows. Sessions are persisted so they survive process restarts and are
// shared by all request goroutines, last writer wins.
type Manager struct {
	db               *bbolt.DB
	adminTimeout     time.Duration
	recipientTimeout time.Duration
	verbose          bool
	now              func() time.Time
}

// NewManager creates the session bucket if needed. adminTimeout must be
// strictly shorter than recipientTimeout (config validation enforces this).
func NewManager(db *bbolt.DB, adminTimeout, recipientTimeout time.Duration, verbose bool) (*Manager, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating session bucket: %w", err)
	}

	return &Manager{
		db:               db,
		adminTimeout:     adminTimeout,
		recipientTimeout: recipientTimeout,
		verbose:          verbose,
		now:              time.Now,
	}, nil
}

// Start records a new session and returns it with a fresh token.
func (m *Manager) Start(identity string, role models.Role) (*Session, error) {
	now := m.now()
	sess := &Session{
		Token:        auth.NewSessionToken(),
		Identity:     models.NormalizeEmail(identity),
		Role:         role,
		CreatedAt:    now,
		LastActivity: now,
	}

	if err := m.put(sess); err != nil {
		return nil, err
	}

	if m.verbose {
		log.Printf("[SESSION] Started %s session for %s", role, sess.Identity)
	}

	return sess, nil
}

// Validate looks up a token and checks the role's inactivity window. An
// expired session is deleted on detection and reported as StatusExpired.
func (m *Manager) Validate(token string) (*Session, Status, error) {
	sess, err := m.get(token)
	if err != nil {
		return nil, StatusNone, err
	}
	if sess == nil {
		return nil, StatusNone, nil
	}

	if m.now().Sub(sess.LastActivity) > m.timeoutFor(sess.Role) {
		if m.verbose {
			log.Printf("[SESSION] Session for %s expired (last activity %v)",
				sess.Identity, sess.LastActivity)
		}
		if err := m.End(token); err != nil {
			return nil, StatusExpired, err
		}
		return nil, StatusExpired, nil
	}

	return sess, StatusActive, nil
}

// Touch extends a session by updating its last-activity timestamp. Called on
// every authenticated request, the server-side analog of user interaction.
func (m *Manager) Touch(token string) error {
	sess, err := m.get(token)
	if err != nil {
		return err
	}
	if sess == nil {
		return nil
	}

	sess.LastActivity = m.now()
	return m.put(sess)
}

// End removes a session. Ending an unknown token is not an error.
func (m *Manager) End(token string) error {
	return m.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Delete([]byte(token))
	})
}

func (m *Manager) timeoutFor(role models.Role) time.Duration {
	if role == models.RoleAdmin {
		return m.adminTimeout
	}
	return m.recipientTimeout
}

func (m *Manager) put(sess *Session) error {
	return m.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("marshaling session: %w", err)
		}
		return tx.Bucket([]byte(bucketName)).Put([]byte(sess.Token), data)
	})
}

func (m *Manager) get(token string) (*Session, error) {
	var sess *Session
	err := m.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get([]byte(token))
		if data == nil {
			return nil
		}
		sess = &Session{}
		return json.Unmarshal(data, sess)
	})
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}
	return sess, nil
}
