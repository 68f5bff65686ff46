package throttle

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"go.etcd.io/bbolt"

	"receipt-portal/internal/models"
)

const bucketName = "login_attempts"

// Result reports the state of an identity's attempt counter after recording
// one more failed attempt.
type Result struct {
	Locked            bool
	RemainingSeconds  int
	AttemptsRemaining int
}

type counter struct {
	Count         int       `json:"count"`
	LastAttemptAt time.Time `json:"last_attempt_at"`
	LockedUntil   time.Time `json:"locked_until,omitempty"`
}

// Limiter slows credential guessing with a per-identity lockout. Counters
// are persisted so a restart does not reset them.
type Limiter struct {
	db          *bbolt.DB
	maxAttempts int
	lockout     time.Duration
	verbose     bool
	now         func() time.Time
}

func NewLimiter(db *bbolt.DB, maxAttempts int, lockout time.Duration, verbose bool) (*Limiter, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating attempts bucket: %w", err)
	}

	return &Limiter{
		db:          db,
		maxAttempts: maxAttempts,
		lockout:     lockout,
		verbose:     verbose,
		now:         time.Now,
	}, nil
}

// RecordAttempt registers a failed login for the identity. Attempts made
// while already locked do not increment the counter, so they never extend
// the lockout. A counter whose lockout window has passed starts fresh.
func (l *Limiter) RecordAttempt(identity string) (Result, error) {
	key := []byte(models.NormalizeEmail(identity))
	now := l.now()

	var res Result
	err := l.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))

		var c counter
		if data := bucket.Get(key); data != nil {
			if err := json.Unmarshal(data, &c); err != nil {
				return fmt.Errorf("unmarshaling attempt counter: %w", err)
			}
		}

		if !c.LockedUntil.IsZero() {
			if now.Before(c.LockedUntil) {
				res = Result{
					Locked:           true,
					RemainingSeconds: int(math.Ceil(c.LockedUntil.Sub(now).Seconds())),
				}
				return nil
			}
			// lockout window passed, start over
			c = counter{}
		}

		c.Count++
		c.LastAttemptAt = now

		if c.Count >= l.maxAttempts {
			c.LockedUntil = now.Add(l.lockout)
			res = Result{
				Locked:           true,
				RemainingSeconds: int(math.Ceil(l.lockout.Seconds())),
			}
			if l.verbose {
				log.Printf("[THROTTLE] Locked out %s until %v", key, c.LockedUntil)
			}
		} else {
			res = Result{AttemptsRemaining: l.maxAttempts - c.Count}
		}

		data, err := json.Marshal(&c)
		if err != nil {
			return fmt.Errorf("marshaling attempt counter: %w", err)
		}
		return bucket.Put(key, data)
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// Locked reports whether the identity is currently inside a lockout window,
// without recording anything.
func (l *Limiter) Locked(identity string) (bool, int, error) {
	key := []byte(models.NormalizeEmail(identity))
	now := l.now()

	locked := false
	remaining := 0
	err := l.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get(key)
		if data == nil {
			return nil
		}
		var c counter
		if err := json.Unmarshal(data, &c); err != nil {
			return fmt.Errorf("unmarshaling attempt counter: %w", err)
		}
		if !c.LockedUntil.IsZero() && now.Before(c.LockedUntil) {
			locked = true
			remaining = int(math.Ceil(c.LockedUntil.Sub(now).Seconds()))
		}
		return nil
	})
	return locked, remaining, err
}

// Clear resets the identity's counter, invoked on successful authentication.
func (l *Limiter) Clear(identity string) error {
	key := []byte(models.NormalizeEmail(identity))
	return l.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Delete(key)
	})
}
