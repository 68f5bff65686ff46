// Package portal orchestrates the receipt flow: establish identity, fetch
// records from the store, verify each fingerprint, filter by ownership, and
// hand the verified set to the caller.
package portal

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"receipt-portal/internal/access"
	"receipt-portal/internal/auth"
	"receipt-portal/internal/integrity"
	"receipt-portal/internal/interfaces"
	"receipt-portal/internal/models"
	"receipt-portal/internal/session"
	"receipt-portal/internal/throttle"
)

// PaymentView is a record plus its derived fields and verification outcome.
// Tampered records are flagged, never silently dropped, so the caller can
// render an explicit warning.
type PaymentView struct {
	models.PaymentRecord
	AmountPaid float64              `json:"amount_paid"`
	Status     models.PaymentStatus `json:"status"`
	Tampered   bool                 `json:"tampered"`
}

// Stats summarizes a recipient's verified set, computed before any status
// filter is applied.
type Stats struct {
	TotalAmount float64 `json:"total_amount"`
	PaidAmount  float64 `json:"paid_amount"`
	DueAmount   float64 `json:"due_amount"`
	RecordCount int     `json:"record_count"`
}

// PaymentList is the result of a scoped listing. ByRecipient carries
// per-recipient totals for the admin overview and is omitted for recipients,
// whose whole set belongs to one email anyway.
type PaymentList struct {
	Payments    []PaymentView    `json:"payments"`
	Stats       Stats            `json:"stats"`
	ByRecipient map[string]Stats `json:"by_recipient,omitempty"`
}

// PaymentInput carries the caller-editable fields of a record.
type PaymentInput struct {
	RecipientEmail string  `json:"recipient_email"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Date           string  `json:"date"`
	TotalAmount    float64 `json:"total_amount"`
	DueAmount      float64 `json:"due_amount"`
}

// Portal wires the record store, signer, access guard, session manager and
// login throttle together.
type Portal struct {
	store      interfaces.RecordStore
	signer     *integrity.Signer
	sessions   *session.Manager
	limiter    *throttle.Limiter
	adminEmail string
	adminHash  string
	verbose    bool

	// snapshot of the last successful fetch, replaced wholesale on each
	// refresh; never patched incrementally
	mu             sync.Mutex
	cache          []models.PaymentRecord
	receiptCounter int
	now            func() time.Time
}

func New(
	store interfaces.RecordStore,
	signer *integrity.Signer,
	sessions *session.Manager,
	limiter *throttle.Limiter,
	adminEmail, adminHash string,
	verbose bool,
) *Portal {
	return &Portal{
		store:          store,
		signer:         signer,
		sessions:       sessions,
		limiter:        limiter,
		adminEmail:     models.NormalizeEmail(adminEmail),
		adminHash:      adminHash,
		verbose:        verbose,
		receiptCounter: 1,
		now:            time.Now,
	}
}

// Login authenticates an identity and starts a session. Lockout is checked
// before credentials so blocked attempts never extend the window; a
// successful login resets the attempt counter.
func (p *Portal) Login(ctx context.Context, email, password string) (*session.Session, error) {
	if !models.ValidEmail(email) {
		return nil, &ValidationError{Reason: "malformed email address"}
	}
	if password == "" {
		return nil, &ValidationError{Reason: "password is required"}
	}
	identity := models.NormalizeEmail(email)

	locked, remaining, err := p.limiter.Locked(identity)
	if err != nil {
		return nil, fmt.Errorf("checking lockout: %w", err)
	}
	if locked {
		return nil, &LockedError{RemainingSeconds: remaining}
	}

	role, hash, err := p.lookupCredential(ctx, identity)
	if err != nil {
		return nil, err
	}

	if hash == "" || !auth.CheckPassword(password, hash) {
		res, rerr := p.limiter.RecordAttempt(identity)
		if rerr != nil {
			return nil, fmt.Errorf("recording failed attempt: %w", rerr)
		}
		if p.verbose {
			log.Printf("[PORTAL] Failed login for %s (locked=%v)", identity, res.Locked)
		}
		if res.Locked {
			return nil, &LockedError{RemainingSeconds: res.RemainingSeconds}
		}
		return nil, &InvalidCredentialsError{AttemptsRemaining: res.AttemptsRemaining}
	}

	if err := p.limiter.Clear(identity); err != nil {
		return nil, fmt.Errorf("clearing attempt counter: %w", err)
	}

	return p.sessions.Start(identity, role)
}

// lookupCredential resolves an identity to its role and stored bcrypt hash.
// An unknown identity returns an empty hash; Login then burns a bcrypt
// comparison against nothing and records the attempt, so unknown and known
// identities are not distinguishable from the response.
func (p *Portal) lookupCredential(ctx context.Context, identity string) (models.Role, string, error) {
	if identity == p.adminEmail {
		return models.RoleAdmin, p.adminHash, nil
	}

	recipients, err := p.store.Recipients(ctx)
	if err != nil {
		return "", "", fmt.Errorf("fetching recipients: %w", err)
	}
	for _, rc := range recipients {
		if models.NormalizeEmail(rc.Email) == identity {
			return models.RoleRecipient, rc.PasswordHash, nil
		}
	}
	return models.RoleRecipient, "", nil
}

// Authenticate validates a session token and extends the session on
// success. An expired session is reported distinctly from a missing one.
func (p *Portal) Authenticate(token string) (*session.Session, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	sess, status, err := p.sessions.Validate(token)
	if err != nil {
		return nil, fmt.Errorf("validating session: %w", err)
	}
	switch status {
	case session.StatusActive:
		if err := p.sessions.Touch(token); err != nil {
			return nil, fmt.Errorf("touching session: %w", err)
		}
		return sess, nil
	case session.StatusExpired:
		return nil, ErrSessionExpired
	default:
		return nil, ErrNotAuthenticated
	}
}

// Logout ends a session; ending an already-ended session is fine.
func (p *Portal) Logout(token string) error {
	return p.sessions.End(token)
}

// ListPayments returns the verified records the session may see. Admins see
// everything; recipients only their own. statusFilter is "" for all, or
// PAID/DUE. Stats always cover the full owned set, not the filtered one.
func (p *Portal) ListPayments(ctx context.Context, sess *session.Session, statusFilter string) (*PaymentList, error) {
	records, err := p.fetchFor(ctx, sess)
	if err != nil {
		return nil, err
	}

	list := &PaymentList{Payments: make([]PaymentView, 0, len(records))}
	if sess.Role == models.RoleAdmin {
		list.ByRecipient = make(map[string]Stats)
	}
	for i := range records {
		rec := records[i]

		// defense in depth: the guard runs even on store-scoped results
		if d := access.Authorize(sess.Identity, sess.Role, &rec); !d.Allowed {
			continue
		}

		view := p.view(&rec)
		list.Stats.TotalAmount += rec.TotalAmount
		list.Stats.DueAmount += rec.DueAmount
		list.Stats.PaidAmount += view.AmountPaid
		list.Stats.RecordCount++

		if list.ByRecipient != nil {
			owner := models.NormalizeEmail(rec.RecipientEmail)
			group := list.ByRecipient[owner]
			group.TotalAmount = models.Round2(group.TotalAmount + rec.TotalAmount)
			group.DueAmount = models.Round2(group.DueAmount + rec.DueAmount)
			group.PaidAmount = models.Round2(group.PaidAmount + view.AmountPaid)
			group.RecordCount++
			list.ByRecipient[owner] = group
		}

		if statusFilter != "" && string(view.Status) != statusFilter {
			continue
		}
		list.Payments = append(list.Payments, view)
	}

	list.Stats.TotalAmount = models.Round2(list.Stats.TotalAmount)
	list.Stats.PaidAmount = models.Round2(list.Stats.PaidAmount)
	list.Stats.DueAmount = models.Round2(list.Stats.DueAmount)

	// receipt ids are timestamp-derived, so this is newest first
	sort.Slice(list.Payments, func(i, j int) bool {
		return list.Payments[i].ReceiptID > list.Payments[j].ReceiptID
	})

	return list, nil
}

// GetPayment returns one verified record. Ownership denial and not-found
// are distinct outcomes; a tampered record is returned with its flag set so
// the caller can render the warning alongside the data.
func (p *Portal) GetPayment(ctx context.Context, sess *session.Session, receiptID string) (*PaymentView, error) {
	records, err := p.refresh(ctx)
	if err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].ReceiptID != receiptID {
			continue
		}
		if d := access.Authorize(sess.Identity, sess.Role, &records[i]); !d.Allowed {
			return nil, ErrNotOwner
		}
		view := p.view(&records[i])
		return &view, nil
	}
	return nil, interfaces.ErrNotFound
}

// CreatePayment validates, signs and stores a new record. Admin only. The
// receipt id is derived from the creation timestamp and is immutable.
func (p *Portal) CreatePayment(ctx context.Context, sess *session.Session, input *PaymentInput) (*PaymentView, error) {
	if sess.Role != models.RoleAdmin {
		return nil, ErrAdminOnly
	}

	rec := p.fromInput(input)
	rec.ReceiptID = p.nextReceiptID()
	if rec.Date == "" {
		rec.Date = p.now().Format("2006-01-02")
	}

	if err := rec.Validate(); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}
	rec.Fingerprint = p.signer.Sign(&rec)

	outcome, err := p.store.UpsertPayment(ctx, &rec)
	if err != nil {
		return nil, err
	}
	if p.verbose {
		log.Printf("[PORTAL] Created receipt %s (%s) for %s", rec.ReceiptID, outcome, rec.RecipientEmail)
	}

	view := p.view(&rec)
	return &view, nil
}

// UpdatePayment replaces the editable fields of an existing record and
// re-signs it. Admin only; the receipt id cannot change.
func (p *Portal) UpdatePayment(ctx context.Context, sess *session.Session, receiptID string, input *PaymentInput) (*PaymentView, error) {
	if sess.Role != models.RoleAdmin {
		return nil, ErrAdminOnly
	}

	records, err := p.refresh(ctx)
	if err != nil {
		return nil, err
	}
	found := false
	for i := range records {
		if records[i].ReceiptID == receiptID {
			found = true
			break
		}
	}
	if !found {
		return nil, interfaces.ErrNotFound
	}

	rec := p.fromInput(input)
	rec.ReceiptID = receiptID
	if err := rec.Validate(); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}
	rec.Fingerprint = p.signer.Sign(&rec)

	if _, err := p.store.UpsertPayment(ctx, &rec); err != nil {
		return nil, err
	}
	if p.verbose {
		log.Printf("[PORTAL] Updated receipt %s", receiptID)
	}

	view := p.view(&rec)
	return &view, nil
}

// DeletePayment removes a record. Admin only.
func (p *Portal) DeletePayment(ctx context.Context, sess *session.Session, receiptID string) error {
	if sess.Role != models.RoleAdmin {
		return ErrAdminOnly
	}
	return p.store.DeletePayment(ctx, receiptID)
}

// CreateRecipient registers a recipient account with a bcrypt credential
// hash; the plain password never leaves this function. Admin only.
func (p *Portal) CreateRecipient(ctx context.Context, sess *session.Session, email, name, password string) (*models.Recipient, error) {
	if sess.Role != models.RoleAdmin {
		return nil, ErrAdminOnly
	}
	if !models.ValidEmail(email) {
		return nil, &ValidationError{Reason: "malformed email address"}
	}
	if len(password) < 8 {
		return nil, &ValidationError{Reason: "password must be at least 8 characters"}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	rc := &models.Recipient{
		Email:        models.NormalizeEmail(email),
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    p.now(),
	}
	if err := rc.Validate(); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	if err := p.store.CreateRecipient(ctx, rc); err != nil {
		return nil, err
	}
	return rc, nil
}

// ListRecipients returns all recipient accounts. Admin only.
func (p *Portal) ListRecipients(ctx context.Context, sess *session.Session) ([]models.Recipient, error) {
	if sess.Role != models.RoleAdmin {
		return nil, ErrAdminOnly
	}
	return p.store.Recipients(ctx)
}

// DeleteRecipient removes a recipient account. Admin only.
func (p *Portal) DeleteRecipient(ctx context.Context, sess *session.Session, email string) error {
	if sess.Role != models.RoleAdmin {
		return ErrAdminOnly
	}
	return p.store.DeleteRecipient(ctx, email)
}

// view derives the display fields and runs integrity verification.
func (p *Portal) view(rec *models.PaymentRecord) PaymentView {
	view := PaymentView{
		PaymentRecord: *rec,
		AmountPaid:    rec.AmountPaid(),
		Status:        rec.Status(),
	}
	if err := p.signer.Verify(rec); err != nil {
		view.Tampered = true
	}
	return view
}

// fetchFor retrieves the records a session is scoped to.
func (p *Portal) fetchFor(ctx context.Context, sess *session.Session) ([]models.PaymentRecord, error) {
	if sess.Role == models.RoleAdmin {
		return p.refresh(ctx)
	}
	return p.store.FetchByRecipient(ctx, sess.Identity)
}

// refresh fetches all records and replaces the snapshot wholesale. If two
// refreshes race, the later swap wins; the snapshot is never half-updated.
func (p *Portal) refresh(ctx context.Context) ([]models.PaymentRecord, error) {
	records, err := p.store.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.cache = records
	p.mu.Unlock()

	return records, nil
}

// Snapshot returns the records from the last successful refresh.
func (p *Portal) Snapshot() []models.PaymentRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.PaymentRecord, len(p.cache))
	copy(out, p.cache)
	return out
}

func (p *Portal) fromInput(input *PaymentInput) models.PaymentRecord {
	return models.PaymentRecord{
		RecipientEmail: models.NormalizeEmail(input.RecipientEmail),
		Name:           input.Name,
		Description:    input.Description,
		Date:           input.Date,
		TotalAmount:    models.Round2(input.TotalAmount),
		DueAmount:      models.Round2(input.DueAmount),
	}
}

// nextReceiptID derives an id from the creation time, with a counter so two
// creations in the same second stay distinct.
func (p *Portal) nextReceiptID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := fmt.Sprintf("R%s%04d", p.now().Format("20060102150405"), p.receiptCounter)
	p.receiptCounter++
	return id
}
