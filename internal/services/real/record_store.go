package real

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"receipt-portal/internal/interfaces"
	"receipt-portal/internal/models"
	"receipt-portal/internal/sheet"
)

// RealRecordStore talks to the spreadsheet deployment through its single
// webhook URL. Reads are a GET or an action POST; payment writes are a bare
// payload POST upserted on receipt id. Failed calls are not retried, the
// user re-issues the action.
type RealRecordStore struct {
	webhookURL string
	httpClient *http.Client
	verbose    bool
}

func NewRealRecordStore(webhookURL string, timeout time.Duration, verbose bool) *RealRecordStore {
	return &RealRecordStore{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		verbose: verbose,
	}
}

// actionRequest is the POST body for recipient management and scoped queries.
type actionRequest struct {
	Action       string `json:"action"`
	Email        string `json:"email,omitempty"`
	Name         string `json:"name,omitempty"`
	PasswordHash string `json:"password_hash,omitempty"`
	ReceiptID    string `json:"receiptId,omitempty"`
}

func (r *RealRecordStore) FetchAll(ctx context.Context) ([]models.PaymentRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.webhookURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating fetch request: %w", err)
	}

	env, _, err := r.do(req)
	if err != nil {
		return nil, err
	}
	if !env.Succeeded() {
		return nil, fmt.Errorf("store error: %s", env.ErrorText())
	}

	return r.decodeRows(env.Rows)
}

func (r *RealRecordStore) FetchByRecipient(ctx context.Context, email string) ([]models.PaymentRecord, error) {
	env, _, err := r.post(ctx, actionRequest{
		Action: "get_recipient_payments",
		Email:  models.NormalizeEmail(email),
	})
	if err != nil {
		return nil, err
	}
	if !env.Succeeded() {
		return nil, fmt.Errorf("store error: %s", env.ErrorText())
	}

	return r.decodeRows(env.Rows)
}

func (r *RealRecordStore) UpsertPayment(ctx context.Context, record *models.PaymentRecord) (sheet.Outcome, error) {
	// bare payment payload, no action field: the store upserts on receipt id
	payload := map[string]any{
		"receiptId":      record.ReceiptID,
		"name":           record.Name,
		"amount":         fmt.Sprintf("%.2f", record.TotalAmount),
		"dueAmount":      fmt.Sprintf("%.2f", record.DueAmount),
		"date":           record.Date,
		"description":    record.Description,
		"recipientEmail": models.NormalizeEmail(record.RecipientEmail),
		"fingerprint":    record.Fingerprint,
	}

	env, outcome, err := r.postJSON(ctx, payload)
	if err != nil {
		return sheet.OutcomeError, err
	}

	switch outcome {
	case sheet.OutcomeCreated, sheet.OutcomeUpdated:
		if r.verbose {
			log.Printf("[STORE] Upserted receipt %s (%s)", record.ReceiptID, outcome)
		}
		return outcome, nil
	default:
		return sheet.OutcomeError, fmt.Errorf("store rejected upsert: %s", env.ErrorText())
	}
}

func (r *RealRecordStore) DeletePayment(ctx context.Context, receiptID string) error {
	env, outcome, err := r.post(ctx, actionRequest{
		Action:    "delete",
		ReceiptID: receiptID,
	})
	if err != nil {
		return err
	}

	switch outcome {
	case sheet.OutcomeDeleted:
		if r.verbose {
			log.Printf("[STORE] Deleted receipt %s", receiptID)
		}
		return nil
	case sheet.OutcomeNotFound:
		return interfaces.ErrNotFound
	default:
		return fmt.Errorf("store rejected delete: %s", env.ErrorText())
	}
}

func (r *RealRecordStore) Recipients(ctx context.Context) ([]models.Recipient, error) {
	env, _, err := r.post(ctx, actionRequest{Action: "get_recipients"})
	if err != nil {
		return nil, err
	}
	if !env.Succeeded() {
		return nil, fmt.Errorf("store error: %s", env.ErrorText())
	}

	recipients := make([]models.Recipient, 0, len(env.Recipients))
	for _, row := range env.Recipients {
		recipients = append(recipients, models.Recipient{
			Email:        models.NormalizeEmail(row.Email),
			Name:         row.Name,
			PasswordHash: row.PasswordHash,
			CreatedAt:    row.CreatedAt,
		})
	}
	return recipients, nil
}

func (r *RealRecordStore) CreateRecipient(ctx context.Context, recipient *models.Recipient) error {
	env, outcome, err := r.post(ctx, actionRequest{
		Action:       "create_recipient",
		Email:        models.NormalizeEmail(recipient.Email),
		Name:         recipient.Name,
		PasswordHash: recipient.PasswordHash,
	})
	if err != nil {
		return err
	}

	switch outcome {
	case sheet.OutcomeCreated, sheet.OutcomeOK:
		if r.verbose {
			log.Printf("[STORE] Created recipient %s", recipient.Email)
		}
		return nil
	default:
		return fmt.Errorf("store rejected recipient: %s", env.ErrorText())
	}
}

func (r *RealRecordStore) DeleteRecipient(ctx context.Context, email string) error {
	env, outcome, err := r.post(ctx, actionRequest{
		Action: "delete_recipient",
		Email:  models.NormalizeEmail(email),
	})
	if err != nil {
		return err
	}

	switch outcome {
	case sheet.OutcomeDeleted, sheet.OutcomeOK:
		return nil
	case sheet.OutcomeNotFound:
		return interfaces.ErrNotFound
	default:
		return fmt.Errorf("store rejected recipient delete: %s", env.ErrorText())
	}
}

func (r *RealRecordStore) post(ctx context.Context, body actionRequest) (*sheet.Envelope, sheet.Outcome, error) {
	return r.postJSON(ctx, body)
}

func (r *RealRecordStore) postJSON(ctx context.Context, body any) (*sheet.Envelope, sheet.Outcome, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, sheet.OutcomeError, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return nil, sheet.OutcomeError, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return r.do(req)
}

func (r *RealRecordStore) do(req *http.Request) (*sheet.Envelope, sheet.Outcome, error) {
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, sheet.OutcomeError, fmt.Errorf("%w: %v", interfaces.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, sheet.OutcomeError, fmt.Errorf("%w: reading response: %v", interfaces.ErrStoreUnavailable, err)
	}

	// The deployment encodes all domain outcomes in a 200 body; any other
	// HTTP status is a transport-level failure.
	if resp.StatusCode != http.StatusOK {
		return nil, sheet.OutcomeError, fmt.Errorf("%w: status %d: %s",
			interfaces.ErrStoreUnavailable, resp.StatusCode, string(responseBody))
	}

	env, outcome := sheet.ParseResponse(responseBody)
	if r.verbose {
		log.Printf("[STORE] %s %s -> %s", req.Method, req.URL.Path, outcome)
	}
	return env, outcome, nil
}

func (r *RealRecordStore) decodeRows(rows [][]any) ([]models.PaymentRecord, error) {
	records := make([]models.PaymentRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := sheet.RowToRecord(row)
		if err != nil {
			// a malformed row poisons the whole read; surfacing it beats
			// silently dropping someone's payment
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
