package sheet

import (
	"encoding/json"
	"strings"
	"time"
)

// Outcome classifies what the store says happened to a write.
type Outcome string

const (
	OutcomeCreated  Outcome = "created"
	OutcomeUpdated  Outcome = "updated"
	OutcomeDeleted  Outcome = "deleted"
	OutcomeNotFound Outcome = "not_found"
	OutcomeError    Outcome = "error"
	OutcomeOK       Outcome = "ok"
)

// Envelope is the standardized response shape of the webhook:
// {status: "success"|"error", message, rows, recipients}.
type Envelope struct {
	Status     string         `json:"status"`
	Message    string         `json:"message"`
	Error      string         `json:"error"`
	Headers    []string       `json:"headers"`
	Rows       [][]any        `json:"rows"`
	Recipients []RecipientRow `json:"recipients"`
}

// RecipientRow is the store's representation of a recipient account.
type RecipientRow struct {
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// Succeeded reports whether the envelope carries a success status.
func (e *Envelope) Succeeded() bool {
	return e.Status == "success"
}

// ErrorText returns the store-reported error message, whichever field the
// deployment variant used.
func (e *Envelope) ErrorText() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// ParseResponse decodes a webhook response body. The standardized contract
// is JSON; legacy deployments answer with free text containing one of the
// literal outcome words, which is tolerated on read but never produced.
func ParseResponse(body []byte) (*Envelope, Outcome) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err == nil && (env.Status != "" || env.Rows != nil || env.Recipients != nil) {
		return &env, classify(env.Message, env.Succeeded())
	}

	// legacy free-text body
	text := string(body)
	outcome := classify(text, false)
	env = Envelope{Message: strings.TrimSpace(text)}
	switch outcome {
	case OutcomeCreated, OutcomeUpdated, OutcomeDeleted:
		env.Status = "success"
	case OutcomeNotFound:
		env.Status = "error"
	default:
		env.Status = "error"
		env.Error = strings.TrimSpace(text)
	}
	return &env, outcome
}

func classify(message string, success bool) Outcome {
	switch {
	case strings.Contains(message, "CREATED"):
		return OutcomeCreated
	case strings.Contains(message, "UPDATED"):
		return OutcomeUpdated
	case strings.Contains(message, "DELETED"):
		return OutcomeDeleted
	case strings.Contains(message, "NOT_FOUND"):
		return OutcomeNotFound
	case success:
		return OutcomeOK
	default:
		return OutcomeError
	}
}
