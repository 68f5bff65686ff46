// Package sheetstub serves the spreadsheet webhook contract against
// in-memory storage, so the portal can be developed and tested without a
// live spreadsheet deployment. It speaks the standardized response shape;
// all domain outcomes ride in a 200 body, like the real deployment.
package sheetstub

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"receipt-portal/internal/models"
	"receipt-portal/internal/sheet"
)

// Server represents the stub HTTP server
type Server struct {
	router  *mux.Router
	store   *MemoryStore
	verbose bool
}

// NewServer creates a new stub server around the given store
func NewServer(store *MemoryStore, verbose bool) *Server {
	server := &Server{
		router:  mux.NewRouter(),
		store:   store,
		verbose: verbose,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/", s.getAllHandler).Methods("GET")
	s.router.HandleFunc("/", s.postHandler).Methods("POST")
	s.router.HandleFunc("/health", s.healthHandler).Methods("GET")

	s.router.Use(s.loggingMiddleware)
}

// Handler exposes the router, used by httptest in the portal tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)

	if s.verbose {
		log.Printf("[STUB] Starting sheet stub on port %d", port)
		log.Printf("[STUB] Available endpoints:")
		log.Printf("[STUB]   GET  /        (all rows)")
		log.Printf("[STUB]   POST /        (actions and payment upserts)")
		log.Printf("[STUB]   GET  /health")
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// getAllHandler handles GET / - every payment row
func (s *Server) getAllHandler(w http.ResponseWriter, r *http.Request) {
	records := s.store.AllPayments()
	rows := make([][]any, 0, len(records))
	for i := range records {
		rows = append(rows, sheet.RecordToRow(&records[i]))
	}

	s.writeJSON(w, sheet.Envelope{Status: "success", Rows: rows})
}

// postRequest is the union of everything a POST body may carry: an action
// request, or a bare payment payload (no action field) meaning upsert.
type postRequest struct {
	Action         string `json:"action"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	PasswordHash   string `json:"password_hash"`
	ReceiptID      string `json:"receiptId"`
	Amount         string `json:"amount"`
	DueAmount      string `json:"dueAmount"`
	Date           string `json:"date"`
	Description    string `json:"description"`
	RecipientEmail string `json:"recipientEmail"`
	Fingerprint    string `json:"fingerprint"`
}

func (s *Server) postHandler(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, sheet.Envelope{Status: "error", Error: "invalid JSON payload"})
		return
	}

	switch req.Action {
	case "get_recipient_payments":
		records := s.store.PaymentsFor(req.Email)
		rows := make([][]any, 0, len(records))
		for i := range records {
			rows = append(rows, sheet.RecordToRow(&records[i]))
		}
		s.writeJSON(w, sheet.Envelope{Status: "success", Rows: rows})

	case "get_recipients":
		recipients := s.store.AllRecipients()
		out := make([]sheet.RecipientRow, 0, len(recipients))
		for _, rc := range recipients {
			out = append(out, sheet.RecipientRow{
				Email:        rc.Email,
				Name:         rc.Name,
				PasswordHash: rc.PasswordHash,
				CreatedAt:    rc.CreatedAt,
			})
		}
		s.writeJSON(w, sheet.Envelope{Status: "success", Recipients: out})

	case "create_recipient":
		if req.Email == "" || req.PasswordHash == "" {
			s.writeJSON(w, sheet.Envelope{Status: "error", Error: "email and password_hash are required"})
			return
		}
		s.store.CreateRecipient(models.Recipient{
			Email:        req.Email,
			Name:         req.Name,
			PasswordHash: req.PasswordHash,
		})
		s.writeJSON(w, sheet.Envelope{Status: "success", Message: "CREATED"})

	case "delete_recipient":
		if !s.store.DeleteRecipient(req.Email) {
			s.writeJSON(w, sheet.Envelope{Status: "error", Message: "NOT_FOUND"})
			return
		}
		s.writeJSON(w, sheet.Envelope{Status: "success", Message: "DELETED"})

	case "delete":
		if !s.store.DeletePayment(req.ReceiptID) {
			s.writeJSON(w, sheet.Envelope{Status: "error", Message: "NOT_FOUND"})
			return
		}
		s.writeJSON(w, sheet.Envelope{Status: "success", Message: "DELETED"})

	case "":
		// bare payment payload: upsert keyed on receipt id
		s.upsertPayment(w, &req)

	default:
		s.writeJSON(w, sheet.Envelope{Status: "error", Error: "unknown action: " + req.Action})
	}
}

func (s *Server) upsertPayment(w http.ResponseWriter, req *postRequest) {
	if req.ReceiptID == "" {
		s.writeJSON(w, sheet.Envelope{Status: "error", Error: "receiptId is required"})
		return
	}

	total, err := sheet.ParseAmount(req.Amount)
	if err != nil {
		s.writeJSON(w, sheet.Envelope{Status: "error", Error: "invalid amount"})
		return
	}
	due, err := sheet.ParseAmount(req.DueAmount)
	if err != nil {
		s.writeJSON(w, sheet.Envelope{Status: "error", Error: "invalid dueAmount"})
		return
	}

	created := s.store.UpsertPayment(models.PaymentRecord{
		ReceiptID:      req.ReceiptID,
		Name:           req.Name,
		TotalAmount:    total,
		DueAmount:      due,
		Date:           req.Date,
		Description:    req.Description,
		RecipientEmail: models.NormalizeEmail(req.RecipientEmail),
		Fingerprint:    req.Fingerprint,
	})

	if created {
		s.writeJSON(w, sheet.Envelope{Status: "success", Message: "CREATED"})
	} else {
		s.writeJSON(w, sheet.Envelope{Status: "success", Message: "UPDATED"})
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	payments, recipients := s.store.Stats()

	status := map[string]interface{}{
		"status":     "healthy",
		"payments":   payments,
		"recipients": recipients,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		log.Printf("[ERROR] Failed to write JSON response: %v", err)
	}
}

// writeJSON writes an envelope; domain outcomes always ride HTTP 200.
func (s *Server) writeJSON(w http.ResponseWriter, env sheet.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(env); err != nil {
		log.Printf("[ERROR] Failed to write JSON response: %v", err)
	}
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.verbose {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Printf("[HTTP] %s %s - %v", r.Method, r.URL.Path, time.Since(start))
		} else {
			next.ServeHTTP(w, r)
		}
	})
}
