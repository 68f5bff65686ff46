package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"receipt-portal/internal/api"
	"receipt-portal/internal/config"
	"receipt-portal/internal/integrity"
	"receipt-portal/internal/interfaces"
	"receipt-portal/internal/portal"
	"receipt-portal/internal/session"
)

const sessionContextKey = "portal_session"

type PortalHandler struct {
	portal *portal.Portal
	config *config.ParsedConfig
}

func NewPortalHandler(p *portal.Portal, cfg *config.ParsedConfig) *PortalHandler {
	return &PortalHandler{
		portal: p,
		config: cfg,
	}
}

// POST /api/login
func (h *PortalHandler) Login(c *gin.Context) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.APIError{
			Error: "Invalid request format",
			Code:  api.ErrorCodeInvalidRequest,
		})
		return
	}

	sess, err := h.portal.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.LoginResponse{
		Token:    sess.Token,
		Identity: sess.Identity,
		Role:     string(sess.Role),
	})
}

// POST /api/logout
func (h *PortalHandler) Logout(c *gin.Context) {
	if token := bearerToken(c); token != "" {
		if err := h.portal.Logout(token); err != nil {
			log.Printf("[HANDLER] Logout failed: %v", err)
		}
	}
	c.Status(http.StatusNoContent)
}

// AuthMiddleware resolves the session token and stores the session in the
// request context. Expired sessions get their own error code so the UI can
// say "session expired" instead of "please log in".
func (h *PortalHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := h.portal.Authenticate(bearerToken(c))
		if err != nil {
			h.writeError(c, err)
			c.Abort()
			return
		}
		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

// GET /api/payments?status=PAID|DUE
func (h *PortalHandler) ListPayments(c *gin.Context) {
	statusFilter := strings.ToUpper(strings.TrimSpace(c.Query("status")))
	if statusFilter != "" && statusFilter != "PAID" && statusFilter != "DUE" {
		c.JSON(http.StatusBadRequest, api.APIError{
			Error: "status filter must be PAID or DUE",
			Code:  api.ErrorCodeInvalidRequest,
		})
		return
	}

	list, err := h.portal.ListPayments(c.Request.Context(), h.session(c), statusFilter)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// GET /api/payments/:id
func (h *PortalHandler) GetPayment(c *gin.Context) {
	view, err := h.portal.GetPayment(c.Request.Context(), h.session(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	if view.Tampered {
		// the record is shown, but with an explicit tamper warning, never a
		// generic error
		c.JSON(http.StatusOK, gin.H{
			"payment": view,
			"warning": "integrity check failed: this record was modified after it was signed",
			"code":    api.ErrorCodeIntegrityViolation,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": view})
}

// POST /api/payments (admin)
func (h *PortalHandler) CreatePayment(c *gin.Context) {
	var input portal.PaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, api.APIError{
			Error: "Invalid request format",
			Code:  api.ErrorCodeInvalidRequest,
		})
		return
	}

	view, err := h.portal.CreatePayment(c.Request.Context(), h.session(c), &input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payment": view})
}

// PUT /api/payments/:id (admin)
func (h *PortalHandler) UpdatePayment(c *gin.Context) {
	var input portal.PaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, api.APIError{
			Error: "Invalid request format",
			Code:  api.ErrorCodeInvalidRequest,
		})
		return
	}

	view, err := h.portal.UpdatePayment(c.Request.Context(), h.session(c), c.Param("id"), &input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": view})
}

// DELETE /api/payments/:id (admin)
func (h *PortalHandler) DeletePayment(c *gin.Context) {
	receiptID := c.Param("id")
	if err := h.portal.DeletePayment(c.Request.Context(), h.session(c), receiptID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.DeleteResponse{ReceiptID: receiptID, Deleted: true})
}

// GET /api/recipients (admin)
func (h *PortalHandler) ListRecipients(c *gin.Context) {
	recipients, err := h.portal.ListRecipients(c.Request.Context(), h.session(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	views := make([]api.RecipientView, 0, len(recipients))
	for _, rc := range recipients {
		views = append(views, api.RecipientView{
			Email:     rc.Email,
			Name:      rc.Name,
			CreatedAt: rc.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"recipients": views})
}

// POST /api/recipients (admin)
func (h *PortalHandler) CreateRecipient(c *gin.Context) {
	var req api.CreateRecipientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.APIError{
			Error: "Invalid request format",
			Code:  api.ErrorCodeInvalidRequest,
		})
		return
	}

	rc, err := h.portal.CreateRecipient(c.Request.Context(), h.session(c), req.Email, req.Name, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"recipient": api.RecipientView{
		Email:     rc.Email,
		Name:      rc.Name,
		CreatedAt: rc.CreatedAt.UTC().Format(time.RFC3339),
	}})
}

// DELETE /api/recipients/:email (admin)
func (h *PortalHandler) DeleteRecipient(c *gin.Context) {
	if err := h.portal.DeleteRecipient(c.Request.Context(), h.session(c), c.Param("email")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /health
func (h *PortalHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"service":         "receipt-portal",
		"standalone_mode": h.config.StandaloneMode,
	})
}

func (h *PortalHandler) session(c *gin.Context) *session.Session {
	sess, _ := c.Get(sessionContextKey)
	return sess.(*session.Session)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// writeError maps the portal error taxonomy onto HTTP responses. Each
// security-relevant outcome keeps its own code and message.
func (h *PortalHandler) writeError(c *gin.Context, err error) {
	var validationErr *portal.ValidationError
	var lockedErr *portal.LockedError
	var credsErr *portal.InvalidCredentialsError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, api.APIError{
			Error: validationErr.Reason,
			Code:  api.ErrorCodeValidationFailed,
		})
	case errors.As(err, &lockedErr):
		c.JSON(http.StatusTooManyRequests, api.APIError{
			Error:   lockedErr.Error(),
			Code:    api.ErrorCodeLockedOut,
			Details: "wait for the lockout to expire before trying again",
		})
	case errors.As(err, &credsErr):
		c.JSON(http.StatusUnauthorized, api.APIError{
			Error: credsErr.Error(),
			Code:  api.ErrorCodeInvalidCredentials,
		})
	case errors.Is(err, portal.ErrSessionExpired):
		c.JSON(http.StatusUnauthorized, api.APIError{
			Error: "Your session expired, please log in again",
			Code:  api.ErrorCodeSessionExpired,
		})
	case errors.Is(err, portal.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, api.APIError{
			Error: "Authentication required",
			Code:  api.ErrorCodeNotAuthenticated,
		})
	case errors.Is(err, portal.ErrNotOwner):
		c.JSON(http.StatusForbidden, api.APIError{
			Error: "You do not own this record",
			Code:  api.ErrorCodeNotOwner,
		})
	case errors.Is(err, portal.ErrAdminOnly):
		c.JSON(http.StatusForbidden, api.APIError{
			Error: "Admin role required",
			Code:  api.ErrorCodeAdminOnly,
		})
	case errors.Is(err, interfaces.ErrNotFound):
		c.JSON(http.StatusNotFound, api.APIError{
			Error: "Record not found",
			Code:  api.ErrorCodeNotFound,
		})
	case errors.Is(err, integrity.ErrViolation):
		c.JSON(http.StatusConflict, api.APIError{
			Error: "Integrity check failed: record was modified after signing",
			Code:  api.ErrorCodeIntegrityViolation,
		})
	case errors.Is(err, interfaces.ErrStoreUnavailable):
		c.JSON(http.StatusBadGateway, api.APIError{
			Error:   "Record store is unreachable",
			Code:    api.ErrorCodeStoreUnavailable,
			Details: "no automatic retry, please try the action again",
		})
	default:
		log.Printf("[HANDLER] Internal error: %v", err)
		c.JSON(http.StatusInternalServerError, api.APIError{
			Error: "Internal server error",
			Code:  api.ErrorCodeInternalError,
		})
	}
}
