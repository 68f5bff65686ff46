package api

// Portal API request/response models

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	Identity string `json:"identity"`
	Role     string `json:"role"`
}

type CreateRecipientRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RecipientView omits the credential hash; it never leaves the server.
type RecipientView struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

type DeleteResponse struct {
	ReceiptID string `json:"receipt_id"`
	Deleted   bool   `json:"deleted"`
}
