// Package apierror provides the JSON error envelopes returned by the API.
// Every 4xx/5xx body goes through here so internal details never reach clients.
package apierror

// APIError is the canonical error envelope for 4xx/5xx responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError carries per-field messages from request binding.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Fields: fields}
}

// InsufficientStockError tells the client how many units were asked for and
// how many could be served.
type InsufficientStockError struct {
	Detail    string `json:"detail"`
	ProductID string `json:"product_id,omitempty"`
	ShopID    string `json:"shop_id,omitempty"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

func NewInsufficientStock(productID, shopID string, requested, available int) *InsufficientStockError {
	return &InsufficientStockError{
		Detail:    "insufficient stock",
		ProductID: productID,
		ShopID:    shopID,
		Requested: requested,
		Available: available,
	}
}
