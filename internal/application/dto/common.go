package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	// Violations solo viene en errores VALIDATION: la lista completa por SKU,
	// nunca truncada al primer error.
	Violations []ViolationDTO `json:"violations,omitempty"`
}

// ViolationDTO violaciones de validación de una línea.
type ViolationDTO struct {
	SKUID    string   `json:"sku_id"`
	Messages []string `json:"messages"`
}
