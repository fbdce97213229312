package dto

import "net/http"

// Codes raised by the HTTP layer itself. Domain errors bring their own.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeUnavailable     = "SERVICE_UNAVAILABLE"
)

var statusCodes = map[int][]string{
	http.StatusBadRequest: {
		ErrCodeValidation, ErrCodeBadRequest,
		"INVALID_QUANTITY", "MISSING_SESSION", "INVALID_POSTAL_CODE", "EMPTY_CART",
		"MISSING_CUSTOMER_NAME", "MISSING_HOUSE_NUMBER", "MISSING_SHIPPING_SELECTION",
		"MISSING_POSTAL_CODE", "EMPTY_ORDER",
	},
	http.StatusNotFound: {
		ErrCodeNotFound,
		"PRODUCT_NOT_FOUND", "CART_NOT_FOUND", "CART_ITEM_NOT_FOUND", "POSTAL_CODE_NOT_FOUND",
		"QUOTE_SESSION_NOT_FOUND", "SHIPPING_QUOTE_NOT_FOUND", "ORDER_NOT_FOUND",
	},
	http.StatusConflict: {
		"ALREADY_EXISTS", "QUOTE_SUPERSEDED", "SUBMISSION_IN_PROGRESS",
	},
	http.StatusRequestEntityTooLarge: {ErrCodeRequestTooLarge},
	http.StatusUnprocessableEntity: {
		"INVALID_PRICE", "NO_SHIPPING_OPTIONS", "SHIPPING_QUOTE_ERROR", "NO_STORE_LINK",
	},
	http.StatusTooManyRequests:     {ErrCodeRateLimited},
	http.StatusInternalServerError: {ErrCodeInternal, "ORDER_PERSIST_FAILED"},
	http.StatusBadGateway:          {"POSTAL_LOOKUP_FAILED", "SHIPPING_RATES_FAILED"},
	http.StatusServiceUnavailable: {
		ErrCodeUnavailable, "SHIPPING_NOT_CONFIGURED", "MISSING_WHATSAPP_NUMBER",
	},
}

var codeStatus = func() map[string]int {
	m := make(map[string]int)
	for status, codes := range statusCodes {
		for _, code := range codes {
			m[code] = status
		}
	}
	return m
}()

// GetHTTPStatus maps an error code to its response status; unknown codes
// are 500.
func GetHTTPStatus(code string) int {
	if status, ok := codeStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
