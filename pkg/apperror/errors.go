package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Payment protocol (PAY) ----

func ErrMissingParam(name string) *AppError {
	return New("PAY_001", fmt.Sprintf("missing parameter: %s", name), http.StatusBadRequest)
}

func ErrInvalidParam(name string) *AppError {
	return New("PAY_001", fmt.Sprintf("invalid parameter: %s", name), http.StatusBadRequest)
}

func ErrInvalidAmount() *AppError {
	return New("PAY_002", "invalid amount", http.StatusBadRequest)
}

func ErrMerchantMissing() *AppError {
	return New("PAY_003", "merchant not found", http.StatusNotFound)
}

func ErrMerchantInactive() *AppError {
	return New("PAY_004", "merchant is disabled", http.StatusForbidden)
}

func ErrBadSign() *AppError {
	return New("PAY_005", "signature mismatch", http.StatusUnauthorized)
}

func ErrCredentialMissing() *AppError {
	return New("PAY_006", "no active wallet credential", http.StatusConflict)
}

func ErrAmountConflict() *AppError {
	return New("PAY_007", "amount slots exhausted, retry later", http.StatusConflict)
}

func ErrTradeNoExhausted() *AppError {
	return New("PAY_008", "trade number generation failed", http.StatusInternalServerError)
}

func ErrOrderMissing() *AppError {
	return New("PAY_009", "order not found", http.StatusNotFound)
}

func ErrDuplicateOrder() *AppError {
	return New("PAY_010", "out_trade_no already used", http.StatusConflict)
}

func ErrKeyMismatch() *AppError {
	return New("PAY_011", "merchant key mismatch", http.StatusUnauthorized)
}

func ErrOrderNotPending() *AppError {
	return New("PAY_012", "order is not pending", http.StatusConflict)
}

// ---- Wallet open-API (WLT) ----

func ErrWalletQuery(err error) *AppError {
	return Wrap("WLT_001", "wallet balance query failed", http.StatusBadGateway, err)
}

func ErrWalletRejected(code, msg string) *AppError {
	return New("WLT_002", fmt.Sprintf("wallet gateway rejected request: %s %s", code, msg), http.StatusBadGateway)
}

// ---- Callback dispatch (CBK) ----

func ErrCallbackDispatch(err error) *AppError {
	return Wrap("CBK_001", "callback dispatch failed", http.StatusBadGateway, err)
}

func ErrCallbackNotAllowed() *AppError {
	return New("CBK_002", "order has no notify url or is expired", http.StatusConflict)
}

// ---- Operator authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_002", "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_003", "Encryption service failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a PAY_001-style validation error.
func Validation(message string) *AppError {
	return New("PAY_001", message, http.StatusBadRequest)
}

// NotFound reports a missing named entity.
func NotFound(entity string) *AppError {
	return New("SYS_004", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}
