package model

import "errors"

var (
	ErrValidation         = errors.New("validation error")           // 400
	ErrAmountMismatch     = errors.New("payment amount mismatch")    // 400
	ErrVerificationFailed = errors.New("verification failed")        // 400
	ErrUnauthorized       = errors.New("unauthorized")               // 401
	ErrOrderNotFound      = errors.New("order not found")            // 404
	ErrOrderAlreadyPaid   = errors.New("order already paid")         // 409
	ErrReferenceConflict  = errors.New("reference conflict")         // 409
	ErrRateLimited        = errors.New("rate limited")               // 429
	ErrGateway            = errors.New("payment gateway error")      // 500
	ErrInconsistency      = errors.New("inconsistent payment state") // 500 unless joined with a 4xx cause
	ErrLockTimeout        = errors.New("lock wait timeout")
)
