package service

import "errors"

var (
	// ErrProductNotFound means no backend resolved the barcode.
	ErrProductNotFound = errors.New("product not found")

	// ErrNoDataSource means no lookup backend is configured.
	ErrNoDataSource = errors.New("no product data source configured")

	// ErrInvalidSubmission wraps a rejected stock submission.
	ErrInvalidSubmission = errors.New("invalid submission")

	// ErrInvalidCredentials is returned by Login for a bad username or password.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInvalidSession means the token is unknown, malformed or expired.
	ErrInvalidSession = errors.New("invalid or expired session")
)

// InvalidFieldError names the submission field that failed validation.
// It matches ErrInvalidSubmission under errors.Is.
type InvalidFieldError struct {
	Field   string
	Message string
}

func (e *InvalidFieldError) Error() string {
	return ErrInvalidSubmission.Error() + ": " + e.Field + " " + e.Message
}

func (e *InvalidFieldError) Unwrap() error { return ErrInvalidSubmission }
