package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a resource does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrPermissionDenied is returned when the caller may not act on a resource
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned on duplicates or concurrent modification
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when the caller is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrQuotationAlreadyApproved is returned when approving an approved quotation
	ErrQuotationAlreadyApproved = errors.New("quotation is already approved")

	// ErrQuotationAlreadyRejected is returned when rejecting a rejected quotation
	ErrQuotationAlreadyRejected = errors.New("quotation is already rejected")

	// ErrQuotationNotPending is returned when editing a quotation past review
	ErrQuotationNotPending = errors.New("quotation is no longer pending")

	// ErrQuotationNotApproved is returned for operations that require an
	// approved quotation, such as setting the margin or rendering the PDF
	ErrQuotationNotApproved = errors.New("quotation is not approved")

	// ErrLeadAlreadyConverted is returned when converting a converted lead again
	ErrLeadAlreadyConverted = errors.New("lead is already converted")
)
