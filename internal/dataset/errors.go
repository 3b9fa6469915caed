package dataset

import "errors"

var (
	// ErrDuplicateKey indicates a transaction identifier collision.
	ErrDuplicateKey = errors.New("dataset: duplicate transaction identifier")
	// ErrDanglingReference indicates a user or product reference that does
	// not resolve to a record produced in the same run.
	ErrDanglingReference = errors.New("dataset: dangling reference")
	// ErrNullField indicates a missing required field.
	ErrNullField = errors.New("dataset: required field is null")
	// ErrTimestampOrder indicates a login that is not before its logout.
	ErrTimestampOrder = errors.New("dataset: login not before logout")
	// ErrInvalidField indicates a field that fails format or range checks.
	ErrInvalidField = errors.New("dataset: invalid field value")
)
