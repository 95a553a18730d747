package partytb

import "errors"

var (
	// ErrInvalidFilter indicates the filter failed validation.
	ErrInvalidFilter = errors.New("partytb: invalid filter")
	// ErrUnknownPartyType indicates an unsupported party type.
	ErrUnknownPartyType = errors.New("partytb: unknown party type")
	// ErrCompanyNotFound indicates the company has no master record.
	ErrCompanyNotFound = errors.New("partytb: company not found")
)
