package apperrors

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrMissingLocality   = errors.New("project has no resolved city/area")
	ErrNoComparableData  = errors.New("no comparable competitor data for locality")
	ErrMalformedAnalysis = errors.New("reasoning engine returned malformed analysis")
)
