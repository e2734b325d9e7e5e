// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity (rule category, variant) does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation indicates caller input failed validation.
// Wrap it with fmt.Errorf("%w: detail", ErrValidation) so adapters can map it to 400.
var ErrValidation = errors.New("validation failed")
