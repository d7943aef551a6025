// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation indicates malformed or inconsistent input, rejected before
// any conflict check or write runs.
var ErrValidation = errors.New("validation failed")

// ErrTenantRequired indicates the tenant context could not be resolved.
// There is no default tenant: every operation downstream fails closed.
var ErrTenantRequired = errors.New("tenant could not be resolved")

// ErrTenantSuspended indicates the resolved tenant is not active.
var ErrTenantSuspended = errors.New("tenant is suspended")

// ErrRetryable indicates a serialization failure or constraint violation
// detected at commit time. The write coordinator re-runs the whole
// validate-then-commit cycle a bounded number of times before giving up.
var ErrRetryable = errors.New("transaction must be retried")
