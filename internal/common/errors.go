// Package common defines shared sentinel errors used across BirthKeeper
// components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Lifecycle store errors.
	ErrIllegalTransition = errors.New("illegal status transition")

	// Backup codec errors.
	ErrBackupVersionMismatch = errors.New("backup version mismatch")
	ErrBackupMalformed       = errors.New("backup payload malformed")

	// Scheduling errors. ErrExactScheduleDenied means the platform refused a
	// precise one-shot trigger; callers fall back to the daily scan path.
	ErrExactScheduleDenied = errors.New("exact schedule denied")

	// Validation errors.
	ErrInvalidIDCard = errors.New("invalid id card number")
)
