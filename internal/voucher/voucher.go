// Package voucher validates marketplace voucher codes against code sets
// published as gzipped one-code-per-line files, loaded from the local file
// system or S3 at startup.
package voucher

import (
	"context"
)

// Validator defines the interface for voucher code validation.
type Validator interface {
	// Validate checks if a voucher code is valid.
	// A valid voucher code must:
	// - Be between 8 and 10 characters in length
	// - Appear in at least one loaded voucher set
	Validate(ctx context.Context, code string) error

	// Close releases resources held by the validator.
	Close() error
}

// Set represents a set of voucher codes for fast lookup.
type Set interface {
	// Contains checks if a voucher code exists in the set.
	Contains(code string) bool

	// Size returns the number of codes in the set.
	Size() int
}

// Loader defines the interface for loading voucher files.
type Loader interface {
	// Load reads a gzipped voucher file and returns a Set.
	Load(ctx context.Context, path string) (Set, error)
}
