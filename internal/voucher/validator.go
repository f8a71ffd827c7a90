package voucher

import (
	"context"
	"fmt"
	"sync"

	"lastbite/internal/model"

	"github.com/rs/zerolog"
)

// validator implements Validator over a fixed collection of voucher sets.
// Sets are read-only after initialisation, so lookups need no locking.
type validator struct {
	sets   []Set
	logger zerolog.Logger
}

// NewValidator creates a voucher validator, loading all configured voucher
// files concurrently at initialisation time.
func NewValidator(ctx context.Context, paths []string, loader Loader, logger zerolog.Logger) (Validator, error) {
	logger = logger.With().Str("component", "voucher-validator").Logger()

	logger.Info().Int("file_count", len(paths)).Msg("initialising voucher validator")

	sets := make([]Set, len(paths))
	errs := make([]error, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(index int, p string) {
			defer wg.Done()
			sets[index], errs[index] = loader.Load(ctx, p)
		}(i, path)
	}
	wg.Wait()

	total := 0
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("failed to load voucher file %s: %w", paths[i], err)
		}
		total += sets[i].Size()
	}

	logger.Info().Int("total_codes", total).Msg("voucher validator initialised")

	return &validator{sets: sets, logger: logger}, nil
}

// Validate checks if a voucher code is valid: between 8 and 10 characters
// and present in at least one loaded voucher set.
func (v *validator) Validate(ctx context.Context, code string) error {
	if len(code) < 8 || len(code) > 10 {
		v.logger.Debug().
			Str("voucher_code", code).
			Int("length", len(code)).
			Msg("voucher code length invalid")
		return model.ErrInvalidVoucherLength
	}

	for _, set := range v.sets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if set.Contains(code) {
			v.logger.Debug().Str("voucher_code", code).Msg("voucher code validated")
			return nil
		}
	}

	v.logger.Debug().Str("voucher_code", code).Msg("voucher code not found in any set")
	return model.ErrInvalidVoucherCode
}

// Close releases resources held by the validator.
func (v *validator) Close() error {
	v.sets = nil
	return nil
}
