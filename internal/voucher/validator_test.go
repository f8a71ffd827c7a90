package voucher

import (
	"context"
	"errors"
	"testing"

	"lastbite/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLoader returns pre-built sets keyed by path.
type stubLoader struct {
	sets map[string]Set
	err  error
}

func (l *stubLoader) Load(_ context.Context, path string) (Set, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.sets[path], nil
}

func buildSet(codes ...string) Set {
	s := NewMapSet(len(codes)).(*mapSet)
	for _, c := range codes {
		s.Add(c)
	}
	return s
}

func TestValidator_ValidCode(t *testing.T) {
	loader := &stubLoader{sets: map[string]Set{
		"a.gz": buildSet("SAVE10NOW"),
		"b.gz": buildSet("OTHERCODE"),
	}}

	v, err := NewValidator(context.Background(), []string{"a.gz", "b.gz"}, loader, zerolog.Nop())
	require.NoError(t, err)
	defer v.Close()

	assert.NoError(t, v.Validate(context.Background(), "SAVE10NOW"))
	assert.NoError(t, v.Validate(context.Background(), "OTHERCODE"))
}

func TestValidator_UnknownCode(t *testing.T) {
	loader := &stubLoader{sets: map[string]Set{"a.gz": buildSet("SAVE10NOW")}}

	v, err := NewValidator(context.Background(), []string{"a.gz"}, loader, zerolog.Nop())
	require.NoError(t, err)

	err = v.Validate(context.Background(), "NOSUCHONE")
	assert.ErrorIs(t, err, model.ErrInvalidVoucherCode)
}

func TestValidator_LengthBounds(t *testing.T) {
	loader := &stubLoader{sets: map[string]Set{"a.gz": buildSet("SAVE10NOW")}}

	v, err := NewValidator(context.Background(), []string{"a.gz"}, loader, zerolog.Nop())
	require.NoError(t, err)

	tests := []struct {
		name string
		code string
		want error
	}{
		{"too short", "SHORT", model.ErrInvalidVoucherLength},
		{"seven chars", "SEVENXX", model.ErrInvalidVoucherLength},
		{"eight chars unknown", "EIGHTCHH", model.ErrInvalidVoucherCode},
		{"eleven chars", "ELEVENCHARS", model.ErrInvalidVoucherLength},
		{"empty", "", model.ErrInvalidVoucherLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, v.Validate(context.Background(), tt.code), tt.want)
		})
	}
}

func TestValidator_LoadFailure(t *testing.T) {
	loader := &stubLoader{err: errors.New("bucket unreachable")}

	v, err := NewValidator(context.Background(), []string{"a.gz"}, loader, zerolog.Nop())
	assert.Error(t, err)
	assert.Nil(t, v)
}
