package resilience

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"marked transient", NewTransientError(errors.New("boom")), true},
		{"wrapped transient", fmt.Errorf("store: %w", NewTransientError(errors.New("boom"))), true},
		{"conn reset syscall", syscall.ECONNRESET, true},
		{"conn refused syscall", syscall.ECONNREFUSED, true},
		{"reset by peer text", errors.New("write tcp: connection reset by peer"), true},
		{"broken pipe text", errors.New("write: broken pipe"), true},
		{"io timeout text", errors.New("dial tcp: i/o timeout"), true},
		{"db starting up", errors.New("FATAL: the database system is starting up"), true},
		{"deadlock", errors.New("ERROR: deadlock detected"), true},
		{"constraint violation", errors.New("duplicate key value violates unique constraint"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTransient(tc.err))
		})
	}
}

func TestTransientErrorUnwrap(t *testing.T) {
	t.Parallel()

	inner := errors.New("inner")
	te := NewTransientError(inner)

	assert.Equal(t, "inner", te.Error())
	assert.ErrorIs(t, te, inner)
}
