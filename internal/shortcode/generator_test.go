package shortcode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestGenerator() *Generator {
	return NewGenerator(zap.NewNop().Sugar())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{"abc", nil},
		{"A-b_9", nil},
		{strings.Repeat("x", 32), nil},
		{"", ErrInvalid},
		{strings.Repeat("x", 33), ErrInvalid},
		{"has space", ErrInvalid},
		{"slash/code", ErrInvalid},
		{"ünï", ErrInvalid},
		{"api", ErrReserved},
		{"Health", ErrReserved},
		{"SWAGGER", ErrReserved},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := Validate(tt.code)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAllocate_Requested(t *testing.T) {
	g := newTestGenerator()
	var reserved []string
	reserve := func(code string) error {
		reserved = append(reserved, code)
		return nil
	}

	code, err := g.Allocate(context.Background(), "my-code", reserve)
	require.NoError(t, err)
	assert.Equal(t, "my-code", code)
	assert.Equal(t, []string{"my-code"}, reserved)
}

func TestAllocate_RequestedConflict(t *testing.T) {
	g := newTestGenerator()
	calls := 0
	_, err := g.Allocate(context.Background(), "taken", func(string) error {
		calls++
		return fmt.Errorf("insert: %w", ErrConflict)
	})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 1, calls, "custom codes are never retried")
}

func TestAllocate_RequestedInvalidSkipsReserve(t *testing.T) {
	g := newTestGenerator()
	_, err := g.Allocate(context.Background(), "bad code", func(string) error {
		t.Fatal("reserve must not be called")
		return nil
	})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestAllocate_RandomRetriesOnConflict(t *testing.T) {
	g := newTestGenerator()
	calls := 0
	code, err := g.Allocate(context.Background(), "", func(code string) error {
		calls++
		if calls < 3 {
			return ErrConflict
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, code, CodeLength)
	assert.NoError(t, Validate(code))
}

func TestAllocate_Exhausted(t *testing.T) {
	g := newTestGenerator()
	calls := 0
	_, err := g.Allocate(context.Background(), "", func(string) error {
		calls++
		return ErrConflict
	})
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, MaxAttempts, calls)
}

func TestAllocate_OtherErrorStops(t *testing.T) {
	g := newTestGenerator()
	boom := errors.New("db down")
	calls := 0
	_, err := g.Allocate(context.Background(), "", func(string) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestAllocate_ContextCancelled(t *testing.T) {
	g := newTestGenerator()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.Allocate(ctx, "", func(string) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerator_StartFillsChannel(t *testing.T) {
	g := newTestGenerator()
	g.Start()
	defer g.Stop()

	assert.Eventually(t, func() bool {
		return len(g.codeChan) == ChannelBufferSize
	}, 5*time.Second, 10*time.Millisecond)

	code, err := g.GetCode()
	require.NoError(t, err)
	assert.Len(t, code, CodeLength)

	g.Stop()
	g.Stop()
}
