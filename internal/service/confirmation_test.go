package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/academic-tracker/pkg/errors"
)

func TestConfirmationRunsOnce(t *testing.T) {
	calls := 0
	c := newConfirmation("etapa 1", func(ctx context.Context) error {
		calls++
		return nil
	})
	assert.Equal(t, "etapa 1", c.Subject())
	assert.True(t, c.Pending())
	assert.Zero(t, calls)

	require.NoError(t, c.Confirm(context.Background()))
	assert.False(t, c.Pending())

	err := c.Confirm(context.Background())
	assert.True(t, errors.Is(err, appErrors.ErrPreconditionFailed))
	assert.Equal(t, 1, calls)
}

func TestConfirmationCancel(t *testing.T) {
	calls := 0
	c := newConfirmation("post-1", func(ctx context.Context) error {
		calls++
		return nil
	})
	c.Cancel()
	c.Cancel()

	assert.False(t, c.Pending())
	assert.True(t, errors.Is(c.Confirm(context.Background()), appErrors.ErrPreconditionFailed))
	assert.Zero(t, calls)
}

func TestConfirmationFailureRetracts(t *testing.T) {
	boom := errors.New("boom")
	c := newConfirmation("post-1", func(ctx context.Context) error { return boom })

	assert.ErrorIs(t, c.Confirm(context.Background()), boom)
	assert.False(t, c.Pending())
	c.Cancel()
	assert.True(t, errors.Is(c.Confirm(context.Background()), appErrors.ErrPreconditionFailed))
}
