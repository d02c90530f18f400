package service

import (
	"context"
	"sync"

	appErrors "github.com/noah-isme/academic-tracker/pkg/errors"
)

type confirmationState int

const (
	confirmationPending confirmationState = iota
	confirmationRunning
	confirmationCancelled
	confirmationDone
	confirmationRetracted
)

// Confirmation is the second half of a destructive command. Requesting it has
// no side effects; the action runs only on Confirm and at most once.
type Confirmation struct {
	subject string

	mu     sync.Mutex
	state  confirmationState
	action func(ctx context.Context) error
}

func newConfirmation(subject string, action func(ctx context.Context) error) *Confirmation {
	return &Confirmation{subject: subject, action: action}
}

// Subject names the entity that would be affected.
func (c *Confirmation) Subject() string { return c.subject }

// Pending reports whether the confirmation can still be confirmed.
func (c *Confirmation) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == confirmationPending
}

// Confirm runs the action. A failed action retracts the confirmation; the
// caller has to request a new one to try again.
func (c *Confirmation) Confirm(ctx context.Context) error {
	c.mu.Lock()
	if c.state != confirmationPending {
		c.mu.Unlock()
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "confirmation for "+c.subject+" is no longer pending")
	}
	c.state = confirmationRunning
	c.mu.Unlock()

	err := c.action(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = confirmationRetracted
		return err
	}
	c.state = confirmationDone
	return nil
}

// Cancel drops a pending confirmation. It is a no-op in any other state.
func (c *Confirmation) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == confirmationPending {
		c.state = confirmationCancelled
	}
}
