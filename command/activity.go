package command

import (
	"context"
	"strings"

	"github.com/goliatone/go-activitystream/pkg/types"
	gocommand "github.com/goliatone/go-command"
)

// ActivityAddInput wraps an activity to record.
type ActivityAddInput struct {
	Activity types.Activity
}

// Type implements gocommand.Message.
func (ActivityAddInput) Type() string {
	return "command.activity.add"
}

// Validate implements gocommand.Message.
func (input ActivityAddInput) Validate() error {
	if strings.TrimSpace(input.Activity.Verb) == "" {
		return ErrVerbRequired
	}
	return nil
}

// ActivityAddCommand records activities through the stream service.
type ActivityAddCommand struct {
	service ActivityService
}

// ActivityAddConfig wires dependencies for the add command.
type ActivityAddConfig struct {
	Service ActivityService
}

// NewActivityAddCommand constructs the add handler.
func NewActivityAddCommand(cfg ActivityAddConfig) *ActivityAddCommand {
	return &ActivityAddCommand{service: cfg.Service}
}

var _ gocommand.Commander[ActivityAddInput] = (*ActivityAddCommand)(nil)

// Execute validates and records the supplied activity.
func (c *ActivityAddCommand) Execute(ctx context.Context, input ActivityAddInput) error {
	if c.service == nil {
		return ErrMissingService
	}
	if err := input.Validate(); err != nil {
		return err
	}
	activity := input.Activity
	_, err := c.service.AddActivity(ctx, &activity)
	return err
}

// ActivityRemoveInput names the activities to delete.
type ActivityRemoveInput struct {
	IDs []int64
}

// Type implements gocommand.Message.
func (ActivityRemoveInput) Type() string {
	return "command.activity.remove"
}

// Validate implements gocommand.Message.
func (input ActivityRemoveInput) Validate() error {
	if len(input.IDs) == 0 {
		return ErrActivityIDsRequired
	}
	return nil
}

// ActivityRemoveCommand deletes activities and their derived rows.
type ActivityRemoveCommand struct {
	service ActivityService
}

// ActivityRemoveConfig wires dependencies for the remove command.
type ActivityRemoveConfig struct {
	Service ActivityService
}

// NewActivityRemoveCommand constructs the remove handler.
func NewActivityRemoveCommand(cfg ActivityRemoveConfig) *ActivityRemoveCommand {
	return &ActivityRemoveCommand{service: cfg.Service}
}

var _ gocommand.Commander[ActivityRemoveInput] = (*ActivityRemoveCommand)(nil)

// Execute removes the named activities.
func (c *ActivityRemoveCommand) Execute(ctx context.Context, input ActivityRemoveInput) error {
	if c.service == nil {
		return ErrMissingService
	}
	if err := input.Validate(); err != nil {
		return err
	}
	return c.service.RemoveActivities(ctx, input.IDs)
}
