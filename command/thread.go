package command

import (
	"context"
	"strings"

	"github.com/goliatone/go-activitystream/pkg/types"
	gocommand "github.com/goliatone/go-command"
	featuregate "github.com/goliatone/go-featuregate/gate"
)

// ThreadEntryAddInput appends a comment or reply to an activity.
type ThreadEntryAddInput struct {
	ActivityID int64
	Kind       types.ThreadKind
	Entry      types.ThreadEntry
}

// Type implements gocommand.Message.
func (input ThreadEntryAddInput) Type() string {
	return "command.activity.thread.add." + string(input.Kind)
}

// Validate implements gocommand.Message.
func (input ThreadEntryAddInput) Validate() error {
	if input.ActivityID == 0 {
		return ErrActivityIDRequired
	}
	if strings.TrimSpace(input.Entry.Message) == "" {
		return ErrMessageRequired
	}
	return nil
}

// ThreadEntryAddCommand appends thread entries, honoring the comment and
// reply feature gates.
type ThreadEntryAddCommand struct {
	service ActivityService
	gate    featuregate.FeatureGate
}

// ThreadEntryAddConfig wires dependencies for the append handler.
type ThreadEntryAddConfig struct {
	Service     ActivityService
	FeatureGate featuregate.FeatureGate
}

// NewThreadEntryAddCommand constructs the append handler.
func NewThreadEntryAddCommand(cfg ThreadEntryAddConfig) *ThreadEntryAddCommand {
	return &ThreadEntryAddCommand{service: cfg.Service, gate: cfg.FeatureGate}
}

var _ gocommand.Commander[ThreadEntryAddInput] = (*ThreadEntryAddCommand)(nil)

// Execute appends the entry to the activity's comment or reply log.
func (c *ThreadEntryAddCommand) Execute(ctx context.Context, input ThreadEntryAddInput) error {
	if c.service == nil {
		return ErrMissingService
	}
	if err := input.Validate(); err != nil {
		return err
	}
	if err := c.checkGate(ctx, input.Kind); err != nil {
		return err
	}
	if input.Kind == types.ThreadKindReply {
		_, err := c.service.AddReply(ctx, input.ActivityID, input.Entry)
		return err
	}
	_, err := c.service.AddComment(ctx, input.ActivityID, input.Entry)
	return err
}

func (c *ThreadEntryAddCommand) checkGate(ctx context.Context, kind types.ThreadKind) error {
	key := featureActivityComments
	disabled := ErrCommentsDisabled
	if kind == types.ThreadKindReply {
		key = featureActivityReplies
		disabled = ErrRepliesDisabled
	}
	enabled, err := featureEnabled(ctx, c.gate, key)
	if err != nil {
		return err
	}
	if !enabled {
		return disabled
	}
	return nil
}

// ThreadEntryRemoveInput removes a comment or reply by its entry id.
type ThreadEntryRemoveInput struct {
	ActivityID int64
	Kind       types.ThreadKind
	EntryID    string
}

// Type implements gocommand.Message.
func (input ThreadEntryRemoveInput) Type() string {
	return "command.activity.thread.remove." + string(input.Kind)
}

// Validate implements gocommand.Message.
func (input ThreadEntryRemoveInput) Validate() error {
	if input.ActivityID == 0 {
		return ErrActivityIDRequired
	}
	if strings.TrimSpace(input.EntryID) == "" {
		return ErrEntryIDRequired
	}
	return nil
}

// ThreadEntryRemoveCommand removes thread entries. Removal stays available
// even when the append gates are off so moderation keeps working.
type ThreadEntryRemoveCommand struct {
	service ActivityService
}

// ThreadEntryRemoveConfig wires dependencies for the removal handler.
type ThreadEntryRemoveConfig struct {
	Service ActivityService
}

// NewThreadEntryRemoveCommand constructs the removal handler.
func NewThreadEntryRemoveCommand(cfg ThreadEntryRemoveConfig) *ThreadEntryRemoveCommand {
	return &ThreadEntryRemoveCommand{service: cfg.Service}
}

var _ gocommand.Commander[ThreadEntryRemoveInput] = (*ThreadEntryRemoveCommand)(nil)

// Execute removes the entry; unknown entry ids are a no-op.
func (c *ThreadEntryRemoveCommand) Execute(ctx context.Context, input ThreadEntryRemoveInput) error {
	if c.service == nil {
		return ErrMissingService
	}
	if err := input.Validate(); err != nil {
		return err
	}
	if input.Kind == types.ThreadKindReply {
		return c.service.RemoveReply(ctx, input.ActivityID, input.EntryID)
	}
	return c.service.RemoveComment(ctx, input.ActivityID, input.EntryID)
}
