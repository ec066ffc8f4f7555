package command

import (
	"errors"

	"github.com/goliatone/go-activitystream/pkg/types"
)

var (
	// ErrMissingService indicates no activity service was wired.
	ErrMissingService = errors.New("go-activitystream: activity service required")
	// ErrActivityIDRequired occurs when a thread command omits the activity id.
	ErrActivityIDRequired = errors.New("go-activitystream: activity id required")
	// ErrActivityIDsRequired occurs when a removal command has no targets.
	ErrActivityIDsRequired = errors.New("go-activitystream: activity ids required")
	// ErrEntryIDRequired occurs when a thread removal omits the entry id.
	ErrEntryIDRequired = errors.New("go-activitystream: thread entry id required")
	// ErrCommentsDisabled indicates commenting is disabled via feature gate.
	ErrCommentsDisabled = errors.New("go-activitystream: comments disabled")
	// ErrRepliesDisabled indicates replies are disabled via feature gate.
	ErrRepliesDisabled = errors.New("go-activitystream: replies disabled")
	// ErrVerbRequired indicates the activity payload is missing a verb.
	ErrVerbRequired = types.ErrVerbRequired
	// ErrMessageRequired indicates a thread entry payload has no message.
	ErrMessageRequired = types.ErrMessageRequired
)
