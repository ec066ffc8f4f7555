package command

import (
	"context"

	"github.com/goliatone/go-activitystream/pkg/types"
)

// ActivityService is the slice of the stream service the command handlers
// drive. *stream.Service satisfies it.
type ActivityService interface {
	AddActivity(ctx context.Context, activity *types.Activity) (*types.Activity, error)
	RemoveActivities(ctx context.Context, ids []int64) error
	Query(ctx context.Context, filterID string, params map[string]any, offset, limit int) ([]*types.Activity, error)
	AddComment(ctx context.Context, activityID int64, entry types.ThreadEntry) (types.ThreadEntry, error)
	RemoveComment(ctx context.Context, activityID int64, entryID string) error
	AddReply(ctx context.Context, activityID int64, entry types.ThreadEntry) (types.ThreadEntry, error)
	RemoveReply(ctx context.Context, activityID int64, entryID string) error
	ListComments(ctx context.Context, activityID int64) ([]types.ThreadEntry, error)
	ListReplies(ctx context.Context, activityID int64) ([]types.ThreadEntry, error)
}
