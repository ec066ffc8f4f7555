// Package query exposes read-model helpers over the activity stream as
// go-command queriers, so hosts can dispatch reads through the same bus as
// the write commands.
package query

import (
	"context"

	"github.com/goliatone/go-activitystream/command"
	"github.com/goliatone/go-activitystream/pkg/types"
	gocommand "github.com/goliatone/go-command"
)

// StreamFilterInput selects a filtered page of the activity stream.
type StreamFilterInput struct {
	FilterID string
	Params   map[string]any
	Offset   int
	Limit    int
}

// Type implements gocommand.Message.
func (StreamFilterInput) Type() string {
	return "query.activity.stream"
}

// Validate implements gocommand.Message. An empty filter id resolves to the
// unfiltered stream, so there is nothing to reject.
func (StreamFilterInput) Validate() error {
	return nil
}

// StreamQuery serves filtered activity pages.
type StreamQuery struct {
	service command.ActivityService
}

// NewStreamQuery constructs the stream query helper.
func NewStreamQuery(service command.ActivityService) *StreamQuery {
	return &StreamQuery{service: service}
}

var _ gocommand.Querier[StreamFilterInput, []*types.Activity] = (*StreamQuery)(nil)

// Query fetches a page of activities through the stream service.
func (q *StreamQuery) Query(ctx context.Context, input StreamFilterInput) ([]*types.Activity, error) {
	if q.service == nil {
		return nil, command.ErrMissingService
	}
	return q.service.Query(ctx, input.FilterID, input.Params, input.Offset, input.Limit)
}

// ThreadInput selects one activity's comment or reply log.
type ThreadInput struct {
	ActivityID int64
	Kind       types.ThreadKind
}

// Type implements gocommand.Message.
func (input ThreadInput) Type() string {
	return "query.activity.thread." + string(input.Kind)
}

// Validate implements gocommand.Message.
func (input ThreadInput) Validate() error {
	if input.ActivityID == 0 {
		return command.ErrActivityIDRequired
	}
	return nil
}

// ThreadQuery lists the thread entries of an activity.
type ThreadQuery struct {
	service command.ActivityService
}

// NewThreadQuery constructs the thread query helper.
func NewThreadQuery(service command.ActivityService) *ThreadQuery {
	return &ThreadQuery{service: service}
}

var _ gocommand.Querier[ThreadInput, []types.ThreadEntry] = (*ThreadQuery)(nil)

// Query returns the entries in append order.
func (q *ThreadQuery) Query(ctx context.Context, input ThreadInput) ([]types.ThreadEntry, error) {
	if q.service == nil {
		return nil, command.ErrMissingService
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if input.Kind == types.ThreadKindReply {
		return q.service.ListReplies(ctx, input.ActivityID)
	}
	return q.service.ListComments(ctx, input.ActivityID)
}
