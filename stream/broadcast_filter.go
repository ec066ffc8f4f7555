package stream

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/goliatone/go-activitystream/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BroadcastStreamFilterID is the registration id of the built-in fan-out
// filter.
const BroadcastStreamFilterID = "broadcastStream"

// BroadcastSeenByParam selects whose feed a broadcast query reads.
const BroadcastSeenByParam = "seenBy"

// FeedEntry is one derived row tying an activity to a party that should see
// it in their feed.
type FeedEntry struct {
	bun.BaseModel `bun:"table:activity_feed_entries,alias:fe"`

	ID         uuid.UUID `bun:"id,pk,type:uuid"`
	FilterID   string    `bun:"filter_id,notnull"`
	ActivityID int64     `bun:"activity_id,notnull"`
	SeenBy     string    `bun:"seen_by,notnull"`
	Verb       string    `bun:"verb"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
}

// AudienceResolver decides which parties should see a broadcast activity in
// their feeds.
type AudienceResolver interface {
	Audience(ctx context.Context, activity *types.Activity) ([]string, error)
}

// AudienceResolverFunc adapts a function to AudienceResolver.
type AudienceResolverFunc func(ctx context.Context, activity *types.Activity) ([]string, error)

// Audience implements AudienceResolver.
func (f AudienceResolverFunc) Audience(ctx context.Context, activity *types.Activity) ([]string, error) {
	return f(ctx, activity)
}

// BroadcastStreamFilterConfig wires the broadcast filter.
type BroadcastStreamFilterConfig struct {
	DB       *bun.DB
	Entries  repository.Repository[*FeedEntry]
	Store    types.ActivityStore
	Resolver AudienceResolver
	Verbs    []string
	Clock    types.Clock
	IDGen    types.IDGenerator
}

// BroadcastStreamFilter materializes matching activities into per-party feed
// rows at ingest time so each party's feed is a cheap indexed read. It is the
// side-effect-bearing counterpart to DocumentStreamFilter.
type BroadcastStreamFilter struct {
	entries  repository.Repository[*FeedEntry]
	store    types.ActivityStore
	resolver AudienceResolver
	verbs    map[string]struct{}
	clock    types.Clock
	idGen    types.IDGenerator
}

// NewBroadcastStreamFilter constructs the filter. Either DB or Entries must
// be provided, along with the activity store and the audience resolver.
func NewBroadcastStreamFilter(cfg BroadcastStreamFilterConfig) (*BroadcastStreamFilter, error) {
	if cfg.Store == nil {
		return nil, types.ErrMissingStore
	}
	if cfg.Resolver == nil {
		return nil, errors.New("stream: broadcast filter requires an audience resolver")
	}
	entries := cfg.Entries
	if entries == nil {
		if cfg.DB == nil {
			return nil, errors.New("stream: broadcast filter requires db or entries repository")
		}
		entries = repository.NewRepository(cfg.DB, repository.ModelHandlers[*FeedEntry]{
			NewRecord: func() *FeedEntry { return &FeedEntry{} },
			GetID: func(entry *FeedEntry) uuid.UUID {
				if entry == nil {
					return uuid.Nil
				}
				return entry.ID
			},
			SetID: func(entry *FeedEntry, id uuid.UUID) {
				if entry != nil {
					entry.ID = id
				}
			},
		})
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = types.UUIDGenerator{}
	}
	verbs := make(map[string]struct{}, len(cfg.Verbs))
	for _, verb := range cfg.Verbs {
		verbs[verb] = struct{}{}
	}
	return &BroadcastStreamFilter{
		entries:  entries,
		store:    cfg.Store,
		resolver: cfg.Resolver,
		verbs:    verbs,
		clock:    clock,
		idGen:    idGen,
	}, nil
}

var _ types.StreamFilter = (*BroadcastStreamFilter)(nil)

// ID implements types.StreamFilter.
func (f *BroadcastStreamFilter) ID() string { return BroadcastStreamFilterID }

// Matches implements types.StreamFilter.
func (f *BroadcastStreamFilter) Matches(activity *types.Activity) bool {
	if activity == nil || len(f.verbs) == 0 {
		return false
	}
	_, ok := f.verbs[activity.Verb]
	return ok
}

// Ingest writes one feed row per interested party. A resolver failure fails
// the ingest; the caller logs and moves on, the base activity stays stored.
func (f *BroadcastStreamFilter) Ingest(ctx context.Context, activity *types.Activity) error {
	audience, err := f.resolver.Audience(ctx, activity)
	if err != nil {
		return err
	}
	now := f.clock.Now()
	for _, party := range audience {
		entry := &FeedEntry{
			ID:         f.idGen.UUID(),
			FilterID:   f.ID(),
			ActivityID: activity.ID,
			SeenBy:     party,
			Verb:       activity.Verb,
			CreatedAt:  now,
		}
		if _, err := f.entries.Create(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

// CleanupActivities drops the derived feed rows for the removed activities.
func (f *BroadcastStreamFilter) CleanupActivities(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return f.entries.DeleteWhere(ctx, func(q *bun.DeleteQuery) *bun.DeleteQuery {
		return q.Where("filter_id = ?", f.ID()).
			Where("activity_id IN (?)", bun.In(ids))
	})
}

// CleanupThreadEntry implements types.StreamFilter. Feed rows reference whole
// activities, so thread removals leave them untouched.
func (f *BroadcastStreamFilter) CleanupThreadEntry(context.Context, *types.Activity, types.ThreadEntry) error {
	return nil
}

// Query returns the feed of the party named by the BroadcastSeenByParam
// parameter, newest first.
func (f *BroadcastStreamFilter) Query(ctx context.Context, params map[string]any, offset, limit int) ([]*types.Activity, error) {
	seenBy, err := stringParam(params, BroadcastSeenByParam)
	if err != nil {
		return nil, err
	}
	rows, _, err := f.entries.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Where("filter_id = ?", f.ID()).
			Where("seen_by = ?", seenBy).
			OrderExpr("activity_id DESC")
		if limit > 0 {
			q = q.Limit(limit)
		}
		if offset > 0 {
			if limit <= 0 {
				q = q.Limit(math.MaxInt32)
			}
			q = q.Offset(offset)
		}
		return q
	})
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ActivityID)
	}
	activities, err := f.store.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	// GetMany orders by id ascending; the feed reads newest first.
	byID := make(map[int64]*types.Activity, len(activities))
	for _, activity := range activities {
		byID[activity.ID] = activity
	}
	ordered := make([]*types.Activity, 0, len(ids))
	for _, id := range ids {
		if activity, ok := byID[id]; ok {
			ordered = append(ordered, activity)
		}
	}
	return ordered, nil
}
