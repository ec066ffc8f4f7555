package stream

import (
	"context"
	"testing"

	"github.com/goliatone/go-activitystream/pkg/types"
	"github.com/goliatone/go-activitystream/store"
	"github.com/stretchr/testify/require"
)

const tweetVerb = "tweet"

func newBroadcastService(t *testing.T, resolver AudienceResolver) *Service {
	t.Helper()
	db := newTestDB(t)
	activityStore, err := store.New(store.Config{DB: db})
	require.NoError(t, err)
	filter, err := NewBroadcastStreamFilter(BroadcastStreamFilterConfig{
		DB:       db,
		Store:    activityStore,
		Resolver: resolver,
		Verbs:    []string{tweetVerb},
	})
	require.NoError(t, err)
	svc, err := New(Config{Store: activityStore, Filters: []types.StreamFilter{filter}})
	require.NoError(t, err)
	return svc
}

func TestBroadcastStreamFilter_IngestAndQuery(t *testing.T) {
	ctx := context.Background()
	resolver := AudienceResolverFunc(func(context.Context, *types.Activity) ([]string, error) {
		return []string{"user:leela", "user:fry"}, nil
	})
	svc := newBroadcastService(t, resolver)

	tweet, err := svc.AddActivity(ctx, &types.Activity{
		Actor:  "user:bender",
		Verb:   tweetVerb,
		Object: "Hello, meatbags",
	})
	require.NoError(t, err)

	// Non-matching verbs produce no feed rows.
	_, err = svc.AddActivity(ctx, &types.Activity{
		Actor:  "user:bender",
		Verb:   "documentCreated",
		Object: "doc:default:1",
	})
	require.NoError(t, err)

	feed, err := svc.Query(ctx, BroadcastStreamFilterID, map[string]any{
		BroadcastSeenByParam: "user:leela",
	}, 0, 0)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	require.Equal(t, tweet.ID, feed[0].ID)
	require.Equal(t, "Hello, meatbags", feed[0].Object)

	feed, err = svc.Query(ctx, BroadcastStreamFilterID, map[string]any{
		BroadcastSeenByParam: "user:zoidberg",
	}, 0, 0)
	require.NoError(t, err)
	require.Empty(t, feed)
}

func TestBroadcastStreamFilter_FeedIsNewestFirst(t *testing.T) {
	ctx := context.Background()
	resolver := AudienceResolverFunc(func(context.Context, *types.Activity) ([]string, error) {
		return []string{"user:leela"}, nil
	})
	svc := newBroadcastService(t, resolver)

	first, err := svc.AddActivity(ctx, &types.Activity{Actor: "user:bender", Verb: tweetVerb, Object: "one"})
	require.NoError(t, err)
	second, err := svc.AddActivity(ctx, &types.Activity{Actor: "user:bender", Verb: tweetVerb, Object: "two"})
	require.NoError(t, err)

	feed, err := svc.Query(ctx, BroadcastStreamFilterID, map[string]any{
		BroadcastSeenByParam: "user:leela",
	}, 0, 0)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	require.Equal(t, second.ID, feed[0].ID)
	require.Equal(t, first.ID, feed[1].ID)

	page, err := svc.Query(ctx, BroadcastStreamFilterID, map[string]any{
		BroadcastSeenByParam: "user:leela",
	}, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, first.ID, page[0].ID)
}

func TestBroadcastStreamFilter_RemoveActivitiesDropsFeedRows(t *testing.T) {
	ctx := context.Background()
	resolver := AudienceResolverFunc(func(context.Context, *types.Activity) ([]string, error) {
		return []string{"user:leela", "user:fry", "user:zoidberg"}, nil
	})
	svc := newBroadcastService(t, resolver)

	tweet, err := svc.AddActivity(ctx, &types.Activity{Actor: "user:bender", Verb: tweetVerb, Object: "gone soon"})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveActivities(ctx, []int64{tweet.ID}))

	for _, party := range []string{"user:leela", "user:fry", "user:zoidberg"} {
		feed, err := svc.Query(ctx, BroadcastStreamFilterID, map[string]any{
			BroadcastSeenByParam: party,
		}, 0, 0)
		require.NoError(t, err)
		require.Empty(t, feed)
	}
}

func TestBroadcastStreamFilter_ResolverFailureDoesNotFailAdd(t *testing.T) {
	ctx := context.Background()
	resolver := AudienceResolverFunc(func(context.Context, *types.Activity) ([]string, error) {
		return nil, context.DeadlineExceeded
	})
	svc := newBroadcastService(t, resolver)

	tweet, err := svc.AddActivity(ctx, &types.Activity{Actor: "user:bender", Verb: tweetVerb, Object: "yo"})
	require.NoError(t, err)

	got, err := svc.GetActivity(ctx, tweet.ID)
	require.NoError(t, err)
	require.Equal(t, "yo", got.Object)
}
