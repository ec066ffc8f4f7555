package stream

import (
	"context"
	"testing"

	"github.com/goliatone/go-activitystream/pkg/types"
	"github.com/goliatone/go-activitystream/store"
	"github.com/stretchr/testify/require"
)

func TestDocumentStreamFilter_Query(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Config{})
	filter := NewDocumentStreamFilter(svc.Store(), []string{"documentCreated", "documentModified"})

	// Unscoped activity on the document itself.
	_, err := svc.AddActivity(ctx, &types.Activity{
		Actor:  "user:bender",
		Verb:   "documentCreated",
		Object: "doc:default:1234",
	})
	require.NoError(t, err)

	// Activity where the document is the target.
	_, err = svc.AddActivity(ctx, &types.Activity{
		Actor:  "user:fry",
		Verb:   "documentModified",
		Object: "doc:default:child",
		Target: "doc:default:1234",
	})
	require.NoError(t, err)

	// Scoped copy: excluded by the unscoped-only restriction.
	_, err = svc.AddActivity(ctx, &types.Activity{
		Actor:   "user:bender",
		Verb:    "documentCreated",
		Object:  "doc:default:1234",
		Context: "doc:default:space",
	})
	require.NoError(t, err)

	// System actor: excluded.
	_, err = svc.AddActivity(ctx, &types.Activity{
		Actor:  "system",
		Verb:   "documentCreated",
		Object: "doc:default:1234",
	})
	require.NoError(t, err)

	// Verb outside the stream: excluded.
	_, err = svc.AddActivity(ctx, &types.Activity{
		Actor:  "user:bender",
		Verb:   "documentDownloaded",
		Object: "doc:default:1234",
	})
	require.NoError(t, err)

	// Different document: excluded.
	_, err = svc.AddActivity(ctx, &types.Activity{
		Actor:  "user:bender",
		Verb:   "documentCreated",
		Object: "doc:default:other",
	})
	require.NoError(t, err)

	activities, err := filter.Query(ctx, map[string]any{
		DocumentStreamQueryParam: "doc:default:1234",
	}, 0, 0)
	require.NoError(t, err)
	require.Len(t, activities, 2)
	for _, activity := range activities {
		require.Empty(t, activity.Context)
	}
}

func TestDocumentStreamFilter_QueryRequiresDocumentRef(t *testing.T) {
	svc := newTestService(t, Config{})
	filter := NewDocumentStreamFilter(svc.Store(), nil)

	_, err := filter.Query(context.Background(), nil, 0, 0)
	require.Error(t, err)

	_, err = filter.Query(context.Background(), map[string]any{DocumentStreamQueryParam: 42}, 0, 0)
	require.Error(t, err)
}

func TestDocumentStreamFilter_RegisteredOnService(t *testing.T) {
	ctx := context.Background()
	activityStore, err := store.New(store.Config{DB: newTestDB(t)})
	require.NoError(t, err)
	filter := NewDocumentStreamFilter(activityStore, nil)
	svc, err := New(Config{Store: activityStore, Filters: []types.StreamFilter{filter}})
	require.NoError(t, err)

	_, err = svc.AddActivity(ctx, &types.Activity{
		Actor:  "user:bender",
		Verb:   "documentCreated",
		Object: "doc:default:42",
	})
	require.NoError(t, err)

	activities, err := svc.Query(ctx, DocumentStreamFilterID, map[string]any{
		DocumentStreamQueryParam: "doc:default:42",
	}, 0, 0)
	require.NoError(t, err)
	require.Len(t, activities, 1)
}
