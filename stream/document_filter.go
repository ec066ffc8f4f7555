package stream

import (
	"context"
	"fmt"

	"github.com/goliatone/go-activitystream/pkg/ref"
	"github.com/goliatone/go-activitystream/pkg/types"
)

// DocumentStreamFilterID is the registration id of the built-in document
// activity view.
const DocumentStreamFilterID = "documentStream"

// DocumentStreamQueryParam carries the document reference a query is scoped
// to.
const DocumentStreamQueryParam = "documentRef"

// DocumentStreamFilter serves the activity stream of a single document: every
// unscoped activity where the document is the object or the target, performed
// by a human actor. It is query-only and keeps no derived rows.
type DocumentStreamFilter struct {
	store types.ActivityStore
	verbs []string
}

// NewDocumentStreamFilter builds the filter over the given store. When verbs
// is non-empty the view is restricted to them.
func NewDocumentStreamFilter(store types.ActivityStore, verbs []string) *DocumentStreamFilter {
	return &DocumentStreamFilter{store: store, verbs: verbs}
}

var _ types.StreamFilter = (*DocumentStreamFilter)(nil)

// ID implements types.StreamFilter.
func (f *DocumentStreamFilter) ID() string { return DocumentStreamFilterID }

// Matches implements types.StreamFilter. The filter queries the base table
// directly, so no per-activity ingest is needed.
func (f *DocumentStreamFilter) Matches(*types.Activity) bool { return false }

// Ingest implements types.StreamFilter.
func (f *DocumentStreamFilter) Ingest(context.Context, *types.Activity) error { return nil }

// CleanupActivities implements types.StreamFilter.
func (f *DocumentStreamFilter) CleanupActivities(context.Context, []int64) error { return nil }

// CleanupThreadEntry implements types.StreamFilter.
func (f *DocumentStreamFilter) CleanupThreadEntry(context.Context, *types.Activity, types.ThreadEntry) error {
	return nil
}

// Query implements types.StreamFilter. params must carry the document
// reference under DocumentStreamQueryParam.
func (f *DocumentStreamFilter) Query(ctx context.Context, params map[string]any, offset, limit int) ([]*types.Activity, error) {
	documentRef, err := stringParam(params, DocumentStreamQueryParam)
	if err != nil {
		return nil, err
	}
	criteria := types.ActivityCriteria{
		ObjectOrTarget: documentRef,
		Verbs:          f.verbs,
		UnscopedOnly:   true,
		ActorPrefix:    ref.UserPrefix,
	}
	return f.store.Query(ctx, criteria, offset, limit)
}

func stringParam(params map[string]any, key string) (string, error) {
	value, ok := params[key]
	if !ok {
		return "", fmt.Errorf("stream: missing %q query parameter", key)
	}
	s, ok := value.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("stream: %q query parameter must be a non-empty string", key)
	}
	return s, nil
}
