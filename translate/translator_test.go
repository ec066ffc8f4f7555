package translate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-activitystream/pkg/types"
	"github.com/stretchr/testify/require"
)

type capturingSubmitter struct {
	mu         sync.Mutex
	activities []*types.Activity
	failVerbs  map[string]error
	nextID     int64
}

func (s *capturingSubmitter) AddActivity(_ context.Context, activity *types.Activity) (*types.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failVerbs[activity.Verb]; ok {
		return nil, err
	}
	s.nextID++
	stored := activity.Clone()
	stored.ID = s.nextID
	s.activities = append(s.activities, stored)
	return stored, nil
}

func (s *capturingSubmitter) all() []*types.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*types.Activity, len(s.activities))
	copy(out, s.activities)
	return out
}

func newTestTranslator(t *testing.T, cfg Config, submitter *capturingSubmitter) *Translator {
	t.Helper()
	cfg.Submitter = submitter
	if cfg.Clock == nil {
		cfg.Clock = staticClock{now: time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)}
	}
	translator, err := New(cfg)
	require.NoError(t, err)
	return translator
}

type staticClock struct {
	now time.Time
}

func (c staticClock) Now() time.Time { return c.now }

func docEvent(kind, docID string, ancestors ...Ancestor) SourceEvent {
	return SourceEvent{
		Kind:      kind,
		Principal: Principal{Name: "bender", FirstName: "Bender", LastName: "Rodriguez"},
		Document:  Document{Repository: "default", ID: docID, ParentID: "parent"},
		Ancestors: ancestors,
	}
}

func TestTranslator_DedupKeepsLastOccurrence(t *testing.T) {
	submitter := &capturingSubmitter{}
	translator := newTestTranslator(t, Config{}, submitter)

	bundle := []SourceEvent{
		docEvent(VerbDocumentModified, "doc-1"),
		docEvent(VerbDocumentCreated, "doc-2"),
		docEvent(VerbDocumentModified, "doc-1"),
		docEvent(VerbDocumentModified, "doc-1"),
	}
	translator.TranslateBundle(context.Background(), bundle)

	got := submitter.all()
	require.Len(t, got, 2)
	// The duplicate moved to its last position in the bundle.
	require.Equal(t, "doc:default:doc-2", got[0].Object)
	require.Equal(t, VerbDocumentCreated, got[0].Verb)
	require.Equal(t, "doc:default:doc-1", got[1].Object)
	require.Equal(t, VerbDocumentModified, got[1].Verb)
}

func TestTranslator_SameSubjectDifferentKindsBothSurvive(t *testing.T) {
	submitter := &capturingSubmitter{}
	translator := newTestTranslator(t, Config{}, submitter)

	translator.TranslateBundle(context.Background(), []SourceEvent{
		docEvent(VerbDocumentCreated, "doc-1"),
		docEvent(VerbDocumentModified, "doc-1"),
	})

	require.Len(t, submitter.all(), 2)
}

func TestTranslator_Exclusions(t *testing.T) {
	cases := []struct {
		name  string
		event SourceEvent
	}{
		{"shallow", SourceEvent{Kind: VerbDocumentCreated, Document: Document{ID: "d", Shallow: true}, Principal: Principal{Name: "x"}}},
		{"hidden", SourceEvent{Kind: VerbDocumentCreated, Document: Document{ID: "d", HiddenFromNavigation: true}, Principal: Principal{Name: "x"}}},
		{"system document", SourceEvent{Kind: VerbDocumentCreated, Document: Document{ID: "d", SystemDocument: true}, Principal: Principal{Name: "x"}}},
		{"version", SourceEvent{Kind: VerbDocumentCreated, Document: Document{ID: "d", Version: true}, Principal: Principal{Name: "x"}}},
		{"proxy", SourceEvent{Kind: VerbDocumentCreated, Document: Document{ID: "d", Proxy: true}, Principal: Principal{Name: "x"}}},
		{"system principal", SourceEvent{Kind: VerbDocumentCreated, Document: Document{ID: "d"}, Principal: Principal{Name: "system", System: true}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			submitter := &capturingSubmitter{}
			translator := newTestTranslator(t, Config{}, submitter)
			translator.TranslateBundle(context.Background(), []SourceEvent{tc.event})
			require.Empty(t, submitter.all())
		})
	}
}

func TestTranslator_FanOutProducesOneCopyPerScopeContainer(t *testing.T) {
	submitter := &capturingSubmitter{}
	translator := newTestTranslator(t, Config{}, submitter)

	event := docEvent(VerbDocumentCreated, "doc-1",
		Ancestor{ID: "root"},
		Ancestor{ID: "space-a", ScopeContainer: true},
		Ancestor{ID: "folder"},
		Ancestor{ID: "space-b", ScopeContainer: true},
	)
	translator.TranslateBundle(context.Background(), []SourceEvent{event})

	got := submitter.all()
	require.Len(t, got, 3)

	unscoped := got[0]
	require.Empty(t, unscoped.Context)
	require.Equal(t, "user:bender", unscoped.Actor)
	require.Equal(t, "Bender Rodriguez", unscoped.DisplayActor)
	require.Equal(t, "doc:default:doc-1", unscoped.Object)
	require.Equal(t, "doc:default:parent", unscoped.Target)

	require.Equal(t, "doc:default:space-a", got[1].Context)
	require.Equal(t, "doc:default:space-b", got[2].Context)
	for _, scoped := range got[1:] {
		require.Equal(t, unscoped.Actor, scoped.Actor)
		require.Equal(t, unscoped.Verb, scoped.Verb)
		require.Equal(t, unscoped.Object, scoped.Object)
		require.Equal(t, unscoped.Target, scoped.Target)
		require.Equal(t, unscoped.PublishedAt, scoped.PublishedAt)
	}
}

func TestTranslator_PartialFanOutFailureContinues(t *testing.T) {
	submitter := &capturingSubmitter{}

	// Fail only the unscoped submission by rejecting the first call.
	calls := 0
	failing := submitterFunc(func(ctx context.Context, activity *types.Activity) (*types.Activity, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("storage down")
		}
		return submitter.AddActivity(ctx, activity)
	})
	withFailures, err := New(Config{Submitter: failing, Clock: staticClock{now: time.Now()}})
	require.NoError(t, err)

	event := docEvent(VerbDocumentCreated, "doc-1",
		Ancestor{ID: "space-a", ScopeContainer: true},
		Ancestor{ID: "space-b", ScopeContainer: true},
	)
	withFailures.TranslateBundle(context.Background(), []SourceEvent{event})

	got := submitter.all()
	require.Len(t, got, 2)
	require.Equal(t, "doc:default:space-a", got[0].Context)
	require.Equal(t, "doc:default:space-b", got[1].Context)
}

func TestTranslator_TitleLookup(t *testing.T) {
	submitter := &capturingSubmitter{}
	titles := TitleLookup(func(_ context.Context, repository, documentID string) (string, error) {
		if documentID == "doc-1" {
			return "Quarterly Report", nil
		}
		return "", errors.New("unreachable repository")
	})
	translator := newTestTranslator(t, Config{Titles: titles}, submitter)

	translator.TranslateBundle(context.Background(), []SourceEvent{docEvent(VerbDocumentCreated, "doc-1")})

	got := submitter.all()
	require.Len(t, got, 1)
	require.Equal(t, "Quarterly Report", got[0].DisplayObject)
	// Parent lookup failed; display falls back to the raw reference.
	require.Equal(t, "doc:default:parent", got[0].DisplayTarget)
}

func TestTranslator_SpecialKinds(t *testing.T) {
	submitter := &capturingSubmitter{}
	translator := newTestTranslator(t, Config{}, submitter)

	restored := docEvent(VerbDocumentRestored, "doc-1")
	restored.VersionLabel = "1.2"

	workflow := docEvent(VerbWorkflowStarted, "doc-1")
	workflow.WorkflowName = "validation"

	published := docEvent(VerbDocumentPublished, "section-1")
	published.SourceDocumentID = "doc-1"

	translator.TranslateBundle(context.Background(), []SourceEvent{restored, workflow, published})

	got := submitter.all()
	require.Len(t, got, 3)

	require.Equal(t, "1.2", got[0].Target)
	require.Equal(t, "doc:default:doc-1", got[0].Object)

	require.Equal(t, "validation", got[1].Target)

	require.Equal(t, "doc:default:doc-1", got[2].Object)
	require.Equal(t, "doc:default:section-1", got[2].Target)
}

func TestTranslator_CustomMapperOverride(t *testing.T) {
	submitter := &capturingSubmitter{}
	translator := newTestTranslator(t, Config{
		Mappers: map[string]Mapper{
			"custom": func(_ context.Context, _ *Translator, event SourceEvent) *types.Activity {
				return &types.Activity{Verb: event.Kind, Actor: "user:proxy-bot", Object: "custom-object"}
			},
		},
	}, submitter)

	translator.TranslateBundle(context.Background(), []SourceEvent{docEvent("custom", "doc-1")})

	got := submitter.all()
	require.Len(t, got, 1)
	require.Equal(t, "custom-object", got[0].Object)
	require.Equal(t, "user:proxy-bot", got[0].Actor)
}

type submitterFunc func(ctx context.Context, activity *types.Activity) (*types.Activity, error)

func (f submitterFunc) AddActivity(ctx context.Context, activity *types.Activity) (*types.Activity, error) {
	return f(ctx, activity)
}

func TestListener_ProcessesSubmittedBundles(t *testing.T) {
	submitter := &capturingSubmitter{}
	translator := newTestTranslator(t, Config{}, submitter)
	listener, err := NewListener(ListenerConfig{Translator: translator, Workers: 4})
	require.NoError(t, err)

	ctx := context.Background()
	const bundles = 10
	for i := 0; i < bundles; i++ {
		bundle := []SourceEvent{docEvent(VerbDocumentCreated, fmt.Sprintf("doc-%d", i))}
		require.NoError(t, listener.Submit(ctx, bundle))
	}

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, listener.Stop(stopCtx))

	require.Len(t, submitter.all(), bundles)

	require.ErrorIs(t, listener.Submit(ctx, []SourceEvent{docEvent(VerbDocumentCreated, "late")}), ErrListenerStopped)
}

func TestListener_EmptyBundleIsNoop(t *testing.T) {
	submitter := &capturingSubmitter{}
	translator := newTestTranslator(t, Config{}, submitter)
	listener, err := NewListener(ListenerConfig{Translator: translator})
	require.NoError(t, err)

	require.NoError(t, listener.Submit(context.Background(), nil))

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, listener.Stop(stopCtx))
	require.Empty(t, submitter.all())
}
