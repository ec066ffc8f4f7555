package translate

import (
	"context"
	"errors"

	"github.com/goliatone/go-activitystream/metrics"
	"github.com/goliatone/go-activitystream/pkg/ref"
	"github.com/goliatone/go-activitystream/pkg/types"
)

// Submitter receives the activities a bundle translates into. *stream.Service
// satisfies it.
type Submitter interface {
	AddActivity(ctx context.Context, activity *types.Activity) (*types.Activity, error)
}

// TitleLookup resolves a document id to its human title. Failures are
// tolerated; the caller falls back to the raw reference.
type TitleLookup func(ctx context.Context, repository, documentID string) (string, error)

// Mapper builds the unscoped activity for one event kind. The translator
// clones the result for each scoped copy.
type Mapper func(ctx context.Context, t *Translator, event SourceEvent) *types.Activity

// Config wires a Translator.
type Config struct {
	Submitter  Submitter
	Titles     TitleLookup
	Exclusions []ExclusionPredicate
	Mappers    map[string]Mapper
	Clock      types.Clock
	Logger     types.Logger
	Metrics    *metrics.Recorder
}

// Translator turns bundles of source events into persisted activities:
// in-bundle dedup, exclusion policy, then scope fan-out.
type Translator struct {
	submitter  Submitter
	titles     TitleLookup
	exclusions []ExclusionPredicate
	mappers    map[string]Mapper
	clock      types.Clock
	logger     types.Logger
	metrics    *metrics.Recorder
}

// New constructs a Translator. Submitter is required; exclusions default to
// DefaultExclusions and the special event kinds get their built-in mappers.
func New(cfg Config) (*Translator, error) {
	if cfg.Submitter == nil {
		return nil, errors.New("translate: submitter required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	exclusions := cfg.Exclusions
	if exclusions == nil {
		exclusions = DefaultExclusions()
	}
	mappers := map[string]Mapper{
		VerbDocumentRestored:  mapDocumentRestored,
		VerbDocumentPublished: mapDocumentPublished,
		VerbWorkflowStarted:   mapWorkflowStarted,
	}
	for kind, mapper := range cfg.Mappers {
		mappers[kind] = mapper
	}
	return &Translator{
		submitter:  cfg.Submitter,
		titles:     cfg.Titles,
		exclusions: exclusions,
		mappers:    mappers,
		clock:      clock,
		logger:     logger,
		metrics:    cfg.Metrics,
	}, nil
}

// TranslateBundle processes one bundle to completion: dedup, exclusion, then
// fan-out and submission of every surviving event. Copies are submitted
// independently; a failed copy is logged and the rest still go out.
func (t *Translator) TranslateBundle(ctx context.Context, bundle []SourceEvent) {
	for _, event := range t.dedup(bundle) {
		if t.excluded(event) {
			t.metrics.ExcludedEvent()
			continue
		}
		t.fanOut(ctx, event)
	}
}

// dedup keeps the last event per (kind, subject): scan in order, drop the
// earlier occurrence, append the newer one at the end.
func (t *Translator) dedup(bundle []SourceEvent) []SourceEvent {
	deduped := make([]SourceEvent, 0, len(bundle))
	for _, event := range bundle {
		key := event.subjectKey()
		for i, kept := range deduped {
			if kept.subjectKey() == key {
				deduped = append(deduped[:i], deduped[i+1:]...)
				t.metrics.DedupedEvent()
				break
			}
		}
		deduped = append(deduped, event)
	}
	return deduped
}

func (t *Translator) excluded(event SourceEvent) bool {
	for _, predicate := range t.exclusions {
		if predicate(event) {
			return true
		}
	}
	return false
}

// fanOut submits the unscoped activity plus one scoped copy per ancestor
// flagged as a scope container. All copies share PublishedAt and differ only
// in Context.
func (t *Translator) fanOut(ctx context.Context, event SourceEvent) {
	base := t.mapEvent(ctx, event)
	if base == nil {
		return
	}
	base.PublishedAt = t.clock.Now()
	base.LastUpdatedAt = base.PublishedAt

	copies := 0
	if _, err := t.submitter.AddActivity(ctx, base.Clone()); err != nil {
		t.logger.Error("activity submission failed", err,
			"verb", event.Kind, "subject", event.Document.ID)
	} else {
		copies++
	}
	for _, ancestor := range event.Ancestors {
		if !ancestor.ScopeContainer {
			continue
		}
		scoped := base.Clone()
		scoped.Context = ref.Document(event.Document.Repository, ancestor.ID)
		if _, err := t.submitter.AddActivity(ctx, scoped); err != nil {
			t.logger.Error("scoped activity submission failed", err,
				"verb", event.Kind, "subject", event.Document.ID, "scope", scoped.Context)
			continue
		}
		copies++
	}
	t.metrics.FanOutCopies(copies)
}

func (t *Translator) mapEvent(ctx context.Context, event SourceEvent) *types.Activity {
	if mapper, ok := t.mappers[event.Kind]; ok {
		return mapper(ctx, t, event)
	}
	return mapDocumentEvent(ctx, t, event)
}

// Title resolves a document title, falling back to the raw document
// reference. It never fails.
func (t *Translator) Title(ctx context.Context, repository, documentID string) string {
	fallback := ref.Document(repository, documentID)
	if t.titles == nil || documentID == "" {
		return fallback
	}
	title, err := t.titles(ctx, repository, documentID)
	if err != nil || title == "" {
		if err != nil {
			t.logger.Debug("document title lookup failed",
				"repository", repository, "document", documentID, "error", err)
		}
		return fallback
	}
	return title
}

// mapDocumentEvent is the default mapper for plain document events: subject
// as object, parent container as target.
func mapDocumentEvent(ctx context.Context, t *Translator, event SourceEvent) *types.Activity {
	activity := t.baseActivity(ctx, event)
	if event.Document.ParentID != "" {
		activity.Target = ref.Document(event.Document.Repository, event.Document.ParentID)
		activity.DisplayTarget = t.Title(ctx, event.Document.Repository, event.Document.ParentID)
	}
	return activity
}

// mapDocumentRestored targets the version label the document came back from.
func mapDocumentRestored(ctx context.Context, t *Translator, event SourceEvent) *types.Activity {
	activity := t.baseActivity(ctx, event)
	activity.Target = event.VersionLabel
	activity.DisplayTarget = event.VersionLabel
	return activity
}

// mapDocumentPublished treats the event's document as the receiving section
// and the kind-specific source document as the object.
func mapDocumentPublished(ctx context.Context, t *Translator, event SourceEvent) *types.Activity {
	activity := t.baseActivity(ctx, event)
	activity.Object = ref.Document(event.Document.Repository, event.SourceDocumentID)
	activity.DisplayObject = t.Title(ctx, event.Document.Repository, event.SourceDocumentID)
	activity.Target = ref.Document(event.Document.Repository, event.Document.ID)
	activity.DisplayTarget = t.Title(ctx, event.Document.Repository, event.Document.ID)
	return activity
}

// mapWorkflowStarted targets the workflow by name.
func mapWorkflowStarted(ctx context.Context, t *Translator, event SourceEvent) *types.Activity {
	activity := t.baseActivity(ctx, event)
	activity.Target = event.WorkflowName
	activity.DisplayTarget = event.WorkflowName
	return activity
}

func (t *Translator) baseActivity(ctx context.Context, event SourceEvent) *types.Activity {
	return &types.Activity{
		Actor:         ref.User(event.Principal.Name),
		DisplayActor:  ref.DisplayName(event.Principal.Name, event.Principal.FirstName, event.Principal.LastName),
		Verb:          event.Kind,
		Object:        ref.Document(event.Document.Repository, event.Document.ID),
		DisplayObject: t.Title(ctx, event.Document.Repository, event.Document.ID),
	}
}
