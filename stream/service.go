package stream

import (
	"context"

	"github.com/goliatone/go-activitystream/metrics"
	"github.com/goliatone/go-activitystream/pkg/types"
	goerrors "github.com/goliatone/go-errors"
)

// AllActivities is the reserved filter id addressing the whole stream without
// a registered filter.
const AllActivities = "allActivities"

// LinkBuilderRegistration binds a link builder to a name; at most one
// registration should be flagged Default, the last one flagged wins.
type LinkBuilderRegistration struct {
	Name    string
	Builder types.LinkBuilder
	Default bool
}

// Config captures the service dependencies. Only Store is required; every
// other collaborator is defaulted.
type Config struct {
	Store        types.ActivityStore
	Clock        types.Clock
	Logger       types.Logger
	Metrics      *metrics.Recorder
	Filters      []types.StreamFilter
	Streams      []ActivityStream
	LinkBuilders []LinkBuilderRegistration
	Upgraders    []types.Upgrader
	VerbLabels   map[string]string
}

// Service is the entry point for the activity stream: it persists activities,
// runs them through the registered stream filters, maintains the comment and
// reply sub-logs, and serves filtered queries.
type Service struct {
	store      types.ActivityStore
	clock      types.Clock
	logger     types.Logger
	metrics    *metrics.Recorder
	registries *registries
}

// New constructs a Service from the supplied configuration.
func New(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, types.ErrMissingStore
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}

	regs := newRegistries()
	for _, filter := range cfg.Filters {
		regs.registerFilter(filter)
	}
	for _, stream := range cfg.Streams {
		regs.registerStream(stream)
	}
	for _, reg := range cfg.LinkBuilders {
		regs.registerLinkBuilder(reg.Name, reg.Builder, reg.Default)
	}
	if regs.defaultLinkBuilder == nil {
		fallback := NewDefaultLinkBuilder("")
		regs.registerLinkBuilder("default", fallback, true)
	}
	for _, upgrader := range cfg.Upgraders {
		regs.registerUpgrader(upgrader)
	}
	for verb, label := range cfg.VerbLabels {
		regs.verbLabels[verb] = label
	}

	return &Service{
		store:      cfg.Store,
		clock:      clock,
		logger:     logger,
		metrics:    cfg.Metrics,
		registries: regs,
	}, nil
}

// Store exposes the underlying activity store for upgraders and host wiring.
func (s *Service) Store() types.ActivityStore {
	return s.store
}

// AddActivity persists the activity and synchronously offers it to every
// matching filter. Filter ingest failures are logged and counted but do not
// fail the add; the activity is already durable by then.
func (s *Service) AddActivity(ctx context.Context, activity *types.Activity) (*types.Activity, error) {
	if activity == nil {
		return nil, goerrors.New("activity required", goerrors.CategoryValidation).WithCode(goerrors.CodeBadRequest)
	}
	if activity.Verb == "" {
		return nil, types.ErrVerbRequired
	}
	stored, err := s.store.Insert(ctx, activity)
	if err != nil {
		return nil, err
	}
	s.metrics.ActivityAdded()

	for _, filter := range s.registries.orderedFilters() {
		if !filter.Matches(stored) {
			continue
		}
		if err := filter.Ingest(ctx, stored.Clone()); err != nil {
			s.metrics.FilterError(filter.ID())
			s.logger.Error("activity stream filter ingest failed", err,
				"filter", filter.ID(), "activity", stored.ID)
			continue
		}
		s.metrics.FilterIngest(filter.ID())
	}
	return stored, nil
}

// RemoveActivities deletes the given activities and lets every filter drop
// its derived rows. Removing a batch is equivalent to removing each id on its
// own.
func (s *Service) RemoveActivities(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.store.DeleteByIDs(ctx, ids); err != nil {
		return err
	}
	s.metrics.ActivitiesRemoved(len(ids))
	for _, filter := range s.registries.orderedFilters() {
		if err := filter.CleanupActivities(ctx, ids); err != nil {
			s.metrics.FilterError(filter.ID())
			s.logger.Error("activity stream filter cleanup failed", err,
				"filter", filter.ID())
		}
	}
	return nil
}

// GetActivity returns one activity by id.
func (s *Service) GetActivity(ctx context.Context, id int64) (*types.Activity, error) {
	return s.store.Get(ctx, id)
}

// GetActivities returns the activities for the given ids, ordered by id.
func (s *Service) GetActivities(ctx context.Context, ids []int64) ([]*types.Activity, error) {
	return s.store.GetMany(ctx, ids)
}

// Query serves a page of the stream as seen through the filter registered
// under filterID. The reserved AllActivities id returns the unfiltered
// stream; any other unregistered id is a not-found error.
func (s *Service) Query(ctx context.Context, filterID string, params map[string]any, offset, limit int) ([]*types.Activity, error) {
	if filterID == "" || filterID == AllActivities {
		return s.store.Query(ctx, types.ActivityCriteria{}, offset, limit)
	}
	filter, ok := s.registries.filters[filterID]
	if !ok {
		return nil, goerrors.New("unknown activity stream filter: "+filterID,
			goerrors.CategoryNotFound).WithCode(goerrors.CodeNotFound)
	}
	return filter.Query(ctx, params, offset, limit)
}

// AddComment appends a comment to the activity's thread.
func (s *Service) AddComment(ctx context.Context, activityID int64, entry types.ThreadEntry) (types.ThreadEntry, error) {
	return s.appendThreadEntry(ctx, activityID, types.ThreadKindComment, entry)
}

// AddReply appends a reply to the activity's thread.
func (s *Service) AddReply(ctx context.Context, activityID int64, entry types.ThreadEntry) (types.ThreadEntry, error) {
	return s.appendThreadEntry(ctx, activityID, types.ThreadKindReply, entry)
}

func (s *Service) appendThreadEntry(ctx context.Context, activityID int64, kind types.ThreadKind, entry types.ThreadEntry) (types.ThreadEntry, error) {
	if entry.Message == "" {
		return types.ThreadEntry{}, types.ErrMessageRequired
	}
	stored, err := s.store.AppendThreadEntry(ctx, activityID, kind, entry)
	if err != nil {
		return types.ThreadEntry{}, err
	}
	s.metrics.ThreadEntryAdded(string(kind))
	return stored, nil
}

// RemoveComment removes a comment from the activity's thread. Unknown entry
// ids are ignored.
func (s *Service) RemoveComment(ctx context.Context, activityID int64, entryID string) error {
	return s.removeThreadEntry(ctx, activityID, types.ThreadKindComment, entryID)
}

// RemoveReply removes a reply from the activity's thread. Unknown entry ids
// are ignored.
func (s *Service) RemoveReply(ctx context.Context, activityID int64, entryID string) error {
	return s.removeThreadEntry(ctx, activityID, types.ThreadKindReply, entryID)
}

func (s *Service) removeThreadEntry(ctx context.Context, activityID int64, kind types.ThreadKind, entryID string) error {
	removed, found, err := s.store.RemoveThreadEntry(ctx, activityID, kind, entryID)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	activity, err := s.store.Get(ctx, activityID)
	if err != nil {
		// The entry is gone either way; filters just miss their hook.
		s.logger.Error("activity lookup after thread entry removal failed", err,
			"activity", activityID)
		return nil
	}
	for _, filter := range s.registries.orderedFilters() {
		if !filter.Matches(activity) {
			continue
		}
		if err := filter.CleanupThreadEntry(ctx, activity.Clone(), removed); err != nil {
			s.metrics.FilterError(filter.ID())
			s.logger.Error("activity stream filter thread cleanup failed", err,
				"filter", filter.ID(), "activity", activityID, "entry", entryID)
		}
	}
	return nil
}

// ListComments returns the activity's comments in append order.
func (s *Service) ListComments(ctx context.Context, activityID int64) ([]types.ThreadEntry, error) {
	return s.store.ListThreadEntries(ctx, activityID, types.ThreadKindComment)
}

// ListReplies returns the activity's replies in append order.
func (s *Service) ListReplies(ctx context.Context, activityID int64) ([]types.ThreadEntry, error) {
	return s.store.ListThreadEntries(ctx, activityID, types.ThreadKindReply)
}

// GetActivityStream returns the named verb set, if registered.
func (s *Service) GetActivityStream(name string) (ActivityStream, bool) {
	stream, ok := s.registries.streams[name]
	return stream, ok
}

// GetLinkBuilder returns the builder registered under name, falling back to
// the default builder when the name is empty or unknown.
func (s *Service) GetLinkBuilder(name string) types.LinkBuilder {
	if name != "" {
		if builder, ok := s.registries.linkBuilders[name]; ok {
			return builder
		}
	}
	return s.registries.defaultLinkBuilder
}

// RunUpgraders executes the registered upgraders ordered by Order ascending.
// The first failure aborts the pipeline; steps already applied stay applied.
func (s *Service) RunUpgraders(ctx context.Context) error {
	for _, upgrader := range s.registries.sortedUpgraders() {
		s.logger.Info("running activity upgrader", "upgrader", upgrader.Name(), "order", upgrader.Order())
		if err := upgrader.Upgrade(ctx, s.store); err != nil {
			s.metrics.UpgraderRun(upgrader.Name(), "error")
			return goerrors.Wrap(err, goerrors.CategoryInternal,
				"activity upgrader failed: "+upgrader.Name()).WithCode(goerrors.CodeInternal)
		}
		s.metrics.UpgraderRun(upgrader.Name(), "ok")
	}
	return nil
}
