package types

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ThreadKind selects which sub-log of an activity a thread entry belongs to.
type ThreadKind string

const (
	ThreadKindComment ThreadKind = "comment"
	ThreadKindReply   ThreadKind = "reply"
)

// Activity is one recorded occurrence of an actor performing a verb on an
// object, optionally with a target and a containment context. Core fields are
// immutable after creation; LastUpdatedAt is bumped whenever the comment or
// reply sub-log changes.
type Activity struct {
	ID            int64
	Actor         string
	DisplayActor  string
	Verb          string
	Object        string
	DisplayObject string
	Target        string
	DisplayTarget string
	Context       string
	PublishedAt   time.Time
	LastUpdatedAt time.Time
}

// Clone returns a copy detached from the receiver so filters and callers can
// mutate safely.
func (a *Activity) Clone() *Activity {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

// ThreadEntry is a comment or reply appended to an activity. IDs follow the
// "{activityID}-{kind}-{seq}" shape with a 1-based sequence that is never
// reused, even after removals.
type ThreadEntry struct {
	ID           string
	Actor        string
	DisplayActor string
	Message      string
	PublishedAt  int64
}

// ActivityCriteria narrows store queries. Zero values mean "no constraint".
type ActivityCriteria struct {
	Actors         []string
	ActorPrefix    string
	Verbs          []string
	Objects        []string
	ObjectOrTarget string
	Context        string
	UnscopedOnly   bool
	IDs            []int64
	Since          *time.Time
	Until          *time.Time
}

// ActivityStore is the persistence contract the stream service and filters
// rely on. Implementations must assign monotonic, never-reused ids on insert
// and provide per-row atomicity; cross-row transactions spanning a fan-out are
// not assumed.
type ActivityStore interface {
	Insert(ctx context.Context, activity *Activity) (*Activity, error)
	Save(ctx context.Context, activity *Activity) error
	Get(ctx context.Context, id int64) (*Activity, error)
	GetMany(ctx context.Context, ids []int64) ([]*Activity, error)
	DeleteByIDs(ctx context.Context, ids []int64) error
	Query(ctx context.Context, criteria ActivityCriteria, offset, limit int) ([]*Activity, error)

	AppendThreadEntry(ctx context.Context, activityID int64, kind ThreadKind, entry ThreadEntry) (ThreadEntry, error)
	RemoveThreadEntry(ctx context.Context, activityID int64, kind ThreadKind, entryID string) (ThreadEntry, bool, error)
	ListThreadEntries(ctx context.Context, activityID int64, kind ThreadKind) ([]ThreadEntry, error)
}

// StreamFilter is a pluggable strategy selecting which activities belong to a
// named view, how derived data for that view is stored, and how the view is
// queried. Filters are registered once at startup and must be safe for
// concurrent use afterwards.
type StreamFilter interface {
	ID() string

	// Matches reports whether Ingest should be invoked for the activity.
	Matches(activity *Activity) bool

	// Ingest is called synchronously after the activity is persisted. A filter
	// may write auxiliary derived rows as a side effect.
	Ingest(ctx context.Context, activity *Activity) error

	// CleanupActivities removes any derived rows tied to the given activity ids.
	CleanupActivities(ctx context.Context, ids []int64) error

	// CleanupThreadEntry is invoked when a thread entry is removed from an
	// activity the filter matched.
	CleanupThreadEntry(ctx context.Context, activity *Activity, entry ThreadEntry) error

	Query(ctx context.Context, params map[string]any, offset, limit int) ([]*Activity, error)
}

// LinkBuilder renders permalinks for the entities referenced by activities.
// Only selection and fallback between builders is handled here; the rendered
// output is consumed by presentation layers out of scope for this module.
type LinkBuilder interface {
	DocumentLink(documentRef, display string) string
	UserProfileLink(userRef, display string) string
	DocumentURL(repository, documentID string) string
	UserProfileURL(username string) string
}

// Upgrader is a one-time, ordered migration step over stored activities.
// Upgrade state is not tracked separately, so implementations must be
// self-checking and safe to re-run.
type Upgrader interface {
	Name() string
	Order() int
	Upgrade(ctx context.Context, store ActivityStore) error
}

// Clock abstracts time retrieval for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock defers to time.Now for production usage.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// IDGenerator abstracts UUID creation for derived rows.
type IDGenerator interface {
	UUID() uuid.UUID
}

// UUIDGenerator produces UUIDv4 identifiers.
type UUIDGenerator struct{}

// UUID implements IDGenerator.
func (UUIDGenerator) UUID() uuid.UUID { return uuid.New() }

// Logger captures basic logging hooks used by the service.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Error(msg string, err error, fields ...any)
}

// NopLogger discards all log lines.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NopLogger) Info(string, ...any) {}

// Error implements Logger.
func (NopLogger) Error(string, error, ...any) {}

var (
	// ErrMissingStore occurs when no activity store was supplied.
	ErrMissingStore = errors.New("go-activitystream: missing activity store")

	// ErrActivityNotFound occurs when the referenced activity does not exist.
	ErrActivityNotFound = errors.New("go-activitystream: activity not found")

	// ErrVerbRequired indicates an activity is missing a verb.
	ErrVerbRequired = errors.New("go-activitystream: activity verb required")

	// ErrMessageRequired indicates a thread entry is missing its message.
	ErrMessageRequired = errors.New("go-activitystream: thread entry message required")
)
