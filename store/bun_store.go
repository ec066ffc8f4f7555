package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/goliatone/go-activitystream/pkg/types"
	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Config wires the Bun-backed activity store.
type Config struct {
	DB     *bun.DB
	Clock  types.Clock
	Logger types.Logger
}

// BunStore persists activities and thread entries through Bun. Thread-entry
// appends are serialized per activity id so concurrent appends never lose an
// entry or reuse a sequence number.
type BunStore struct {
	db     *bun.DB
	clock  types.Clock
	logger types.Logger

	threadLocks sync.Map
}

// New constructs a store backed by the provided bun.DB.
func New(cfg Config) (*BunStore, error) {
	if cfg.DB == nil {
		return nil, errors.New("store: db required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &BunStore{
		db:     cfg.DB,
		clock:  clock,
		logger: logger,
	}, nil
}

var _ types.ActivityStore = (*BunStore)(nil)

// Insert persists a new activity, assigning its id and defaulting the
// published and last-updated timestamps when absent.
func (s *BunStore) Insert(ctx context.Context, activity *types.Activity) (*types.Activity, error) {
	if activity == nil {
		return nil, errors.New("store: activity required")
	}
	row := toActivityRow(activity)
	row.ID = 0
	if row.PublishedAt.IsZero() {
		row.PublishedAt = s.clock.Now()
	}
	if row.LastUpdatedAt.IsZero() {
		row.LastUpdatedAt = row.PublishedAt
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return nil, storageError("insert activity", err)
	}
	return toActivity(row), nil
}

// Save updates the stored activity in place. It is used by upgraders that
// rewrite historical records.
func (s *BunStore) Save(ctx context.Context, activity *types.Activity) error {
	if activity == nil || activity.ID == 0 {
		return errors.New("store: persisted activity required")
	}
	row := toActivityRow(activity)
	// The thread sequence counters are store bookkeeping; Save must not
	// clobber them.
	_, err := s.db.NewUpdate().Model(row).
		Column("actor", "display_actor", "verb", "object", "display_object",
			"target", "display_target", "context", "published_at", "last_updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return storageError("save activity", err)
	}
	return nil
}

// Get returns the activity with the given id.
func (s *BunStore) Get(ctx context.Context, id int64) (*types.Activity, error) {
	row := new(ActivityRow)
	err := s.db.NewSelect().Model(row).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrActivityNotFound
		}
		return nil, storageError("get activity", err)
	}
	return toActivity(row), nil
}

// GetMany returns the activities matching the given ids, ordered by id.
// Missing ids are skipped.
func (s *BunStore) GetMany(ctx context.Context, ids []int64) ([]*types.Activity, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []*ActivityRow
	err := s.db.NewSelect().Model(&rows).
		Where("id IN (?)", bun.In(ids)).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, storageError("get activities", err)
	}
	activities := make([]*types.Activity, 0, len(rows))
	for _, row := range rows {
		activities = append(activities, toActivity(row))
	}
	return activities, nil
}

// DeleteByIDs removes the given activities and their thread entries.
func (s *BunStore) DeleteByIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*ThreadEntryRow)(nil)).
			Where("activity_id IN (?)", bun.In(ids)).
			Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().Model((*ActivityRow)(nil)).
			Where("id IN (?)", bun.In(ids)).
			Exec(ctx)
		return err
	})
	if err != nil {
		return storageError("delete activities", err)
	}
	return nil
}

// Query returns activities matching the criteria ordered by last_updated_at
// descending (id ascending on ties). limit 0 means unbounded.
func (s *BunStore) Query(ctx context.Context, criteria types.ActivityCriteria, offset, limit int) ([]*types.Activity, error) {
	var rows []*ActivityRow
	q := s.db.NewSelect().Model(&rows).
		OrderExpr("last_updated_at DESC, id ASC")
	q = applyCriteria(q, criteria)
	q = applyPagination(q, offset, limit)
	if err := q.Scan(ctx); err != nil {
		return nil, storageError("query activities", err)
	}
	activities := make([]*types.Activity, 0, len(rows))
	for _, row := range rows {
		activities = append(activities, toActivity(row))
	}
	return activities, nil
}

// AppendThreadEntry adds a comment or reply to the activity's sub-log with the
// next sequence number for that kind. Appends to the same activity are
// serialized; appends to different activities do not block each other.
func (s *BunStore) AppendThreadEntry(ctx context.Context, activityID int64, kind types.ThreadKind, entry types.ThreadEntry) (types.ThreadEntry, error) {
	unlock := s.lockThread(activityID)
	defer unlock()

	if entry.PublishedAt == 0 {
		entry.PublishedAt = s.clock.Now().UnixMilli()
	}

	// The sequence is a high-water mark kept on the activity row, not
	// MAX(seq) over remaining entries: removing the highest entry must not
	// let its sequence number be handed out again.
	seqColumn := "comment_seq"
	if kind == types.ThreadKindReply {
		seqColumn = "reply_seq"
	}

	var stored types.ThreadEntry
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var lastSeq int64
		err := tx.NewSelect().Model((*ActivityRow)(nil)).
			Column(seqColumn).
			Where("id = ?", activityID).
			Scan(ctx, &lastSeq)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return types.ErrActivityNotFound
			}
			return err
		}

		seq := lastSeq + 1
		row := &ThreadEntryRow{
			ActivityID:   activityID,
			Kind:         string(kind),
			Seq:          seq,
			EntryID:      ThreadEntryID(activityID, kind, seq),
			Actor:        entry.Actor,
			DisplayActor: entry.DisplayActor,
			Message:      entry.Message,
			PublishedAt:  entry.PublishedAt,
		}
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return err
		}

		if _, err := tx.NewUpdate().Model((*ActivityRow)(nil)).
			Set(seqColumn+" = ?", seq).
			Set("last_updated_at = ?", s.clock.Now()).
			Where("id = ?", activityID).
			Exec(ctx); err != nil {
			return err
		}

		stored = toThreadEntry(row)
		return nil
	})
	if err != nil {
		if errors.Is(err, types.ErrActivityNotFound) {
			return types.ThreadEntry{}, err
		}
		return types.ThreadEntry{}, storageError("append thread entry", err)
	}
	return stored, nil
}

// RemoveThreadEntry deletes the matching entry if present. Removal of an
// unknown entry id is a no-op, not an error; remaining entries keep their
// sequence numbers.
func (s *BunStore) RemoveThreadEntry(ctx context.Context, activityID int64, kind types.ThreadKind, entryID string) (types.ThreadEntry, bool, error) {
	unlock := s.lockThread(activityID)
	defer unlock()

	var removed types.ThreadEntry
	var found bool
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row := new(ThreadEntryRow)
		err := tx.NewSelect().Model(row).
			Where("activity_id = ? AND kind = ? AND entry_id = ?", activityID, string(kind), entryID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return err
		}
		if _, err := tx.NewDelete().Model((*ThreadEntryRow)(nil)).
			Where("activity_id = ? AND kind = ? AND entry_id = ?", activityID, string(kind), entryID).
			Exec(ctx); err != nil {
			return err
		}
		removed = toThreadEntry(row)
		found = true
		return nil
	})
	if err != nil {
		return types.ThreadEntry{}, false, storageError("remove thread entry", err)
	}
	return removed, found, nil
}

// ListThreadEntries returns the activity's entries of the given kind in append
// order.
func (s *BunStore) ListThreadEntries(ctx context.Context, activityID int64, kind types.ThreadKind) ([]types.ThreadEntry, error) {
	var rows []*ThreadEntryRow
	err := s.db.NewSelect().Model(&rows).
		Where("activity_id = ? AND kind = ?", activityID, string(kind)).
		Order("seq ASC").
		Scan(ctx)
	if err != nil {
		return nil, storageError("list thread entries", err)
	}
	entries := make([]types.ThreadEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, toThreadEntry(row))
	}
	return entries, nil
}

// ThreadEntryID renders the external id for a thread entry.
func ThreadEntryID(activityID int64, kind types.ThreadKind, seq int64) string {
	return fmt.Sprintf("%d-%s-%d", activityID, kind, seq)
}

func (s *BunStore) lockThread(activityID int64) func() {
	value, _ := s.threadLocks.LoadOrStore(activityID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func applyPagination(q *bun.SelectQuery, offset, limit int) *bun.SelectQuery {
	if limit <= 0 && offset > 0 {
		// SQLite rejects OFFSET without LIMIT.
		limit = math.MaxInt32
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	return q
}

func storageError(op string, err error) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, "store: "+op).WithCode(goerrors.CodeInternal)
}
