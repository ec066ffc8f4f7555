package store

import (
	"time"

	"github.com/goliatone/go-activitystream/pkg/types"
	"github.com/uptrace/bun"
)

// ActivityRow models the persisted row in activities.
type ActivityRow struct {
	bun.BaseModel `bun:"table:activities"`

	ID            int64     `bun:"id,pk,autoincrement"`
	Actor         string    `bun:"actor"`
	DisplayActor  string    `bun:"display_actor"`
	Verb          string    `bun:"verb"`
	Object        string    `bun:"object"`
	DisplayObject string    `bun:"display_object"`
	Target        string    `bun:"target"`
	DisplayTarget string    `bun:"display_target"`
	Context       string    `bun:"context"`
	CommentSeq    int64     `bun:"comment_seq"`
	ReplySeq      int64     `bun:"reply_seq"`
	PublishedAt   time.Time `bun:"published_at"`
	LastUpdatedAt time.Time `bun:"last_updated_at"`
}

// ThreadEntryRow models the persisted row in activity_thread_entries.
type ThreadEntryRow struct {
	bun.BaseModel `bun:"table:activity_thread_entries"`

	ActivityID   int64  `bun:"activity_id"`
	Kind         string `bun:"kind"`
	Seq          int64  `bun:"seq"`
	EntryID      string `bun:"entry_id"`
	Actor        string `bun:"actor"`
	DisplayActor string `bun:"display_actor"`
	Message      string `bun:"message"`
	PublishedAt  int64  `bun:"published_at"`
}

func toActivityRow(activity *types.Activity) *ActivityRow {
	return &ActivityRow{
		ID:            activity.ID,
		Actor:         activity.Actor,
		DisplayActor:  activity.DisplayActor,
		Verb:          activity.Verb,
		Object:        activity.Object,
		DisplayObject: activity.DisplayObject,
		Target:        activity.Target,
		DisplayTarget: activity.DisplayTarget,
		Context:       activity.Context,
		PublishedAt:   activity.PublishedAt,
		LastUpdatedAt: activity.LastUpdatedAt,
	}
}

func toActivity(row *ActivityRow) *types.Activity {
	if row == nil {
		return nil
	}
	return &types.Activity{
		ID:            row.ID,
		Actor:         row.Actor,
		DisplayActor:  row.DisplayActor,
		Verb:          row.Verb,
		Object:        row.Object,
		DisplayObject: row.DisplayObject,
		Target:        row.Target,
		DisplayTarget: row.DisplayTarget,
		Context:       row.Context,
		PublishedAt:   row.PublishedAt,
		LastUpdatedAt: row.LastUpdatedAt,
	}
}

func toThreadEntry(row *ThreadEntryRow) types.ThreadEntry {
	if row == nil {
		return types.ThreadEntry{}
	}
	return types.ThreadEntry{
		ID:           row.EntryID,
		Actor:        row.Actor,
		DisplayActor: row.DisplayActor,
		Message:      row.Message,
		PublishedAt:  row.PublishedAt,
	}
}
