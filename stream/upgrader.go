package stream

import (
	"context"

	"github.com/goliatone/go-activitystream/pkg/types"
)

// VerbRewriteUpgrader renames a verb across stored activities. It is
// self-checking: a re-run finds nothing left to rewrite and stops, so it is
// safe to execute again after a partial failure.
type VerbRewriteUpgrader struct {
	name      string
	order     int
	from      string
	to        string
	batchSize int
}

// NewVerbRewriteUpgrader builds an upgrader migrating activities recorded
// under verb from to verb to.
func NewVerbRewriteUpgrader(name string, order int, from, to string) *VerbRewriteUpgrader {
	return &VerbRewriteUpgrader{
		name:      name,
		order:     order,
		from:      from,
		to:        to,
		batchSize: 100,
	}
}

var _ types.Upgrader = (*VerbRewriteUpgrader)(nil)

// Name implements types.Upgrader.
func (u *VerbRewriteUpgrader) Name() string { return u.name }

// Order implements types.Upgrader.
func (u *VerbRewriteUpgrader) Order() int { return u.order }

// Upgrade rewrites matching activities in batches until none remain.
func (u *VerbRewriteUpgrader) Upgrade(ctx context.Context, store types.ActivityStore) error {
	criteria := types.ActivityCriteria{Verbs: []string{u.from}}
	for {
		// Always read from offset 0: each save removes the row from the
		// matching set.
		batch, err := store.Query(ctx, criteria, 0, u.batchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		for _, activity := range batch {
			activity.Verb = u.to
			if err := store.Save(ctx, activity); err != nil {
				return err
			}
		}
	}
}
