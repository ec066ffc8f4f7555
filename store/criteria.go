package store

import (
	"github.com/goliatone/go-activitystream/pkg/types"
	"github.com/uptrace/bun"
)

func applyCriteria(q *bun.SelectQuery, criteria types.ActivityCriteria) *bun.SelectQuery {
	if len(criteria.IDs) > 0 {
		q = q.Where("id IN (?)", bun.In(criteria.IDs))
	}
	if len(criteria.Actors) > 0 {
		q = q.Where("actor IN (?)", bun.In(criteria.Actors))
	}
	if criteria.ActorPrefix != "" {
		q = q.Where("actor LIKE ?", criteria.ActorPrefix+"%")
	}
	if len(criteria.Verbs) > 0 {
		q = q.Where("verb IN (?)", bun.In(criteria.Verbs))
	}
	if len(criteria.Objects) > 0 {
		q = q.Where("object IN (?)", bun.In(criteria.Objects))
	}
	if criteria.ObjectOrTarget != "" {
		q = q.Where("(object = ? OR target = ?)", criteria.ObjectOrTarget, criteria.ObjectOrTarget)
	}
	if criteria.Context != "" {
		q = q.Where("context = ?", criteria.Context)
	} else if criteria.UnscopedOnly {
		q = q.Where("context = ''")
	}
	if criteria.Since != nil && !criteria.Since.IsZero() {
		q = q.Where("published_at >= ?", criteria.Since)
	}
	if criteria.Until != nil && !criteria.Until.IsZero() {
		q = q.Where("published_at <= ?", criteria.Until)
	}
	return q
}
