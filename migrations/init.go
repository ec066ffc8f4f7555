package migrations

import (
	activitystream "github.com/goliatone/go-activitystream"
)

func init() {
	Register(activitystream.GetMigrationsFS())
}
