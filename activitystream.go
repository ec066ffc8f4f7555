package activitystream

import "github.com/goliatone/go-activitystream/stream"

// Re-export the stream package entry point so consumers can do
// `activitystream.New(...)` without importing internal wiring helpers.
type (
	Service = stream.Service
	Config  = stream.Config
)

// AllActivities is the reserved filter id for the unfiltered default query.
const AllActivities = stream.AllActivities

// New constructs the activity stream runtime using the provided configuration.
func New(cfg Config) (*Service, error) {
	return stream.New(cfg)
}
