package command

import (
	"context"

	featuregate "github.com/goliatone/go-featuregate/gate"
)

const (
	featureActivityComments = "activity.comments"
	featureActivityReplies  = "activity.replies"
)

// featureEnabled treats a missing gate as everything-on so hosts without
// feature flags get the full surface.
func featureEnabled(ctx context.Context, gate featuregate.FeatureGate, key string) (bool, error) {
	if gate == nil {
		return true, nil
	}
	return gate.Enabled(ctx, key)
}
