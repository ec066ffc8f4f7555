package stream

import (
	"time"

	"github.com/goliatone/go-activitystream/pkg/ref"
	"github.com/goliatone/go-activitystream/pkg/types"
)

// ActivityMessage is the presentation form of an activity: raw references
// resolved into labels and permalinks. Rendering never fails; missing display
// data falls back to the raw reference strings.
type ActivityMessage struct {
	ActivityID    int64
	Actor         string
	DisplayActor  string
	ActorLink     string
	Verb          string
	VerbLabel     string
	Object        string
	DisplayObject string
	ObjectLink    string
	Target        string
	DisplayTarget string
	TargetLink    string
	Context       string
	PublishedAt   time.Time
	LastUpdatedAt time.Time
}

// ThreadEntryMessage is the presentation form of a comment or reply, with
// bare URLs in the message upgraded to anchors.
type ThreadEntryMessage struct {
	ID           string
	Actor        string
	DisplayActor string
	ActorLink    string
	Message      string
	PublishedAt  int64
}

// ToActivityMessage renders the activity for display using the named link
// builder (the default builder when name is empty or unknown) and the
// registered verb labels.
func (s *Service) ToActivityMessage(activity *types.Activity, builderName string) ActivityMessage {
	builder := s.GetLinkBuilder(builderName)
	msg := ActivityMessage{
		ActivityID:    activity.ID,
		Actor:         activity.Actor,
		DisplayActor:  activity.DisplayActor,
		Verb:          activity.Verb,
		VerbLabel:     activity.Verb,
		Object:        activity.Object,
		DisplayObject: activity.DisplayObject,
		Target:        activity.Target,
		DisplayTarget: activity.DisplayTarget,
		Context:       activity.Context,
		PublishedAt:   activity.PublishedAt,
		LastUpdatedAt: activity.LastUpdatedAt,
	}
	if label, ok := s.registries.verbLabels[activity.Verb]; ok {
		msg.VerbLabel = label
	}
	msg.ActorLink = renderReference(builder, activity.Actor, activity.DisplayActor)
	msg.ObjectLink = renderReference(builder, activity.Object, activity.DisplayObject)
	msg.TargetLink = renderReference(builder, activity.Target, activity.DisplayTarget)
	return msg
}

// ToThreadEntryMessage renders a comment or reply for display.
func (s *Service) ToThreadEntryMessage(entry types.ThreadEntry, builderName string) ThreadEntryMessage {
	builder := s.GetLinkBuilder(builderName)
	return ThreadEntryMessage{
		ID:           entry.ID,
		Actor:        entry.Actor,
		DisplayActor: entry.DisplayActor,
		ActorLink:    renderReference(builder, entry.Actor, entry.DisplayActor),
		Message:      ref.LinkifyURLs(entry.Message),
		PublishedAt:  entry.PublishedAt,
	}
}

// renderReference turns a reference into an anchor when its shape is known,
// otherwise it returns the display text or the reference verbatim.
func renderReference(builder types.LinkBuilder, reference, display string) string {
	switch {
	case reference == "":
		return ""
	case ref.IsUser(reference):
		return builder.UserProfileLink(reference, display)
	case ref.IsDocument(reference):
		return builder.DocumentLink(reference, display)
	case display != "":
		return display
	default:
		return reference
	}
}
