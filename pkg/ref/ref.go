// Package ref builds and parses the namespaced string references used by
// activity fields (actor, object, target, context). References are plain
// strings with a type prefix, e.g. "user:alice" or "doc:default:1234".
package ref

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
)

const (
	// Separator joins the reference prefix and its components.
	Separator = ":"

	// UserPrefix marks a principal reference.
	UserPrefix = "user" + Separator

	// DocPrefix marks a document reference ("doc:{repository}:{id}").
	DocPrefix = "doc" + Separator

	// ActivityPrefix marks a reference to a stored activity.
	ActivityPrefix = "activity" + Separator
)

// IsUser reports whether the reference points at a principal.
func IsUser(reference string) bool {
	return strings.HasPrefix(reference, UserPrefix)
}

// IsDocument reports whether the reference points at a document.
func IsDocument(reference string) bool {
	return strings.HasPrefix(reference, DocPrefix)
}

// IsActivity reports whether the reference points at a stored activity.
func IsActivity(reference string) bool {
	return strings.HasPrefix(reference, ActivityPrefix)
}

// User builds a principal reference from a username.
func User(username string) string {
	return UserPrefix + username
}

// Document builds a document reference from a repository name and document id.
func Document(repository, documentID string) string {
	return DocPrefix + repository + Separator + documentID
}

// Activity builds a reference to a stored activity.
func Activity(activityID int64) string {
	return ActivityPrefix + strconv.FormatInt(activityID, 10)
}

// Username extracts the username from a principal reference. It returns an
// empty string when the reference is not a principal.
func Username(reference string) string {
	if !IsUser(reference) {
		return ""
	}
	return strings.TrimPrefix(reference, UserPrefix)
}

// Usernames maps a slice of principal references to usernames, skipping
// references of other kinds.
func Usernames(references []string) []string {
	usernames := make([]string, 0, len(references))
	for _, reference := range references {
		if IsUser(reference) {
			usernames = append(usernames, Username(reference))
		}
	}
	return usernames
}

// DocumentID extracts the document id from a document reference, or "" when
// the reference is not a document.
func DocumentID(reference string) string {
	if !IsDocument(reference) {
		return ""
	}
	parts := strings.SplitN(reference, Separator, 3)
	if len(parts) < 3 {
		return ""
	}
	return parts[2]
}

// Repository extracts the repository name from a document reference, or ""
// when the reference is not a document.
func Repository(reference string) string {
	if !IsDocument(reference) {
		return ""
	}
	parts := strings.SplitN(reference, Separator, 3)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// ActivityID extracts the activity id from an activity reference. It returns
// 0 when the reference is not an activity or carries a malformed id.
func ActivityID(reference string) int64 {
	if !IsActivity(reference) {
		return 0
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(reference, ActivityPrefix), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// DisplayName renders a best-effort human name from first/last name parts,
// falling back to the username when both are blank.
func DisplayName(username, firstName, lastName string) string {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" && lastName == "" {
		return username
	}
	return strings.TrimSpace(firstName + " " + lastName)
}

var httpURLPattern = regexp.MustCompile(`\b(https?://[-a-zA-Z0-9+&@#/%?=~_|!:,.;]*[-a-zA-Z0-9+&@#/%=~_|])`)

// LinkifyURLs HTML-escapes the message and replaces plain http(s) URLs with
// anchor tags.
func LinkifyURLs(message string) string {
	escaped := html.EscapeString(message)
	return httpURLPattern.ReplaceAllStringFunc(escaped, func(url string) string {
		return fmt.Sprintf("<a href=%q target=\"_top\">%s</a>", url, url)
	})
}
