package stream

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/goliatone/go-activitystream/pkg/ref"
	"github.com/goliatone/go-activitystream/pkg/types"
)

// DefaultLinkBuilder renders plain permalinks rooted at a configurable base
// URL. Hosts with their own routing register a custom builder and flag it as
// default instead.
type DefaultLinkBuilder struct {
	baseURL string
}

// NewDefaultLinkBuilder builds the fallback link builder. An empty base URL
// yields root-relative links.
func NewDefaultLinkBuilder(baseURL string) *DefaultLinkBuilder {
	return &DefaultLinkBuilder{baseURL: strings.TrimRight(baseURL, "/")}
}

var _ types.LinkBuilder = (*DefaultLinkBuilder)(nil)

// DocumentLink renders an anchor to the referenced document using the display
// text, falling back to the raw reference.
func (b *DefaultLinkBuilder) DocumentLink(documentRef, display string) string {
	if display == "" {
		display = documentRef
	}
	href := b.DocumentURL(ref.Repository(documentRef), ref.DocumentID(documentRef))
	return fmt.Sprintf("<a href=%q>%s</a>", href, html.EscapeString(display))
}

// UserProfileLink renders an anchor to the user's profile page.
func (b *DefaultLinkBuilder) UserProfileLink(userRef, display string) string {
	if display == "" {
		display = ref.Username(userRef)
	}
	return fmt.Sprintf("<a href=%q>%s</a>", b.UserProfileURL(ref.Username(userRef)), html.EscapeString(display))
}

// DocumentURL returns the permalink for a document in a repository.
func (b *DefaultLinkBuilder) DocumentURL(repository, documentID string) string {
	return b.baseURL + "/documents/" + url.PathEscape(repository) + "/" + url.PathEscape(documentID)
}

// UserProfileURL returns the permalink for a user profile.
func (b *DefaultLinkBuilder) UserProfileURL(username string) string {
	return b.baseURL + "/users/" + url.PathEscape(username)
}
