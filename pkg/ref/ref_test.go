package ref

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDocumentReferences(t *testing.T) {
	reference := Document("default", "12345")
	require.Equal(t, "doc:default:12345", reference)
	require.True(t, IsDocument(reference))
	require.False(t, IsUser(reference))
	require.Equal(t, "default", Repository(reference))
	require.Equal(t, "12345", DocumentID(reference))
}

func TestUserReferences(t *testing.T) {
	reference := User("bender")
	require.Equal(t, "user:bender", reference)
	require.True(t, IsUser(reference))
	require.Equal(t, "bender", Username(reference))
	require.Equal(t, "", Username("doc:default:12345"))

	usernames := Usernames([]string{"user:bender", "doc:default:1", "user:fry"})
	require.Equal(t, []string{"bender", "fry"}, usernames)
}

func TestActivityReferences(t *testing.T) {
	reference := Activity(42)
	require.Equal(t, "activity:42", reference)
	require.True(t, IsActivity(reference))
	require.EqualValues(t, 42, ActivityID(reference))
	require.EqualValues(t, 0, ActivityID("activity:not-a-number"))
	require.EqualValues(t, 0, ActivityID("user:bender"))
}

func TestDisplayName(t *testing.T) {
	require.Equal(t, "Philip Fry", DisplayName("fry", "Philip", "Fry"))
	require.Equal(t, "Philip", DisplayName("fry", "Philip", ""))
	require.Equal(t, "fry", DisplayName("fry", "", ""))
}

func TestLinkifyURLs(t *testing.T) {
	out := LinkifyURLs("see http://example.com/page for details")
	require.Contains(t, out, `<a href="http://example.com/page" target="_top">http://example.com/page</a>`)

	out = LinkifyURLs("<script> & nothing else")
	require.Equal(t, "&lt;script&gt; &amp; nothing else", out)
}
