package assist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeValidation(t *testing.T) {
	_, err := Compose("", FeatureChat, "", "")
	assert.ErrorIs(t, err, ErrEmptyPrompt)

	_, err = Compose("   \n\t ", FeatureChat, "", "")
	assert.ErrorIs(t, err, ErrEmptyPrompt)

	_, err = Compose(strings.Repeat("a", MaxPromptChars+1), FeatureChat, "", "")
	assert.ErrorIs(t, err, ErrPromptTooLong)

	_, err = Compose("hi", FeatureChat, strings.Repeat("b", MaxContextChars+1), "")
	assert.ErrorIs(t, err, ErrContextTooLong)

	_, err = Compose(strings.Repeat("a", MaxPromptChars), FeatureChat, "", "")
	assert.NoError(t, err)
}

func TestComposeSlashCommands(t *testing.T) {
	c, err := Compose("/tags", "", "the article so far", "article")
	require.NoError(t, err)
	assert.Equal(t, FeatureEditor, c.Feature)
	assert.Contains(t, c.Prompt, "Return #TAGS only")
	assert.Contains(t, c.Context, "the article so far")
	assert.Contains(t, c.Context, "Return #TAGS only")

	c, err = Compose("/write Go generics", "", "", "article")
	require.NoError(t, err)
	assert.Contains(t, c.Prompt, "Write an article on: Go generics")
	assert.Contains(t, c.Context, "Return #BODY_MD")

	c, err = Compose("/improve", "", "", "question")
	require.NoError(t, err)
	assert.Contains(t, c.Prompt, "question description")

	c, err = Compose("/improve", "", "", "article")
	require.NoError(t, err)
	assert.Contains(t, c.Prompt, "article body")
}

func TestComposeUnknownSlashIsConversationalEdit(t *testing.T) {
	c, err := Compose("/frobnicate the intro", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, FeatureEditor, c.Feature)
	assert.Contains(t, c.Prompt, "Acknowledge briefly")
	assert.Contains(t, c.Prompt, "/frobnicate the intro")
}

func TestComposePlainDefaultsToChat(t *testing.T) {
	c, err := Compose("tighten the intro", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, FeatureChat, c.Feature)
	assert.Contains(t, c.Prompt, "tighten the intro")
}

func TestComposeHonorsFeatureHint(t *testing.T) {
	c, err := Compose("what should I tag this?", FeatureTags, "", "")
	require.NoError(t, err)
	assert.Equal(t, FeatureTags, c.Feature)
	assert.Contains(t, c.Prompt, "Return #TAGS only")
}

func TestComposeAlwaysIncludesActionGuide(t *testing.T) {
	for _, raw := range []string{"hello", "/title", "/tags", "/write x", "/code y", "/improve", "/nope"} {
		c, err := Compose(raw, "", "", "article")
		require.NoError(t, err)
		assert.Contains(t, c.Prompt, "at most one fenced JSON block", "input %q", raw)
	}
}

// Round-trip: a /tags prompt answered with a #TAGS section must come back as
// a normalized, de-duplicated list.
func TestTagsRoundTrip(t *testing.T) {
	_, err := Compose("/tags", "", "", "article")
	require.NoError(t, err)

	sec := ParseSections("#TAGS\nreact, node, node")
	assert.Equal(t, []string{"react", "node"}, sec.Tags)
}
