package assist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractActionsLastBlockWins(t *testing.T) {
	raw := "Sure, here is a title.\n" +
		"```json\n{\"actions\":[{\"type\":\"APPLY_TITLE\",\"title\":\"First\"}],\"confidence\":0.9}\n```\n" +
		"Actually, this is better:\n" +
		"```json\n{\"actions\":[{\"type\":\"APPLY_TITLE\",\"title\":\"Second\"}],\"confidence\":0.8}\n```\n"

	actions := ExtractActions(raw)
	require.Len(t, actions, 1)
	assert.Equal(t, ActionApplyTitle, actions[0].Type)
	assert.Equal(t, "Second", actions[0].Title)
}

func TestExtractActionsMalformedBlockIsEmpty(t *testing.T) {
	raw := "Here you go.\n```json\n{this is not json]\n```\n"
	assert.Empty(t, ExtractActions(raw))
}

func TestExtractActionsNoBlock(t *testing.T) {
	assert.Empty(t, ExtractActions("Just a plain reply with no fenced block."))
	assert.Empty(t, ExtractActions(""))
}

func TestExtractActionsDropsUnknownTypes(t *testing.T) {
	raw := "```json\n{\"actions\":[{\"type\":\"DELETE_EVERYTHING\"},{\"type\":\"APPEND_BODY\",\"body_md\":\"more\"}],\"confidence\":0.5}\n```"
	actions := ExtractActions(raw)
	require.Len(t, actions, 1)
	assert.Equal(t, ActionAppendBody, actions[0].Type)
}

func TestExtractActionsIdempotent(t *testing.T) {
	raw := "```json\n{\"actions\":[{\"type\":\"REPLACE_BODY\",\"body_md\":\"new body\"}],\"confidence\":1}\n```"
	first := ExtractActions(raw)
	second := ExtractActions(raw)
	assert.Equal(t, first, second)
}

func TestParseSections(t *testing.T) {
	raw := "#TITLE\nGo Generics in Practice\n" +
		"#ABSTRACT\nA short tour.\n" +
		"#BODY_MD\n## Intro\nSome text.\n" +
		"#TAGS\nreact, node, node\n"

	sec := ParseSections(raw)
	assert.Equal(t, "Go Generics in Practice", sec.Title)
	assert.Equal(t, "A short tour.", sec.Abstract)
	assert.Equal(t, "## Intro\nSome text.", sec.Body)
	assert.Equal(t, []string{"react", "node"}, sec.Tags)
}

func TestParseSectionsBodyFallback(t *testing.T) {
	sec := ParseSections("#BODY\nplain body text")
	assert.Equal(t, "plain body text", sec.Body)
}

func TestParseSectionsAbsentHeaders(t *testing.T) {
	sec := ParseSections("No headers here at all.")
	assert.Equal(t, Sections{}, sec)
}

func TestParseSectionsStopsAtUnknownHeader(t *testing.T) {
	sec := ParseSections("#TITLE\nThe Title\n#NOTES\nnot part of the title")
	assert.Equal(t, "The Title", sec.Title)
}
