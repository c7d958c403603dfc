package assist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, replies ...string) (*Session, *MockLLM) {
	t.Helper()
	llm := &MockLLM{Replies: replies}
	a, err := NewAssistant(llm, ModelConfig{Default: "test-model", Power: "test-model-power"}, nil)
	require.NoError(t, err)
	return NewSession("s1", "u1", "article", Document{Tags: []string{"go"}}, a), llm
}

func TestSessionAppliesStructuredActions(t *testing.T) {
	reply := "Done.\n```json\n{\"actions\":[" +
		"{\"type\":\"APPLY_TITLE\",\"title\":\"New Title\"}," +
		"{\"type\":\"REPLACE_BODY\",\"body_md\":\"fresh body\"}," +
		"{\"type\":\"APPLY_TAGS\",\"tags\":[\"Web Dev\",\"go\"]}" +
		"],\"confidence\":0.9}\n```"
	sess, _ := newTestSession(t, reply)

	out, err := sess.Assist(context.Background(), "/write something", false, false)
	require.NoError(t, err)

	assert.Equal(t, "New Title", out.Document.Title)
	assert.Equal(t, "fresh body", out.Document.Body)
	assert.Equal(t, []string{"go", "web-dev"}, out.Document.Tags)
	assert.Len(t, out.Applied, 3)
	assert.Equal(t, "test-model", out.Model)
}

func TestSessionFallbackInsertIt(t *testing.T) {
	sess, _ := newTestSession(t,
		"#BODY_MD\nProposed paragraph.", // turn 1: sections only, no actions
		"Sure thing.",                   // turn 2: nothing structured
	)

	_, err := sess.Assist(context.Background(), "could you draft a paragraph", false, false)
	require.NoError(t, err)
	assert.Empty(t, sess.Snapshot().Body, "sections alone must not auto-apply")

	out, err := sess.Assist(context.Background(), "insert it", false, false)
	require.NoError(t, err)
	assert.Equal(t, "Proposed paragraph.", out.Document.Body)
	require.Len(t, out.Applied, 1)
	assert.Equal(t, ActionAppendBody, out.Applied[0].Type)
}

func TestSessionAppendBody(t *testing.T) {
	reply := "```json\n{\"actions\":[{\"type\":\"APPEND_BODY\",\"body_md\":\"second\"}],\"confidence\":1}\n```"
	sess, _ := newTestSession(t, reply)
	sess.doc.Body = "first"

	out, err := sess.Assist(context.Background(), "add a closing section to the article", false, false)
	require.NoError(t, err)
	assert.Equal(t, "first\n\nsecond", out.Document.Body)
}

func TestSessionRecordsHistory(t *testing.T) {
	sess, _ := newTestSession(t, "Plain reply.")
	_, err := sess.Assist(context.Background(), "hello", false, false)
	require.NoError(t, err)

	turns := sess.History()
	require.Len(t, turns, 2)
	assert.Equal(t, "user", turns[0].Role)
	assert.Equal(t, "hello", turns[0].Text)
	assert.Equal(t, "assistant", turns[1].Role)
	assert.Equal(t, "Plain reply.", turns[1].Text)
}

func TestSessionSendsDocumentContext(t *testing.T) {
	sess, llm := newTestSession(t, "ok")
	sess.doc.Title = "Existing Title"
	sess.doc.Body = "Existing body."

	_, err := sess.Assist(context.Background(), "hello", false, false)
	require.NoError(t, err)

	require.Len(t, llm.Requests, 1)
	var ctxMsg string
	for _, m := range llm.Requests[0].Messages {
		if m.Role == "user" {
			ctxMsg += m.Content + "\n"
		}
	}
	assert.Contains(t, ctxMsg, "Existing Title")
	assert.Contains(t, ctxMsg, "Existing body.")
}

func TestProposalBufferCapture(t *testing.T) {
	var b ProposalBuffer

	// Sections fill empty fields.
	b.Capture(nil, Sections{Body: "from section", Title: "T1"})
	assert.Equal(t, "from section", b.BodyMD)
	assert.Equal(t, "T1", b.Title)

	// Actions win over sections on the same turn.
	b.Capture(
		[]Action{{Type: ActionReplaceBody, BodyMD: "from action"}},
		Sections{Body: "ignored"},
	)
	assert.Equal(t, "from action", b.BodyMD)

	// A turn with nothing new keeps the previous values.
	b.Capture(nil, Sections{})
	assert.Equal(t, "from action", b.BodyMD)
	assert.Equal(t, "T1", b.Title)
}

func TestModelSelect(t *testing.T) {
	m := ModelConfig{Default: "small", Power: "big"}
	assert.Equal(t, "big", m.Select(true, true))
	assert.Equal(t, "small", m.Select(true, false))
	assert.Equal(t, "small", m.Select(false, true))
	assert.Equal(t, "small", ModelConfig{Default: "small"}.Select(true, true))
}
