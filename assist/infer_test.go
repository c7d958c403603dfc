package assist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferInsertItUsesBuffer(t *testing.T) {
	buf := ProposalBuffer{BodyMD: "remembered draft"}
	actions := InferActions("insert it", buf)
	require.Len(t, actions, 1)
	assert.Equal(t, ActionAppendBody, actions[0].Type)
	assert.Equal(t, "remembered draft", actions[0].BodyMD)
}

func TestInferReplaceBody(t *testing.T) {
	actions := InferActions("please replace the body", ProposalBuffer{BodyMD: "draft"})
	require.Len(t, actions, 1)
	assert.Equal(t, ActionReplaceBody, actions[0].Type)
	assert.Equal(t, "draft", actions[0].BodyMD)
}

func TestInferPastedContentWinsOverBuffer(t *testing.T) {
	raw := "replace the body with this:\n```md\nNEW CONTENT\n```"
	actions := InferActions(raw, ProposalBuffer{BodyMD: "old draft"})
	require.Len(t, actions, 1)
	assert.Equal(t, ActionReplaceBody, actions[0].Type)
	assert.Equal(t, "NEW CONTENT", actions[0].BodyMD)
}

func TestInferNeedsBothSignals(t *testing.T) {
	buf := ProposalBuffer{BodyMD: "draft"}
	// Verb without an object noun.
	assert.Empty(t, InferActions("add more jokes", buf))
	// Object noun without a verb.
	assert.Empty(t, InferActions("make it shorter", buf))
	assert.Empty(t, InferActions("the article is great", buf))
}

func TestInferNothingWithoutCandidate(t *testing.T) {
	assert.Empty(t, InferActions("insert it", ProposalBuffer{}))
}

func TestPastedBody(t *testing.T) {
	assert.Equal(t, "hello", PastedBody("look:\n```markdown\nhello\n```"))
	assert.Equal(t, "", PastedBody("no fence here"))
}
