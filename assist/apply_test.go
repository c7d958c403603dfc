package assist

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyRunsInOrder(t *testing.T) {
	var got []string
	cb := Callbacks{
		OnApplyTitle:  func(s string) error { got = append(got, "title:"+s); return nil },
		OnReplaceBody: func(s string) error { got = append(got, "body:"+s); return nil },
	}
	applied := Apply([]Action{
		{Type: ActionReplaceBody, BodyMD: "B"},
		{Type: ActionApplyTitle, Title: "T"},
	}, nil, cb, nil)

	assert.Equal(t, []string{"body:B", "title:T"}, got)
	assert.Len(t, applied, 2)
}

func TestApplyMissingCallbackSkipsSilently(t *testing.T) {
	applied := Apply([]Action{
		{Type: ActionReplaceBody, BodyMD: "B"},
		{Type: ActionApplyTags, Tags: []string{"go"}},
	}, nil, Callbacks{}, nil)
	assert.Empty(t, applied)
}

func TestApplyIsolatesCallbackErrors(t *testing.T) {
	var titled string
	cb := Callbacks{
		OnReplaceBody: func(string) error { return errors.New("editor busy") },
		OnApplyTitle:  func(s string) error { titled = s; return nil },
	}
	applied := Apply([]Action{
		{Type: ActionReplaceBody, BodyMD: "B"},
		{Type: ActionApplyTitle, Title: "T"},
	}, nil, cb, nil)

	assert.Equal(t, "T", titled)
	require.Len(t, applied, 1)
	assert.Equal(t, ActionApplyTitle, applied[0].Type)
}

func TestApplyTagsMergesNormalized(t *testing.T) {
	var got []string
	cb := Callbacks{OnApplyTags: func(tags []string) error { got = tags; return nil }}

	Apply([]Action{{Type: ActionApplyTags, Tags: []string{"Go", "Web Dev", "go"}}},
		[]string{"go", "testing"}, cb, nil)

	assert.Equal(t, []string{"go", "testing", "web-dev"}, got)
}

func TestApplySkipsEmptyPayloads(t *testing.T) {
	called := false
	cb := Callbacks{OnReplaceBody: func(string) error { called = true; return nil }}
	applied := Apply([]Action{{Type: ActionReplaceBody}}, nil, cb, nil)
	assert.False(t, called)
	assert.Empty(t, applied)
}

func TestApplyConfirmHasNoEffect(t *testing.T) {
	cb := Callbacks{
		OnReplaceBody: func(string) error { t.Fatal("confirm must not mutate"); return nil },
	}
	applied := Apply([]Action{{Type: ActionConfirm, Question: "Replace the whole body?"}}, nil, cb, nil)
	assert.Empty(t, applied)
}
