package assist

// ActionType enumerates the edit actions the model may request.
type ActionType string

const (
	ActionReplaceBody   ActionType = "REPLACE_BODY"
	ActionAppendBody    ActionType = "APPEND_BODY"
	ActionApplyTitle    ActionType = "APPLY_TITLE"
	ActionApplyAbstract ActionType = "APPLY_ABSTRACT"
	ActionApplyTags     ActionType = "APPLY_TAGS"
	ActionConfirm       ActionType = "CONFIRM"
)

// Action is one edit request embedded in a model reply. Which field is
// meaningful depends on Type; the applicator skips actions whose required
// field is empty.
type Action struct {
	Type     ActionType `json:"type"`
	BodyMD   string     `json:"body_md,omitempty"`
	Title    string     `json:"title,omitempty"`
	Abstract string     `json:"abstract,omitempty"`
	Tags     []string   `json:"tags,omitempty"`
	Question string     `json:"question,omitempty"`
}

func knownActionType(t ActionType) bool {
	switch t {
	case ActionReplaceBody, ActionAppendBody, ActionApplyTitle,
		ActionApplyAbstract, ActionApplyTags, ActionConfirm:
		return true
	}
	return false
}

// hasPayload reports whether the action carries the field its type requires.
func (a Action) hasPayload() bool {
	switch a.Type {
	case ActionReplaceBody, ActionAppendBody:
		return a.BodyMD != ""
	case ActionApplyTitle:
		return a.Title != ""
	case ActionApplyAbstract:
		return a.Abstract != ""
	case ActionApplyTags:
		return len(a.Tags) > 0
	case ActionConfirm:
		return a.Question != ""
	}
	return false
}
