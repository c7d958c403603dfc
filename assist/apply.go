package assist

import (
	"go.uber.org/zap"
)

// Callbacks are the capability hooks a hosting editor exposes. Any hook may
// be nil; actions of that type are then skipped without error.
type Callbacks struct {
	OnApplyTitle    func(string) error
	OnApplyAbstract func(string) error
	OnReplaceBody   func(string) error
	OnAppendBody    func(string) error
	OnApplyTags     func([]string) error
}

// Apply runs the actions in list order against the callbacks and returns the
// ones that were actually applied. A failing callback is logged and the
// remaining actions still run. APPLY_TAGS always hands the callback the
// normalized union of current and incoming tags, never raw model output.
// CONFIRM has no automatic effect.
func Apply(actions []Action, currentTags []string, cb Callbacks, logger *zap.Logger) []Action {
	if logger == nil {
		logger = zap.NewNop()
	}
	tags := dedupeTags(currentTags)
	var applied []Action
	for _, a := range actions {
		if !a.hasPayload() {
			continue
		}
		var (
			err error
			ran bool
		)
		switch a.Type {
		case ActionReplaceBody:
			if cb.OnReplaceBody != nil {
				err, ran = cb.OnReplaceBody(a.BodyMD), true
			}
		case ActionAppendBody:
			if cb.OnAppendBody != nil {
				err, ran = cb.OnAppendBody(a.BodyMD), true
			}
		case ActionApplyTitle:
			if cb.OnApplyTitle != nil {
				err, ran = cb.OnApplyTitle(a.Title), true
			}
		case ActionApplyAbstract:
			if cb.OnApplyAbstract != nil {
				err, ran = cb.OnApplyAbstract(a.Abstract), true
			}
		case ActionApplyTags:
			if cb.OnApplyTags != nil {
				merged := MergeTags(tags, a.Tags)
				if err = cb.OnApplyTags(merged); err == nil {
					tags = merged
				}
				ran = true
			}
		case ActionConfirm:
			// Surfaced to the user by the conversation flow, not here.
		}
		if !ran {
			continue
		}
		if err != nil {
			logger.Warn("action callback failed",
				zap.String("action", string(a.Type)),
				zap.Error(err))
			continue
		}
		applied = append(applied, a)
	}
	return applied
}
