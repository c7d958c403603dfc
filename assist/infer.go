package assist

import (
	"regexp"
	"strings"
)

// Best-effort intent heuristics for turns where the model sent no structured
// actions. Both a verb and a body/article noun must match before anything
// fires, so false positives stay rare; false negatives are acceptable.
var (
	replaceVerbRe = regexp.MustCompile(`\b(replace|overwrite)\b`)
	insertVerbRe  = regexp.MustCompile(`\b(insert|add|append|put)\b`)
	// "it" counts as the object when a proposal is remembered ("insert it").
	bodyNounRe    = regexp.MustCompile(`\b(body|article|it)\b`)
	pastedFenceRe = regexp.MustCompile("(?is)```(?:md|markdown)?\\s*(.*?)```")
)

// PastedBody returns the content of a fenced block pasted directly in the
// user's message, or "" when there is none.
func PastedBody(raw string) string {
	if m := pastedFenceRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// InferActions guesses an edit intent from the user's own message. It is
// only consulted when ExtractActions returned nothing; structured actions
// always take precedence. Candidate content is a fenced block in the
// message, else the last remembered proposal body.
func InferActions(raw string, buf ProposalBuffer) []Action {
	s := strings.ToLower(raw)
	if !bodyNounRe.MatchString(s) {
		return nil
	}
	candidate := PastedBody(raw)
	if candidate == "" {
		candidate = buf.BodyMD
	}
	if candidate == "" {
		return nil
	}
	if replaceVerbRe.MatchString(s) {
		return []Action{{Type: ActionReplaceBody, BodyMD: candidate}}
	}
	if insertVerbRe.MatchString(s) {
		return []Action{{Type: ActionAppendBody, BodyMD: candidate}}
	}
	return nil
}
