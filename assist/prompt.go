package assist

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Input limits, enforced before anything is sent to the model.
const (
	MaxPromptChars  = 12000
	MaxContextChars = 24000
)

var (
	ErrEmptyPrompt    = errors.New("prompt is required")
	ErrPromptTooLong  = fmt.Errorf("prompt exceeds %d characters", MaxPromptChars)
	ErrContextTooLong = fmt.Errorf("context exceeds %d characters", MaxContextChars)
)

// Features select the task instruction set for a turn.
const (
	FeatureChat      = "chat"
	FeatureEditor    = "editor"
	FeatureSummarise = "summarise"
	FeatureTags      = "tags"
)

const systemPrompt = "You are a writing assistant embedded in an article editor. " +
	"Reply in Markdown. Keep outputs concise and concrete."

// actionGuide is appended to every composed prompt so the model knows how to
// request edits. At most one fenced json block per reply; the extractor
// takes the last one.
const actionGuide = `After your natural-language reply, include at most one fenced JSON block when relevant:
` + "```json" + `
{"actions":[{"type":"REPLACE_BODY","body_md":"..."},{"type":"APPEND_BODY","body_md":"..."},{"type":"APPLY_TITLE","title":"..."},{"type":"APPLY_ABSTRACT","abstract":"..."},{"type":"APPLY_TAGS","tags":["..."]},{"type":"CONFIRM","question":"..."}],"confidence":0.0}
` + "```" + `
Only include this JSON if at least one action is appropriate. Confidence in [0,1].
Prefer REPLACE_BODY when the user clearly wants to swap the full body; prefer APPEND_BODY for incremental snippets.`

var slashRe = regexp.MustCompile(`(?s)^/(\w+)\s*(.*)$`)

// Composed is a ready-to-send model request.
type Composed struct {
	Feature string
	System  string
	Prompt  string
	Context string
}

// Compose validates the user input and builds the model request for it.
// A leading slash command (/title, /abstract, /tags, /write, /code,
// /improve) selects a fixed task instruction; anything else is handled
// conversationally under the feature hint (default "chat").
func Compose(raw, featureHint, sessionContext, postType string) (Composed, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Composed{}, ErrEmptyPrompt
	}
	if len(raw) > MaxPromptChars {
		return Composed{}, ErrPromptTooLong
	}
	if len(sessionContext) > MaxContextChars {
		return Composed{}, ErrContextTooLong
	}

	m := slashRe.FindStringSubmatch(raw)
	if m == nil {
		return composePlain(raw, featureHint, sessionContext), nil
	}

	cmd := strings.ToLower(m[1])
	rest := strings.TrimSpace(m[2])
	ctx := sessionContext

	switch cmd {
	case "title":
		return Composed{
			Feature: FeatureEditor,
			System:  systemPrompt,
			Prompt:  "Propose an improved, succinct, compelling title. Return #TITLE only.\n" + actionGuide,
			Context: ctx + "\nReturn #TITLE only.",
		}, nil
	case "abstract":
		return Composed{
			Feature: FeatureEditor,
			System:  systemPrompt,
			Prompt:  "Summarise the body into one crisp paragraph. Return #ABSTRACT only.\n" + actionGuide,
			Context: ctx + "\nReturn #ABSTRACT only.",
		}, nil
	case "tags":
		return Composed{
			Feature: FeatureEditor,
			System:  systemPrompt,
			Prompt:  "Generate 3-6 relevant, short, lowercase tags, comma-separated. Return #TAGS only.\n" + actionGuide,
			Context: ctx + "\nReturn #TAGS only.",
		}, nil
	case "write":
		return Composed{
			Feature: FeatureEditor,
			System:  systemPrompt,
			Prompt:  fmt.Sprintf("Write an article on: %s. Use Markdown headings and brief examples.\n%s", rest, actionGuide),
			Context: ctx + "\nReturn #BODY_MD (and optionally #TITLE, #ABSTRACT, #TAGS).",
		}, nil
	case "code":
		return Composed{
			Feature: FeatureEditor,
			System:  systemPrompt,
			Prompt:  fmt.Sprintf("Write code for: %s. Provide fenced Markdown and a brief explanation.\n%s", rest, actionGuide),
			Context: ctx + "\nReturn #BODY_MD only.",
		}, nil
	case "improve":
		subject := "question description"
		if postType == "" || postType == "article" {
			subject = "article body"
		}
		return Composed{
			Feature: FeatureEditor,
			System:  systemPrompt,
			Prompt: fmt.Sprintf("Improve the current %s for clarity and structure while preserving author voice. Keep Markdown.\n%s",
				subject, actionGuide),
			Context: ctx + "\nReturn #BODY_MD only.",
		}, nil
	}

	// Unknown slash command: treat as a conversational edit request.
	return Composed{
		Feature: FeatureEditor,
		System:  systemPrompt,
		Prompt:  fmt.Sprintf("Acknowledge briefly, then provide concrete suggestions.\nUser message: %s\n%s", raw, actionGuide),
		Context: ctx,
	}, nil
}

func composePlain(raw, featureHint, ctx string) Composed {
	switch featureHint {
	case FeatureSummarise:
		return Composed{
			Feature: FeatureSummarise,
			System:  systemPrompt,
			Prompt: "Summarise the provided context into one crisp paragraph. Return #ABSTRACT only.\n" +
				"User message:\n" + raw + "\n" + actionGuide,
			Context: ctx,
		}
	case FeatureTags:
		return Composed{
			Feature: FeatureTags,
			System:  systemPrompt,
			Prompt: "Generate 3-6 relevant, short, lowercase tags, comma-separated. Return #TAGS only.\n" +
				"User message:\n" + raw + "\n" + actionGuide,
			Context: ctx,
		}
	case FeatureEditor:
		return Composed{
			Feature: FeatureEditor,
			System:  systemPrompt,
			Prompt: "Acknowledge briefly, then provide concrete suggestions.\nUser message: " + raw + "\n" +
				actionGuide,
			Context: ctx,
		}
	}
	return Composed{
		Feature: FeatureChat,
		System:  systemPrompt,
		Prompt: strings.Join([]string{
			"Chat naturally about their writing. Acknowledge briefly, then offer 1-3 specific suggestions.",
			"Ask at most one clarifying question when helpful.",
			"Keep outputs concise and concrete.",
			"If the user requests inserting/adding/replacing content, include the actions JSON.",
			"",
			"User message:",
			raw,
			"",
			actionGuide,
		}, "\n"),
		Context: ctx,
	}
}
