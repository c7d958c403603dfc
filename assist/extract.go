package assist

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Sections holds the labeled parts of a model reply. A missing header leaves
// the field empty; that is not an error.
type Sections struct {
	Title    string   `json:"title,omitempty"`
	Abstract string   `json:"abstract,omitempty"`
	Body     string   `json:"body,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

type actionEnvelope struct {
	Actions    []Action `json:"actions"`
	Confidence float64  `json:"confidence"`
}

var (
	jsonBlockRe = regexp.MustCompile("(?is)```json\\s*(.*?)\\s*```")
	// A section runs from its header to the next #WORD header or end of text.
	nextHeaderRe = regexp.MustCompile(`\n#\w+`)

	sectionHeaderRes = map[string]*regexp.Regexp{
		"TITLE":    regexp.MustCompile(`(?i)#TITLE\s*\n`),
		"ABSTRACT": regexp.MustCompile(`(?i)#ABSTRACT\s*\n`),
		"BODY_MD":  regexp.MustCompile(`(?i)#BODY_MD\s*\n`),
		"BODY":     regexp.MustCompile(`(?i)#BODY\s*\n`),
		"TAGS":     regexp.MustCompile(`(?i)#TAGS\s*\n`),
	}
)

// ExtractActions scans a raw model reply for fenced ```json blocks and
// returns the action list of the last one. Later blocks supersede earlier
// ones: the model correcting itself mid-reply wins. Malformed JSON and
// unknown action types degrade to an empty result, never an error.
func ExtractActions(raw string) []Action {
	blocks := jsonBlockRe.FindAllStringSubmatch(raw, -1)
	if len(blocks) == 0 {
		return nil
	}
	var env actionEnvelope
	if err := json.Unmarshal([]byte(blocks[len(blocks)-1][1]), &env); err != nil {
		return nil
	}
	var out []Action
	for _, a := range env.Actions {
		if !knownActionType(a.Type) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// ParseSections pulls the #TITLE / #ABSTRACT / #BODY_MD (or #BODY) / #TAGS
// labeled sections out of a model reply.
func ParseSections(raw string) Sections {
	body := grabSection(raw, "BODY_MD")
	if body == "" {
		body = grabSection(raw, "BODY")
	}
	return Sections{
		Title:    grabSection(raw, "TITLE"),
		Abstract: grabSection(raw, "ABSTRACT"),
		Body:     body,
		Tags:     ParseTags(grabSection(raw, "TAGS")),
	}
}

func grabSection(raw, name string) string {
	loc := sectionHeaderRes[name].FindStringIndex(raw)
	if loc == nil {
		return ""
	}
	rest := raw[loc[1]:]
	if end := nextHeaderRe.FindStringIndex(rest); end != nil {
		rest = rest[:end[0]]
	}
	return strings.TrimSpace(rest)
}
