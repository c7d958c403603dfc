package assist

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Document is the editor state a session mutates: one post being written.
type Document struct {
	Title    string   `json:"title"`
	Abstract string   `json:"abstract"`
	Body     string   `json:"body"`
	Tags     []string `json:"tags"`
}

// ProposalBuffer remembers the most recent candidate content offered by the
// assistant, so follow-ups like "insert it" can act without a structured
// action block. One buffer per session; fields are overwritten, not merged.
type ProposalBuffer struct {
	BodyMD string
	Title  string
	Tags   []string
}

// Capture updates the buffer from this turn's actions first, then fills any
// still-empty field from the labeled sections. Fields untouched by the turn
// keep their previous value.
func (b *ProposalBuffer) Capture(actions []Action, sec Sections) {
	var got ProposalBuffer
	for _, a := range actions {
		switch a.Type {
		case ActionReplaceBody, ActionAppendBody:
			if a.BodyMD != "" {
				got.BodyMD = a.BodyMD
			}
		case ActionApplyTitle:
			if a.Title != "" {
				got.Title = a.Title
			}
		case ActionApplyTags:
			if len(a.Tags) > 0 {
				got.Tags = a.Tags
			}
		}
	}
	if got.BodyMD == "" {
		got.BodyMD = sec.Body
	}
	if got.Title == "" {
		got.Title = sec.Title
	}
	if len(got.Tags) == 0 {
		got.Tags = sec.Tags
	}

	if got.BodyMD != "" {
		b.BodyMD = got.BodyMD
	}
	if got.Title != "" {
		b.Title = got.Title
	}
	if len(got.Tags) > 0 {
		b.Tags = got.Tags
	}
}

// Turn is one exchange of the editing conversation.
type Turn struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Text      string    `json:"text"`
	Sections  Sections  `json:"sections,omitempty"`
	Actions   []Action  `json:"actions,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Session holds one editing conversation: the document, the append-only turn
// history and the proposal buffer. State lives for the session only.
type Session struct {
	ID       string
	UserID   string
	PostType string // "article" or "question"

	mu        sync.Mutex
	doc       Document
	turns     []Turn
	buffer    ProposalBuffer
	autoApply bool
	assistant *Assistant
}

func NewSession(id, userID, postType string, doc Document, a *Assistant) *Session {
	return &Session{
		ID:        id,
		UserID:    userID,
		PostType:  postType,
		doc:       Document{Title: doc.Title, Abstract: doc.Abstract, Body: doc.Body, Tags: dedupeTags(doc.Tags)},
		autoApply: true,
		assistant: a,
	}
}

// TurnOutcome is what one assistant turn produced.
type TurnOutcome struct {
	Text     string
	Sections Sections
	Actions  []Action
	Applied  []Action
	Document Document
	Model    string
	Usage    *Usage
}

// Assist runs one full turn: compose, generate, extract, auto-apply (or
// infer a fallback edit), capture the proposal buffer and record history.
func (s *Session) Assist(ctx context.Context, raw string, premium, power bool) (TurnOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	composed, err := Compose(raw, FeatureChat, s.contextSnapshot(), s.PostType)
	if err != nil {
		return TurnOutcome{}, err
	}
	s.turns = append(s.turns, Turn{Role: "user", Text: raw, CreatedAt: time.Now()})

	res, err := s.assistant.Generate(ctx, composed, premium, power)
	if err != nil {
		return TurnOutcome{}, err
	}

	sections := ParseSections(res.Text)
	actions := ExtractActions(res.Text)

	var applied []Action
	if s.autoApply {
		applied = Apply(actions, s.doc.Tags, s.callbacks(), s.assistant.logger)
	}

	// Remember this turn's proposals before fallback inference so "insert
	// it" can target content the model just offered as a section.
	s.buffer.Capture(actions, sections)

	if len(actions) == 0 && s.autoApply {
		if inferred := InferActions(raw, s.buffer); len(inferred) > 0 {
			applied = append(applied, Apply(inferred, s.doc.Tags, s.callbacks(), s.assistant.logger)...)
		}
	}

	s.turns = append(s.turns, Turn{
		Role:      "assistant",
		Text:      res.Text,
		Sections:  sections,
		Actions:   actions,
		CreatedAt: time.Now(),
	})

	return TurnOutcome{
		Text:     res.Text,
		Sections: sections,
		Actions:  actions,
		Applied:  applied,
		Document: s.snapshotLocked(),
		Model:    res.Model,
		Usage:    res.Usage,
	}, nil
}

// SetAutoApply toggles automatic application of extracted actions.
func (s *Session) SetAutoApply(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoApply = v
}

// Snapshot returns a copy of the current document.
func (s *Session) Snapshot() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// History returns a copy of the turn log.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Turn{}, s.turns...)
}

func (s *Session) snapshotLocked() Document {
	doc := s.doc
	doc.Tags = append([]string{}, s.doc.Tags...)
	return doc
}

func (s *Session) callbacks() Callbacks {
	return Callbacks{
		OnApplyTitle: func(t string) error {
			s.doc.Title = t
			return nil
		},
		OnApplyAbstract: func(a string) error {
			s.doc.Abstract = a
			return nil
		},
		OnReplaceBody: func(md string) error {
			s.doc.Body = md
			return nil
		},
		OnAppendBody: func(md string) error {
			if s.doc.Body == "" {
				s.doc.Body = md
			} else {
				s.doc.Body += "\n\n" + md
			}
			return nil
		},
		OnApplyTags: func(tags []string) error {
			s.doc.Tags = tags
			return nil
		},
	}
}

// contextSnapshot serializes the document for the model, truncated to the
// composer's context limit so a long body never fails the turn.
func (s *Session) contextSnapshot() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Post type: %s\n", s.PostType)
	if s.doc.Title != "" {
		fmt.Fprintf(&sb, "Title: %s\n", s.doc.Title)
	}
	if s.doc.Abstract != "" {
		fmt.Fprintf(&sb, "Abstract: %s\n", s.doc.Abstract)
	}
	if len(s.doc.Tags) > 0 {
		fmt.Fprintf(&sb, "Tags: %s\n", strings.Join(s.doc.Tags, ", "))
	}
	if s.doc.Body != "" {
		fmt.Fprintf(&sb, "Body:\n%s\n", s.doc.Body)
	}
	ctx := sb.String()
	if len(ctx) > MaxContextChars {
		ctx = ctx[:MaxContextChars]
	}
	return ctx
}
