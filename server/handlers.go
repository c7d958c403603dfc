package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ai_editor_service/assist"
	"ai_editor_service/store"
)

// --- Request/response shapes ---

type assistRequest struct {
	Feature string `json:"feature,omitempty"`
	Prompt  string `json:"prompt"`
	Context string `json:"context,omitempty"`
	Power   bool   `json:"power,omitempty"`
}

type quotaInfo struct {
	Used  int `json:"used"`
	Limit int `json:"limit"`
}

type assistResponse struct {
	OK      bool           `json:"ok"`
	Text    string         `json:"text"`
	Usage   *assist.Usage  `json:"usage"`
	Quota   quotaInfo      `json:"quota"`
	Model   string         `json:"model"`
	Premium bool           `json:"premium"`
}

type sessionCreateRequest struct {
	PostType string   `json:"post_type,omitempty"`
	Title    string   `json:"title,omitempty"`
	Abstract string   `json:"abstract,omitempty"`
	Body     string   `json:"body,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

type sessionTurnRequest struct {
	Prompt string `json:"prompt"`
	Power  bool   `json:"power,omitempty"`
}

type sessionTurnResponse struct {
	OK       bool            `json:"ok"`
	Text     string          `json:"text"`
	Actions  []assist.Action `json:"actions"`
	Applied  []assist.Action `json:"applied"`
	Document assist.Document `json:"document"`
	Usage    *assist.Usage   `json:"usage"`
	Quota    quotaInfo       `json:"quota"`
	Model    string          `json:"model"`
	Premium  bool            `json:"premium"`
}

// --- /api/assist ---

func (s *Server) handleAssist(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	user, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req assistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	composed, err := assist.Compose(req.Prompt, req.Feature, req.Context, "")
	if err != nil {
		s.writeComposeError(w, err)
		return
	}
	adm, limit, ok := s.gate(r.Context(), w, user)
	if !ok {
		return
	}

	res, err := s.assistant.Generate(r.Context(), composed, user.Premium, req.Power)
	if err != nil {
		s.writeModelError(w, err)
		return
	}
	s.recordUsage(user.ID, composed, res)

	writeJSON(w, http.StatusOK, assistResponse{
		OK:      true,
		Text:    res.Text,
		Usage:   res.Usage,
		Quota:   quotaInfo{Used: adm.Used, Limit: limit},
		Model:   res.Model,
		Premium: user.Premium,
	})
}

// --- /api/sessions ---

func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	user, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req sessionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	postType := req.PostType
	if postType == "" {
		postType = "article"
	}
	if postType != "article" && postType != "question" {
		writeError(w, http.StatusBadRequest, "post_type must be article or question")
		return
	}

	id := uuid.NewString()
	sess := assist.NewSession(id, user.ID, postType, assist.Document{
		Title:    req.Title,
		Abstract: req.Abstract,
		Body:     req.Body,
		Tags:     req.Tags,
	}, s.assistant)
	s.sessions.set(id, sess)

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": id,
		"document":   sess.Snapshot(),
	})
}

func (s *Server) handleSessionByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	if id == "" {
		http.NotFound(w, r)
		return
	}
	user, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	sess, found := s.sessions.get(id)
	if !found || sess.UserID != user.ID {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		doc := sess.Snapshot()
		bodyHTML, err := assist.MarkdownHTML(doc.Body)
		if err != nil {
			s.logger.Error("render body", zap.Error(err))
			bodyHTML = ""
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"session_id": id,
			"document":   doc,
			"body_html":  bodyHTML,
			"history":    sess.History(),
		})
	case http.MethodPost:
		s.handleSessionTurn(w, r, user, sess)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleSessionTurn(w http.ResponseWriter, r *http.Request, user store.User, sess *assist.Session) {
	var req sessionTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}
	if len(prompt) > assist.MaxPromptChars {
		writeError(w, http.StatusRequestEntityTooLarge, assist.ErrPromptTooLong.Error())
		return
	}
	adm, limit, ok := s.gate(r.Context(), w, user)
	if !ok {
		return
	}

	out, err := sess.Assist(r.Context(), prompt, user.Premium, req.Power)
	if err != nil {
		var ve *assist.UpstreamError
		if errors.As(err, &ve) {
			s.writeModelError(w, err)
			return
		}
		s.writeComposeError(w, err)
		return
	}
	s.recordUsage(user.ID, assist.Composed{Feature: assist.FeatureEditor, Prompt: prompt}, assist.GenResult{
		Text: out.Text, Model: out.Model, Usage: out.Usage,
	})

	writeJSON(w, http.StatusOK, sessionTurnResponse{
		OK:       true,
		Text:     out.Text,
		Actions:  out.Actions,
		Applied:  out.Applied,
		Document: out.Document,
		Usage:    out.Usage,
		Quota:    quotaInfo{Used: adm.Used, Limit: limit},
		Model:    out.Model,
		Premium:  user.Premium,
	})
}

// --- /api/preview ---

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	var req struct {
		Markdown string `json:"markdown"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Markdown) > assist.MaxContextChars {
		writeError(w, http.StatusRequestEntityTooLarge, "markdown too large")
		return
	}
	html, err := assist.MarkdownHTML(req.Markdown)
	if err != nil {
		s.logger.Error("render preview", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "html": html})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// --- Shared gate: auth, cooldown, quota ---

func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (store.User, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		writeError(w, http.StatusUnauthorized, "missing or invalid token")
		return store.User{}, false
	}
	user, err := s.store.UserByToken(r.Context(), strings.TrimSpace(token))
	if errors.Is(err, store.ErrTokenUnknown) {
		writeError(w, http.StatusUnauthorized, "missing or invalid token")
		return store.User{}, false
	}
	if err != nil {
		s.logger.Error("token lookup", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return store.User{}, false
	}
	return user, true
}

// gate applies the per-user cooldown and the daily quota. On denial it has
// already written the response; callers just return.
func (s *Server) gate(ctx context.Context, w http.ResponseWriter, user store.User) (store.Admission, int, bool) {
	if ok, wait := s.cooldown.allow(user.ID); !ok {
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"error":      "too many requests",
			"cooldownMs": wait.Milliseconds(),
		})
		return store.Admission{}, 0, false
	}
	limit := s.cfg.DailyLimit(user.Premium)
	adm, err := s.store.TryAdmit(ctx, user.ID, store.Day(time.Now()), limit)
	if err != nil {
		// Fail closed: a broken ledger must never admit silently.
		s.logger.Error("quota admit", zap.String("user", user.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return store.Admission{}, 0, false
	}
	if !adm.Allowed {
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"error": "Daily AI quota reached",
			"quota": quotaInfo{Used: adm.Used, Limit: limit},
		})
		return store.Admission{}, 0, false
	}
	return adm, limit, true
}

// recordUsage logs the call for usage transparency. Fire-and-forget: the
// user's response never waits on it.
func (s *Server) recordUsage(userID string, c assist.Composed, res assist.GenResult) {
	entry := store.UsageEntry{
		UserID:       userID,
		Feature:      c.Feature,
		Model:        res.Model,
		PromptChars:  len(c.Prompt),
		ContextChars: len(c.Context),
	}
	if res.Usage != nil {
		entry.PromptTokens = res.Usage.PromptTokens
		entry.CompletionTokens = res.Usage.CompletionTokens
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.store.AppendUsage(ctx, entry); err != nil {
			s.logger.Warn("usage log", zap.Error(err))
		}
	}()
}

// --- Error mapping ---

func (s *Server) writeComposeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, assist.ErrEmptyPrompt):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, assist.ErrPromptTooLong), errors.Is(err, assist.ErrContextTooLong):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	default:
		s.logger.Error("compose", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeModelError(w http.ResponseWriter, err error) {
	var ue *assist.UpstreamError
	if errors.As(err, &ue) {
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":  "model request failed",
			"detail": ue.Detail,
		})
		return
	}
	s.logger.Error("generate", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
