package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/codecanvas/codecanvas/internal/artifact"
	"github.com/codecanvas/codecanvas/internal/chat"
	"github.com/codecanvas/codecanvas/internal/web/render"
)

// messageView is a chat message as the browser consumes it: the raw text
// plus its server-rendered HTML.
type messageView struct {
	ID          string    `json:"id"`
	Role        string    `json:"role"`
	Text        string    `json:"textContent"`
	HTML        string    `json:"html"`
	ArtifactIDs []string  `json:"codeArtifactIds,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// sessionView is the sidebar representation of a session.
type sessionView struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"createdAt"`
	MessageCount int       `json:"messageCount"`
}

// sessionDetail is a session with its full transcript.
type sessionDetail struct {
	sessionView
	Messages []messageView `json:"messages"`
}

// artifactView is an editor tab: content plus highlighted HTML and the
// undo/redo button state.
type artifactView struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Language string `json:"language"`
	Content  string `json:"content"`
	HTML     string `json:"html"`
	CanUndo  bool   `json:"canUndo"`
	CanRedo  bool   `json:"canRedo"`
	Active   bool   `json:"active"`
}

func toMessageView(m chat.Message) messageView {
	v := messageView{
		ID:        m.ID.String(),
		Role:      m.Role,
		Text:      m.Text,
		Timestamp: m.Timestamp,
	}
	if m.Role == chat.RoleModel {
		v.HTML = render.Markdown(m.Text)
	}
	for _, id := range m.ArtifactIDs {
		v.ArtifactIDs = append(v.ArtifactIDs, id.String())
	}
	return v
}

func toSessionView(s chat.Session) sessionView {
	return sessionView{
		ID:           s.ID.String(),
		Title:        s.Title,
		CreatedAt:    s.CreatedAt,
		MessageCount: len(s.Messages),
	}
}

func toSessionDetail(s chat.Session) sessionDetail {
	d := sessionDetail{
		sessionView: toSessionView(s),
		Messages:    make([]messageView, len(s.Messages)),
	}
	for i, m := range s.Messages {
		d.Messages[i] = toMessageView(m)
	}
	return d
}

func toArtifactView(a artifact.Artifact, activeID uuid.UUID) artifactView {
	return artifactView{
		ID:       a.ID.String(),
		Filename: a.Filename,
		Language: a.Language,
		Content:  a.Content,
		HTML:     render.Code(a.Content, a.Language),
		CanUndo:  a.CanUndo(),
		CanRedo:  a.CanRedo(),
		Active:   a.ID == activeID,
	}
}

func toArtifactViews(files []artifact.Artifact, activeID uuid.UUID) []artifactView {
	out := make([]artifactView, len(files))
	for i, a := range files {
		out[i] = toArtifactView(a, activeID)
	}
	return out
}
