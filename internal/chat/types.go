// Package chat sequences conversation turns against the generative API
// and owns the session list, settings and credential state.
//
// A turn runs Idle -> Sending -> Success/Failed per chat. On success the
// extractor and resolver run over the response, new artifacts land in the
// artifact store, and the model message referencing them is appended. On
// failure an error-describing model message is appended instead; nothing
// is retried automatically.
package chat

import (
	"time"

	"github.com/google/uuid"
)

// Message roles. Error messages substituted for a failed answer carry
// RoleModel like a real answer would.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// DefaultTitle is the title of a session before the async title
// synthesis rewrites it.
const DefaultTitle = "New Chat"

// Message is one turn entry in a session.
//
// ArtifactIDs are lookup keys into the session-wide artifact collection,
// not ownership: closing an artifact tab may leave them dangling, which
// readers must tolerate.
type Message struct {
	ID          uuid.UUID   `json:"id"`
	Role        string      `json:"role"`
	Text        string      `json:"textContent"` // conversational text, fences stripped
	ArtifactIDs []uuid.UUID `json:"codeArtifactIds"`
	Timestamp   time.Time   `json:"timestamp"`
}

// Session is one conversation thread.
type Session struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
}

// Settings is the user-tunable profile persisted across restarts.
type Settings struct {
	Theme   string `json:"theme"`   // "dark" or "light"
	Persona string `json:"persona"` // optional persona line for the system instruction
	Context string `json:"context"` // base system context
}

// Turn is the outcome of one Send call.
type Turn struct {
	SessionID    uuid.UUID
	UserMessage  Message // zero when the send was blocked before a user turn
	ModelMessage Message
	ArtifactIDs  []uuid.UUID // artifacts extracted from this response
	Failed       bool
	TitleChanged bool
	Title        string
}

func (s *Session) clone() Session {
	c := *s
	c.Messages = make([]Message, len(s.Messages))
	for i, m := range s.Messages {
		c.Messages[i] = m
		c.Messages[i].ArtifactIDs = append([]uuid.UUID(nil), m.ArtifactIDs...)
	}
	return c
}
