package artifact

import "github.com/google/uuid"

// Artifact represents one code file in the canvas panel.
//
// Undo holds prior content snapshots, most recent last. Redo holds
// snapshots ahead of the current content, most recent first; it is
// non-empty only after an undo and is cleared by any fresh edit. The
// history is linear, not a tree.
//
// The exported Content and history fields exist for flat JSON
// serialization; callers must not mutate them directly and should go
// through the Store operations instead.
type Artifact struct {
	ID       uuid.UUID `json:"id"`
	Filename string    `json:"filename"` // may be synthesized; not unique
	Language string    `json:"language"` // best-effort classification
	Content  string    `json:"content"`
	Undo     []string  `json:"undoHistory"`
	Redo     []string  `json:"redoHistory"`
}

// New creates an artifact with a fresh identity and empty history.
func New(filename, language, content string) *Artifact {
	return &Artifact{
		ID:       uuid.New(),
		Filename: filename,
		Language: language,
		Content:  content,
	}
}

// CanUndo reports whether an undo would change content.
func (a *Artifact) CanUndo() bool { return len(a.Undo) > 0 }

// CanRedo reports whether a redo would change content.
func (a *Artifact) CanRedo() bool { return len(a.Redo) > 0 }
