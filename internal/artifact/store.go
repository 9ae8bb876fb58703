package artifact

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Store is the ordered collection of artifacts for the active
// conversation, plus the pointer to the artifact shown in the editor.
//
// Edit, Undo and Redo are the entire mutation surface for artifact
// content. Operations on unknown IDs are silent no-ops: the UI fires
// them against tabs that may already be gone, and that is not an error.
type Store struct {
	mu     sync.RWMutex
	files  []*Artifact
	active uuid.UUID // uuid.Nil when no artifact is selected
	logger *slog.Logger
}

// NewStore creates an empty Store.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{logger: logger}
}

// Append adds extracted artifacts in batch order and moves the active
// pointer to the last one appended.
func (s *Store) Append(files ...*Artifact) {
	if len(files) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = append(s.files, files...)
	s.active = files[len(files)-1].ID
	s.logger.Debug("appended artifacts", "count", len(files), "total", len(s.files))
}

// Edit replaces the content of the identified artifact. The previous
// content is pushed onto the undo history and the redo history is
// cleared: a fresh edit invalidates the redo branch.
func (s *Store) Edit(id uuid.UUID, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.find(id)
	if f == nil {
		return
	}
	f.Undo = append(f.Undo, f.Content)
	f.Content = content
	f.Redo = nil
}

// UndoEdit steps the identified artifact back one snapshot. No-op when
// the undo history is empty.
func (s *Store) UndoEdit(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.find(id)
	if f == nil || len(f.Undo) == 0 {
		return
	}
	last := f.Undo[len(f.Undo)-1]
	f.Undo = f.Undo[:len(f.Undo)-1]
	f.Redo = append([]string{f.Content}, f.Redo...)
	f.Content = last
}

// RedoEdit steps the identified artifact forward one snapshot. No-op
// when the redo history is empty.
func (s *Store) RedoEdit(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.find(id)
	if f == nil || len(f.Redo) == 0 {
		return
	}
	next := f.Redo[0]
	f.Redo = f.Redo[1:]
	f.Undo = append(f.Undo, f.Content)
	f.Content = next
}

// Close removes the identified artifact from the collection. When the
// active tab closes, the pointer moves to the previous tab, or to the
// next one when the first tab closes, or clears when none remain.
func (s *Store) Close(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i, f := range s.files {
		if f.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	if s.active == id {
		switch {
		case len(s.files) == 1:
			s.active = uuid.Nil
		case idx > 0:
			s.active = s.files[idx-1].ID
		default:
			s.active = s.files[idx+1].ID
		}
	}
	s.files = append(s.files[:idx], s.files[idx+1:]...)
}

// Select moves the active pointer. No-op when the ID is unknown.
func (s *Store) Select(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.find(id) != nil {
		s.active = id
	}
}

// Reset clears the collection and the active pointer. Called when the
// active conversation changes: editor state is per-conversation.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = nil
	s.active = uuid.Nil
}

// Get returns a copy of the identified artifact.
func (s *Store) Get(id uuid.UUID) (Artifact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if f := s.find(id); f != nil {
		return f.clone(), true
	}
	return Artifact{}, false
}

// Active returns a copy of the selected artifact, if any.
func (s *Store) Active() (Artifact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == uuid.Nil {
		return Artifact{}, false
	}
	if f := s.find(s.active); f != nil {
		return f.clone(), true
	}
	return Artifact{}, false
}

// ActiveID returns the ID of the selected artifact, or uuid.Nil.
func (s *Store) ActiveID() uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// List returns copies of all artifacts in collection order.
func (s *Store) List() []Artifact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Artifact, len(s.files))
	for i, f := range s.files {
		out[i] = f.clone()
	}
	return out
}

// Len returns the number of artifacts in the collection.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// Restore replaces the collection from persisted state.
func (s *Store) Restore(files []Artifact, active uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = make([]*Artifact, len(files))
	for i := range files {
		f := files[i].clone()
		s.files[i] = &f
	}
	s.active = uuid.Nil
	if s.find(active) != nil {
		s.active = active
	}
}

// find returns the stored artifact, or nil. Caller holds the lock.
func (s *Store) find(id uuid.UUID) *Artifact {
	for _, f := range s.files {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// clone returns a value copy with detached history slices.
func (a *Artifact) clone() Artifact {
	c := *a
	c.Undo = append([]string(nil), a.Undo...)
	c.Redo = append([]string(nil), a.Redo...)
	return c
}
