package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codecanvas/codecanvas/internal/artifact"
	"github.com/codecanvas/codecanvas/internal/extract"
	"github.com/codecanvas/codecanvas/internal/gemini"
	"github.com/codecanvas/codecanvas/internal/storage"
)

// fenceInstruction is always appended to the system instruction so
// responses carry filename hints the resolver can use.
const fenceInstruction = "When you generate a code block, ALWAYS include a suggested filename " +
	"with the correct extension after the language identifier. For example: ```python my_script.py"

// titlePrompt asks for a short session title after the first exchange.
const titlePrompt = `Generate a very short, concise title (4 words max) for a chat that starts with this message: %q. Respond with only the title.`

// titleTimeout bounds the best-effort title call.
const titleTimeout = 5 * time.Second

// GeneratorFactory builds a Generator for a credential. Injected so tests
// run without the real API.
type GeneratorFactory func(ctx context.Context, credential string) (gemini.Generator, error)

// Options configures a Manager.
type Options struct {
	Store     storage.Store   // required
	Artifacts *artifact.Store // required

	// ServerCredential is the server-configured fallback key, used when
	// the user has not supplied one in settings.
	ServerCredential string

	// Defaults seed Settings when nothing is persisted yet.
	Defaults Settings

	NewGenerator GeneratorFactory  // nil = gemini.NewClient with the default model
	Validator    *gemini.Validator // nil disables credential probing
	Logger       *slog.Logger
	Now          func() time.Time // nil = time.Now
}

// Manager owns the conversation state. All mutation happens behind one
// mutex with read-copy-update snapshots handed out to callers; the
// network call itself runs unlocked so other chats stay responsive.
type Manager struct {
	mu         sync.Mutex
	sessions   []*Session // newest first
	active     uuid.UUID
	sending    map[uuid.UUID]bool
	settings   Settings
	credential string // user-supplied key, "" = use server fallback

	serverCredential string
	gen              gemini.Generator
	newGenerator     GeneratorFactory
	validator        *gemini.Validator
	artifacts        *artifact.Store
	store            storage.Store
	logger           *slog.Logger
	now              func() time.Time
}

// NewManager creates a Manager and loads persisted state.
func NewManager(ctx context.Context, opts Options) (*Manager, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if opts.Artifacts == nil {
		return nil, fmt.Errorf("artifact store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	factory := opts.NewGenerator
	if factory == nil {
		factory = func(ctx context.Context, credential string) (gemini.Generator, error) {
			return gemini.NewClient(ctx, credential, "", logger.With("component", "gemini"))
		}
	}

	m := &Manager{
		sending:          make(map[uuid.UUID]bool),
		settings:         opts.Defaults,
		serverCredential: opts.ServerCredential,
		newGenerator:     factory,
		validator:        opts.Validator,
		artifacts:        opts.Artifacts,
		store:            opts.Store,
		logger:           logger,
		now:              now,
	}

	if err := m.load(ctx); err != nil {
		return nil, err
	}
	m.rebuildGenerator(ctx)
	if m.validator != nil && m.credential != "" {
		m.validator.CredentialChanged(m.credential)
	}
	return m, nil
}

// rebuildGenerator swaps the generator for the effective credential.
// Caller holds no lock during NewManager; otherwise holds mu.
func (m *Manager) rebuildGenerator(ctx context.Context) {
	key := m.credential
	if key == "" {
		key = m.serverCredential
	}
	if key == "" {
		m.gen = nil
		return
	}
	gen, err := m.newGenerator(ctx, key)
	if err != nil {
		m.logger.Warn("creating generator failed", "error", err)
		m.gen = nil
		return
	}
	m.gen = gen
}

// Ready reports whether sends can reach the API: a credential exists and,
// when the user supplied their own, it has not been found invalid.
func (m *Manager) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen == nil {
		return false
	}
	if m.credential != "" && m.validator != nil && m.validator.Status() == gemini.StatusInvalid {
		return false
	}
	return true
}

// Sessions returns snapshots of all sessions, newest first.
func (m *Manager) Sessions() []Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Session, len(m.sessions))
	for i, s := range m.sessions {
		out[i] = s.clone()
	}
	return out
}

// ActiveID returns the active session ID, or uuid.Nil.
func (m *Manager) ActiveID() uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// ActiveSession returns a snapshot of the active session.
func (m *Manager) ActiveSession() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s := m.find(m.active); s != nil {
		return s.clone(), true
	}
	return Session{}, false
}

// Sending reports whether the given chat has a turn in flight.
func (m *Manager) Sending(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sending[id]
}

// NewChat creates a fresh session, makes it active and resets the
// artifact collection: editor state is per-conversation.
func (m *Manager) NewChat(ctx context.Context) Session {
	m.mu.Lock()
	s := &Session{
		ID:        uuid.New(),
		Title:     DefaultTitle,
		CreatedAt: m.now(),
	}
	m.sessions = append([]*Session{s}, m.sessions...)
	m.active = s.ID
	snap := s.clone()
	m.persistSessions(ctx)
	m.persistActive(ctx)
	m.mu.Unlock()

	m.artifacts.Reset()
	m.persistArtifacts(ctx)
	return snap
}

// SwitchChat makes the identified session active and resets the artifact
// collection. Artifacts are deliberately not kept per session.
func (m *Manager) SwitchChat(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	if m.find(id) == nil {
		m.mu.Unlock()
		return ErrUnknownSession
	}
	m.active = id
	m.persistActive(ctx)
	m.mu.Unlock()

	m.artifacts.Reset()
	m.persistArtifacts(ctx)
	return nil
}

// Session returns a snapshot of the identified session.
func (m *Manager) Session(id uuid.UUID) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s := m.find(id); s != nil {
		return s.clone(), true
	}
	return Session{}, false
}

// Settings returns the current settings.
func (m *Manager) Settings() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// SetSettings replaces and persists the settings.
func (m *Manager) SetSettings(ctx context.Context, s Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s
	m.persistSettings(ctx)
}

// SyncArtifacts persists the artifact collection. Canvas handlers call
// it after mutating the store directly.
func (m *Manager) SyncArtifacts(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persistArtifacts(ctx)
}

// HasUserCredential reports whether the user supplied their own key.
func (m *Manager) HasUserCredential() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.credential != ""
}

// SetCredential stores the user credential, rebuilds the API client and
// kicks off debounced validation.
func (m *Manager) SetCredential(ctx context.Context, credential string) {
	m.mu.Lock()
	m.credential = credential
	m.persistCredential(ctx)
	m.rebuildGenerator(ctx)
	m.mu.Unlock()

	if m.validator != nil {
		m.validator.CredentialChanged(credential)
	}
}

// CredentialStatus returns the debounced validation state.
func (m *Manager) CredentialStatus() gemini.Status {
	if m.validator == nil {
		return gemini.StatusUnknown
	}
	return m.validator.Status()
}

// Send runs one chat turn. sessionID may be uuid.Nil to target the
// active session, creating one when none exists. The returned Turn
// describes everything the UI must update.
func (m *Manager) Send(ctx context.Context, sessionID uuid.UUID, text string) (Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Turn{}, ErrEmptyMessage
	}

	m.mu.Lock()

	// Blocked sends append an error message in place of an answer; no
	// user message is recorded and no session is created for them.
	if blocked, wording := m.blockedLocked(); blocked {
		turn := m.appendFailureLocked(ctx, wording)
		m.mu.Unlock()
		return turn, nil
	}

	target := sessionID
	if target == uuid.Nil {
		target = m.active
	}
	s := m.find(target)
	if s == nil && sessionID != uuid.Nil {
		m.mu.Unlock()
		return Turn{}, ErrUnknownSession
	}
	if s == nil {
		s = &Session{ID: uuid.New(), Title: DefaultTitle, CreatedAt: m.now()}
		m.sessions = append([]*Session{s}, m.sessions...)
		m.active = s.ID
		m.persistActive(ctx)
		target = s.ID
	}
	if m.sending[target] {
		m.mu.Unlock()
		return Turn{}, ErrBusy
	}
	m.sending[target] = true
	defer func() {
		m.mu.Lock()
		delete(m.sending, target)
		m.mu.Unlock()
	}()

	first := len(s.Messages) == 0

	// History excludes the user message being sent.
	history := make([]gemini.Turn, len(s.Messages))
	for i, msg := range s.Messages {
		history[i] = gemini.Turn{Role: msg.Role, Text: msg.Text}
	}

	userMsg := Message{
		ID:        uuid.New(),
		Role:      RoleUser,
		Text:      text,
		Timestamp: m.now(),
	}
	s.Messages = append(s.Messages, userMsg)
	m.persistSessions(ctx)

	gen := m.gen
	system := m.systemInstruction()
	sessionArtifacts := m.artifacts.Len()
	m.mu.Unlock()

	response, err := gen.Chat(ctx, history, system, text)
	if err != nil {
		m.logger.Error("send failed", "error", err, "session_id", target)
		return m.finishFailed(ctx, target, err), nil
	}

	prose, blocks := extract.Blocks(response)
	batch := make([]*artifact.Artifact, len(blocks))
	ids := make([]uuid.UUID, len(blocks))
	for i, b := range blocks {
		name, lang := extract.Resolve(b.Info, sessionArtifacts, i)
		// Model filename hints are untrusted. A hint that fails
		// validation (path separators, null bytes, overlong) is
		// discarded for a synthesized name.
		if err := artifact.ValidateFilename(name); err != nil {
			m.logger.Debug("rejected filename hint", "filename", name)
			name = extract.Fallback(lang, sessionArtifacts, i)
		}
		batch[i] = artifact.New(name, lang, b.Body)
		ids[i] = batch[i].ID
	}
	// The batch is fully resolved before the message referencing it is
	// appended, so references are never dangling at append time.
	m.artifacts.Append(batch...)
	m.persistArtifacts(ctx)

	modelMsg := Message{
		ID:          uuid.New(),
		Role:        RoleModel,
		Text:        prose,
		ArtifactIDs: ids,
		Timestamp:   m.now(),
	}

	m.mu.Lock()
	if s := m.find(target); s != nil {
		s.Messages = append(s.Messages, modelMsg)
	}
	m.persistSessions(ctx)
	m.mu.Unlock()

	turn := Turn{
		SessionID:    target,
		UserMessage:  userMsg,
		ModelMessage: modelMsg,
		ArtifactIDs:  ids,
	}

	if first {
		if title, ok := m.generateTitle(ctx, gen, text); ok {
			m.mu.Lock()
			if s := m.find(target); s != nil {
				s.Title = title
				turn.TitleChanged = true
				turn.Title = title
			}
			m.persistSessions(ctx)
			m.mu.Unlock()
		}
	}

	return turn, nil
}

// blockedLocked decides whether sends are blocked before reaching the
// API, and with which wording. Caller holds mu.
func (m *Manager) blockedLocked() (bool, string) {
	invalid := m.credential != "" && m.validator != nil &&
		m.validator.Status() == gemini.StatusInvalid
	switch {
	case m.gen == nil && m.credential == "" && m.serverCredential == "":
		return true, msgNoCredential
	case m.gen == nil:
		return true, msgUnavailable
	case invalid:
		return true, msgInvalidCredential
	}
	return false, ""
}

// appendFailureLocked records a model-role error message on the active
// session, when there is one. Caller holds mu.
func (m *Manager) appendFailureLocked(ctx context.Context, wording string) Turn {
	msg := Message{
		ID:        uuid.New(),
		Role:      RoleModel,
		Text:      wording,
		Timestamp: m.now(),
	}
	turn := Turn{ModelMessage: msg, Failed: true}
	if s := m.find(m.active); s != nil {
		s.Messages = append(s.Messages, msg)
		turn.SessionID = s.ID
		m.persistSessions(ctx)
	}
	return turn
}

// finishFailed substitutes an apologetic model message for the answer.
func (m *Manager) finishFailed(ctx context.Context, target uuid.UUID, sendErr error) Turn {
	msg := Message{
		ID:        uuid.New(),
		Role:      RoleModel,
		Text:      failureText(sendErr),
		Timestamp: m.now(),
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s := m.find(target); s != nil {
		s.Messages = append(s.Messages, msg)
	}
	m.persistSessions(ctx)
	return Turn{SessionID: target, ModelMessage: msg, Failed: true}
}

// generateTitle issues the best-effort title call. Failures are fully
// swallowed: the session keeps its default title.
func (m *Manager) generateTitle(ctx context.Context, gen gemini.Generator, firstMessage string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, titleTimeout)
	defer cancel()

	raw, err := gen.Generate(ctx, fmt.Sprintf(titlePrompt, firstMessage))
	if err != nil {
		m.logger.Debug("title generation failed", "error", err)
		return "", false
	}

	title := strings.TrimSpace(raw)
	title = strings.TrimPrefix(title, `"`)
	title = strings.TrimSuffix(title, `"`)
	if title == "" {
		return "", false
	}
	return title, true
}

// systemInstruction composes persona, context and the fence convention.
// Caller holds mu.
func (m *Manager) systemInstruction() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{m.settings.Persona, m.settings.Context, fenceInstruction} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n\n")
}

// find returns the stored session, or nil. Caller holds mu.
func (m *Manager) find(id uuid.UUID) *Session {
	if id == uuid.Nil {
		return nil
	}
	for _, s := range m.sessions {
		if s.ID == id {
			return s
		}
	}
	return nil
}
