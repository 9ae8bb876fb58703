// Package artifact manages the code files shown in the canvas panel.
//
// An artifact is one named, versioned unit of code extracted from a model
// response. The Store holds the session-wide ordered collection together
// with an active-artifact pointer, and is the sole mutation surface for
// artifact content: every content change goes through Edit, Undo or Redo
// so the per-artifact linear history stays consistent.
//
// Thread Safety: Store is safe for concurrent use.
package artifact
