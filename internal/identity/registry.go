// Package identity issues and tracks the globally unique identifiers that
// cross-reference entities inside one generated document.
//
// A Registry lives for exactly one generation run. It is never persisted or
// shared across runs, so identifiers cannot collide with or leak into another
// document. Issue is safe for concurrent use; parallel probe workers create
// sources concurrently.
package identity

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Kind labels the entity class an identifier was issued for. It exists for
// diagnostics only; identifiers of different kinds share one namespace.
type Kind string

const (
	KindSource    Kind = "source"
	KindClip      Kind = "clip"
	KindTrack     Kind = "track"
	KindTrackItem Kind = "trackitem"
	KindLinkGroup Kind = "linkgroup"
	KindSequence  Kind = "sequence"
	KindBin       Kind = "bin"
)

// Registry issues brace-delimited hexadecimal UUIDs and binds logical keys to
// them so builders can look an identifier up without re-issuing one.
type Registry struct {
	mu       sync.Mutex
	issued   map[string]Kind
	bindings map[string]string
}

// NewRegistry returns an empty registry for a single generation run.
func NewRegistry() *Registry {
	return &Registry{
		issued:   make(map[string]Kind),
		bindings: make(map[string]string),
	}
}

// Issue returns a new process-run-unique identifier formatted as
// {xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx}.
func (r *Registry) Issue(kind Kind) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for {
		id := "{" + uuid.NewString() + "}"
		if _, taken := r.issued[id]; taken {
			continue
		}
		r.issued[id] = kind
		return id
	}
}

// Bind associates a logical key (a source path, a clip key) with an already
// issued identifier. Rebinding a key to a different identifier is an error.
func (r *Registry) Bind(key, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.bindings[key]; ok && existing != id {
		return fmt.Errorf("identity: key %q already bound to %s", key, existing)
	}
	r.bindings[key] = id
	return nil
}

// Resolve returns the identifier bound to key. Resolving an unbound key is a
// programming error and never auto-issues; the caller must treat the returned
// error as fatal.
func (r *Registry) Resolve(key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.bindings[key]
	if !ok {
		return "", fmt.Errorf("identity: no identifier bound to key %q", key)
	}
	return id, nil
}

// IssueAndBind issues a fresh identifier and binds it to key in one step.
func (r *Registry) IssueAndBind(kind Kind, key string) (string, error) {
	id := r.Issue(kind)
	if err := r.Bind(key, id); err != nil {
		return "", err
	}
	return id, nil
}

// Count returns the number of identifiers issued so far.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.issued)
}
