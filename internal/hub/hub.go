// Package hub holds the current dataset and notifies registered panels when it is
// replaced.
//
// A Hub is not safe for concurrent use. Callers serialize Register, Unregister and
// Publish on one goroutine (the dashboard's event lock); Publish runs every OnData on
// the calling goroutine.
package hub

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"hcpdash/domain/dataset"
	"hcpdash/ports"
)

// ErrNilDataset is returned by Publish when given no dataset
var ErrNilDataset = errors.New("cannot publish a nil dataset")

// Policy decides what Publish does when a panel fails
type Policy int

const (
	// PolicyIsolate notifies every panel and reports all failures together
	PolicyIsolate Policy = iota
	// PolicyFailFast stops at the first failing panel
	PolicyFailFast
)

// ParsePolicy maps a config string to a Policy
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "isolate":
		return PolicyIsolate, nil
	case "failfast", "fail-fast", "fail_fast":
		return PolicyFailFast, nil
	default:
		return PolicyIsolate, fmt.Errorf("unknown notify policy %q", s)
	}
}

func (p Policy) String() string {
	if p == PolicyFailFast {
		return "failfast"
	}
	return "isolate"
}

// PanelFailure is one panel's OnData error. Under PolicyFailFast Publish returns it
// directly.
type PanelFailure struct {
	PanelID string
	Err     error
}

func (f *PanelFailure) Error() string {
	return fmt.Sprintf("panel %s: %v", f.PanelID, f.Err)
}

func (f *PanelFailure) Unwrap() error {
	return f.Err
}

// Failures extracts the per-panel failures from a Publish error under either policy
func Failures(err error) []PanelFailure {
	var pubErr *PublishError
	if errors.As(err, &pubErr) {
		return pubErr.Failures
	}
	var one *PanelFailure
	if errors.As(err, &one) {
		return []PanelFailure{*one}
	}
	return nil
}

// PublishError lists the panels that failed during an isolated publish
type PublishError struct {
	Failures []PanelFailure
}

func (e *PublishError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.PanelID, f.Err))
	}
	return fmt.Sprintf("%d panel(s) failed: %s", len(e.Failures), strings.Join(parts, "; "))
}

// Unwrap exposes every panel error to errors.Is and errors.As
func (e *PublishError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

// Hub is the dataset holder and the panel registry
type Hub struct {
	panels  []ports.Panel
	current *dataset.Dataset
	policy  Policy
}

// Option configures a Hub
type Option func(*Hub)

// WithPolicy sets the failure policy
func WithPolicy(p Policy) Option {
	return func(h *Hub) { h.policy = p }
}

// New creates an empty hub with its own registry
func New(opts ...Option) *Hub {
	h := &Hub{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Policy returns the configured failure policy
func (h *Hub) Policy() Policy {
	return h.policy
}

// Register adds p unless it is already registered
func (h *Hub) Register(p ports.Panel) {
	if h.indexOf(p) >= 0 {
		return
	}
	h.panels = append(h.panels, p)
	log.Printf("[Hub] Registered panel %s (total: %d)", p.ID(), len(h.panels))
}

// Unregister removes p if present
func (h *Hub) Unregister(p ports.Panel) {
	i := h.indexOf(p)
	if i < 0 {
		return
	}
	h.panels = append(h.panels[:i:i], h.panels[i+1:]...)
	log.Printf("[Hub] Unregistered panel %s (remaining: %d)", p.ID(), len(h.panels))
}

// IsRegistered reports whether p is in the registry
func (h *Hub) IsRegistered(p ports.Panel) bool {
	return h.indexOf(p) >= 0
}

// Panels returns the registered panels in registration order
func (h *Hub) Panels() []ports.Panel {
	return append([]ports.Panel(nil), h.panels...)
}

// Dataset returns the current snapshot, nil before the first publish
func (h *Hub) Dataset() *dataset.Dataset {
	return h.current
}

// Publish replaces the held dataset and calls OnData on each registered panel in
// registration order. The dataset is replaced even when panels fail. A nil dataset is
// rejected before any state changes.
func (h *Hub) Publish(ds *dataset.Dataset) error {
	if ds == nil {
		return ErrNilDataset
	}
	h.current = ds

	// Snapshot so a panel unregistering itself mid-publish cannot shift the loop.
	panels := h.Panels()
	var failures []PanelFailure
	for _, p := range panels {
		if err := p.OnData(ds); err != nil {
			log.Printf("[Hub] Panel %s failed on dataset %s: %v", p.ID(), ds.Source, err)
			if h.policy == PolicyFailFast {
				return &PanelFailure{PanelID: p.ID(), Err: err}
			}
			failures = append(failures, PanelFailure{PanelID: p.ID(), Err: err})
		}
	}

	if len(failures) > 0 {
		return &PublishError{Failures: failures}
	}
	log.Printf("[Hub] Published %s to %d panel(s)", ds.Source, len(panels))
	return nil
}

func (h *Hub) indexOf(p ports.Panel) int {
	for i, existing := range h.panels {
		if existing == p {
			return i
		}
	}
	return -1
}
