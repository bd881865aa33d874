// Package diag collects the non-fatal problems found while converting a scene.
package diag

import (
	"fmt"

	"go.uber.org/zap"
)

// Kind classifies a diagnostic.
type Kind int

const (
	// UnresolvedMaterial: no resolver accepted a material and the default was used.
	UnresolvedMaterial Kind = iota
	// PropertyConflict: two competing bindings were found and one was discarded.
	PropertyConflict
	// MalformedGeometry: a triangle or vertex was rejected.
	MalformedGeometry
	// MissingTexture: a bound texture could not be located.
	MissingTexture
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case UnresolvedMaterial:
		return "UnresolvedMaterial"
	case PropertyConflict:
		return "PropertyConflict"
	case MalformedGeometry:
		return "MalformedGeometry"
	case MissingTexture:
		return "MissingTexture"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Diagnostic is one recorded problem.
type Diagnostic struct {
	Kind    Kind
	Subject string // material, texture or mesh name
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s [%s]: %s", d.Kind, d.Subject, d.Message)
}

// Collector accumulates diagnostics and mirrors each one to a logger at warn
// level. A nil *Collector discards everything, so callers may pass nil.
type Collector struct {
	log     *zap.Logger
	entries []Diagnostic
}

// NewCollector creates a collector. A nil logger disables mirroring.
func NewCollector(log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{log: log}
}

// Add records d.
func (c *Collector) Add(d Diagnostic) {
	if c == nil {
		return
	}
	c.entries = append(c.entries, d)
	c.log.Warn(d.Message,
		zap.Stringer("kind", d.Kind),
		zap.String("subject", d.Subject))
}

// Warn records a diagnostic built from a format string.
func (c *Collector) Warn(kind Kind, subject, format string, args ...any) {
	c.Add(Diagnostic{Kind: kind, Subject: subject, Message: fmt.Sprintf(format, args...)})
}

// Warnings returns a copy of everything recorded so far.
func (c *Collector) Warnings() []Diagnostic {
	if c == nil {
		return nil
	}
	out := make([]Diagnostic, len(c.entries))
	copy(out, c.entries)
	return out
}

// Count returns how many diagnostics of kind were recorded.
func (c *Collector) Count(kind Kind) int {
	if c == nil {
		return 0
	}
	n := 0
	for _, d := range c.entries {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Len returns the number of recorded diagnostics.
func (c *Collector) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Reset drops every recorded diagnostic.
func (c *Collector) Reset() {
	if c == nil {
		return
	}
	c.entries = c.entries[:0]
}
