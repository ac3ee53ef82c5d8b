// Package trip provides error handling for dolly's navigation engine.
//
// The trip package uses stumbling metaphors for error handling - when the walk
// through a captured space hits a snag it "trips up" or "stumbles", and the
// engine recovers by staying where it is. Only bad input at load time is a
// "fall".
package trip

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Trip types recognised by the engine.
const (
	Ingestion  = "ingestion"  // malformed pose records or manifests
	Config     = "config"     // invalid configuration values
	Navigation = "navigation" // no neighbour to move to
	Intent     = "intent"     // directional input that cannot form a ray
	Transition = "transition" // rejected or malformed transition requests
	Visual     = "visual"     // frame capture or rendering failures
)

// Trip represents an error in the engine with rich context.
//
// Example usage:
//
//	err := NewFall(Ingestion, "rotation is not orthonormal",
//	    Context{"id": "cam_07", "det": 0.62})
//
//	if err.IsFall() {
//	    return err
//	}
type Trip struct {
	Type      string    // Error category for systematic handling
	Message   string    // Human-readable description
	Context   Context   // Additional debugging information
	Timestamp time.Time // When the error occurred
	Severity  Severity  // How serious this error is
}

// Context provides structured debugging information for trips.
type Context map[string]interface{}

// Severity indicates how serious a trip is and how it should be handled.
type Severity int

const (
	// Stumble is a local issue the walk recovers from by doing nothing.
	// Examples: empty neighbour list, degenerate click ray
	Stumble Severity = iota

	// Error indicates a significant issue that the caller should see.
	// Examples: invalid configuration values
	Error

	// Fall indicates input that must be rejected before navigation starts.
	// Examples: non-orthonormal rotation, duplicate pose id
	Fall
)

func (s Severity) String() string {
	switch s {
	case Stumble:
		return "stumble"
	case Error:
		return "error"
	case Fall:
		return "fall"
	default:
		return "unknown"
	}
}

// NewTrip creates a new trip with the current timestamp.
func NewTrip(errorType, message string, context Context) *Trip {
	return &Trip{
		Type:      errorType,
		Message:   message,
		Context:   context,
		Timestamp: time.Now(),
		Severity:  Error,
	}
}

// NewStumble creates a new trip with Stumble severity.
func NewStumble(errorType, message string, context Context) *Trip {
	return NewTrip(errorType, message, context).WithSeverity(Stumble)
}

// NewFall creates a new trip with Fall severity.
func NewFall(errorType, message string, context Context) *Trip {
	return NewTrip(errorType, message, context).WithSeverity(Fall)
}

// WithSeverity sets the severity level for this error.
func (t *Trip) WithSeverity(severity Severity) *Trip {
	t.Severity = severity
	return t
}

// Error implements the error interface.
func (t *Trip) Error() string {
	return fmt.Sprintf("[%s:%s] %s", t.Type, t.Severity, t.Message)
}

// IsFall returns true if this error must stop loading.
func (t *Trip) IsFall() bool {
	return t.Severity == Fall
}

// DetailedString returns a comprehensive error description with context.
// Context keys are sorted so the output is stable.
func (t *Trip) DetailedString() string {
	var details strings.Builder

	details.WriteString(fmt.Sprintf("[%s:%s] %s", t.Type, t.Severity, t.Message))
	details.WriteString(fmt.Sprintf("\n  Time: %s", t.Timestamp.Format("15:04:05.000")))

	if len(t.Context) > 0 {
		keys := make([]string, 0, len(t.Context))
		for key := range t.Context {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		details.WriteString("\n  Context:")
		for _, key := range keys {
			details.WriteString(fmt.Sprintf("\n    %s: %v", key, t.Context[key]))
		}
	}

	return details.String()
}

// Handler collects trips for one component of the engine.
//
// The director keeps one handler so that stumbles which never surface to
// the user (empty neighbour lists, degenerate clicks) are still visible in
// the end-of-run report.
type Handler struct {
	component string  // Component name (e.g., "director", "loader")
	trips     []*Trip // Collected errors in chronological order
	stumbles  []*Trip // Collected minor issues in chronological order
	policy    *Policy // How to handle different error types
}

// Policy defines how different types and severities of errors should be handled.
type Policy struct {
	// StopOnFall determines if the run should stop on fall errors
	StopOnFall bool

	// MaxStumbles sets a limit on accumulated stumbles before giving up
	MaxStumbles int
}

// DefaultPolicy returns the policy used by the director.
//
// Stumbles are unbounded: a user clicking into an empty corner a thousand
// times is still a healthy session.
func DefaultPolicy() *Policy {
	return &Policy{
		StopOnFall:  true,
		MaxStumbles: 0,
	}
}

// NewHandler creates a new error handler for a specific component.
func NewHandler(component string, policy *Policy) *Handler {
	if policy == nil {
		policy = DefaultPolicy()
	}

	return &Handler{
		component: component,
		trips:     make([]*Trip, 0),
		stumbles:  make([]*Trip, 0),
		policy:    policy,
	}
}

// WithPolicy replaces the handler's policy. A nil policy restores the
// default.
func (h *Handler) WithPolicy(policy *Policy) *Handler {
	if policy == nil {
		policy = DefaultPolicy()
	}
	h.policy = policy
	return h
}

// Record adds an error to the handler's collection.
func (h *Handler) Record(trip *Trip) {
	if trip == nil {
		return
	}
	if trip.Severity == Stumble {
		h.stumbles = append(h.stumbles, trip)
	} else {
		h.trips = append(h.trips, trip)
	}
}

// ShouldContinue determines if the run should continue based on current errors.
func (h *Handler) ShouldContinue() bool {
	if h.policy.StopOnFall {
		for _, trip := range h.trips {
			if trip.IsFall() {
				return false
			}
		}
	}

	if h.policy.MaxStumbles > 0 && len(h.stumbles) > h.policy.MaxStumbles {
		return false
	}

	return true
}

// HasTrips returns true if any errors (non-stumbles) have been recorded.
func (h *Handler) HasTrips() bool {
	return len(h.trips) > 0
}

// HasStumbles returns true if any stumbles have been recorded.
func (h *Handler) HasStumbles() bool {
	return len(h.stumbles) > 0
}

// GetTrips returns all recorded errors.
func (h *Handler) GetTrips() []*Trip {
	return h.trips
}

// GetStumbles returns all recorded stumbles.
func (h *Handler) GetStumbles() []*Trip {
	return h.stumbles
}

// CountType returns how many trips and stumbles of the given type were recorded.
func (h *Handler) CountType(errorType string) int {
	n := 0
	for _, t := range h.trips {
		if t.Type == errorType {
			n++
		}
	}
	for _, t := range h.stumbles {
		if t.Type == errorType {
			n++
		}
	}
	return n
}

// Summary provides a concise overview of all errors and stumbles.
func (h *Handler) Summary() string {
	if len(h.trips) == 0 && len(h.stumbles) == 0 {
		return fmt.Sprintf("[%s] No issues during the walk", h.component)
	}

	return fmt.Sprintf("[%s] %d trips, %d stumbles",
		h.component, len(h.trips), len(h.stumbles))
}

// DetailedReport provides a comprehensive report of all issues.
func (h *Handler) DetailedReport() string {
	var report strings.Builder

	report.WriteString(fmt.Sprintf("=== %s Component Report ===\n", h.component))
	report.WriteString(h.Summary() + "\n")

	if len(h.trips) > 0 {
		report.WriteString("\nTrips:\n")
		for i, trip := range h.trips {
			report.WriteString(fmt.Sprintf("%d. %s\n", i+1, trip.DetailedString()))
		}
	}

	if len(h.stumbles) > 0 {
		report.WriteString("\nStumbles:\n")
		for i, stumble := range h.stumbles {
			report.WriteString(fmt.Sprintf("%d. %s\n", i+1, stumble.DetailedString()))
		}
	}

	return report.String()
}
