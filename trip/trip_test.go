package trip

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTrip_Core tests core Trip functionality
func TestTrip_Core(t *testing.T) {
	context := Context{
		"id":    "cam_03",
		"index": 3,
	}

	trip := NewTrip(Ingestion, "rotation is not orthonormal", context)

	assert.Equal(t, Ingestion, trip.Type)
	assert.Equal(t, "rotation is not orthonormal", trip.Message)
	assert.Equal(t, context, trip.Context)
	assert.Equal(t, Error, trip.Severity)
	assert.WithinDuration(t, time.Now(), trip.Timestamp, time.Second)

	assert.Contains(t, trip.Error(), "rotation is not orthonormal")
	assert.Contains(t, trip.Error(), "ingestion")
	assert.Contains(t, trip.Error(), "error")
}

// TestTrip_Severities tests different severity levels
func TestTrip_Severities(t *testing.T) {
	stumble := NewStumble(Navigation, "no neighbours", nil)
	error_ := NewTrip(Config, "k must be positive", nil)
	fall := NewFall(Ingestion, "duplicate id", nil)

	assert.Equal(t, Stumble, stumble.Severity)
	assert.Equal(t, Error, error_.Severity)
	assert.Equal(t, Fall, fall.Severity)

	assert.False(t, stumble.IsFall())
	assert.False(t, error_.IsFall())
	assert.True(t, fall.IsFall())
}

// TestTrip_UnwrapsThroughErrorsAs tests that wrapped trips stay inspectable
func TestTrip_UnwrapsThroughErrorsAs(t *testing.T) {
	wrapped := fmt.Errorf("load manifest: %w", NewFall(Ingestion, "bad translation", nil))

	var tr *Trip
	require.True(t, errors.As(wrapped, &tr))
	assert.True(t, tr.IsFall())
	assert.Equal(t, Ingestion, tr.Type)
}

// TestTrip_Methods tests trip methods
func TestTrip_Methods(t *testing.T) {
	trip := NewTrip(Intent, "zero-size viewport", Context{"width": 0, "height": 24})

	trip.WithSeverity(Stumble)
	assert.Equal(t, Stumble, trip.Severity)

	assert.Equal(t, 24, trip.Context["height"])

	detailed := trip.DetailedString()
	assert.Contains(t, detailed, "zero-size viewport")
	assert.Contains(t, detailed, "height: 24")
	assert.Less(t, strings.Index(detailed, "height"), strings.Index(detailed, "width"), "context keys are sorted")
}

// TestHandler_Basic tests basic Handler functionality
func TestHandler_Basic(t *testing.T) {
	handler := NewHandler("director", DefaultPolicy())

	assert.True(t, handler.ShouldContinue())
	assert.Contains(t, handler.Summary(), "No issues")

	handler.Record(NewStumble(Navigation, "no neighbours", nil))
	handler.Record(NewStumble(Intent, "degenerate ray", nil))
	handler.Record(nil)
	assert.True(t, handler.ShouldContinue())
	assert.True(t, handler.HasStumbles())
	assert.False(t, handler.HasTrips())
	assert.Equal(t, 1, handler.CountType(Navigation))

	handler.Record(NewFall(Ingestion, "duplicate id", nil))
	assert.False(t, handler.ShouldContinue())
	assert.True(t, handler.HasTrips())
	assert.Len(t, handler.GetTrips(), 1)
	assert.Len(t, handler.GetStumbles(), 2)

	assert.Equal(t, "[director] 1 trips, 2 stumbles", handler.Summary())
	report := handler.DetailedReport()
	assert.Contains(t, report, "=== director Component Report ===")
	assert.Contains(t, report, "duplicate id")
	assert.Contains(t, report, "degenerate ray")
}

// TestHandler_MaxStumbles tests the stumble budget
func TestHandler_MaxStumbles(t *testing.T) {
	handler := NewHandler("film", &Policy{MaxStumbles: 2})

	for i := 0; i < 2; i++ {
		handler.Record(NewStumble(Visual, "capture failed", nil))
	}
	assert.True(t, handler.ShouldContinue())

	handler.Record(NewStumble(Visual, "capture failed", nil))
	assert.False(t, handler.ShouldContinue())
}

// TestPolicy_Default tests default policy
func TestPolicy_Default(t *testing.T) {
	policy := DefaultPolicy()

	assert.True(t, policy.StopOnFall)
	assert.Equal(t, 0, policy.MaxStumbles)

	handler := NewHandler("director", nil)
	for i := 0; i < 100; i++ {
		handler.Record(NewStumble(Intent, "degenerate ray", nil))
	}
	assert.True(t, handler.ShouldContinue(), "stumbles are unbounded by default")
}

// TestHandler_WithPolicy tests swapping the policy after creation
func TestHandler_WithPolicy(t *testing.T) {
	handler := NewHandler("director", nil)
	handler.Record(NewStumble(Navigation, "no neighbours", nil))
	handler.Record(NewStumble(Navigation, "no neighbours", nil))
	assert.True(t, handler.ShouldContinue())

	assert.Same(t, handler, handler.WithPolicy(&Policy{MaxStumbles: 1}))
	assert.False(t, handler.ShouldContinue())

	handler.WithPolicy(nil)
	assert.True(t, handler.ShouldContinue())

	handler.Record(NewFall(Visual, "film directory missing", nil))
	assert.False(t, handler.ShouldContinue())
	handler.WithPolicy(&Policy{StopOnFall: false})
	assert.True(t, handler.ShouldContinue())
}

// TestSeverity_String tests severity string representation
func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "stumble", Stumble.String())
	assert.Equal(t, "error", Error.String())
	assert.Equal(t, "fall", Fall.String())
	assert.Equal(t, "unknown", Severity(42).String())
}
