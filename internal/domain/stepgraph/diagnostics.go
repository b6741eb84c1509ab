package stepgraph

import (
	"fmt"
	"strings"
)

// Kind classifies an advisory warning produced while building a graph.
type Kind string

const (
	UnknownTrackReference        Kind = "unknown_track_reference"
	UnknownJoinDependency        Kind = "unknown_join_dependency"
	InsufficientJoinDependencies Kind = "insufficient_join_dependencies"
	EmptyGraphFallback           Kind = "empty_graph_fallback"
	NoStepsAvailable             Kind = "no_steps_available"
	DuplicateArtifact            Kind = "duplicate_artifact"
)

// Kinds lists every diagnostic kind in a stable order.
var Kinds = []Kind{
	UnknownTrackReference,
	UnknownJoinDependency,
	InsufficientJoinDependencies,
	EmptyGraphFallback,
	NoStepsAvailable,
	DuplicateArtifact,
}

// Diagnostic is the typed form of a warning string.
type Diagnostic struct {
	Kind     Kind     `json:"kind" yaml:"kind"`
	StepID   string   `json:"step_id,omitempty" yaml:"step_id,omitempty"`
	TrackIDs []string `json:"track_ids,omitempty" yaml:"track_ids,omitempty"`
	Message  string   `json:"message" yaml:"message"`
}

func unknownTrack(stepID, trackID string) Diagnostic {
	return Diagnostic{
		Kind:     UnknownTrackReference,
		StepID:   stepID,
		TrackIDs: []string{trackID},
		Message:  fmt.Sprintf("Unknown artifact \"%s\" for step \"%s\"", trackID, stepID),
	}
}

func unknownDependencies(stepID string, trackIDs []string) Diagnostic {
	return Diagnostic{
		Kind:     UnknownJoinDependency,
		StepID:   stepID,
		TrackIDs: trackIDs,
		Message:  fmt.Sprintf("Join step \"%s\" depends on unknown artifacts: %s", stepID, strings.Join(trackIDs, ", ")),
	}
}

func insufficientDependencies(stepID string, known []string) Diagnostic {
	return Diagnostic{
		Kind:     InsufficientJoinDependencies,
		StepID:   stepID,
		TrackIDs: known,
		Message:  fmt.Sprintf("Join step \"%s\" has fewer than 2 valid dependencies; skipped.", stepID),
	}
}

func duplicateArtifact(id string) Diagnostic {
	return Diagnostic{
		Kind:     DuplicateArtifact,
		TrackIDs: []string{id},
		Message:  fmt.Sprintf("Artifact \"%s\" is defined more than once; the last definition wins.", id),
	}
}

var (
	fallbackUsed = Diagnostic{Kind: EmptyGraphFallback, Message: "Using fallback single track."}
	noSteps      = Diagnostic{Kind: NoStepsAvailable, Message: "No simple steps found in annotations."}
)

// CountByKind tallies diagnostics per kind.
func CountByKind(diags []Diagnostic) map[Kind]int {
	out := make(map[Kind]int, len(diags))
	for _, d := range diags {
		out[d.Kind]++
	}
	return out
}
