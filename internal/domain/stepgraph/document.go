package stepgraph

import (
	"fmt"
	"strings"
)

// Step roles on the wire.
const (
	RoleSimple = "simple"
	RoleJoin   = "join"
)

// StepRecord is the wire form of an AnnotatedStep as produced by annotators.
type StepRecord struct {
	StepID          string   `json:"step_id" yaml:"step_id"`
	Number          int      `json:"number" yaml:"number"`
	Instruction     string   `json:"instruction" yaml:"instruction"`
	Role            string   `json:"role,omitempty" yaml:"role,omitempty"`
	TrackID         string   `json:"track_id,omitempty" yaml:"track_id,omitempty"`
	DependsOn       []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
	DurationMinutes *int     `json:"duration_minutes,omitempty" yaml:"duration_minutes,omitempty"`
}

// Document is the serialisable annotation payload: artifacts plus steps.
type Document struct {
	Artifacts []Artifact   `json:"artifacts" yaml:"artifacts"`
	Steps     []StepRecord `json:"steps" yaml:"steps"`
}

// NewDocument encodes typed steps into their wire form.
func NewDocument(artifacts []Artifact, steps []AnnotatedStep) Document {
	doc := Document{
		Artifacts: append([]Artifact{}, artifacts...),
		Steps:     make([]StepRecord, 0, len(steps)),
	}
	for _, step := range steps {
		switch s := step.(type) {
		case SimpleStep:
			doc.Steps = append(doc.Steps, StepRecord{
				StepID:          s.StepID,
				Number:          s.SequenceNumber,
				Instruction:     s.Text,
				Role:            RoleSimple,
				TrackID:         s.TrackID,
				DurationMinutes: s.DurationMinutes,
			})
		case JoinStep:
			doc.Steps = append(doc.Steps, StepRecord{
				StepID:      s.StepID,
				Number:      s.SequenceNumber,
				Instruction: s.Text,
				Role:        RoleJoin,
				DependsOn:   append([]string{}, s.DependsOnTrackIDs...),
			})
		}
	}
	return doc
}

// Decode converts wire records into typed steps. Records with an
// unrecognised role are skipped and reported in the returned slice. A record
// without a role is a join when it lists two or more dependencies.
func (d Document) Decode() ([]AnnotatedStep, []string) {
	steps := make([]AnnotatedStep, 0, len(d.Steps))
	var skipped []string
	for i, r := range d.Steps {
		id := r.StepID
		if id == "" {
			id = fmt.Sprintf("step-%d", i+1)
		}
		role := strings.ToLower(strings.TrimSpace(r.Role))
		if role == "" {
			role = RoleSimple
			if len(r.DependsOn) >= 2 {
				role = RoleJoin
			}
		}
		switch role {
		case RoleSimple:
			steps = append(steps, SimpleStep{
				StepID:          id,
				SequenceNumber:  r.Number,
				Text:            r.Instruction,
				TrackID:         r.TrackID,
				DurationMinutes: r.DurationMinutes,
			})
		case RoleJoin:
			steps = append(steps, JoinStep{
				StepID:            id,
				SequenceNumber:    r.Number,
				Text:              r.Instruction,
				DependsOnTrackIDs: r.DependsOn,
			})
		default:
			skipped = append(skipped, id)
		}
	}
	return steps, skipped
}

// Build decodes the document and runs the builder on it.
func (d Document) Build(opts Options) Result {
	steps, _ := d.Decode()
	return BuildWithOptions(d.Artifacts, steps, opts)
}
