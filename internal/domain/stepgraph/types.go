// Package stepgraph turns an annotated, flat list of recipe steps into
// parallel cooking tracks joined by combination steps.
//
// The builder is a pure function over its inputs. It never fails: every
// malformed reference degrades into a warning plus best-effort output.
package stepgraph

// FallbackTrackID is the id of the synthetic track emitted when no artifact
// ends up with any steps.
const FallbackTrackID = "main"

// FallbackTrackTitle is the display title of the synthetic fallback track.
const FallbackTrackTitle = "Main"

// Artifact is a named parallel sub-preparation ("sauce", "protein").
type Artifact struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Glyph string `json:"emoji" yaml:"emoji"`
}

// AnnotatedStep is either a SimpleStep or a JoinStep.
type AnnotatedStep interface {
	ID() string
	Sequence() int
	Instruction() string
	isAnnotatedStep()
}

// SimpleStep belongs to exactly one track.
type SimpleStep struct {
	StepID          string
	SequenceNumber  int
	Text            string
	TrackID         string
	DurationMinutes *int
}

func (s SimpleStep) ID() string          { return s.StepID }
func (s SimpleStep) Sequence() int       { return s.SequenceNumber }
func (s SimpleStep) Instruction() string { return s.Text }
func (SimpleStep) isAnnotatedStep()      {}

// JoinStep combines the output of two or more tracks.
type JoinStep struct {
	StepID            string
	SequenceNumber    int
	Text              string
	DependsOnTrackIDs []string
}

func (j JoinStep) ID() string          { return j.StepID }
func (j JoinStep) Sequence() int       { return j.SequenceNumber }
func (j JoinStep) Instruction() string { return j.Text }
func (JoinStep) isAnnotatedStep()      {}

// TrackStep is a step placed on a track, renumbered from 1.
type TrackStep struct {
	StepID          string `json:"step_id" yaml:"step_id"`
	Number          int    `json:"number" yaml:"number"`
	Text            string `json:"instruction" yaml:"instruction"`
	DurationMinutes *int   `json:"duration_minutes,omitempty" yaml:"duration_minutes,omitempty"`
}

// Track is a non-empty ordered sequence of steps for one artifact.
type Track struct {
	TrackID string      `json:"track_id" yaml:"track_id"`
	Title   string      `json:"title" yaml:"title"`
	Glyph   string      `json:"emoji" yaml:"emoji"`
	Steps   []TrackStep `json:"steps" yaml:"steps"`
}

// Join is a combination step with at least two resolved dependencies.
type Join struct {
	StepID    string   `json:"step_id" yaml:"step_id"`
	Title     string   `json:"title" yaml:"title"`
	Text      string   `json:"instruction" yaml:"instruction"`
	DependsOn []string `json:"depends_on" yaml:"depends_on"`
}

// StepGraph is the builder output. It is never mutated after construction.
type StepGraph struct {
	Tracks   []Track  `json:"tracks" yaml:"tracks"`
	Joins    []Join   `json:"joins" yaml:"joins"`
	Warnings []string `json:"warnings" yaml:"warnings"`
}

// IsFallback reports whether the graph is the synthetic single-track graph.
func (g StepGraph) IsFallback() bool {
	return len(g.Tracks) == 1 && g.Tracks[0].TrackID == FallbackTrackID && len(g.Joins) == 0
}

// StepCount returns the number of placed simple steps across all tracks.
func (g StepGraph) StepCount() int {
	n := 0
	for _, t := range g.Tracks {
		n += len(t.Steps)
	}
	return n
}
