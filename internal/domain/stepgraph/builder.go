package stepgraph

import (
	"sort"
	"strings"
)

// DefaultJoinTitle is used when a join's instruction has no text before its
// first period.
const DefaultJoinTitle = "Combine components"

// Options tunes optional builder behaviour. The zero value reproduces the
// permissive defaults.
type Options struct {
	// WarnDuplicateArtifacts adds a DuplicateArtifact diagnostic for every
	// repeated artifact id. The last definition wins either way.
	WarnDuplicateArtifacts bool
}

// Result carries the graph together with the typed diagnostics behind its
// warning strings.
type Result struct {
	Graph       StepGraph
	Diagnostics []Diagnostic
}

// Build groups simple steps into tracks, validates join references and falls
// back to a single "main" track when no artifact receives a step.
func Build(artifacts []Artifact, steps []AnnotatedStep) StepGraph {
	return BuildWithOptions(artifacts, steps, Options{}).Graph
}

// BuildWithOptions is Build with options and typed diagnostics.
func BuildWithOptions(artifacts []Artifact, steps []AnnotatedStep, opts Options) Result {
	b := builder{
		index:   make(map[string]Artifact, len(artifacts)),
		grouped: make(map[string][]SimpleStep, len(artifacts)),
	}

	// Last definition wins; position is that of the first appearance.
	for _, a := range artifacts {
		if _, seen := b.index[a.ID]; seen {
			if opts.WarnDuplicateArtifacts {
				b.warn(duplicateArtifact(a.ID))
			}
		} else {
			b.order = append(b.order, a.ID)
		}
		b.index[a.ID] = a
	}

	var joins []Join
	for _, step := range steps {
		switch s := step.(type) {
		case SimpleStep:
			if _, ok := b.index[s.TrackID]; !ok {
				b.warn(unknownTrack(s.StepID, s.TrackID))
				continue
			}
			b.grouped[s.TrackID] = append(b.grouped[s.TrackID], s)
		case JoinStep:
			if j, ok := b.join(s); ok {
				joins = append(joins, j)
			}
		}
	}

	tracks := make([]Track, 0, len(b.order))
	for _, id := range b.order {
		placed := b.grouped[id]
		if len(placed) == 0 {
			continue
		}
		a := b.index[id]
		tracks = append(tracks, Track{
			TrackID: a.ID,
			Title:   a.Title,
			Glyph:   a.Glyph,
			Steps:   renumber(placed),
		})
	}

	if len(tracks) > 0 {
		if joins == nil {
			joins = []Join{}
		}
		return b.result(tracks, joins)
	}

	var all []SimpleStep
	for _, step := range steps {
		if s, ok := step.(SimpleStep); ok {
			all = append(all, s)
		}
	}
	if len(all) == 0 {
		b.warn(noSteps)
		return b.result([]Track{}, []Join{})
	}

	b.warn(fallbackUsed)
	return b.result([]Track{{
		TrackID: FallbackTrackID,
		Title:   FallbackTrackTitle,
		Steps:   renumber(all),
	}}, []Join{})
}

type builder struct {
	index   map[string]Artifact
	order   []string
	grouped map[string][]SimpleStep
	diags   []Diagnostic
}

func (b *builder) warn(d Diagnostic) {
	b.diags = append(b.diags, d)
}

func (b *builder) join(s JoinStep) (Join, bool) {
	var known, unknown []string
	for _, dep := range s.DependsOnTrackIDs {
		if _, ok := b.index[dep]; ok {
			known = append(known, dep)
		} else {
			unknown = append(unknown, dep)
		}
	}
	if len(unknown) > 0 {
		b.warn(unknownDependencies(s.StepID, unknown))
	}
	if len(known) < 2 {
		b.warn(insufficientDependencies(s.StepID, known))
		return Join{}, false
	}
	return Join{
		StepID:    s.StepID,
		Title:     JoinTitle(s.Text),
		Text:      s.Text,
		DependsOn: known,
	}, true
}

func (b *builder) result(tracks []Track, joins []Join) Result {
	warnings := make([]string, len(b.diags))
	for i, d := range b.diags {
		warnings[i] = d.Message
	}
	return Result{
		Graph:       StepGraph{Tracks: tracks, Joins: joins, Warnings: warnings},
		Diagnostics: b.diags,
	}
}

// renumber stable-sorts by sequence number and assigns numbers 1..N.
func renumber(steps []SimpleStep) []TrackStep {
	sorted := make([]SimpleStep, len(steps))
	copy(sorted, steps)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SequenceNumber < sorted[j].SequenceNumber
	})

	out := make([]TrackStep, len(sorted))
	for i, s := range sorted {
		out[i] = TrackStep{
			StepID:          s.StepID,
			Number:          i + 1,
			Text:            s.Text,
			DurationMinutes: s.DurationMinutes,
		}
	}
	return out
}

// JoinTitle returns the instruction text up to its first period.
func JoinTitle(text string) string {
	head, _, _ := strings.Cut(text, ".")
	if head = strings.TrimSpace(head); head == "" {
		return DefaultJoinTitle
	}
	return head
}
