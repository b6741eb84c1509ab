package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alchemorsel/mealplanner/internal/domain/stepgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const pastaJSON = `{
  "artifacts": [
    {"id": "sauce", "title": "Sauce", "emoji": "🍅"},
    {"id": "pasta", "title": "Pasta", "emoji": "🍝"}
  ],
  "steps": [
    {"step_id": "s1", "number": 1, "instruction": "Simmer tomatoes.", "role": "simple", "track_id": "sauce"},
    {"step_id": "s2", "number": 2, "instruction": "Boil pasta.", "role": "simple", "track_id": "pasta"},
    {"step_id": "s3", "number": 3, "instruction": "Toss together. Serve hot.", "role": "join", "depends_on": ["sauce", "pasta"]}
  ]
}`

const brokenYAML = `artifacts:
  - id: sauce
    title: Sauce
  - id: sauce
    title: Better sauce
steps:
  - step_id: s1
    number: 1
    instruction: Simmer tomatoes.
    track_id: sauce
  - step_id: s2
    number: 2
    instruction: Fry onions.
    track_id: onions
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBuild_JSON(t *testing.T) {
	out, err := run(t, "", "build", writeFile(t, "pasta.json", pastaJSON))
	require.NoError(t, err)

	var graph stepgraph.StepGraph
	require.NoError(t, json.Unmarshal([]byte(out), &graph))
	require.Len(t, graph.Tracks, 2)
	assert.Equal(t, "sauce", graph.Tracks[0].TrackID)
	require.Len(t, graph.Joins, 1)
	assert.Equal(t, "Toss together", graph.Joins[0].Title)
	assert.Empty(t, graph.Warnings)
}

func TestBuild_StdinToYAML(t *testing.T) {
	out, err := run(t, pastaJSON, "build", "-", "-o", "yaml")
	require.NoError(t, err)

	var graph stepgraph.StepGraph
	require.NoError(t, yaml.Unmarshal([]byte(out), &graph))
	assert.Len(t, graph.Tracks, 2)
	assert.Contains(t, out, "track_id: pasta")
}

func TestBuild_YAMLInputByExtension(t *testing.T) {
	out, err := run(t, "", "build", writeFile(t, "broken.yml", brokenYAML))
	require.NoError(t, err, "build never fails on advisory warnings")

	var graph stepgraph.StepGraph
	require.NoError(t, json.Unmarshal([]byte(out), &graph))
	require.Len(t, graph.Tracks, 1)
	assert.Equal(t, "Better sauce", graph.Tracks[0].Title)
	assert.Len(t, graph.Warnings, 1)
}

func TestBuild_UnsupportedFormat(t *testing.T) {
	_, err := run(t, pastaJSON, "build", "-", "-o", "toml")
	assert.ErrorContains(t, err, "unsupported format")
}

func TestBuild_MissingFile(t *testing.T) {
	_, err := run(t, "", "build", filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestValidate_Clean(t *testing.T) {
	out, err := run(t, "", "validate", writeFile(t, "pasta.json", pastaJSON))
	require.NoError(t, err)

	var report validationReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.Valid)
	assert.Equal(t, 2, report.Tracks)
	assert.Equal(t, 1, report.Joins)
	assert.Equal(t, 2, report.Steps)
	assert.False(t, report.Fallback)
	assert.Empty(t, report.Diagnostics)
}

func TestValidate_WarningsExitNonZero(t *testing.T) {
	path := writeFile(t, "broken.yaml", brokenYAML)

	out, err := run(t, "", "validate", path)
	var invalid errInvalid
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 1, invalid.warnings)

	var report validationReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.False(t, report.Valid)
	assert.Equal(t, 1, report.Counts[stepgraph.UnknownTrackReference])
	assert.Zero(t, report.Counts[stepgraph.DuplicateArtifact])

	out, err = run(t, "", "validate", path, "--warn-duplicates", "-o", "yaml")
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 2, invalid.warnings)
	assert.Contains(t, out, "kind: duplicate_artifact")
}

func TestValidate_UnknownRoleIsReported(t *testing.T) {
	doc := `{"artifacts":[{"id":"a","title":"A"}],"steps":[
		{"step_id":"s1","number":1,"instruction":"Chop.","track_id":"a"},
		{"step_id":"s2","number":2,"instruction":"Wait.","role":"garnish"}]}`

	out, err := run(t, doc, "validate", "-")
	assert.Error(t, err)

	var report validationReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, []string{"s2"}, report.Skipped)
	assert.Empty(t, report.Diagnostics)
}

func TestValidate_EmptyDocumentFallsBack(t *testing.T) {
	out, err := run(t, "", "validate", "-")
	assert.Error(t, err)

	var report validationReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1, report.Counts[stepgraph.NoStepsAvailable])
}
