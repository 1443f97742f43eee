package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalScenario = `
name: minimal
description: "one call"
specs: [contracts.cue]
steps:
  - call: test
    args: [5, 5]
`

func TestParseScenario_Minimal(t *testing.T) {
	s, err := ParseScenario([]byte(minimalScenario))
	require.NoError(t, err)

	assert.Equal(t, "minimal", s.Name)
	assert.True(t, s.ContractsEnabled())
	require.Len(t, s.Steps, 1)
	assert.Equal(t, []any{5, 5}, s.Steps[0].Args)
	assert.Nil(t, s.Steps[0].Expect)
}

func TestParseScenario_ContractsOff(t *testing.T) {
	s, err := ParseScenario([]byte(minimalScenario + "contracts: false\n"))
	require.NoError(t, err)
	assert.False(t, s.ContractsEnabled())
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(minimalScenario + "step: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: "description: d\nspecs: [a.cue]\nsteps: [{call: f}]\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: n\nspecs: [a.cue]\nsteps: [{call: f}]\n",
			want: "description is required",
		},
		{
			name: "missing specs",
			yaml: "name: n\ndescription: d\nsteps: [{call: f}]\n",
			want: "specs list is required",
		},
		{
			name: "missing steps",
			yaml: "name: n\ndescription: d\nspecs: [a.cue]\n",
			want: "steps list is required",
		},
		{
			name: "missing call",
			yaml: "name: n\ndescription: d\nspecs: [a.cue]\nsteps: [{args: [1]}]\n",
			want: "steps[0]: call is required",
		},
		{
			name: "bad location",
			yaml: "name: n\ndescription: d\nspecs: [a.cue]\nsteps: [{call: f, at: \"main.rkt:x:1\"}]\n",
			want: "steps[0].at",
		},
		{
			name: "two outcomes",
			yaml: "name: n\ndescription: d\nspecs: [a.cue]\nsteps: [{call: f, expect: {value: 1, error: boom}}]\n",
			want: "exactly one of value, violation and error",
		},
		{
			name: "unknown code",
			yaml: "name: n\ndescription: d\nspecs: [a.cue]\nsteps: [{call: f, expect: {violation: OOPS}}]\n",
			want: `unknown violation code "OOPS"`,
		},
		{
			name: "blame without violation",
			yaml: "name: n\ndescription: d\nspecs: [a.cue]\nsteps: [{call: f, expect: {value: 1, blame: caller}}]\n",
			want: "blame and position require a violation",
		},
		{
			name: "unknown assertion",
			yaml: "name: n\ndescription: d\nspecs: [a.cue]\nsteps: [{call: f}]\nassertions: [{type: final_state}]\n",
			want: `unknown assertion type "final_state"`,
		},
		{
			name: "order without codes",
			yaml: "name: n\ndescription: d\nspecs: [a.cue]\nsteps: [{call: f}]\nassertions: [{type: violation_order}]\n",
			want: "codes list is required",
		},
		{
			name: "journal without expect",
			yaml: "name: n\ndescription: d\nspecs: [a.cue]\nsteps: [{call: f}]\nassertions: [{type: journal, where: {seq: 1}}]\n",
			want: "expect is required for journal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_ResolvesSpecPaths(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "sum_is_ten.yaml"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("testdata", "manifests", "contracts.cue"), s.Specs[0])
	assert.Equal(t, "run-sum-is-ten", s.RunID)
}

func TestLoadScenario_MissingSpec(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalScenario), 0o644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spec file not found")
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestExpect_Value(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: n
description: d
specs: [a.cue]
steps:
  - call: list
    args: [1, {sym: b}]
    expect:
      value: [1, {sym: b}]
`))
	require.NoError(t, err)

	assert.Equal(t, []any{1, map[string]any{"sym": "b"}}, s.Steps[0].Expect.Value)
}

func TestExpect_ScalarValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want any
	}{
		{"bool", "true", true},
		{"false is set", "false", false},
		{"zero is set", "0", 0},
		{"string", `"ten"`, "ten"},
		{"null tag", "{null: true}", map[string]any{"null": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseScenario([]byte(`
name: n
description: d
specs: [a.cue]
steps:
  - call: test
    args: [3, 7]
    expect: { value: ` + tt.yaml + ` }
`))
			require.NoError(t, err)
			require.NotNil(t, s.Steps[0].Expect)
			assert.Equal(t, tt.want, s.Steps[0].Expect.Value)
		})
	}
}
