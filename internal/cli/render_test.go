package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderAll(t *testing.T) {
	out, err := execute(NewRenderCommand(newTestOptions("text")), "testdata/contracts.cue")
	require.NoError(t, err)
	assert.Equal(t, "test : (-> integer? integer? boolean?)\n"+
		"sum-wrong : (-> integer? integer? boolean?)\n"+
		"apply-even : (-> (-> even? odd?) even?)\n"+
		"declared : (-> list-of(integer?) between(0, 10))\n", out)
}

func TestRenderNamed(t *testing.T) {
	out, err := execute(NewRenderCommand(newTestOptions("json")), "testdata/contracts.cue", "declared", "test")
	require.NoError(t, err)

	var resp struct {
		Data []RenderedContract `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, []RenderedContract{
		{Name: "declared", Contract: "(-> list-of(integer?) between(0, 10))"},
		{Name: "test", Contract: "(-> integer? integer? boolean?)", Doc: "reports whether two integers sum to ten"},
	}, resp.Data)
}

func TestRenderUnknownName(t *testing.T) {
	out, err := execute(NewRenderCommand(newTestOptions("text")), "testdata/contracts.cue", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, `unknown contract "nope"`)
}

func TestDescribeBound(t *testing.T) {
	out, err := execute(NewDescribeCommand(newTestOptions("text")), "testdata/contracts.cue", "test")
	require.NoError(t, err)
	assert.Equal(t, "test : (-> integer? integer? boolean?)\n  reports whether two integers sum to ten\n", out)
}

func TestDescribeLayered(t *testing.T) {
	out, err := execute(NewDescribeCommand(newTestOptions("json")), "../manifest/testdata/layered", "add-one-even")
	require.NoError(t, err)

	var resp struct {
		Data DescribeResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Data.Bound)
	assert.Contains(t, resp.Data.Description, "add-one-even : (-> even? odd?)")
	assert.Contains(t, resp.Data.Description, "composed over:")
}

func TestDescribeDeclaredOnly(t *testing.T) {
	out, err := execute(NewDescribeCommand(newTestOptions("json")), "testdata/contracts.cue", "declared")
	require.NoError(t, err)

	var resp struct {
		Data DescribeResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.False(t, resp.Data.Bound)
	assert.Equal(t, "declared : (-> list-of(integer?) between(0, 10))", resp.Data.Description)
}

func TestDescribeContractsDisabled(t *testing.T) {
	opts := newTestOptions("text")
	opts.NoContracts = true

	out, err := execute(NewDescribeCommand(opts), "testdata/contracts.cue", "test")
	require.NoError(t, err)
	assert.Contains(t, out, "test : (-> integer? integer? boolean?)")
}

func TestDescribeUnknown(t *testing.T) {
	out, err := execute(NewDescribeCommand(newTestOptions("text")), "testdata/contracts.cue", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}
