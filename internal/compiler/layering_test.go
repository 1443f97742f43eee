package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattwparas/Rucket/internal/ir"
)

func layered(pairs ...string) []ir.ContractSpec {
	specs := make([]ir.ContractSpec, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		specs = append(specs, ir.ContractSpec{Name: pairs[i], Impl: pairs[i+1]})
	}
	return specs
}

func TestBindOrderNoLayering(t *testing.T) {
	order, cycles := BindOrder(layered("a", "add1", "b", "sum", "c", "double"))
	assert.Empty(t, cycles)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestBindOrderDependenciesFirst(t *testing.T) {
	// strict layers over loose, which layers over base.
	order, cycles := BindOrder(layered("strict", "loose", "loose", "base", "base", "sum"))
	assert.Empty(t, cycles)
	assert.Equal(t, []string{"base", "loose", "strict"}, order)
}

func TestBindOrderEmpty(t *testing.T) {
	order, cycles := BindOrder(nil)
	assert.Empty(t, order)
	assert.Empty(t, cycles)
}

func TestBindOrderSelfLoop(t *testing.T) {
	order, cycles := BindOrder(layered("a", "a", "b", "sum"))
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"a", "a"}, cycles[0].Path)
	assert.Equal(t, "contract a layers over itself", cycles[0].Error())
	assert.Equal(t, []string{"b"}, order)
}

func TestBindOrderCycle(t *testing.T) {
	order, cycles := BindOrder(layered("a", "b", "b", "c", "c", "a", "d", "a"))
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"a", "b", "c", "a"}, cycles[0].Path)
	assert.Equal(t, "impl cycle detected: a -> b -> c -> a", cycles[0].Message)
	assert.Equal(t, []string{"d"}, order)
}
