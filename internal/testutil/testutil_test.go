package testutil

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattwparas/Rucket/internal/contract"
	"github.com/mattwparas/Rucket/internal/ir"
)

func TestFixedGenerator_InOrderThenRepeatsLast(t *testing.T) {
	gen := NewFixedGenerator("run-1", "run-2")

	assert.Equal(t, "run-1", gen.Generate())
	assert.Equal(t, "run-2", gen.Generate())
	assert.Equal(t, "run-2", gen.Generate())
}

func TestFixedGenerator_EmptyDefault(t *testing.T) {
	gen := NewFixedGenerator()
	assert.Equal(t, "test-run-default", gen.Generate())
}

func TestFixedGenerator_ThreadSafe(t *testing.T) {
	gen := NewFixedGenerator("only")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, "only", gen.Generate())
			}
		}()
	}
	wg.Wait()
}

func TestRecorder_RecordsInOrder(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()

	require.NoError(t, r.Report(ctx, &contract.ViolationError{Code: contract.ErrCodeArgumentViolation}))
	require.NoError(t, r.Report(ctx, &contract.ViolationError{Code: contract.ErrCodeResultViolation}))

	assert.Equal(t, []contract.ErrorCode{
		contract.ErrCodeArgumentViolation,
		contract.ErrCodeResultViolation,
	}, r.Codes())
	assert.Len(t, r.Violations(), 2)

	r.Reset()
	assert.Empty(t, r.Violations())
}

func TestRecorder_ReturnsConfiguredError(t *testing.T) {
	boom := errors.New("journal unavailable")
	r := &Recorder{Err: boom}

	err := r.Report(context.Background(), &contract.ViolationError{Code: contract.ErrCodeArityMismatch})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, r.Violations(), 1)
}

func TestCallables(t *testing.T) {
	ctx := context.Background()

	v, err := SumIsTen().Call(ctx, []ir.Value{ir.NewInt(3), ir.NewInt(7)})
	require.NoError(t, err)
	assert.Equal(t, ir.NewBool(true), v)

	v, err = Sum().Call(ctx, []ir.Value{ir.NewInt(3), ir.NewInt(7)})
	require.NoError(t, err)
	assert.Equal(t, ir.NewInt(10), v)

	_, err = Sum().Call(ctx, []ir.Value{ir.NewString("a"), ir.NewInt(7)})
	var hostErr *ir.Error
	require.ErrorAs(t, err, &hostErr)
	assert.Equal(t, ir.ErrType, hostErr.Kind)

	v, err = Const("seven", 0, ir.NewInt(7)).Call(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, ir.NewInt(7), v)
}
