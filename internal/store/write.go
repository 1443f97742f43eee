package store

import (
	"context"
	"fmt"

	"github.com/mattwparas/Rucket/internal/contract"
	"github.com/mattwparas/Rucket/internal/ir"
)

// RunInfo describes a run at the moment it starts.
type RunInfo struct {
	Name         string
	ManifestHash string
	ContractsOn  bool
}

// Journal appends the violations of one run. It implements contract.Reporter.
//
// Thread-safety: Journal is safe for concurrent use; seq numbers come from
// an atomic clock and the store serializes writes on its single connection.
type Journal struct {
	store *Store
	runID string
	clock *Clock
}

var _ contract.Reporter = (*Journal)(nil)

// StartRun inserts a run record and returns a journal for it.
func (s *Store) StartRun(ctx context.Context, gen RunIDGenerator, info RunInfo) (*Journal, error) {
	if gen == nil {
		gen = UUIDv7Generator{}
	}
	runID := gen.Generate()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, name, manifest_hash, contracts_on, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		runID,
		info.Name,
		info.ManifestHash,
		info.ContractsOn,
		ir.EngineVersion,
		ir.IRVersion,
	)
	if err != nil {
		return nil, fmt.Errorf("start run: %w", err)
	}

	return &Journal{store: s, runID: runID, clock: NewClock()}, nil
}

// ResumeRun returns a journal that appends to an existing run. Its seq
// numbering continues after the last violation already recorded, so a run
// can span several processes. Returns ErrRunNotFound for an unknown id.
func (s *Store) ResumeRun(ctx context.Context, runID string) (*Journal, error) {
	if _, err := s.ReadRun(ctx, runID); err != nil {
		return nil, err
	}

	var last int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM violations WHERE run_id = ?
	`, runID).Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("resume run: %w", err)
	}
	return &Journal{store: s, runID: runID, clock: NewClockAt(last)}, nil
}

// RunID returns the id of the journal's run.
func (j *Journal) RunID() string {
	return j.runID
}

// Report implements contract.Reporter by appending v to the run.
func (j *Journal) Report(ctx context.Context, v *contract.ViolationError) error {
	locJSON, err := marshalLocation(v.Loc)
	if err != nil {
		return fmt.Errorf("write violation: %w", err)
	}

	_, err = j.store.db.ExecContext(ctx, `
		INSERT INTO violations
		(run_id, seq, code, function, contract, contract_hash, detail,
		 blame_party, blame_name, blame_text, position, expected, actual, location)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		j.runID,
		j.clock.Next(),
		string(v.Code),
		v.Function,
		v.Contract,
		ir.ContractHash(v.Contract),
		v.Detail,
		string(v.Blame.Party),
		v.Blame.Name,
		v.Blame.String(),
		v.Position,
		v.Expected,
		v.Actual,
		locJSON,
	)
	if err != nil {
		return fmt.Errorf("write violation: %w", err)
	}
	return nil
}
