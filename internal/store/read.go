package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Run is a stored run record.
type Run struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ManifestHash  string `json:"manifest_hash"`
	ContractsOn   bool   `json:"contracts_on"`
	EngineVersion string `json:"engine_version"`
	IRVersion     string `json:"ir_version"`
}

// Violation is a stored violation record.
type Violation struct {
	Seq          int64  `json:"seq"`
	Code         string `json:"code"`
	Function     string `json:"function"`
	Contract     string `json:"contract"`
	ContractHash string `json:"contract_hash"`
	Detail       string `json:"detail"`
	BlameParty   string `json:"blame_party"`
	BlameName    string `json:"blame_name"`
	Blame        string `json:"blame"`
	Position     int    `json:"position"`
	Expected     int    `json:"expected,omitempty"`
	Actual       int    `json:"actual,omitempty"`
	Location     string `json:"location,omitempty"`
}

// ErrRunNotFound is returned when a run id is not in the journal.
var ErrRunNotFound = errors.New("run not found")

// ReadRuns returns every run, oldest first (UUIDv7 ids sort by creation).
//
// Returns an empty slice (not nil) if the journal has no runs.
func (s *Store) ReadRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, manifest_hash, contracts_on, engine_version, ir_version
		FROM runs
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Name, &r.ManifestHash, &r.ContractsOn, &r.EngineVersion, &r.IRVersion); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns a single run, or ErrRunNotFound.
func (s *Store) ReadRun(ctx context.Context, runID string) (Run, error) {
	var r Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, manifest_hash, contracts_on, engine_version, ir_version
		FROM runs
		WHERE id = ?
	`, runID).Scan(&r.ID, &r.Name, &r.ManifestHash, &r.ContractsOn, &r.EngineVersion, &r.IRVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return Run{}, fmt.Errorf("query run: %w", err)
	}
	return r, nil
}

// LatestRun returns the most recently started run, or ErrRunNotFound when
// the journal is empty.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM runs ORDER BY id COLLATE BINARY DESC LIMIT 1
	`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("query latest run: %w", err)
	}
	return s.ReadRun(ctx, id)
}

// ReadViolations returns the violations of a run in detection order
// (ORDER BY seq ASC, id ASC). An empty code matches every code.
//
// Returns an empty slice (not nil) if no records match.
func (s *Store) ReadViolations(ctx context.Context, runID, code string) ([]Violation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, code, function, contract, contract_hash, detail,
		       blame_party, blame_name, blame_text, position, expected, actual, location
		FROM violations
		WHERE run_id = ? AND (? = '' OR code = ?)
		ORDER BY seq ASC, id ASC
	`, runID, code, code)
	if err != nil {
		return nil, fmt.Errorf("query violations: %w", err)
	}
	defer rows.Close()

	violations := []Violation{}
	for rows.Next() {
		v, err := scanViolation(rows)
		if err != nil {
			return nil, err
		}
		violations = append(violations, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate violations: %w", err)
	}
	return violations, nil
}

func scanViolation(rows *sql.Rows) (Violation, error) {
	var v Violation
	var locJSON string
	err := rows.Scan(
		&v.Seq, &v.Code, &v.Function, &v.Contract, &v.ContractHash, &v.Detail,
		&v.BlameParty, &v.BlameName, &v.Blame, &v.Position, &v.Expected, &v.Actual, &locJSON,
	)
	if err != nil {
		return Violation{}, fmt.Errorf("scan violation: %w", err)
	}
	loc, err := unmarshalLocation(locJSON)
	if err != nil {
		return Violation{}, err
	}
	if loc.IsValid() {
		v.Location = loc.String()
	}
	return v, nil
}
