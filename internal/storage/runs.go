package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"monosplit/internal/analysis"
	"monosplit/internal/depgraph"
)

// Run is a stored analysis run summary.
type Run struct {
	RunID               string    `json:"runId" yaml:"runId"`
	Root                string    `json:"root" yaml:"root"`
	StartedAt           time.Time `json:"startedAt" yaml:"startedAt"`
	DurationMs          int64     `json:"durationMs" yaml:"durationMs"`
	Descriptors         int       `json:"descriptors" yaml:"descriptors"`
	Failed              int       `json:"failed" yaml:"failed"`
	Modules             int       `json:"modules" yaml:"modules"`
	Edges               int       `json:"edges" yaml:"edges"`
	Applications        int       `json:"applications" yaml:"applications"`
	Shared              int       `json:"shared" yaml:"shared"`
	Cycles              int       `json:"cycles" yaml:"cycles"`
	Warnings            int       `json:"warnings" yaml:"warnings"`
	DeclarationChecksum string    `json:"declarationChecksum,omitempty" yaml:"declarationChecksum,omitempty"`
}

// ModuleRow is a stored module of a run.
type ModuleRow struct {
	PomPath    string `json:"pomPath" yaml:"pomPath"`
	GAV        string `json:"gav" yaml:"gav"`
	GroupID    string `json:"groupId,omitempty" yaml:"groupId,omitempty"`
	ArtifactID string `json:"artifactId" yaml:"artifactId"`
	Version    string `json:"version,omitempty" yaml:"version,omitempty"`
	Packaging  string `json:"packaging" yaml:"packaging"`
	ModuleDir  string `json:"moduleDir" yaml:"moduleDir"`
	Role       string `json:"role" yaml:"role"`
}

// timeLayout has fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RunRepository provides operations on stored runs
type RunRepository struct {
	db *DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

// Save stores res with its modules, unique edges and cycles in one transaction.
// warnings is the number of warnings logged during the run.
func (r *RunRepository) Save(ctx context.Context, res *analysis.Result, warnings int) (*Run, error) {
	g := res.Graph
	run := &Run{
		RunID:        res.RunID,
		Root:         res.Root,
		StartedAt:    res.StartedAt,
		DurationMs:   res.Duration.Milliseconds(),
		Descriptors:  len(res.Found),
		Failed:       len(res.Failed),
		Modules:      g.Len(),
		Edges:        len(g.UniqueEdges()),
		Applications: len(res.Proposal.Applications),
		Shared:       len(res.Proposal.Shared),
		Cycles:       res.Cycles.Len(),
		Warnings:     warnings,
	}
	if res.Declaration != nil {
		run.DeclarationChecksum = res.Declaration.Checksum
	}

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO runs (
				run_id, root, started_at, duration_ms, descriptors, failed,
				modules, edges, applications, shared, cycles, warnings, declaration_checksum
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			run.RunID, run.Root, run.StartedAt.UTC().Format(timeLayout), run.DurationMs,
			run.Descriptors, run.Failed, run.Modules, run.Edges, run.Applications,
			run.Shared, run.Cycles, run.Warnings, nullString(run.DeclarationChecksum),
		)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		modStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO run_modules (
				run_id, pom_path, gav, group_id, artifact_id, version, packaging, module_dir, role
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer modStmt.Close()
		for i, rec := range g.Nodes() {
			_, err := modStmt.ExecContext(ctx, run.RunID, res.Rel(rec.Path), rec.GAV(),
				nullString(rec.Coordinate.GroupID), rec.ArtifactID(), nullString(rec.Coordinate.Version),
				rec.Packaging, res.Rel(rec.Dir), res.Proposal.Role(depgraph.NodeID(i)))
			if err != nil {
				return fmt.Errorf("failed to insert module %s: %w", rec.Path, err)
			}
		}

		edgeStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO run_edges (run_id, from_path, to_path, from_gav, to_gav)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer edgeStmt.Close()
		for _, e := range g.UniqueEdges() {
			from, to := g.Node(e.From), g.Node(e.To)
			if _, err := edgeStmt.ExecContext(ctx, run.RunID, res.Rel(from.Path), res.Rel(to.Path), from.GAV(), to.GAV()); err != nil {
				return fmt.Errorf("failed to insert edge: %w", err)
			}
		}

		for i, c := range res.Cycles.Cycles {
			members := strings.Join(res.Cycles.GAVs(c), " -> ")
			if _, err := tx.ExecContext(ctx, "INSERT INTO run_cycles (run_id, seq, members) VALUES (?, ?, ?)", run.RunID, i, members); err != nil {
				return fmt.Errorf("failed to insert cycle: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.db.logger.Debug("Stored analysis run", "run", run.RunID, "modules", run.Modules, "edges", run.Edges)
	return run, nil
}

const runColumns = `run_id, root, started_at, duration_ms, descriptors, failed,
	modules, edges, applications, shared, cycles, warnings, declaration_checksum`

// List returns the most recent runs first. limit <= 0 returns all runs.
func (r *RunRepository) List(ctx context.Context, limit int) ([]*Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := r.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get returns the run with the given id, or the unique run whose id starts
// with it. It returns nil, nil when nothing matches.
func (r *RunRepository) Get(ctx context.Context, id string) (*Run, error) {
	rows, err := r.db.conn.QueryContext(ctx, "SELECT "+runColumns+" FROM runs WHERE substr(run_id, 1, ?) = ? ORDER BY started_at DESC LIMIT 2",
		utf8.RuneCountInString(id), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	defer rows.Close()

	var found []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return found[0], nil
	}
	for _, run := range found {
		if run.RunID == id {
			return run, nil
		}
	}
	return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
}

// Modules returns the stored modules of a run in GAV order.
func (r *RunRepository) Modules(ctx context.Context, runID string) ([]ModuleRow, error) {
	rows, err := r.db.conn.QueryContext(ctx, `
		SELECT pom_path, gav, group_id, artifact_id, version, packaging, module_dir, role
		FROM run_modules WHERE run_id = ? ORDER BY gav, pom_path
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	defer rows.Close()

	var out []ModuleRow
	for rows.Next() {
		var m ModuleRow
		var group, version sql.NullString
		if err := rows.Scan(&m.PomPath, &m.GAV, &group, &m.ArtifactID, &version, &m.Packaging, &m.ModuleDir, &m.Role); err != nil {
			return nil, err
		}
		m.GroupID = group.String
		m.Version = version.String
		out = append(out, m)
	}
	return out, rows.Err()
}

// Cycles returns the stored cycle listings of a run in discovery order.
func (r *RunRepository) Cycles(ctx context.Context, runID string) ([]string, error) {
	rows, err := r.db.conn.QueryContext(ctx, "SELECT members FROM run_cycles WHERE run_id = ? ORDER BY seq", runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cycles: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Prune deletes all but the newest keep runs and returns how many were removed.
func (r *RunRepository) Prune(ctx context.Context, keep int) (int64, error) {
	res, err := r.db.conn.ExecContext(ctx, `
		DELETE FROM runs WHERE run_id NOT IN (
			SELECT run_id FROM runs ORDER BY started_at DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of stored runs.
func (r *RunRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var run Run
	var startedAt string
	var checksum sql.NullString
	err := s.Scan(&run.RunID, &run.Root, &startedAt, &run.DurationMs, &run.Descriptors, &run.Failed,
		&run.Modules, &run.Edges, &run.Applications, &run.Shared, &run.Cycles, &run.Warnings, &checksum)
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	run.StartedAt, err = time.Parse(timeLayout, startedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse run timestamp: %w", err)
	}
	run.DeclarationChecksum = checksum.String
	return &run, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
