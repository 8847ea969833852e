// Package pgstore provides a PostgreSQL implementation of frame.Store.
package pgstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/defectscope/internal/frame"
)

var tracer = otel.Tracer("github.com/linnemanlabs/defectscope/internal/frame/pgstore")

//go:embed schema.sql
var schema string

var _ frame.Store = (*Store)(nil)

// Store persists frame summaries in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New applies the schema on pool and returns a ready Store. The caller owns the pool.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

const summaryColumns = `id, frame, atoms, counts, duration_s, created_at`

func startSpan(ctx context.Context, name, op string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", op),
	))
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// Get retrieves a frame summary by ID.
func (s *Store) Get(ctx context.Context, id string) (*frame.Summary, bool, error) {
	ctx, span := startSpan(ctx, "pgstore.Get", "SELECT")
	defer span.End()

	query := `SELECT ` + summaryColumns + ` FROM frame_summaries WHERE id = $1`
	sum, err := scanSummary(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fail(span, err)
	}
	return sum, true, nil
}

// Put inserts or replaces a frame summary.
func (s *Store) Put(ctx context.Context, sum *frame.Summary) error {
	ctx, span := startSpan(ctx, "pgstore.Put", "UPSERT")
	defer span.End()

	countsJSON, err := json.Marshal(sum.Counts)
	if err != nil {
		return fail(span, fmt.Errorf("marshal counts: %w", err))
	}

	query := `INSERT INTO frame_summaries (` + summaryColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		frame      = EXCLUDED.frame,
		atoms      = EXCLUDED.atoms,
		counts     = EXCLUDED.counts,
		duration_s = EXCLUDED.duration_s,
		created_at = EXCLUDED.created_at`

	if _, err := s.pool.Exec(ctx, query,
		sum.ID, sum.Frame, sum.Atoms, countsJSON, sum.Duration, sum.CreatedAt,
	); err != nil {
		return fail(span, fmt.Errorf("upsert frame summary: %w", err))
	}
	return nil
}

// List returns up to limit summaries, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]*frame.Summary, error) {
	ctx, span := startSpan(ctx, "pgstore.List", "SELECT")
	defer span.End()

	query := `SELECT ` + summaryColumns + ` FROM frame_summaries ORDER BY created_at DESC, id DESC LIMIT $1`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fail(span, fmt.Errorf("query frame summaries: %w", err))
	}
	defer rows.Close()

	var out []*frame.Summary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, fail(span, err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fail(span, fmt.Errorf("iterate frame summaries: %w", err))
	}
	return out, nil
}

// scanSummary scans one row. pgx.ErrNoRows is returned unwrapped.
func scanSummary(row pgx.Row) (*frame.Summary, error) {
	var (
		sum        frame.Summary
		countsJSON []byte
	)
	if err := row.Scan(&sum.ID, &sum.Frame, &sum.Atoms, &countsJSON, &sum.Duration, &sum.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan: %w", err)
	}
	if err := json.Unmarshal(countsJSON, &sum.Counts); err != nil {
		return nil, fmt.Errorf("unmarshal counts: %w", err)
	}
	return &sum, nil
}
