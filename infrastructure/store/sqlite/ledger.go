// Package sqlite implements the verdict ledger on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ahrav/go-scrutineer/internal/domain"
	"github.com/ahrav/go-scrutineer/internal/ports"
)

//go:embed schema.sql
var schema string

// Ledger provides SQLite-backed verdict and processed-source persistence.
type Ledger struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens a ledger database and applies the schema.
func Open(path string) (*Ledger, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("ledger path is required")
	}
	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// SQLite admits one writer at a time.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Ledger{sqlDB: sqlDB, now: time.Now}, nil
}

// Close releases the SQLite connection.
func (l *Ledger) Close() error {
	if l == nil || l.sqlDB == nil {
		return nil
	}
	return l.sqlDB.Close()
}

// Record implements ports.Ledger.
func (l *Ledger) Record(ctx context.Context, rec ports.VerdictRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec.RunID = strings.TrimSpace(rec.RunID)
	if rec.RunID == "" {
		return ports.NewStoreError(rec.Source, "Record", fmt.Errorf("run id is required"))
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = l.now()
	}
	reasons := rec.Verdict.Reasons
	if reasons == nil {
		reasons = []domain.Reason{}
	}
	reasonsJSON, err := json.Marshal(reasons)
	if err != nil {
		return ports.NewStoreError(rec.Source, "Record", err)
	}

	_, err = l.sqlDB.ExecContext(ctx, `
INSERT INTO verdicts (
	run_id,
	source,
	competition_key,
	accepted,
	reasons_json,
	recorded_at
) VALUES (?, ?, ?, ?, ?, ?)
`,
		rec.RunID,
		rec.Source,
		rec.CompetitionKey,
		rec.Verdict.Accepted,
		string(reasonsJSON),
		rec.RecordedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return ports.NewStoreError(rec.Source, "Record", err)
	}
	return nil
}

// Verdicts implements ports.Ledger. An unknown run yields no records.
func (l *Ledger) Verdicts(ctx context.Context, runID string) ([]ports.VerdictRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := l.sqlDB.QueryContext(ctx, `
SELECT
	run_id,
	source,
	competition_key,
	accepted,
	reasons_json,
	recorded_at
FROM verdicts
WHERE run_id = ?
ORDER BY id
`, runID)
	if err != nil {
		return nil, ports.NewStoreError(runID, "Verdicts", err)
	}
	defer rows.Close()

	var records []ports.VerdictRecord
	for rows.Next() {
		var (
			rec         ports.VerdictRecord
			reasonsJSON string
			recordedAt  int64
		)
		if err := rows.Scan(
			&rec.RunID,
			&rec.Source,
			&rec.CompetitionKey,
			&rec.Verdict.Accepted,
			&reasonsJSON,
			&recordedAt,
		); err != nil {
			return nil, ports.NewStoreError(runID, "Verdicts", err)
		}
		if err := json.Unmarshal([]byte(reasonsJSON), &rec.Verdict.Reasons); err != nil {
			return nil, ports.NewStoreError(runID, "Verdicts", fmt.Errorf("decode reasons: %w", err))
		}
		if len(rec.Verdict.Reasons) == 0 {
			rec.Verdict.Reasons = nil
		}
		rec.RecordedAt = time.UnixMilli(recordedAt).UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, ports.NewStoreError(runID, "Verdicts", err)
	}
	return records, nil
}

// IsProcessed implements ports.Ledger.
func (l *Ledger) IsProcessed(ctx context.Context, source string) (bool, error) {
	var n int
	err := l.sqlDB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM processed_sources WHERE source = ?`, source).Scan(&n)
	if err != nil {
		return false, ports.NewStoreError(source, "IsProcessed", err)
	}
	return n > 0, nil
}

// MarkProcessed implements ports.Ledger.
func (l *Ledger) MarkProcessed(ctx context.Context, source string) error {
	_, err := l.sqlDB.ExecContext(ctx, `
INSERT INTO processed_sources (source, processed_at) VALUES (?, ?)
ON CONFLICT (source) DO NOTHING
`, source, l.now().UTC().UnixMilli())
	if err != nil {
		return ports.NewStoreError(source, "MarkProcessed", err)
	}
	return nil
}

var _ ports.Ledger = (*Ledger)(nil)
