package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/obelus-labs/veritas/internal/model"
	"github.com/obelus-labs/veritas/internal/scorer"
	"github.com/obelus-labs/veritas/internal/veritaserr"
)

// SQLiteStore is the system-of-record Store backend (§6 default for
// cmd/veritas). Grounded on internal/storage's sqlite user store: same
// connection-pool settings (SQLite serializes writes, so one open
// connection) and the same CREATE TABLE IF NOT EXISTS migration style.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and runs
// migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sources (
		id          TEXT PRIMARY KEY,
		kind        TEXT NOT NULL,
		title       TEXT NOT NULL,
		origin_url  TEXT NOT NULL DEFAULT '',
		ingested_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS claims (
		id                  TEXT PRIMARY KEY,
		source_id           TEXT NOT NULL,
		text                TEXT NOT NULL,
		start_s             REAL NOT NULL,
		end_s               REAL NOT NULL,
		content_hash        TEXT NOT NULL,
		global_hash         TEXT NOT NULL,
		confidence_language TEXT NOT NULL,
		category            TEXT NOT NULL,
		signal_log          TEXT NOT NULL,
		status              TEXT NOT NULL,
		created_at          TEXT NOT NULL,
		UNIQUE(source_id, content_hash)
	);
	CREATE INDEX IF NOT EXISTS idx_claims_global_hash ON claims(global_hash);
	CREATE INDEX IF NOT EXISTS idx_claims_source ON claims(source_id);

	CREATE TABLE IF NOT EXISTS evidence (
		claim_id  TEXT NOT NULL,
		url       TEXT NOT NULL,
		status    TEXT NOT NULL,
		score     REAL NOT NULL,
		payload   TEXT NOT NULL,
		PRIMARY KEY (claim_id, url)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveSource(ctx context.Context, source model.Source) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sources (id, kind, title, origin_url, ingested_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET kind=excluded.kind, title=excluded.title,
			origin_url=excluded.origin_url, ingested_at=excluded.ingested_at
	`, source.ID, string(source.Kind), source.Title, source.OriginURL, source.IngestedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return veritaserr.NewPersistenceError(fmt.Errorf("save source: %w", err))
	}
	return nil
}

func (s *SQLiteStore) GetSource(ctx context.Context, id string) (model.Source, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, kind, title, origin_url, ingested_at FROM sources WHERE id = ?`, id)
	src, err := scanSource(row)
	if err == sql.ErrNoRows {
		return model.Source{}, false, nil
	}
	if err != nil {
		return model.Source{}, false, veritaserr.NewPersistenceError(err)
	}
	return src, true, nil
}

func (s *SQLiteStore) ListSources(ctx context.Context) ([]model.Source, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, kind, title, origin_url, ingested_at FROM sources ORDER BY id`)
	if err != nil {
		return nil, veritaserr.NewPersistenceError(err)
	}
	defer rows.Close()

	var out []model.Source
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, veritaserr.NewPersistenceError(err)
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSource(r rowScanner) (model.Source, error) {
	var src model.Source
	var kind, ingestedAt string
	if err := r.Scan(&src.ID, &kind, &src.Title, &src.OriginURL, &ingestedAt); err != nil {
		return model.Source{}, err
	}
	src.Kind = model.SourceKind(kind)
	t, err := time.Parse(time.RFC3339Nano, ingestedAt)
	if err != nil {
		return model.Source{}, err
	}
	src.IngestedAt = t
	return src, nil
}

func (s *SQLiteStore) SaveClaim(ctx context.Context, claim model.Claim) error {
	signalLog, err := json.Marshal(claim.SignalLog)
	if err != nil {
		return veritaserr.NewPersistenceError(err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO claims (id, source_id, text, start_s, end_s, content_hash, global_hash,
			confidence_language, category, signal_log, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, claim.ID, claim.SourceID, claim.Text, claim.StartS, claim.EndS, claim.ContentHash, claim.GlobalHash,
		string(claim.ConfidenceLanguage), string(claim.Category), string(signalLog), string(claim.Status),
		claim.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		if isUniqueViolation(err) {
			return veritaserr.NewPersistenceError(fmt.Errorf("duplicate claim for source %q content_hash %q: %w", claim.SourceID, claim.ContentHash, err))
		}
		return veritaserr.NewPersistenceError(err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (s *SQLiteStore) GetClaim(ctx context.Context, id string) (model.Claim, bool, error) {
	row := s.db.QueryRowContext(ctx, claimSelectColumns+` FROM claims WHERE id = ?`, id)
	c, err := scanClaim(row)
	if err == sql.ErrNoRows {
		return model.Claim{}, false, nil
	}
	if err != nil {
		return model.Claim{}, false, veritaserr.NewPersistenceError(err)
	}
	return c, true, nil
}

func (s *SQLiteStore) ListClaimsBySource(ctx context.Context, sourceID string) ([]model.Claim, error) {
	rows, err := s.db.QueryContext(ctx, claimSelectColumns+` FROM claims WHERE source_id = ? ORDER BY id`, sourceID)
	if err != nil {
		return nil, veritaserr.NewPersistenceError(err)
	}
	defer rows.Close()
	return scanClaims(rows)
}

func (s *SQLiteStore) ListClaims(ctx context.Context) ([]model.Claim, error) {
	rows, err := s.db.QueryContext(ctx, claimSelectColumns+` FROM claims ORDER BY id`)
	if err != nil {
		return nil, veritaserr.NewPersistenceError(err)
	}
	defer rows.Close()
	return scanClaims(rows)
}

const claimSelectColumns = `SELECT id, source_id, text, start_s, end_s, content_hash, global_hash,
	confidence_language, category, signal_log, status, created_at`

func scanClaims(rows *sql.Rows) ([]model.Claim, error) {
	var out []model.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, veritaserr.NewPersistenceError(err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanClaim(r rowScanner) (model.Claim, error) {
	var c model.Claim
	var confidence, category, status, signalLog, createdAt string
	if err := r.Scan(&c.ID, &c.SourceID, &c.Text, &c.StartS, &c.EndS, &c.ContentHash, &c.GlobalHash,
		&confidence, &category, &signalLog, &status, &createdAt); err != nil {
		return model.Claim{}, err
	}
	c.ConfidenceLanguage = model.ConfidenceLanguage(confidence)
	c.Category = model.Category(category)
	c.Status = model.Status(status)
	if err := json.Unmarshal([]byte(signalLog), &c.SignalLog); err != nil {
		return model.Claim{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return model.Claim{}, err
	}
	c.CreatedAt = t
	return c, nil
}

// SaveEvidence inserts the evidence row and recomputes the claim's status
// within one transaction, per the §6 atomicity requirement.
func (s *SQLiteStore) SaveEvidence(ctx context.Context, ev model.ScoredEvidence, status model.Status) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return veritaserr.NewPersistenceError(err)
	}
	defer tx.Rollback()

	payload, err := json.Marshal(ev)
	if err != nil {
		return veritaserr.NewPersistenceError(err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO evidence (claim_id, url, status, score, payload) VALUES (?, ?, ?, ?, ?)
	`, ev.ClaimID, ev.Candidate.URL, string(status), ev.Score, string(payload))
	if err != nil {
		if isUniqueViolation(err) {
			return veritaserr.NewPersistenceError(fmt.Errorf("duplicate evidence for claim %q url %q: %w", ev.ClaimID, ev.Candidate.URL, err))
		}
		return veritaserr.NewPersistenceError(err)
	}

	rows, err := tx.QueryContext(ctx, `SELECT status FROM evidence WHERE claim_id = ?`, ev.ClaimID)
	if err != nil {
		return veritaserr.NewPersistenceError(err)
	}
	var statuses []model.Status
	for rows.Next() {
		var st string
		if err := rows.Scan(&st); err != nil {
			rows.Close()
			return veritaserr.NewPersistenceError(err)
		}
		statuses = append(statuses, model.Status(st))
	}
	rows.Close()

	aggregate := scorer.AggregateStatus(statuses)
	if _, err := tx.ExecContext(ctx, `UPDATE claims SET status = ? WHERE id = ?`, string(aggregate), ev.ClaimID); err != nil {
		return veritaserr.NewPersistenceError(err)
	}

	if err := tx.Commit(); err != nil {
		return veritaserr.NewPersistenceError(err)
	}
	return nil
}

func (s *SQLiteStore) ListEvidence(ctx context.Context, claimID string) ([]model.ScoredEvidence, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM evidence WHERE claim_id = ? ORDER BY url`, claimID)
	if err != nil {
		return nil, veritaserr.NewPersistenceError(err)
	}
	defer rows.Close()

	var out []model.ScoredEvidence
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, veritaserr.NewPersistenceError(err)
		}
		var ev model.ScoredEvidence
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			return nil, veritaserr.NewPersistenceError(err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
