package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
	now func() time.Time
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode lets the dashboard read while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log, now: time.Now}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			symbol         TEXT,
			last_date      TEXT,
			signal         TEXT,
			close          REAL,
			sma_short      REAL,
			sma_long       REAL,
			multiple       REAL,
			score          INTEGER,
			lower_quantile REAL,
			upper_quantile REAL,
			trade_count    INTEGER,
			notified       INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS trade_events (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id   INTEGER NOT NULL REFERENCES runs(id),
			date     TEXT NOT NULL,
			signal   TEXT NOT NULL,
			close    REAL,
			multiple REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trade_events_run ON trade_events(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(rec *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	row := rec.Latest
	var score sql.NullInt64
	if row.Score != nil {
		score = sql.NullInt64{Int64: int64(*row.Score), Valid: true}
	}
	res, err := tx.Exec(`INSERT INTO runs
		(timestamp, symbol, last_date, signal, close, sma_short, sma_long, multiple,
		 score, lower_quantile, upper_quantile, trade_count, notified)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		r.now().Unix(), rec.Symbol, row.Date.Format("2006-01-02"), string(row.Signal),
		row.Close, row.SMAShort, row.SMALong, row.Multiple,
		score, row.LowerQuantile, row.UpperQuantile, len(rec.Trades), rec.Notified,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}

	for _, ev := range rec.Trades {
		if _, err := tx.Exec(`INSERT INTO trade_events (run_id, date, signal, close, multiple)
			VALUES (?,?,?,?,?)`,
			runID, ev.Date.Format("2006-01-02"), string(ev.Signal), ev.Close, ev.Multiple,
		); err != nil {
			return fmt.Errorf("insert trade event: %w", err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
