package storage

// sqlite.go: histórico de backtests.
//
// Estrategia:
//   - `runs`: una fila por run con parámetros del modelo, config y métricas.
//   - `trades`: trade log completo de cada run.
//   - `equity`: equity curve diaria de cada run.
//   - Valores indefinidos (half-life, Sharpe, Sortino, mu con phi=1) se
//     guardan como NULL, nunca como 0.
//   - Prune opcional de runs antiguos junto con sus trades y equity.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/k9kanishk/gas-spread-arb/internal/domain"
	_ "modernc.org/sqlite"
)

var (
	ErrRunNotFound    = errors.New("run not found")
	ErrAmbiguousRunID = errors.New("run id prefix matches more than one run")
)

const schema = `
-- Un run = un spread con una config
CREATE TABLE IF NOT EXISTS runs (
    id              TEXT PRIMARY KEY,
    spread          TEXT    NOT NULL,
    ran_at          TEXT    NOT NULL,
    series_from     TEXT,
    series_to       TEXT,
    z_mode          TEXT    NOT NULL,
    enter_threshold REAL    NOT NULL,
    exit_threshold  REAL    NOT NULL,
    entry_cost      REAL    NOT NULL,
    exit_cost       REAL    NOT NULL,
    intercept       REAL,
    phi             REAL,
    mu              REAL,
    sigma           REAL,
    half_life       REAL,
    fit_pairs       INTEGER NOT NULL DEFAULT 0,
    non_stationary  INTEGER NOT NULL DEFAULT 0,
    total_pnl       REAL    NOT NULL DEFAULT 0,
    num_trades      INTEGER NOT NULL DEFAULT 0,
    win_ratio       REAL    NOT NULL DEFAULT 0,
    avg_trade_pnl   REAL,
    max_drawdown    REAL    NOT NULL DEFAULT 0,
    sharpe          REAL,
    sortino         REAL
);

CREATE TABLE IF NOT EXISTS trades (
    run_id       TEXT    NOT NULL,
    seq          INTEGER NOT NULL,
    direction    TEXT    NOT NULL,
    entry_date   TEXT    NOT NULL,
    exit_date    TEXT    NOT NULL,
    entry_value  REAL    NOT NULL,
    exit_value   REAL    NOT NULL,
    gross_pnl    REAL    NOT NULL,
    costs        REAL    NOT NULL,
    net_pnl      REAL    NOT NULL,
    holding_bars INTEGER NOT NULL,
    forced_close INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (run_id, seq)
);

CREATE TABLE IF NOT EXISTS equity (
    run_id         TEXT NOT NULL,
    date           TEXT NOT NULL,
    value          REAL NOT NULL,
    position       TEXT NOT NULL,
    mark_to_market REAL NOT NULL,
    costs          REAL NOT NULL,
    cumulative_pnl REAL NOT NULL,
    PRIMARY KEY (run_id, date)
);

CREATE INDEX IF NOT EXISTS idx_runs_at     ON runs(ran_at DESC);
CREATE INDEX IF NOT EXISTS idx_runs_spread ON runs(spread);
`

// ranAtLayout es de ancho fijo para que BETWEEN compare por orden lexicográfico.
const ranAtLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStorage implementa ports.RunStorage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada y aplica el schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

// SaveRun persiste el run, su trade log y su equity curve en una sola transacción.
// Guardar dos veces el mismo ID reemplaza el run anterior.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run domain.RunResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM trades WHERE run_id = ?`,
		`DELETE FROM equity WHERE run_id = ?`,
		`DELETE FROM runs WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, run.ID); err != nil {
			return fmt.Errorf("storage.SaveRun: replace %s: %w", run.ID, err)
		}
	}

	sum := run.Summary()
	p, m, cfg := run.Params, run.Metrics, run.Config
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs
			(id, spread, ran_at, series_from, series_to, z_mode,
			 enter_threshold, exit_threshold, entry_cost, exit_cost,
			 intercept, phi, mu, sigma, half_life, fit_pairs, non_stationary,
			 total_pnl, num_trades, win_ratio, avg_trade_pnl, max_drawdown, sharpe, sortino)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Spread, run.RanAt.UTC().Format(ranAtLayout),
		dateOrNull(sum.SeriesFrom), dateOrNull(sum.SeriesTo), string(cfg.Score.Mode),
		cfg.Signal.EnterThreshold, cfg.Signal.ExitThreshold, cfg.Costs.EntryCost, cfg.Costs.ExitCost,
		finiteOrNull(p.Intercept), finiteOrNull(p.Phi), finiteOrNull(p.Mu), finiteOrNull(p.Sigma),
		optionalOrNull(p.HalfLife), p.Pairs, boolInt(p.Warning != nil),
		m.TotalPnL, m.NumTrades, m.WinRatio, optionalOrNull(m.AvgTradePnL), m.MaxDrawdown,
		optionalOrNull(m.Sharpe), optionalOrNull(m.Sortino),
	); err != nil {
		return fmt.Errorf("storage.SaveRun: insert run %s: %w", run.ID, err)
	}

	if err := insertTrades(ctx, tx, run.ID, run.Backtest.Trades); err != nil {
		return err
	}
	if err := insertEquity(ctx, tx, run.ID, run.Backtest.Equity); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveRun: commit: %w", err)
	}
	return nil
}

func insertTrades(ctx context.Context, tx *sql.Tx, runID string, trades []domain.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trades
			(run_id, seq, direction, entry_date, exit_date, entry_value, exit_value,
			 gross_pnl, costs, net_pnl, holding_bars, forced_close)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: prepare trades: %w", err)
	}
	defer stmt.Close()

	for i, t := range trades {
		if _, err := stmt.ExecContext(ctx,
			runID, i, string(t.Direction),
			t.EntryDate.Format(domain.DateLayout), t.ExitDate.Format(domain.DateLayout),
			t.EntryValue, t.ExitValue, t.GrossPnL, t.Costs, t.NetPnL,
			t.HoldingBars, boolInt(t.ForcedClose),
		); err != nil {
			return fmt.Errorf("storage.SaveRun: insert trade %d: %w", i, err)
		}
	}
	return nil
}

func insertEquity(ctx context.Context, tx *sql.Tx, runID string, equity []domain.EquityPoint) error {
	if len(equity) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO equity
			(run_id, date, value, position, mark_to_market, costs, cumulative_pnl)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: prepare equity: %w", err)
	}
	defer stmt.Close()

	for _, p := range equity {
		if _, err := stmt.ExecContext(ctx,
			runID, p.Date.Format(domain.DateLayout), p.Value, string(p.Position),
			p.MarkToMarket, p.Costs, p.CumulativePnL,
		); err != nil {
			return fmt.Errorf("storage.SaveRun: insert equity %s: %w", p.Date.Format(domain.DateLayout), err)
		}
	}
	return nil
}

// GetRuns devuelve los runs con ran_at en el rango dado, los más recientes primero.
func (s *SQLiteStorage) GetRuns(ctx context.Context, from, to time.Time) ([]domain.RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, spread, ran_at, series_from, series_to,
		       phi, mu, sigma, half_life,
		       total_pnl, num_trades, win_ratio, avg_trade_pnl, max_drawdown, sharpe, sortino
		FROM runs
		WHERE ran_at BETWEEN ? AND ?
		ORDER BY ran_at DESC, spread
	`, from.UTC().Format(ranAtLayout), to.UTC().Format(ranAtLayout))
	if err != nil {
		return nil, fmt.Errorf("storage.GetRuns: query: %w", err)
	}
	defer rows.Close()

	var out []domain.RunSummary
	for rows.Next() {
		var r domain.RunSummary
		var ranAt string
		var seriesFrom, seriesTo sql.NullString
		var phi, mu, sigma, halfLife, avg, sharpe, sortino sql.NullFloat64

		if err := rows.Scan(
			&r.ID, &r.Spread, &ranAt, &seriesFrom, &seriesTo,
			&phi, &mu, &sigma, &halfLife,
			&r.Metrics.TotalPnL, &r.Metrics.NumTrades, &r.Metrics.WinRatio, &avg,
			&r.Metrics.MaxDrawdown, &sharpe, &sortino,
		); err != nil {
			return nil, fmt.Errorf("storage.GetRuns: scan row: %w", err)
		}

		if r.RanAt, err = time.Parse(ranAtLayout, ranAt); err != nil {
			return nil, fmt.Errorf("storage.GetRuns: run %s: ran_at: %w", r.ID, err)
		}
		if r.SeriesFrom, err = parseDate(seriesFrom); err != nil {
			return nil, fmt.Errorf("storage.GetRuns: run %s: series_from: %w", r.ID, err)
		}
		if r.SeriesTo, err = parseDate(seriesTo); err != nil {
			return nil, fmt.Errorf("storage.GetRuns: run %s: series_to: %w", r.ID, err)
		}
		r.Phi = nullToNaN(phi)
		r.Mu = nullToNaN(mu)
		r.Sigma = nullToNaN(sigma)
		r.HalfLife = nullToOptional(halfLife)
		r.Metrics.AvgTradePnL = nullToOptional(avg)
		r.Metrics.Sharpe = nullToOptional(sharpe)
		r.Metrics.Sortino = nullToOptional(sortino)
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetTrades devuelve el trade log de un run en orden de entrada.
func (s *SQLiteStorage) GetTrades(ctx context.Context, runID string) ([]domain.Trade, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT direction, entry_date, exit_date, entry_value, exit_value,
		       gross_pnl, costs, net_pnl, holding_bars, forced_close
		FROM trades
		WHERE run_id = ?
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("storage.GetTrades: query: %w", err)
	}
	defer rows.Close()

	var out []domain.Trade
	for rows.Next() {
		var t domain.Trade
		var dir, entry, exit string
		var forced int
		if err := rows.Scan(&dir, &entry, &exit, &t.EntryValue, &t.ExitValue,
			&t.GrossPnL, &t.Costs, &t.NetPnL, &t.HoldingBars, &forced); err != nil {
			return nil, fmt.Errorf("storage.GetTrades: scan row: %w", err)
		}
		t.Direction = domain.PositionStatus(dir)
		if t.EntryDate, err = time.Parse(domain.DateLayout, entry); err != nil {
			return nil, fmt.Errorf("storage.GetTrades: entry_date: %w", err)
		}
		if t.ExitDate, err = time.Parse(domain.DateLayout, exit); err != nil {
			return nil, fmt.Errorf("storage.GetTrades: exit_date: %w", err)
		}
		t.ForcedClose = forced == 1
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetEquity devuelve la equity curve de un run en orden de fecha.
func (s *SQLiteStorage) GetEquity(ctx context.Context, runID string) ([]domain.EquityPoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, value, position, mark_to_market, costs, cumulative_pnl
		FROM equity
		WHERE run_id = ?
		ORDER BY date
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("storage.GetEquity: query: %w", err)
	}
	defer rows.Close()

	var out []domain.EquityPoint
	for rows.Next() {
		var p domain.EquityPoint
		var date, pos string
		if err := rows.Scan(&date, &p.Value, &pos, &p.MarkToMarket, &p.Costs, &p.CumulativePnL); err != nil {
			return nil, fmt.Errorf("storage.GetEquity: scan row: %w", err)
		}
		if p.Date, err = time.Parse(domain.DateLayout, date); err != nil {
			return nil, fmt.Errorf("storage.GetEquity: date: %w", err)
		}
		p.Position = domain.PositionStatus(pos)
		out = append(out, p)
	}
	return out, rows.Err()
}

// ResolveRunID devuelve el id completo del run cuyo id empieza por prefix.
// Acepta el id corto que imprime el histórico. Sin coincidencias devuelve
// ErrRunNotFound; con más de una, ErrAmbiguousRunID.
func (s *SQLiteStorage) ResolveRunID(ctx context.Context, prefix string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("storage.ResolveRunID: empty id: %w", ErrRunNotFound)
	}
	pattern := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM runs WHERE id LIKE ? ESCAPE '\' ORDER BY id LIMIT 2`, pattern)
	if err != nil {
		return "", fmt.Errorf("storage.ResolveRunID: query: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("storage.ResolveRunID: scan row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("storage.ResolveRunID: %w", err)
	}

	switch {
	case len(ids) == 0:
		return "", fmt.Errorf("storage.ResolveRunID: %q: %w", prefix, ErrRunNotFound)
	case len(ids) > 1 && ids[0] != prefix:
		return "", fmt.Errorf("storage.ResolveRunID: %q: %w", prefix, ErrAmbiguousRunID)
	}
	return ids[0], nil
}

// Prune elimina runs (y sus trades y equity) anteriores a olderThan.
// Devuelve cuántos runs se borraron.
func (s *SQLiteStorage) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	cutoff := olderThan.UTC().Format(ranAtLayout)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("storage.Prune: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM trades WHERE run_id IN (SELECT id FROM runs WHERE ran_at < ?)`,
		`DELETE FROM equity WHERE run_id IN (SELECT id FROM runs WHERE ran_at < ?)`,
	} {
		if _, err := tx.ExecContext(ctx, q, cutoff); err != nil {
			return 0, fmt.Errorf("storage.Prune: %w", err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE ran_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("storage.Prune: %w", err)
	}
	n, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage.Prune: commit: %w", err)
	}
	return n, nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// finiteOrNull evita que NaN o ±Inf lleguen a la DB.
func finiteOrNull(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func optionalOrNull(o domain.Optional) any {
	if !o.Valid {
		return nil
	}
	return finiteOrNull(o.Value)
}

func dateOrNull(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(domain.DateLayout)
}

func parseDate(s sql.NullString) (time.Time, error) {
	if !s.Valid {
		return time.Time{}, nil
	}
	return time.Parse(domain.DateLayout, s.String)
}

func nullToNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func nullToOptional(v sql.NullFloat64) domain.Optional {
	if !v.Valid {
		return domain.None()
	}
	return domain.Some(v.Float64)
}
