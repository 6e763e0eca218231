package notify

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/k9kanishk/gas-spread-arb/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.Reporter.
type Console struct {
	out    io.Writer
	table  bool
	trades bool
}

// NewConsole crea un reporter que escribe a stdout.
func NewConsole(table, trades bool) *Console {
	return &Console{out: os.Stdout, table: table, trades: trades}
}

// NewConsoleWriter crea un reporter para tests.
func NewConsoleWriter(w io.Writer, table, trades bool) *Console {
	return &Console{out: w, table: table, trades: trades}
}

// Report imprime el resultado de cada spread en el modo configurado.
func (c *Console) Report(_ context.Context, outcomes []domain.RunOutcome) error {
	if len(outcomes) == 0 {
		fmt.Fprintf(c.out, "[%s] no spreads to report\n", time.Now().Format("15:04:05"))
		return nil
	}

	var ok []domain.RunResult
	var failed []domain.RunOutcome
	for _, o := range outcomes {
		if o.Err != nil || o.Result == nil {
			failed = append(failed, o)
			continue
		}
		ok = append(ok, *o.Result)
	}

	if c.table {
		if err := c.printFull(ok); err != nil {
			return err
		}
	} else {
		c.printCompact(ok)
	}

	c.printFailures(failed)
	return nil
}

// printCompact imprime una línea por spread.
func (c *Console) printCompact(runs []domain.RunResult) {
	now := time.Now().Format("15:04:05")
	for _, r := range runs {
		m := r.Metrics
		fmt.Fprintf(c.out, "[%s] %s phi=%.4f hl=%s pnl=%.2f trades=%d win=%.0f%% sharpe=%s\n",
			now, r.Spread, r.Params.Phi, r.Params.HalfLife.Format("%.1fd"),
			m.TotalPnL, m.NumTrades, m.WinRatio*100, m.Sharpe.Format("%.2f"))
	}
}

// printFull imprime parámetros, métricas y (opcional) el trade log.
func (c *Console) printFull(runs []domain.RunResult) error {
	if len(runs) == 0 {
		return nil
	}

	fmt.Fprintf(c.out, "\n╔══════════════════════════════════════════════════════════════════╗\n")
	fmt.Fprintf(c.out, "║  AR(1) MEAN REVERSION BACKTEST — %-32s║\n", spreadNames(runs))
	fmt.Fprintf(c.out, "╚══════════════════════════════════════════════════════════════════╝\n\n")

	if err := c.printParams(runs); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "  phi = persistencia AR(1) | mu = media de largo plazo | HL = half-life en días")
	fmt.Fprintln(c.out)

	if err := c.printMetrics(runs); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "  P&L en EUR/MWh por unidad de spread | Sharpe/Sortino anualizados")

	for _, r := range runs {
		if r.Params.Warning != nil {
			fmt.Fprintf(c.out, "  [!] %s: %s\n", r.Spread, r.Params.Warning)
		}
	}

	if c.trades {
		for _, r := range runs {
			if err := c.PrintTrades(r.Spread, r.Backtest.Trades); err != nil {
				return err
			}
		}
	}
	fmt.Fprintln(c.out)
	return nil
}

func (c *Console) printParams(runs []domain.RunResult) error {
	table := tablewriter.NewWriter(c.out)
	table.Header("Spread", "Fit", "Pairs", "c", "phi", "mu", "sigma", "HL (d)")

	for _, r := range runs {
		p := r.Params
		if err := table.Append(
			r.Spread,
			fmt.Sprintf("%s → %s", p.FitStart.Format(domain.DateLayout), p.FitEnd.Format(domain.DateLayout)),
			fmt.Sprintf("%d", p.Pairs),
			fmt.Sprintf("%.4f", p.Intercept),
			fmt.Sprintf("%.4f", p.Phi),
			formatFloat(p.Mu, "%.4f"),
			fmt.Sprintf("%.4f", p.Sigma),
			p.HalfLife.Format("%.1f"),
		); err != nil {
			return fmt.Errorf("notify.printParams: %w", err)
		}
	}
	return table.Render()
}

func (c *Console) printMetrics(runs []domain.RunResult) error {
	table := tablewriter.NewWriter(c.out)
	table.Header("Spread", "Total P&L", "Trades", "Win %", "Avg trade", "Max DD", "Sharpe", "Sortino")

	for _, r := range runs {
		m := r.Metrics
		if err := table.Append(
			r.Spread,
			fmt.Sprintf("%.2f", m.TotalPnL),
			fmt.Sprintf("%d", m.NumTrades),
			fmt.Sprintf("%.1f", m.WinRatio*100),
			m.AvgTradePnL.Format("%.2f"),
			fmt.Sprintf("%.2f", m.MaxDrawdown),
			m.Sharpe.Format("%.2f"),
			m.Sortino.Format("%.2f"),
		); err != nil {
			return fmt.Errorf("notify.printMetrics: %w", err)
		}
	}
	return table.Render()
}

// PrintTrades imprime el trade log de un spread.
func (c *Console) PrintTrades(spread string, trades []domain.Trade) error {
	fmt.Fprintf(c.out, "\n  Trade log — %s (%d trades)\n", spread, len(trades))
	if len(trades) == 0 {
		fmt.Fprintln(c.out, "  (sin trades)")
		return nil
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Dir", "Entry", "Exit", "Bars", "Entry val", "Exit val", "Gross", "Costs", "Net")
	for i, t := range trades {
		exit := t.ExitDate.Format(domain.DateLayout)
		if t.ForcedClose {
			exit += "*"
		}
		if err := table.Append(
			fmt.Sprintf("%d", i+1),
			string(t.Direction),
			t.EntryDate.Format(domain.DateLayout),
			exit,
			fmt.Sprintf("%d", t.HoldingBars),
			fmt.Sprintf("%.2f", t.EntryValue),
			fmt.Sprintf("%.2f", t.ExitValue),
			fmt.Sprintf("%.2f", t.GrossPnL),
			fmt.Sprintf("%.2f", t.Costs),
			fmt.Sprintf("%.2f", t.NetPnL),
		); err != nil {
			return fmt.Errorf("notify.PrintTrades: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("notify.PrintTrades: %w", err)
	}
	fmt.Fprintln(c.out, "  * = cerrado al final de la serie")
	return nil
}

func (c *Console) printFailures(failed []domain.RunOutcome) {
	for _, o := range failed {
		err := o.Err
		if err == nil {
			err = fmt.Errorf("no result")
		}
		fmt.Fprintf(c.out, "  [x] %s: %v\n", o.Spread, err)
	}
}

// PrintHistory imprime los runs guardados, los más recientes primero.
func (c *Console) PrintHistory(runs []domain.RunSummary) error {
	if len(runs) == 0 {
		fmt.Fprintln(c.out, "\n  No stored runs in range.")
		return nil
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Ran at", "Spread", "Series", "phi", "HL (d)", "P&L", "Trades", "Win %", "Sharpe", "Run")
	for _, r := range runs {
		if err := table.Append(
			r.RanAt.Local().Format("2006-01-02 15:04"),
			r.Spread,
			fmt.Sprintf("%s → %s", r.SeriesFrom.Format(domain.DateLayout), r.SeriesTo.Format(domain.DateLayout)),
			formatFloat(r.Phi, "%.4f"),
			r.HalfLife.Format("%.1f"),
			fmt.Sprintf("%.2f", r.Metrics.TotalPnL),
			fmt.Sprintf("%d", r.Metrics.NumTrades),
			fmt.Sprintf("%.1f", r.Metrics.WinRatio*100),
			r.Metrics.Sharpe.Format("%.2f"),
			shortID(r.ID),
		); err != nil {
			return fmt.Errorf("notify.PrintHistory: %w", err)
		}
	}
	return table.Render()
}

// --- helpers ---

func spreadNames(runs []domain.RunResult) string {
	names := make([]string, len(runs))
	for i, r := range runs {
		names[i] = r.Spread
	}
	return truncate(strings.Join(names, ", "), 32)
}

// formatFloat muestra N/A para NaN (p.ej. mu con phi = 1).
func formatFloat(v float64, verb string) string {
	if math.IsNaN(v) {
		return "N/A"
	}
	return fmt.Sprintf(verb, v)
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
