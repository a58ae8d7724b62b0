package backtest

import (
	"fmt"
	"io"
	"time"
)

const rule = "--------------------------------------------------"

// Print writes a human readable summary of r.
func Print(w io.Writer, r Result) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")

	if r.Symbol != "" {
		fmt.Fprintf(w, "Symbol:        %s\n", r.Symbol)
	}
	fmt.Fprintf(w, "Strategy:      %s\n", r.Strategy)
	if len(r.Params) > 0 {
		fmt.Fprintf(w, "Params:        %s\n", r.Params)
	}
	if r.Timeframe != "" {
		fmt.Fprintf(w, "Timeframe:     %s\n", r.Timeframe)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Period")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Start:         %s\n", r.Start.Format(time.RFC3339))
	fmt.Fprintf(w, "End:           %s\n", r.End.Format(time.RFC3339))
	fmt.Fprintf(w, "Bars:          %d\n", r.Bars)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Trades:        %d\n", r.TotalTrades)
	fmt.Fprintf(w, "Wins:          %d\n", r.WinningTrades)
	fmt.Fprintf(w, "Losses:        %d\n", r.LosingTrades)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", r.WinRate)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Account Performance")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Start Balance: %.2f\n", r.InitialCapital)
	fmt.Fprintf(w, "End Balance:   %.2f\n", r.FinalCapital)
	fmt.Fprintf(w, "Net P/L:       %.2f\n", r.FinalCapital-r.InitialCapital)
	fmt.Fprintf(w, "Return:        %.2f%%\n", r.TotalReturn)
	fmt.Fprintf(w, "Profit Factor: %.2f\n", r.ProfitFactor)
	fmt.Fprintf(w, "Max Drawdown:  %.2f%%\n", r.MaxDrawdown)

	if len(r.Trades) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Trades")
		fmt.Fprintln(w, rule)
		for _, t := range r.Trades {
			fmt.Fprintf(w, "%s  %10.4f -> %10.4f  %+7.2f%%  %4d bars  %s\n",
				t.EntryTime.Format("2006-01-02 15:04"), t.EntryPrice, t.ExitPrice, t.ProfitPercent, t.Duration, t.Reason)
		}
	}

	fmt.Fprintln(w)
}

// PrintOptimization writes the best grid point followed by its backtest.
func PrintOptimization(w io.Writer, o OptimizationResult) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Optimization Result")
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, "Combinations:  %d (%d failed)\n", o.Evaluated, o.Failed)
	fmt.Fprintf(w, "Best Params:   %s\n", o.BestParams)
	fmt.Fprintf(w, "Performance:   %.2f%%\n", o.Performance)
	fmt.Fprintln(w)
	Print(w, o.Result)
}
