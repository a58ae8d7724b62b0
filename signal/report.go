package signal

import (
	"fmt"
	"io"
	"time"
)

// Print writes one signal with its reasons in the order they were added.
func Print(w io.Writer, s TradingSignal) {
	fmt.Fprintf(w, "%-10s %-7s conf=%.2f  price=%.6g  24h=%+.2f%%  %s\n",
		s.Symbol, s.Direction, s.Confidence, s.Price, s.PriceChangePercent24h, s.Time.Format(time.RFC3339))
	for _, r := range s.Reasons {
		fmt.Fprintf(w, "    - %s\n", r)
	}
}

// PrintSignals writes the buy list followed by the sell list.
func PrintSignals(w io.Writer, sigs Signals) {
	fmt.Fprintf(w, "Buy signals: %d\n", len(sigs.Buy))
	for _, s := range sigs.Buy {
		Print(w, s)
	}
	fmt.Fprintf(w, "\nSell signals: %d\n", len(sigs.Sell))
	for _, s := range sigs.Sell {
		Print(w, s)
	}
}
