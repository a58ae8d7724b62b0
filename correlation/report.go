package correlation

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Print writes the matrix as an aligned table followed by the significant
// pairs at threshold.
func Print(w io.Writer, m Matrix, threshold float64) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\t%s\t\n", strings.Join(m.Symbols, "\t"))
	for i, s := range m.Symbols {
		cells := make([]string, len(m.Symbols))
		for j := range m.Symbols {
			cells[j] = fmt.Sprintf("%.3f", m.Values[i][j])
		}
		fmt.Fprintf(tw, "%s\t%s\t\n", s, strings.Join(cells, "\t"))
	}
	_ = tw.Flush()

	pairs := m.SignificantPairs(threshold)
	fmt.Fprintf(w, "\nSignificant pairs: %d\n", len(pairs))
	for _, p := range pairs {
		fmt.Fprintf(w, "  %-10s %-10s %+.3f  %s\n", p.A, p.B, p.Correlation, p.Strength)
	}
}

// PrintSignals writes one line per divergent pair.
func PrintSignals(w io.Writer, signals []PairSignal) {
	fmt.Fprintf(w, "Divergent pairs: %d\n", len(signals))
	for _, s := range signals {
		fmt.Fprintf(w, "  %-10s %-10s z=%+.2f  %s\n", s.A, s.B, s.ZScore, s.Action)
	}
}
