package journal

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"
)

var orgFuncs = template.FuncMap{
	"money": money,
	"date":  func(t time.Time) string { return t.UTC().Format("2006-01-02") },
	"stamp": func(t time.Time) string { return t.UTC().Format("2006-01-02 Mon 15:04") },
	"trades": func(ts []TradeRecord) string {
		return FormatTradesOrg(ts)
	},
}

var runOrg = template.Must(template.New("run").Funcs(orgFuncs).Parse(RunOrgTemplate))

// FormatRunOrg renders a run with its trades as an org-mode subtree.
func FormatRunOrg(e Entry) (string, error) {
	var buf bytes.Buffer
	if err := runOrg.Execute(&buf, e); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteOrg writes FormatRunOrg(e) to path.
func WriteOrg(path string, e Entry) error {
	s, err := FormatRunOrg(e)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(s), 0o644)
}

const RunOrgTemplate = `* BACKTEST: {{.Run.Strategy}} {{.Run.Symbol}} {{if .Run.Timeframe}}{{.Run.Timeframe}}{{else}}(timeframe?){{end}}
:PROPERTIES:
:RUN_ID:      {{.Run.RunID}}
:STRATEGY:    {{.Run.Strategy}}
:TIMEFRAME:   {{if .Run.Timeframe}}{{.Run.Timeframe}}{{else}}(timeframe?){{end}}
:SYMBOL:      {{.Run.Symbol}}
:START_DATE:  {{date .Run.Start}}
:END_DATE:    {{date .Run.End}}
:BARS:        {{.Run.Bars}}
:START_BAL:   {{money .Run.StartBalance}}
:END_BAL:     {{money .Run.EndBalance}}
:NET_PL:      {{money .Run.NetPL}}
:RETURN_PCT:  {{money .Run.ReturnPct}}
:MAX_DD_PCT:  {{money .Run.MaxDDPct}}
:TRADES:      {{.Run.Trades}}
:WINS:        {{.Run.Wins}}
:LOSSES:      {{.Run.Losses}}
:WIN_RATE:    {{money .Run.WinRate}}
:PROFIT_FAC:  {{money .Run.ProfitFactor}}
:CREATED:     [{{stamp .Run.Created}}]
:END:

** Strategy Parameters
| Parameter | Value |
|-----------+-------|
{{- range $k := .Run.Params.Keys }}
| {{$k}} | {{index $.Run.Params $k}} |
{{- end }}

** Performance Summary
- Net P/L:          *{{money .Run.NetPL}}*
- Return:           *{{money .Run.ReturnPct}}%*
- Max Drawdown:     *{{money .Run.MaxDDPct}}%*
- Win Rate:         *{{money .Run.WinRate}}%*
- Profit Factor:    *{{money .Run.ProfitFactor}}*

** Trade Distribution
| Outcome | Count |
|---------+-------|
| Wins    | {{.Run.Wins}} |
| Losses  | {{.Run.Losses}} |
| Total   | {{.Run.Trades}} |

{{- if .Run.Notes }}

** Observations
{{- range .Run.Notes }}
- {{.}}
{{- end }}
{{- end }}
{{- if .Trades }}

** Trades
{{ trades .Trades }}
{{- end }}
`

// FormatTradeOrg renders a trade as an org-mode block. Structured facts go
// in the PROPERTIES drawer so they stay searchable.
func FormatTradeOrg(t TradeRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*** Trade: %s (%s)\n", t.Symbol, shortID(t.TradeID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":TRADE_ID: %s\n", t.TradeID)
	fmt.Fprintf(&b, ":RUN_ID: %s\n", t.RunID)
	fmt.Fprintf(&b, ":SIDE: %s\n", t.Side)
	fmt.Fprintf(&b, ":UNITS: %s\n", price(t.Units))
	fmt.Fprintf(&b, ":ENTRY_PRICE: %s\n", price(t.EntryPrice))
	fmt.Fprintf(&b, ":EXIT_PRICE: %s\n", price(t.ExitPrice))
	fmt.Fprintf(&b, ":OPEN_TIME: %s\n", t.OpenTime.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":CLOSE_TIME: %s\n", t.CloseTime.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":REALIZED_PL: %s\n", money(t.RealizedPL))
	fmt.Fprintf(&b, ":PROFIT_PCT: %s\n", money(t.ProfitPct))
	fmt.Fprintf(&b, ":REASON: %s\n", t.Reason)
	b.WriteString(":END:\n")
	return b.String()
}

// FormatTradesOrg renders trades separated by blank lines.
func FormatTradesOrg(trades []TradeRecord) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

// shortID keeps the tail of an ID, which for trade IDs is the sequence
// number.
func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[len(full)-8:]
}
