package journal

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"
)

var backtestOrgFuncs = template.FuncMap{
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
	"orUnknown": func(s string) string {
		if s == "" {
			return "(unknown)"
		}
		return s
	},
}

var backtestOrg = template.Must(template.New("backtest").Funcs(backtestOrgFuncs).Parse(BacktestOrgTemplate))

// FormatBacktestOrg renders a run as an Org-mode heading with a properties
// drawer and summary tables.
func FormatBacktestOrg(r BacktestRun) (string, error) {
	buf := new(bytes.Buffer)
	if err := backtestOrg.Execute(buf, r); err != nil {
		return "", fmt.Errorf("org template: %w", err)
	}
	return buf.String(), nil
}

// WriteBacktestOrg writes the Org block of r to r.OrgPath.
func (r BacktestRun) WriteBacktestOrg() error {
	if r.OrgPath == "" {
		return fmt.Errorf("run %s: no org path", r.RunID)
	}
	s, err := FormatBacktestOrg(r)
	if err != nil {
		return err
	}
	return os.WriteFile(r.OrgPath, []byte(s), 0o644)
}

const BacktestOrgTemplate = `
* BACKTEST: {{orUnknown .Pair}} {{orUnknown .Timeframe}}
:PROPERTIES:
:RUN_ID:        {{orUnknown .RunID}}
:PAIR:          {{orUnknown .Pair}}
:TIMEFRAME:     {{orUnknown .Timeframe}}
:SOURCE:        {{orUnknown .Source}}
:START_DATE:    {{.Start.UTC.Format "2006-01-02 15:04"}}
:END_DATE:      {{.End.UTC.Format "2006-01-02 15:04"}}
:CANDLES:       {{.Candles}}
:FOUND:         {{.Found}}
{{- if .Found}}
:STRATEGY:      {{.Strategy}}
:SIGNAL_COLUMN: {{.SignalColumn}}
:WMA_COLUMN:    {{.WMAColumn}}
:PERIOD:        {{.Period}}
{{- end}}
:PROFIT_QUOTE:  {{printf "%.6f" .ProfitQuote}}
:PROFIT_BASE:   {{printf "%.6f" .ProfitBase}}
:TRADES:        {{.Trades}}
:CREATED:       [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Sweep
| Evaluated | Recorded | Skipped |
|-----------+----------+---------|
| {{.Evaluated}} | {{.Recorded}} | {{.Skipped}} |

** Account
| Parameter | Value |
|-----------+-------|
| Capital   | {{printf "%.2f" .Capital}} |
| Units     | {{printf "%.4f" .Units}} |

** Performance Summary
- Profit (quote):   *{{printf "%.6f" .ProfitQuote}}*
- Profit (base):    *{{printf "%.6f" .ProfitBase}}*
- Final net asset:  *{{printf "%.6f" .FinalQuote}}*
- Max Drawdown:     *{{printf "%.6f" .MaxDrawdown}}*
- Win Rate:         *{{printf "%.2f" .WinRate}}%*

** Trade Distribution
| Outcome | Count |
|---------+-------|
| Wins    | {{.Wins}} |
| Losses  | {{.Losses}} |
| Total   | {{.Trades}} |

{{- if .Notes }}
** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`

// FormatTradeOrg renders one position change as an Org list heading.
func FormatTradeOrg(l LedgerRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*** %s %s @ %.6f\n", l.Time.UTC().Format(time.RFC3339), l.Event, l.Price)
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":RUN_ID: %s\n", l.RunID)
	fmt.Fprintf(&b, ":SEQ: %d\n", l.Seq)
	fmt.Fprintf(&b, ":POSITION: %s\n", l.Position)
	fmt.Fprintf(&b, ":HOLDINGS: %.6f\n", l.Holdings)
	fmt.Fprintf(&b, ":QUOTE_NET_ASSET: %.6f\n", l.QuoteNetAsset)
	b.WriteString(":END:\n")
	return b.String()
}

// FormatTradesOrg renders the rows that changed the position, separated by
// blank lines.
func FormatTradesOrg(rows []LedgerRow) string {
	var b strings.Builder
	n := 0
	for _, l := range rows {
		if l.Event == "" {
			continue
		}
		if n > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatTradeOrg(l))
		n++
	}
	return b.String()
}
