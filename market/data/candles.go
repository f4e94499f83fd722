package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/rustyeddy/swapbot/market"
)

// WriteCandles writes cs as CSV: time, every mid/bid/ask column, the HA
// columns when cs carries them, and the trade count. Undefined values are
// written as empty fields.
func WriteCandles(w io.Writer, cs *market.CandleSet) error {
	cols := candleColumns(cs.HeikinAshi)

	cw := csv.NewWriter(w)
	header := make([]string, 0, len(cols)+2)
	header = append(header, "time")
	for _, c := range cols {
		header = append(header, c.String())
	}
	header = append(header, "trades")
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for _, c := range cs.Candles {
		row[0] = c.Time.UTC().Format(time.RFC3339)
		for i, col := range cols {
			row[i+1] = formatPrice(c.Value(col))
		}
		row[len(row)-1] = strconv.Itoa(c.Trades)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCandles writes cs to path.
func SaveCandles(path string, cs *market.CandleSet) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCandles(f, cs); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadCandles reads a table written by WriteCandles. Columns missing from the
// file stay undefined. The timeframe is the smallest gap between rows, and
// the table must pass CandleSet.Validate.
func ReadCandles(r io.Reader) (*market.CandleSet, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, market.ErrEmptyInput
		}
		return nil, err
	}
	if len(header) == 0 || header[0] != "time" {
		return nil, fmt.Errorf("candles header: %w \"time\"", market.ErrMissingField)
	}

	cols := make([]market.Column, len(header))
	tradesAt := -1
	haSeen := make(map[market.Column]bool)
	for i := 1; i < len(header); i++ {
		if header[i] == "trades" {
			tradesAt = i
			continue
		}
		c, err := market.ParseColumn(header[i])
		if err != nil {
			return nil, fmt.Errorf("candles header: %w", err)
		}
		cols[i] = c
		if c.IsHeikinAshi() {
			haSeen[c] = true
		}
	}

	// a partial set of ha_ columns is recomputed downstream
	cs := &market.CandleSet{HeikinAshi: len(haSeen) == haColumnCount}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		t, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		c := market.NewCandle(t, market.NaNOHLC())
		for i := 1; i < len(rec); i++ {
			if i == tradesAt {
				if c.Trades, err = strconv.Atoi(rec[i]); err != nil {
					return nil, fmt.Errorf("line %d: trades: %w", line, err)
				}
				continue
			}
			v, err := parsePrice(rec[i])
			if err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, header[i], err)
			}
			c.Set(cols[i], v)
		}

		if n := len(cs.Candles); n > 0 {
			gap := t.Sub(cs.Candles[n-1].Time)
			if cs.Timeframe == 0 || gap < cs.Timeframe {
				cs.Timeframe = gap
			}
		}
		cs.Candles = append(cs.Candles, c)
	}

	if cs.Len() == 0 {
		return nil, market.ErrEmptyInput
	}
	if cs.Timeframe == 0 {
		cs.Timeframe = market.DefaultTimeframe
	}
	if err := cs.Validate(); err != nil {
		return nil, err
	}
	return cs, nil
}

// LoadCandles reads a candle CSV from path.
func LoadCandles(path string) (*market.CandleSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cs, err := ReadCandles(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cs.Source = path
	return cs, nil
}

var haColumnCount = len(candleColumns(true)) - len(candleColumns(false))

func candleColumns(ha bool) []market.Column {
	var out []market.Column
	for _, c := range market.Columns() {
		if c.IsHeikinAshi() && !ha {
			continue
		}
		out = append(out, c)
	}
	return out
}

func formatPrice(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parsePrice(s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
