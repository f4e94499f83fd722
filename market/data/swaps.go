// Package data reads swap logs and reads and writes candle tables as CSV.
package data

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/rustyeddy/swapbot/market"
)

// SwapHeader is the canonical swap log header. The token columns are optional.
var SwapHeader = []string{"timestamp", "id", "amount0", "amount1", "token0", "token1"}

// SwapLog is a decoded swap file.
type SwapLog struct {
	Swaps []market.Swap

	// Duplicates counts rows dropped because their id was already seen.
	Duplicates int
}

// LoadSwaps reads a swap log from path.
func LoadSwaps(path string) (SwapLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return SwapLog{}, err
	}
	defer f.Close()

	sl, err := ReadSwaps(f)
	if err != nil {
		return SwapLog{}, fmt.Errorf("%s: %w", path, err)
	}
	return sl, nil
}

// ReadSwaps decodes a swap log. Timestamps are unix milliseconds or RFC3339.
// A header row is optional; when present its column names may come in any
// order. UTF-8 and UTF-16 files with a byte order mark are accepted. The
// first row for a given id wins.
func ReadSwaps(r io.Reader) (SwapLog, error) {
	tr := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(bufio.NewReader(tr))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	idx := map[string]int{"timestamp": 0, "id": 1, "amount0": 2, "amount1": 3, "token0": 4, "token1": 5}
	seen := make(map[string]bool)

	var (
		out  SwapLog
		line int
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return SwapLog{}, fmt.Errorf("line %d: %w", line, err)
		}
		if line == 1 && isHeader(rec) {
			idx = headerIndex(rec)
			for _, k := range []string{"timestamp", "amount0", "amount1"} {
				if _, ok := idx[k]; !ok {
					return SwapLog{}, fmt.Errorf("header: %w %q", market.ErrMissingField, k)
				}
			}
			continue
		}

		s, err := parseSwap(rec, idx)
		if err != nil {
			return SwapLog{}, fmt.Errorf("line %d: %w", line, err)
		}
		if s.ID != "" {
			if seen[s.ID] {
				out.Duplicates++
				continue
			}
			seen[s.ID] = true
		}
		out.Swaps = append(out.Swaps, s)
	}

	if len(out.Swaps) == 0 {
		return SwapLog{}, market.ErrEmptyInput
	}
	return out, nil
}

// isHeader reports whether any field of rec is a known column name.
func isHeader(rec []string) bool {
	for _, f := range rec {
		name := strings.ToLower(strings.TrimSpace(f))
		if name == "timestamp_ms" || slices.Contains(SwapHeader, name) {
			return true
		}
	}
	return false
}

func headerIndex(rec []string) map[string]int {
	idx := make(map[string]int, len(rec))
	for i, name := range rec {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "timestamp_ms" {
			name = "timestamp"
		}
		idx[name] = i
	}
	return idx
}

func field(rec []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func parseSwap(rec []string, idx map[string]int) (market.Swap, error) {
	ts := field(rec, idx, "timestamp")
	if ts == "" {
		return market.Swap{}, fmt.Errorf("timestamp: %w", market.ErrMissingField)
	}
	t, err := parseTime(ts)
	if err != nil {
		return market.Swap{}, fmt.Errorf("timestamp %q: %w", ts, err)
	}

	a0, err := parseAmount(field(rec, idx, "amount0"))
	if err != nil {
		return market.Swap{}, fmt.Errorf("amount0: %w", err)
	}
	a1, err := parseAmount(field(rec, idx, "amount1"))
	if err != nil {
		return market.Swap{}, fmt.Errorf("amount1: %w", err)
	}

	return market.Swap{
		ID:      field(rec, idx, "id"),
		Time:    t,
		Amount0: a0,
		Amount1: a1,
		Token0:  field(rec, idx, "token0"),
		Token1:  field(rec, idx, "token1"),
	}, nil
}

func parseTime(s string) (time.Time, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

func parseAmount(s string) (float64, error) {
	if s == "" {
		return 0, market.ErrMissingField
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", market.ErrInvalidAmount, s)
	}
	return v, nil
}
