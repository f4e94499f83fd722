package sim

// pnl is the quote currency profit of closing units of a leg at exit.
func pnl(side Position, entry, exit, units float64) float64 {
	return float64(side) * (exit - entry) * units
}
