package monitor

import (
	"fmt"
	"strconv"
)

// SuffixString renders val with a K/M/G/T/P/E suffix and three significant digits,
// the way share difficulties are shown on miners.
func SuffixString(val float64) string {
	const (
		kilo = 1e3
		mega = 1e6
		giga = 1e9
		tera = 1e12
		peta = 1e15
		exa  = 1e18
	)

	var suffix string
	switch {
	case val >= exa:
		val, suffix = val/exa, "E"
	case val >= peta:
		val, suffix = val/peta, "P"
	case val >= tera:
		val, suffix = val/tera, "T"
	case val >= giga:
		val, suffix = val/giga, "G"
	case val >= mega:
		val, suffix = val/mega, "M"
	case val >= kilo:
		val, suffix = val/kilo, "K"
	default:
		if val < 0 {
			val = 0
		}
		return strconv.FormatUint(uint64(val), 10)
	}
	return fmt.Sprintf("%.3g%s", val, suffix)
}

// formatGlobalHash keeps the integer part of the hashrate in EH/s
func formatGlobalHash(hashrate float64) (string, bool) {
	if hashrate < 1e18 {
		return "", false
	}
	return strconv.FormatUint(uint64(hashrate/1e18), 10), true
}

// formatDifficulty renders the difficulty in T with two truncated decimals
func formatDifficulty(difficulty float64) (string, bool) {
	if difficulty < 1e10 {
		return "", false
	}
	hundredths := uint64(difficulty / 1e10)
	return fmt.Sprintf("%d.%02dT", hundredths/100, hundredths%100), true
}

func formatUptime(seconds uint64) string {
	secs := seconds % 60
	seconds /= 60
	mins := seconds % 60
	seconds /= 60
	hours := seconds % 24
	days := seconds / 24
	return fmt.Sprintf("%d  %02d:%02d:%02d", days, hours, mins, secs)
}
