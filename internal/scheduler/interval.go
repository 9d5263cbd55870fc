package scheduler

import (
	"strconv"
	"strings"
	"time"
)

// ParseTickInterval parses engine clock intervals such as "250ms", "2s",
// "15m" or "1h". The special values "", "0" and "manual" select manual mode
// (no internal clock) and return (0, true).
func ParseTickInterval(interval string) (time.Duration, bool) {
	interval = strings.ToLower(strings.TrimSpace(interval))
	switch interval {
	case "", "0", "manual":
		return 0, true
	}
	if strings.HasSuffix(interval, "ms") {
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(interval, "ms")))
		if err != nil || n <= 0 {
			return 0, false
		}
		return time.Duration(n) * time.Millisecond, true
	}
	unit := interval[len(interval)-1]
	numStr := strings.TrimSpace(interval[:len(interval)-1])
	if numStr == "" {
		return 0, false
	}
	n, err := strconv.Atoi(numStr)
	if err != nil || n <= 0 {
		return 0, false
	}
	switch unit {
	case 's':
		return time.Duration(n) * time.Second, true
	case 'm':
		return time.Duration(n) * time.Minute, true
	case 'h':
		return time.Duration(n) * time.Hour, true
	default:
		return 0, false
	}
}
