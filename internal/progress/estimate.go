// Package progress turns task snapshots into user-facing progress events.
package progress

import (
	"fmt"
	"time"

	"tubeplus/internal/domain/consts"
	"tubeplus/internal/times"
)

// MinElapsed floors the elapsed time used in estimates.
const MinElapsed = time.Millisecond

// Estimate is a derived speed and remaining-time guess for one task.
type Estimate struct {
	Elapsed      time.Duration
	BytesPerSec  float64
	Speed        string
	Remaining    time.Duration
	HasRemaining bool
	// RemainingText is "mm:ss", "hh:mm:ss" or the calculating sentinel.
	RemainingText string
}

// Compute estimates speed and remaining time from a percentage and the time
// since the task started, assuming the download is assumedTotal bytes.
func Compute(percent float64, elapsed time.Duration, assumedTotal int64) Estimate {
	if elapsed < MinElapsed {
		elapsed = MinElapsed
	}
	secs := elapsed.Seconds()

	bps := (percent / 100 * float64(assumedTotal)) / secs
	if bps < 0 {
		bps = 0
	}
	est := Estimate{
		Elapsed:     elapsed,
		BytesPerSec: bps,
		Speed:       FormatRate(bps),
	}

	if percent <= 0 {
		est.RemainingText = consts.CalculatingSentinel
		return est
	}
	if percent > 100 {
		percent = 100
	}
	est.Remaining = time.Duration(secs * (100 - percent) / percent * float64(time.Second))
	est.HasRemaining = true
	est.RemainingText = times.FormatClock(est.Remaining)
	return est
}

var rateUnits = []string{"B/s", "KiB/s", "MiB/s", "GiB/s"}

// FormatRate renders bytes per second, moving to the next unit at 1024.
func FormatRate(bps float64) string {
	i := 0
	for bps >= 1024 && i < len(rateUnits)-1 {
		bps /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %s", bps, rateUnits[i])
}
