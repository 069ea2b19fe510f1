package downloader

import (
	"time"
)

const (
	// speedWindowSize bounds the sliding window of speed samples.
	speedWindowSize = 10
	// speedMinInterval is the minimum elapsed time between samples; shorter
	// gaps reuse the previous average to avoid jitter.
	speedMinInterval = 100 * time.Millisecond
)

// speedTracker computes a smoothed bytes-per-second figure from cumulative
// byte counts, using a sliding window of recent samples. Not safe for
// concurrent use; each download attempt owns one.
type speedTracker struct {
	lastBytes int64
	lastTime  time.Time
	window    []float64
}

func newSpeedTracker(startBytes int64) *speedTracker {
	return &speedTracker{
		lastBytes: startBytes,
		lastTime:  time.Now(),
		window:    make([]float64, 0, speedWindowSize),
	}
}

// Update records the current cumulative byte count and returns the smoothed
// speed in bytes per second.
func (s *speedTracker) Update(totalBytes int64) float64 {
	now := time.Now()
	elapsed := now.Sub(s.lastTime)

	if elapsed < speedMinInterval {
		return s.average()
	}

	sample := float64(totalBytes-s.lastBytes) / elapsed.Seconds()
	s.lastBytes = totalBytes
	s.lastTime = now

	s.window = append(s.window, sample)
	if len(s.window) > speedWindowSize {
		s.window = s.window[1:]
	}

	return s.average()
}

func (s *speedTracker) average() float64 {
	if len(s.window) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s.window {
		sum += v
	}
	return sum / float64(len(s.window))
}
