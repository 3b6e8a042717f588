package timing

import (
	"log/slog"
	"time"
)

// AdaptiveLimiter combines a coarse sleep with a short busy-wait tail for
// sub-millisecond accuracy, and nudges its schedule if it drifts from
// wall-clock by more than 10ms over a 60-frame window.
type AdaptiveLimiter struct {
	targetFrameTime time.Duration
	nextFrameTime   time.Time
	frameCounter    int64
}

func NewAdaptiveLimiter() *AdaptiveLimiter {
	return &AdaptiveLimiter{
		targetFrameTime: FrameDuration(),
		nextFrameTime:   time.Now(),
	}
}

func (a *AdaptiveLimiter) WaitForNextFrame() {
	now := time.Now()
	sleepTime := a.nextFrameTime.Sub(now)

	if sleepTime > 0 {
		if sleepTime < 2*time.Millisecond {
			for time.Now().Before(a.nextFrameTime) {
				// busy-wait for times under 2ms, higher accuracy.
			}
		} else {
			time.Sleep(sleepTime - time.Millisecond)
			for time.Now().Before(a.nextFrameTime) {
			}
		}
	} else if sleepTime < -5*time.Millisecond {
		a.nextFrameTime = now
	}

	a.nextFrameTime = a.nextFrameTime.Add(a.targetFrameTime)
	a.frameCounter++

	if a.frameCounter%60 == 0 {
		actualTime := time.Now()
		drift := actualTime.Sub(a.nextFrameTime)
		if drift.Abs() > 10*time.Millisecond {
			a.nextFrameTime = a.nextFrameTime.Add(drift / 10)
			slog.Debug("frame timing drift correction", "drift_ms", drift.Milliseconds())
		}
	}
}

func (a *AdaptiveLimiter) Reset() {
	a.nextFrameTime = time.Now()
	a.frameCounter = 0
}
