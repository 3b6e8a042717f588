package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTargetFPSMatchesDMGRate(t *testing.T) {
	fps := TargetFPS()
	assert.InDelta(t, 59.7275, fps, 0.001)
}

func TestFrameDurationMatchesTargetFPS(t *testing.T) {
	d := FrameDuration()
	assert.InDelta(t, float64(time.Second)/TargetFPS(), float64(d), float64(time.Microsecond))
}

func TestNoOpLimiterNeverBlocks(t *testing.T) {
	l := NewNoOpLimiter()
	start := time.Now()
	for i := 0; i < 1000; i++ {
		l.WaitForNextFrame()
	}
	l.Reset()
	assert.Less(t, time.Since(start), time.Millisecond*10)
}

func TestTickerLimiterWaitsForTick(t *testing.T) {
	l := NewTickerLimiter()
	defer l.Stop()

	start := time.Now()
	l.WaitForNextFrame()
	assert.GreaterOrEqual(t, time.Since(start), time.Millisecond)

	l.Reset()
}

func TestAdaptiveLimiterCatchesUpAfterLongStall(t *testing.T) {
	a := NewAdaptiveLimiter()
	a.nextFrameTime = time.Now().Add(-time.Second)

	start := time.Now()
	a.WaitForNextFrame()
	assert.Less(t, time.Since(start), 50*time.Millisecond, "limiter must not try to sleep off a huge backlog")
}

func TestAdaptiveLimiterResetRebasesSchedule(t *testing.T) {
	a := NewAdaptiveLimiter()
	a.frameCounter = 59
	a.nextFrameTime = time.Now().Add(-time.Hour)

	a.Reset()

	assert.Equal(t, int64(0), a.frameCounter)
	assert.WithinDuration(t, time.Now(), a.nextFrameTime, 10*time.Millisecond)
}
