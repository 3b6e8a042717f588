package timing

import "time"

// TickerLimiter paces frames off a time.Ticker. Less precise than
// AdaptiveLimiter but cheap and consistent — a reasonable default for
// non-headless backends that don't need sub-millisecond pacing.
type TickerLimiter struct {
	ticker *time.Ticker
	ch     <-chan time.Time
}

func NewTickerLimiter() *TickerLimiter {
	ticker := time.NewTicker(FrameDuration())
	return &TickerLimiter{ticker: ticker, ch: ticker.C}
}

func (t *TickerLimiter) WaitForNextFrame() {
	<-t.ch
}

func (t *TickerLimiter) Reset() {
	t.ticker.Reset(FrameDuration())
}

func (t *TickerLimiter) Stop() {
	t.ticker.Stop()
}
