package signal

import "golang.org/x/time/rate"

// maxViolations is how many over-limit messages a connection may send
// before it is dropped.
const maxViolations = 1000

type verdict int

const (
	verdictAllow verdict = iota
	verdictDrop
	verdictDisconnect
)

// connLimiter is a token bucket for one connection's inbound messages.
// Only the read pump touches it, so it needs no lock.
type connLimiter struct {
	bucket     *rate.Limiter
	violations int
}

func newConnLimiter(perSecond float64, burst int) *connLimiter {
	return &connLimiter{bucket: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (l *connLimiter) allow() verdict {
	if l.bucket.Allow() {
		return verdictAllow
	}
	l.violations++
	if l.violations >= maxViolations {
		return verdictDisconnect
	}
	return verdictDrop
}
