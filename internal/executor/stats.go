package executor

import "sync/atomic"

// cacheLinePad keeps hot counters on separate cache lines so concurrent
// dual-order dispatches don't thrash each other's lines.
type cacheLinePad [64]byte

// Stats accumulates lifetime dispatch statistics. All fields are
// updated via atomic ops and safe to read concurrently with Snapshot.
type Stats struct {
	_                cacheLinePad
	totalRequests    uint64
	_                cacheLinePad
	bothSuccess      uint64
	_                cacheLinePad
	partialFill      uint64
	_                cacheLinePad
	bothFailed       uint64
	_                cacheLinePad
	recoveryAttempts uint64
	_                cacheLinePad
	recoverySuccess  uint64
	_                cacheLinePad
	totalLatencyUs   int64
	_                cacheLinePad
	minLatencyUs     int64
	_                cacheLinePad
	maxLatencyUs     int64
	_                cacheLinePad
}

func (s *Stats) recordOutcome(kind Outcome, latencyUs int64) {
	atomic.AddUint64(&s.totalRequests, 1)
	switch kind {
	case OutcomeBothSuccess:
		atomic.AddUint64(&s.bothSuccess, 1)
	case OutcomePartialFill:
		atomic.AddUint64(&s.partialFill, 1)
	case OutcomeBothFailed:
		atomic.AddUint64(&s.bothFailed, 1)
	}
	atomic.AddInt64(&s.totalLatencyUs, latencyUs)
	casMin(&s.minLatencyUs, latencyUs)
	casMax(&s.maxLatencyUs, latencyUs)
}

func (s *Stats) recordRecovery(succeeded bool) {
	atomic.AddUint64(&s.recoveryAttempts, 1)
	if succeeded {
		atomic.AddUint64(&s.recoverySuccess, 1)
	}
}

func casMin(addr *int64, v int64) {
	for {
		cur := atomic.LoadInt64(addr)
		if cur != 0 && cur <= v {
			return
		}
		if atomic.CompareAndSwapInt64(addr, cur, v) {
			return
		}
	}
}

func casMax(addr *int64, v int64) {
	for {
		cur := atomic.LoadInt64(addr)
		if cur >= v {
			return
		}
		if atomic.CompareAndSwapInt64(addr, cur, v) {
			return
		}
	}
}

// Snapshot is a point-in-time, non-atomic copy of Stats for reporting.
type Snapshot struct {
	TotalRequests    uint64
	BothSuccess      uint64
	PartialFill      uint64
	BothFailed       uint64
	RecoveryAttempts uint64
	RecoverySuccess  uint64
	AvgLatencyUs     float64
	MinLatencyUs     int64
	MaxLatencyUs     int64
}

// SuccessRate returns the fraction of dispatches where both legs filled.
func (s Snapshot) SuccessRate() float64 {
	if s.TotalRequests == 0 {
		return 0
	}
	return float64(s.BothSuccess) / float64(s.TotalRequests)
}

// RecoveryRate returns the fraction of recovery attempts that succeeded.
func (s Snapshot) RecoveryRate() float64 {
	if s.RecoveryAttempts == 0 {
		return 0
	}
	return float64(s.RecoverySuccess) / float64(s.RecoveryAttempts)
}

func (s *Stats) Snapshot() Snapshot {
	total := atomic.LoadUint64(&s.totalRequests)
	sumUs := atomic.LoadInt64(&s.totalLatencyUs)
	var avg float64
	if total > 0 {
		avg = float64(sumUs) / float64(total)
	}
	return Snapshot{
		TotalRequests:    total,
		BothSuccess:      atomic.LoadUint64(&s.bothSuccess),
		PartialFill:      atomic.LoadUint64(&s.partialFill),
		BothFailed:       atomic.LoadUint64(&s.bothFailed),
		RecoveryAttempts: atomic.LoadUint64(&s.recoveryAttempts),
		RecoverySuccess:  atomic.LoadUint64(&s.recoverySuccess),
		AvgLatencyUs:     avg,
		MinLatencyUs:     atomic.LoadInt64(&s.minLatencyUs),
		MaxLatencyUs:     atomic.LoadInt64(&s.maxLatencyUs),
	}
}
