package dispatch

import "sync"

const stripeCount = 64

// pairLocks serializes the throttle-check / send / ledger-append sequence
// for one (alert, user) pair across overlapping dispatch runs. Locks are
// striped by hash; unrelated pairs occasionally share a stripe, which only
// costs a short wait.
type pairLocks struct {
	stripes [stripeCount]sync.Mutex
}

func (l *pairLocks) lock(alertID, userID int64) func() {
	m := &l.stripes[stripeFor(alertID, userID)]
	m.Lock()
	return m.Unlock
}

func stripeFor(alertID, userID int64) int {
	h := uint64(alertID)<<32 ^ uint64(userID)
	h ^= h >> 16
	h *= 0x45d9f3b
	h ^= h >> 16
	return int(h % stripeCount)
}
