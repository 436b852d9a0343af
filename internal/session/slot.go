package session

import (
	"fmt"
	"strings"
)

// SlotPolicy decides which of several overlapping async results a display
// slot keeps.
type SlotPolicy int

const (
	// LastResolvedWins shows whichever result arrives last.
	LastResolvedWins SlotPolicy = iota
	// LatestDispatchedWins drops results of requests superseded by a newer one.
	LatestDispatchedWins
)

func (p SlotPolicy) String() string {
	if p == LatestDispatchedWins {
		return "latest-dispatched"
	}
	return "last-resolved"
}

func ParseSlotPolicy(s string) (SlotPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last-resolved":
		return LastResolvedWins, nil
	case "latest-dispatched":
		return LatestDispatchedWins, nil
	}
	return LastResolvedWins, fmt.Errorf("unknown slot policy %q", s)
}

// tracker follows the requests in flight for one slot. Guarded by the
// session mutex.
type tracker struct {
	inFlight   int
	dispatched uint64
	shown      uint64
}

func (t *tracker) begin() uint64 {
	t.inFlight++
	t.dispatched++
	return t.dispatched
}

// finish reports whether the result of request seq should be displayed.
func (t *tracker) finish(seq uint64, policy SlotPolicy) bool {
	t.inFlight--
	if policy == LatestDispatchedWins && seq != t.dispatched {
		return false
	}
	t.shown = seq
	return true
}

func (t *tracker) pending(policy SlotPolicy) bool {
	if policy == LatestDispatchedWins {
		return t.shown != t.dispatched
	}
	return t.inFlight > 0
}
