// Package orders reconciles LLM-proposed move orders against the engine's
// authoritative legal-order set. It never fails on bad proposals: every call
// yields a submittable order set, synthesizing deterministic fallbacks for
// any location the proposals left uncovered.
package orders

import (
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// ErrNilLegalSet reports a caller contract violation: the engine-supplied
// legal-order set was missing. Unlike bad proposals, this propagates.
var ErrNilLegalSet = errors.New("orders: legal order set is nil")

// holdSuffix marks a self-hold order, the preferred fallback at a location.
const holdSuffix = "H"

// Result is the outcome of one resolution call.
type Result struct {
	// Orders is the engine-submittable set: one order per location that has
	// at least one legal order, each either proposed-and-legal or synthesized.
	Orders []string
	// Rejected holds proposals absent from the legal set, in proposal order.
	// Informational only; it never affects Orders.
	Rejected []string
	// Synthesized holds the subset of Orders that are fallbacks rather than
	// accepted proposals, so callers can report fallback ratios.
	Synthesized []string
}

// Resolve validates proposed orders against legal, the engine's mapping from
// location to the orders it accepts there this turn. A proposal is accepted
// iff it appears verbatim in some location's legal list; every legal-order
// location left uncovered gets a deterministic fallback (self-hold when
// available, else the location's first legal order). A nil proposal slice
// means nothing was extracted and degenerates to a full fallback set.
//
// The legal map is read-only for the duration of the call and Resolve holds
// no state, so concurrent calls need no coordination.
func Resolve(proposed []string, legal map[string][]string, log *zap.Logger) (Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if legal == nil {
		return Result{}, ErrNilLegalSet
	}

	var res Result
	covered := make(map[string]bool)

	for _, move := range proposed {
		if isLegal(move, legal) {
			res.Orders = append(res.Orders, move)
			if loc := locationKey(move); loc != "" {
				covered[loc] = true
			}
			continue
		}
		log.Debug("rejecting illegal proposal", zap.String("order", move))
		res.Rejected = append(res.Rejected, move)
	}

	// Fill every uncovered location that still has a legal order. Locations
	// are visited in sorted order so the fallback set is stable across calls.
	for _, loc := range sortedLocations(legal) {
		if covered[loc] || len(legal[loc]) == 0 {
			continue
		}
		fb := fallbackFor(legal[loc])
		res.Orders = append(res.Orders, fb)
		res.Synthesized = append(res.Synthesized, fb)
	}

	if len(res.Synthesized) > 0 {
		log.Info("synthesized fallback orders",
			zap.Int("fallbacks", len(res.Synthesized)),
			zap.Int("accepted", len(res.Orders)-len(res.Synthesized)),
			zap.Int("rejected", len(res.Rejected)))
	}
	return res, nil
}

// isLegal reports whether move appears verbatim in any location's legal list.
func isLegal(move string, legal map[string][]string) bool {
	for _, locOrders := range legal {
		for _, o := range locOrders {
			if o == move {
				return true
			}
		}
	}
	return false
}

// locationKey derives the covered location from an order string: the second
// whitespace-delimited token's first three characters ("A PAR - BUR" covers
// PAR). Returns "" when the order is too short to carry a location.
func locationKey(move string) string {
	parts := strings.Fields(move)
	if len(parts) < 2 {
		return ""
	}
	loc := parts[1]
	if len(loc) > 3 {
		loc = loc[:3]
	}
	return loc
}

// fallbackFor picks the deterministic fallback from a non-empty legal list:
// the first self-hold if one exists, else the first entry.
func fallbackFor(locOrders []string) string {
	for _, o := range locOrders {
		if strings.HasSuffix(o, holdSuffix) {
			return o
		}
	}
	return locOrders[0]
}

// sortedLocations returns the legal set's location ids in sorted order.
func sortedLocations(legal map[string][]string) []string {
	locs := make([]string, 0, len(legal))
	for loc := range legal {
		locs = append(locs, loc)
	}
	sort.Strings(locs)
	return locs
}
