package playlist

import "sort"

// MoveOperation places ItemID immediately after AfterID in the server
// playlist. An empty AfterID moves the item to the front. Operations must
// be applied in emitted order: each one's correctness assumes the list
// state left by its predecessors.
type MoveOperation struct {
	ItemID  string `json:"itemId"`
	AfterID string `json:"afterItemId,omitempty"`
}

// PlanMoves computes the move operations that put the matched tracks into
// target (import) order while unmatched server items keep their relative
// order among themselves.
//
// The walk is greedy left to right: the first matched track anchors the
// sequence and is never moved; every later track is moved to follow its
// predecessor unless the simulated order already satisfies the adjacency.
// The result is correct by construction and close to minimal for typical
// small reorderings, though not guaranteed globally minimal.
func PlanMoves(results []MatchResult, items []Item) []MoveOperation {
	var target []string
	for _, r := range results {
		if r.Item != nil {
			target = append(target, r.Item.ID)
		}
	}
	if len(target) < 2 {
		return nil
	}

	order := snapshotOrder(items)
	index := make(map[string]int, len(order))
	reindex := func() {
		for i, id := range order {
			index[id] = i
		}
	}
	reindex()

	var moves []MoveOperation
	for i := 1; i < len(target); i++ {
		prev, cur := target[i-1], target[i]
		at := index[prev]
		if at+1 < len(order) && order[at+1] == cur {
			continue
		}
		moves = append(moves, MoveOperation{ItemID: cur, AfterID: prev})
		order = applyMove(order, MoveOperation{ItemID: cur, AfterID: prev})
		reindex()
	}

	return moves
}

// ApplyMoves applies a move sequence to an id slice, returning the final
// order. Shared by the planner's simulation and by tests asserting that an
// emitted plan actually produces the target order.
func ApplyMoves(order []string, moves []MoveOperation) []string {
	result := make([]string, len(order))
	copy(result, order)
	for _, move := range moves {
		result = applyMove(result, move)
	}
	return result
}

func applyMove(order []string, move MoveOperation) []string {
	// Remove the mover first; anchors are resolved against the remainder.
	without := make([]string, 0, len(order))
	for _, id := range order {
		if id != move.ItemID {
			without = append(without, id)
		}
	}

	if move.AfterID == "" {
		return append([]string{move.ItemID}, without...)
	}

	result := make([]string, 0, len(order))
	for _, id := range without {
		result = append(result, id)
		if id == move.AfterID {
			result = append(result, move.ItemID)
		}
	}
	return result
}

// snapshotOrder returns item ids sorted by current position.
func snapshotOrder(items []Item) []string {
	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	order := make([]string, len(sorted))
	for i, item := range sorted {
		order[i] = item.ID
	}
	return order
}
