package playlist

import (
	"reflect"
	"testing"
)

// matched builds MatchResults pairing each id with itself in target order.
func matched(ids ...string) []MatchResult {
	results := make([]MatchResult, len(ids))
	for i, id := range ids {
		item := Item{ID: id}
		results[i] = MatchResult{Item: &item, Tier: TierExact, Score: 1}
	}
	return results
}

func serverItems(ids ...string) []Item {
	items := make([]Item, len(ids))
	for i, id := range ids {
		items[i] = Item{ID: id, Position: i}
	}
	return items
}

func TestPlanMoves(t *testing.T) {
	t.Run("SingleSwapEmitsOneMove", func(t *testing.T) {
		// Target [A, B] against current [B, A, C]: exactly one move,
		// B placed after A. C is untouched.
		moves := PlanMoves(matched("A", "B"), serverItems("B", "A", "C"))

		want := []MoveOperation{{ItemID: "B", AfterID: "A"}}
		if !reflect.DeepEqual(moves, want) {
			t.Errorf("expected %+v, got %+v", want, moves)
		}
	})

	t.Run("AlreadyOrderedEmitsNothing", func(t *testing.T) {
		moves := PlanMoves(matched("A", "B", "C"), serverItems("A", "B", "C"))
		if len(moves) != 0 {
			t.Errorf("expected no moves, got %+v", moves)
		}
	})

	t.Run("FewerThanTwoMatches", func(t *testing.T) {
		if moves := PlanMoves(matched("A"), serverItems("B", "A")); moves != nil {
			t.Errorf("single match cannot produce moves, got %+v", moves)
		}
		if moves := PlanMoves(nil, serverItems("A", "B")); moves != nil {
			t.Errorf("no matches cannot produce moves, got %+v", moves)
		}
	})

	t.Run("FullReversal", func(t *testing.T) {
		moves := PlanMoves(matched("A", "B", "C"), serverItems("C", "B", "A"))
		if len(moves) != 2 {
			t.Fatalf("reversal of 3 should need 2 moves, got %d", len(moves))
		}

		final := ApplyMoves([]string{"C", "B", "A"}, moves)
		if !reflect.DeepEqual(final, []string{"A", "B", "C"}) {
			t.Errorf("plan does not produce target order: %v", final)
		}
	})

	t.Run("UnmatchedItemsKeepRelativeOrder", func(t *testing.T) {
		// X and Y are not part of the target; they may shift absolute
		// position but must stay in their original relative order.
		moves := PlanMoves(matched("B", "A"), serverItems("X", "A", "Y", "B"))

		final := ApplyMoves([]string{"X", "A", "Y", "B"}, moves)
		xAt, yAt := indexOf(final, "X"), indexOf(final, "Y")
		if xAt < 0 || yAt < 0 || xAt > yAt {
			t.Errorf("unmatched items reordered: %v", final)
		}
		bAt, aAt := indexOf(final, "B"), indexOf(final, "A")
		if aAt != bAt+1 {
			t.Errorf("A should directly follow B, got %v", final)
		}
	})

	t.Run("UnmatchedImportsDoNotAnchor", func(t *testing.T) {
		results := []MatchResult{
			{Item: &Item{ID: "A"}, Tier: TierExact, Score: 1},
			{Tier: TierUnmatched},
			{Item: &Item{ID: "B"}, Tier: TierExact, Score: 1},
		}
		moves := PlanMoves(results, serverItems("B", "A"))

		want := []MoveOperation{{ItemID: "B", AfterID: "A"}}
		if !reflect.DeepEqual(moves, want) {
			t.Errorf("unmatched import should be skipped in the chain, got %+v", moves)
		}
	})

	t.Run("MoveCountBounded", func(t *testing.T) {
		moves := PlanMoves(
			matched("A", "B", "C", "D", "E"),
			serverItems("E", "D", "C", "B", "A"),
		)
		if len(moves) > 4 {
			t.Errorf("plan for 5 matched tracks must not exceed 4 moves, got %d", len(moves))
		}
	})

	t.Run("PlanProducesTargetOrder", func(t *testing.T) {
		current := []string{"D", "A", "F", "C", "B", "E"}
		target := []string{"A", "B", "C", "D", "E", "F"}

		moves := PlanMoves(matched(target...), serverItems(current...))
		final := ApplyMoves(current, moves)
		if !reflect.DeepEqual(final, target) {
			t.Errorf("expected %v, got %v", target, final)
		}
	})
}

func TestApplyMoves(t *testing.T) {
	t.Run("MoveToFront", func(t *testing.T) {
		final := ApplyMoves([]string{"A", "B", "C"}, []MoveOperation{{ItemID: "C"}})
		if !reflect.DeepEqual(final, []string{"C", "A", "B"}) {
			t.Errorf("empty AfterID should move to front, got %v", final)
		}
	})

	t.Run("MoveAfterAnchor", func(t *testing.T) {
		final := ApplyMoves([]string{"A", "B", "C"}, []MoveOperation{{ItemID: "A", AfterID: "C"}})
		if !reflect.DeepEqual(final, []string{"B", "C", "A"}) {
			t.Errorf("expected [B C A], got %v", final)
		}
	})

	t.Run("InputNotMutated", func(t *testing.T) {
		original := []string{"A", "B", "C"}
		ApplyMoves(original, []MoveOperation{{ItemID: "C"}})
		if !reflect.DeepEqual(original, []string{"A", "B", "C"}) {
			t.Errorf("input slice was mutated: %v", original)
		}
	})
}

func indexOf(list []string, id string) int {
	for i, v := range list {
		if v == id {
			return i
		}
	}
	return -1
}
