/*
rotation.go - Manual round-robin reassignment (skip and requeue)

PURPOSE:
  When the participant whose turn it is cannot contribute, the group skips
  them without removing their obligation: they drop to the back of the
  current ranking and the participant who slid into their slot pays next.

STATE MACHINE (single transition, stateless):
  1. The skip target must exist in the ranking; otherwise NotFound.
  2. Remove it from its position i.
  3. Next payer = the entry now at position i, wrapping to the front when
     the skipped participant was last; nil when nobody else remains.
  4. Updated ranking = the reduced ranking with the skipped entry appended.

  The engine holds no rotation queue between calls. A caller that wants a
  skip to survive into future rankings must feed that decision back into
  the payment-history snapshot it derives rankings from.
*/
package engine

// ReassignResult is the outcome of one skip-and-requeue transition.
type ReassignResult struct {
	// Skipped is the entry removed from its turn.
	Skipped RankingEntry

	// Next is the participant who should contribute instead. Nil when the
	// skipped participant was the only one in the ranking.
	Next *RankingEntry

	// Ranking is the updated order: same entries as the input, same length,
	// with Skipped moved to the tail and all other relative order preserved.
	Ranking []RankingEntry
}

// Reassign skips one participant's turn in the ranking. The input slice is
// not modified. Returns ErrParticipantNotFound (wrapped with the target ID)
// when skipID is absent; no partial result is produced in that case.
func Reassign(ranking []RankingEntry, skipID ParticipantID) (*ReassignResult, error) {
	skipIndex := -1
	for i, entry := range ranking {
		if entry.ParticipantID == skipID {
			skipIndex = i
			break
		}
	}
	if skipIndex < 0 {
		return nil, &ParticipantNotFoundError{ID: skipID}
	}

	skipped := ranking[skipIndex]

	reduced := make([]RankingEntry, 0, len(ranking))
	reduced = append(reduced, ranking[:skipIndex]...)
	reduced = append(reduced, ranking[skipIndex+1:]...)

	var next *RankingEntry
	if len(reduced) > 0 {
		nextIndex := skipIndex
		if nextIndex >= len(reduced) {
			// Skipped the last participant; wrap to the front.
			nextIndex = 0
		}
		entry := reduced[nextIndex]
		next = &entry
	}

	return &ReassignResult{
		Skipped: skipped,
		Next:    next,
		Ranking: append(reduced, skipped),
	}, nil
}
