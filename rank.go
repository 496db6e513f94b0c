package mailsleuth

import (
	"sort"

	"github.com/optimode/mailsleuth/types"
)

// stateRank orders verification outcomes. A confirmed acceptance
// outranks everything; an unconfirmed guess outranks a confirmed
// rejection even at lower prior confidence, because a rejection is a
// stronger negative signal than absence of data.
func stateRank(s types.VerificationState) int {
	switch s {
	case types.StateAccepted:
		return 2
	case types.StateUnknown:
		return 1
	default:
		return 0
	}
}

// Rank stable-sorts candidates in place: accepted first, unknown before
// rejected, then confidence descending. Remaining ties keep generation
// order.
func Rank(candidates []types.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		ri, rj := stateRank(candidates[i].State), stateRank(candidates[j].State)
		if ri != rj {
			return ri > rj
		}
		return candidates[i].Confidence > candidates[j].Confidence
	})
}
