package queue

// Fee computes the priority fee owed for admitting a ticket of the given
// class into q. Loyalty ("VIP") customers pay half the fast-lane fee and
// nothing for VIP class; everyone pays nothing for normal class. Fees are
// settled off-system and confirmed manually at finish time, so this is a
// pure computation with no payment side effects.
func Fee(q *Queue, class PriorityClass, loyalty bool) int64 {
	switch class {
	case PriorityFastLane:
		if loyalty {
			return q.FastLaneFee / 2
		}
		return q.FastLaneFee
	case PriorityVIP:
		if loyalty {
			return 0
		}
		return q.VIPFee
	default:
		return 0
	}
}
