package queue

// Action names a staff or customer operation on a ticket.
type Action string

const (
	ActionCall        Action = "call"
	ActionConfirm     Action = "confirm"
	ActionSkip        Action = "skip"
	ActionRecall      Action = "recall"
	ActionNoShow      Action = "no_show"
	ActionFinish      Action = "finish"
	ActionCancel      Action = "cancel"
	ActionStaffCancel Action = "staff_cancel"
)

// transitionMap is the single source of truth for which statuses each
// action may fire from. recall leaves the status unchanged; it appears
// here so it is validated the same way as every other action.
var transitionMap = map[Action][]Status{
	ActionCall:        {StatusWaiting},
	ActionConfirm:     {StatusCalled},
	ActionSkip:        {StatusCalled, StatusConfirmed},
	ActionRecall:      {StatusCalled, StatusConfirmed},
	ActionNoShow:      {StatusCalled, StatusConfirmed},
	ActionFinish:      {StatusCalled, StatusConfirmed, StatusServing},
	ActionCancel:      {StatusWaiting, StatusCalled, StatusConfirmed},
	ActionStaffCancel: {StatusWaiting, StatusCalled, StatusConfirmed, StatusServing},
}

// ValidTransition reports whether action may be applied to a ticket
// currently in fromStatus.
func ValidTransition(action Action, fromStatus Status) bool {
	allowed, ok := transitionMap[action]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == fromStatus {
			return true
		}
	}
	return false
}
