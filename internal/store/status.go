package store

// CanTransition reports whether a room may move from one status to another.
// Rooms advance waiting -> questioning -> open, return to waiting from open
// for the next question, and may end from any status except ended.
func CanTransition(from, to RoomStatus) bool {
	if from == StatusEnded {
		return false
	}
	switch to {
	case StatusEnded:
		return true
	case StatusQuestioning:
		return from == StatusWaiting
	case StatusOpen:
		return from == StatusQuestioning
	case StatusWaiting:
		return from == StatusOpen
	}
	return false
}
