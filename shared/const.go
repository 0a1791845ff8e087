package shared

const (
	UserID = "user_id"

	// Wallet transaction reason prefixes. The full reason code always
	// carries the game id, e.g. "credit:game-complete:teacher-education-2".
	ReasonGameComplete = "credit:game-complete:"
	ReasonReplayUnlock = "debit:replay-unlock:"

	GameTypeTeacher = "teacher"
	GameTypeParent  = "parent"

	// Local event name the client broadcasts after a successful completion.
	EventGameCompleted = "wiseStudentGameCompleted"
)
