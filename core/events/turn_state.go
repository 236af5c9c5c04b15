package events

const (
	KindTurnStarted   Kind = "turn_state.started"
	KindTurnCompleted Kind = "turn_state.completed"
	KindTurnFailed    Kind = "turn_state.failed"
	KindTurnCancelled Kind = "turn_state.cancelled"
)

type TurnStarted struct {
	Base
	TurnID string
}

func NewTurnStarted(turnID string) TurnStarted {
	return TurnStarted{Base: NewBase(KindTurnStarted), TurnID: turnID}
}

// TurnCompleted reports how many sentences were dispatched and how many of
// them reached the playback timeline.
type TurnCompleted struct {
	Base
	TurnID     string
	Dispatched int
	Scheduled  int
}

func NewTurnCompleted(turnID string, dispatched, scheduled int) TurnCompleted {
	return TurnCompleted{Base: NewBase(KindTurnCompleted), TurnID: turnID, Dispatched: dispatched, Scheduled: scheduled}
}

type TurnFailed struct {
	Base
	TurnID string
	Err    error
}

func NewTurnFailed(turnID string, err error) TurnFailed {
	return TurnFailed{Base: NewBase(KindTurnFailed), TurnID: turnID, Err: err}
}

type TurnCancelled struct {
	Base
	TurnID string
}

func NewTurnCancelled(turnID string) TurnCancelled {
	return TurnCancelled{Base: NewBase(KindTurnCancelled), TurnID: turnID}
}
