package chat

// State is the backend-reported processing stage of the latest assistant message.
type State string

const (
	StateCommencing  State = "commencing"
	StateClassifying State = "classifying"
	StateAnalyzing   State = "analyzing"
	StateSearching   State = "searching"
	StateBuilding    State = "building"
	StateDone        State = "done"
	StateComplete    State = "complete"
	StateFailed      State = "failed"
)

// IsTerminal reports whether polling should stop once s is observed.
// Unknown values are treated as still working.
func IsTerminal(s State) bool {
	switch s {
	case StateDone, StateComplete, StateFailed:
		return true
	}
	return false
}

var statusText = map[State]string{
	StateCommencing:  "메세지 전송중...",
	StateClassifying: "메세지를 분류중입니다...",
	StateAnalyzing:   "제공하신 자료를 분석중입니다...",
	StateSearching:   "자료를 바탕으로 결과를 분석중입니다...",
	StateBuilding:    "응답을 받아오는 중...",
	StateFailed:      "에러 발생",
}

const waitingText = "응답을 기다리는 중..."

// StatusText is shown in place of a pending placeholder.
func StatusText(s State) string {
	if t, ok := statusText[s]; ok {
		return t
	}
	return waitingText
}
