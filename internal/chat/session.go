package chat

import (
	"github.com/google/uuid"

	"github.com/kimyounil1/honey-pot-sub000/internal/model"
)

// session is the in-memory state of one open chat view. Confirmed history and
// the single pending placeholder are kept apart and merged only by snapshot.
type session struct {
	epoch      uint64
	chatID     *int64
	history    []model.Message
	pending    *model.Message
	state      State
	busy       bool
	attachment *model.Attachment
	chats      []model.ChatSummary
}

// Snapshot is a copy of the session safe to hand to renderers.
type Snapshot struct {
	ChatID     *int64
	Messages   []model.Message
	State      State
	Status     string
	Busy       bool
	Attachment *model.Attachment
	Chats      []model.ChatSummary
}

// Pending reports whether the last message is a placeholder awaiting its answer.
func (s Snapshot) Pending() bool {
	return s.Status != ""
}

func (s *session) reset(chatID *int64) {
	s.epoch++
	s.chatID = copyID(chatID)
	s.history = nil
	s.pending = nil
	s.state = ""
	s.attachment = nil
}

func (s *session) snapshot() Snapshot {
	msgs := make([]model.Message, 0, len(s.history)+1)
	msgs = append(msgs, s.history...)
	snap := Snapshot{
		ChatID:     copyID(s.chatID),
		State:      s.state,
		Busy:       s.busy,
		Attachment: s.attachment,
		Chats:      append([]model.ChatSummary(nil), s.chats...),
	}
	if s.pending != nil {
		msgs = append(msgs, *s.pending)
		snap.Status = StatusText(s.state)
	}
	snap.Messages = msgs
	return snap
}

// resolve turns the pending placeholder into a confirmed assistant message.
func (s *session) resolve(content string) {
	if s.pending == nil {
		return
	}
	m := *s.pending
	m.Content = content
	s.history = append(s.history, m)
	s.pending = nil
}

// applyHistory replaces the local list with the backend's. Every row is kept.
// A trailing empty assistant row that is still being worked on becomes the
// pending slot; any other empty row is rendered with its state's text so a
// failed answer stays visible.
func (s *session) applyHistory(records []model.Message) {
	history := make([]model.Message, 0, len(records))
	var pending *model.Message
	for i, r := range records {
		r.ID = newLocalID()
		if r.IsPlaceholder() {
			if i == len(records)-1 && !IsTerminal(State(r.State)) {
				pending = &r
				if r.State != "" {
					s.state = State(r.State)
				}
				continue
			}
			r.Content = settledText(State(r.State))
		}
		history = append(history, r)
	}
	s.history = history
	s.pending = pending
}

const emptyAnswerText = "..."

// settledText is what an empty assistant row shows once it is no longer the
// pending slot.
func settledText(st State) string {
	if st == StateDone || st == StateComplete {
		return emptyAnswerText
	}
	return StatusText(st)
}

func newLocalID() string { return uuid.NewString() }

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
