package chat

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/kimyounil1/honey-pot-sub000/internal/model"
)

type stateReply struct {
	state string
	err   error
}

// fakeBackend scripts the backend. Queued replies are consumed in order and
// the last one repeats.
type fakeBackend struct {
	mu sync.Mutex

	submit      func(ctx context.Context, req model.SubmitRequest) (*model.SubmitResponse, error)
	states      []stateReply
	stateFn     func(ctx context.Context) (string, error)
	histories   [][]model.Message
	historyErrs []error
	ackErr      error
	upload      *model.UploadResult
	uploadErr   error
	chats       []model.ChatSummary

	submits      []model.SubmitRequest
	stateCalls   int
	stateIDs     []int64
	historyCalls int
	ackCalls     int
	listCalls    int
}

func (f *fakeBackend) Submit(ctx context.Context, req model.SubmitRequest) (*model.SubmitResponse, error) {
	f.mu.Lock()
	f.submits = append(f.submits, req)
	fn := f.submit
	f.mu.Unlock()
	if fn == nil {
		return nil, errors.New("submit not scripted")
	}
	return fn(ctx, req)
}

func (f *fakeBackend) MessageState(ctx context.Context, chatID int64) (string, error) {
	f.mu.Lock()
	f.stateCalls++
	f.stateIDs = append(f.stateIDs, chatID)
	fn := f.stateFn
	var reply stateReply
	if fn == nil {
		if len(f.states) == 0 {
			reply = stateReply{state: string(StateAnalyzing)}
		} else {
			reply = f.states[0]
			if len(f.states) > 1 {
				f.states = f.states[1:]
			}
		}
	}
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return reply.state, reply.err
}

func (f *fakeBackend) Complete(ctx context.Context, chatID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ackCalls++
	return f.ackErr
}

func (f *fakeBackend) History(ctx context.Context, chatID int64) ([]model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.historyCalls
	f.historyCalls++
	if n < len(f.historyErrs) && f.historyErrs[n] != nil {
		return nil, f.historyErrs[n]
	}
	if len(f.histories) == 0 {
		return nil, nil
	}
	if n >= len(f.histories) {
		n = len(f.histories) - 1
	}
	return append([]model.Message(nil), f.histories[n]...), nil
}

func (f *fakeBackend) ListChats(ctx context.Context) ([]model.ChatSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return f.chats, nil
}

func (f *fakeBackend) Upload(ctx context.Context, filename string, r io.Reader) (*model.UploadResult, error) {
	if _, err := io.ReadAll(r); err != nil {
		return nil, err
	}
	return f.upload, f.uploadErr
}

func (f *fakeBackend) counts() (states, histories, acks int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stateCalls, f.historyCalls, f.ackCalls
}

// statePolls counts MessageState calls made for chatID.
func (f *fakeBackend) statePolls(chatID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.stateIDs {
		if v == chatID {
			n++
		}
	}
	return n
}

func (f *fakeBackend) lastSubmit() model.SubmitRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submits[len(f.submits)-1]
}

// recorder keeps every observer event for later inspection.
type recorder struct {
	mu        sync.Mutex
	snaps     []Snapshot
	navigated []int64
	notes     []string
	sessions  [][]model.ChatSummary
}

func (r *recorder) Updated(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) Navigate(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.navigated = append(r.navigated, id)
}

func (r *recorder) SessionsChanged(chats []model.ChatSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = append(r.sessions, chats)
}

func (r *recorder) Notify(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, msg)
}

func (r *recorder) updates() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Snapshot(nil), r.snaps...)
}

func msg(role model.Role, content string) model.Message {
	return model.Message{Role: role, Content: content}
}

// contents strips local ids so lists can be compared by value.
func contents(msgs []model.Message) []model.Message {
	out := make([]model.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, model.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

func placeholders(msgs []model.Message) int {
	n := 0
	for _, m := range msgs {
		if m.IsPlaceholder() {
			n++
		}
	}
	return n
}
