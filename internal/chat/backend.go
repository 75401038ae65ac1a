package chat

import (
	"context"
	"io"

	"github.com/kimyounil1/honey-pot-sub000/internal/model"
)

// Backend is the HTTP surface the controller consumes.
type Backend interface {
	Submit(ctx context.Context, req model.SubmitRequest) (*model.SubmitResponse, error)
	MessageState(ctx context.Context, chatID int64) (string, error)
	Complete(ctx context.Context, chatID int64) error
	History(ctx context.Context, chatID int64) ([]model.Message, error)
	ListChats(ctx context.Context) ([]model.ChatSummary, error)
	Upload(ctx context.Context, filename string, r io.Reader) (*model.UploadResult, error)
}

// Observer receives controller events. Callbacks run on controller
// goroutines and must not call back into the Controller synchronously.
type Observer interface {
	Updated(Snapshot)
	Navigate(chatID int64)
	SessionsChanged([]model.ChatSummary)
	Notify(msg string)
}

// NopObserver ignores every event; embed it to implement a subset.
type NopObserver struct{}

func (NopObserver) Updated(Snapshot)                    {}
func (NopObserver) Navigate(int64)                      {}
func (NopObserver) SessionsChanged([]model.ChatSummary) {}
func (NopObserver) Notify(string)                       {}
