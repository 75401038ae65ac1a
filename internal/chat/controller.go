package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/kimyounil1/honey-pot-sub000/internal/logger"
	"github.com/kimyounil1/honey-pot-sub000/internal/model"
)

var (
	ErrEmptyMessage   = errors.New("chat: message is empty")
	ErrBusy           = errors.New("chat: a message is already being sent")
	ErrClosed         = errors.New("chat: controller closed")
	ErrUploadRejected = errors.New("chat: upload rejected")
)

const (
	DefaultPollInterval = 300 * time.Millisecond

	submitFailedText = "오류가 발생했습니다. 잠시 후 다시 시도해주세요."
	answerErrorText  = "오류가 발생했습니다."
	uploadFailedText = "파일 업로드에 실패했습니다. 다시 시도해주세요."
)

type Option func(*Controller)

func WithPollInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observer = o
		}
	}
}

// Controller owns one chat view: optimistic sends, the state poll loop and
// reconciliation with server history.
type Controller struct {
	backend  Backend
	interval time.Duration
	observer Observer

	root   context.Context
	cancel context.CancelFunc

	// lifecycle serializes starting and stopping poll loops.
	lifecycle sync.Mutex

	mu     sync.Mutex
	sess   session
	gen    uint64
	loop   *pollLoop
	closed bool
}

func New(backend Backend, opts ...Option) *Controller {
	c := &Controller{
		backend:  backend,
		interval: DefaultPollInterval,
		observer: NopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.root, c.cancel = context.WithCancel(context.Background())
	return c
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess.snapshot()
}

// Open points the controller at chatID (nil for a brand-new conversation),
// loads its history and starts tracking any answer still in progress.
func (c *Controller) Open(ctx context.Context, chatID *int64) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	c.stopPolling()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.sess.reset(chatID)
	epoch := c.sess.epoch
	c.mu.Unlock()

	if chatID == nil {
		c.publish()
		return nil
	}

	ctx, stop := c.bind(ctx)
	defer stop()
	records, err := c.backend.History(ctx, *chatID)

	c.mu.Lock()
	if c.sess.epoch != epoch || c.closed {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		logger.Warn("chat.open.history_failed", "chat_id", *chatID, "err", err)
	} else {
		c.sess.applyHistory(records)
	}
	c.mu.Unlock()
	c.publish()

	c.startPolling(*chatID)
	return nil
}

// Submit sends text as a new user message. Overlapping calls are rejected
// with ErrBusy. Backend failures are rendered in place and are not returned.
func (c *Controller) Submit(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.sess.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.sess.busy = true
	c.mu.Unlock()

	c.lifecycle.Lock()
	c.stopPolling()
	c.lifecycle.Unlock()

	c.mu.Lock()
	epoch := c.sess.epoch
	att := c.sess.attachment
	user := model.Message{ID: newLocalID(), Role: model.RoleUser, Content: text, Attachment: att}
	outgoing := make([]model.Message, 0, len(c.sess.history)+1)
	outgoing = append(outgoing, c.sess.history...)
	outgoing = append(outgoing, user)
	c.sess.history = append(c.sess.history, user)
	c.sess.pending = &model.Message{ID: newLocalID(), Role: model.RoleAssistant}
	c.sess.state = StateCommencing
	chatID := copyID(c.sess.chatID)
	c.mu.Unlock()
	defer c.release(att)
	c.publish()

	logger.Info("chat.submit", logger.ChatID(chatID), "messages", len(outgoing), "attachment", att != nil)

	reqCtx, stop := c.bind(ctx)
	defer stop()
	resp, err := c.backend.Submit(reqCtx, model.SubmitRequest{
		Messages:      outgoing,
		ChatID:        chatID,
		AttachmentIDs: []string{},
	})
	if err == nil && resp == nil {
		err = errors.New("empty submit response")
	}

	c.mu.Lock()
	if c.sess.epoch != epoch || c.closed {
		c.mu.Unlock()
		logger.Debug("chat.submit.superseded", logger.ChatID(chatID))
		return nil
	}
	var pollID *int64
	switch {
	case err != nil:
		logger.Warn("chat.submit.failed", logger.ChatID(chatID), "err", err)
		c.sess.resolve(submitFailedText)
		c.sess.state = StateFailed
	case resp.Answer != "":
		c.sess.resolve(resp.Answer)
		c.sess.state = StateDone
	case resp.ChatID != nil:
		pollID = copyID(resp.ChatID)
	default:
		msg := resp.Error
		if msg == "" {
			msg = answerErrorText
		}
		c.sess.resolve(msg)
		c.sess.state = StateFailed
	}
	var assigned *int64
	if err == nil && resp.ChatID != nil && c.sess.chatID == nil {
		c.sess.chatID = copyID(resp.ChatID)
		assigned = copyID(resp.ChatID)
	}
	if pollID == nil && assigned == nil {
		c.mu.Unlock()
		c.publish()
		return nil
	}
	c.mu.Unlock()
	c.publish()

	if assigned != nil {
		logger.Info("chat.created", "chat_id", *assigned)
		c.observer.Navigate(*assigned)
		c.RefreshSessions(reqCtx)
	}
	if pollID != nil {
		c.lifecycle.Lock()
		c.mu.Lock()
		current := c.sess.epoch == epoch
		c.mu.Unlock()
		if current {
			c.startPolling(*pollID)
		}
		c.lifecycle.Unlock()
	}
	return nil
}

// release clears the busy flag and consumes the attachment that rode on the send.
func (c *Controller) release(att *model.Attachment) {
	c.mu.Lock()
	c.sess.busy = false
	if att != nil && c.sess.attachment == att {
		c.sess.attachment = nil
	}
	c.mu.Unlock()
	c.publish()
}

// Upload sends a file and, when the backend accepts it, keeps the result as
// the attachment of the next submitted message.
func (c *Controller) Upload(ctx context.Context, filename string, r io.Reader) error {
	ctx, stop := c.bind(ctx)
	defer stop()

	res, err := c.backend.Upload(ctx, filename, r)
	if err != nil {
		logger.Warn("chat.upload.failed", "file", filename, "err", err)
		c.observer.Notify(uploadFailedText)
		return fmt.Errorf("upload %s: %w", filename, err)
	}
	if !res.Succeeded() {
		logger.Warn("chat.upload.rejected", "file", filename, "result_code", res.ResultCode, "raw", res.Raw)
		c.observer.Notify(uploadFailedText)
		return ErrUploadRejected
	}

	c.mu.Lock()
	c.sess.attachment = res.Attachment()
	c.mu.Unlock()
	logger.Info("chat.upload.ok", "file", filename, "product_id", res.ProductID, "disease_code", res.DiseaseCode)
	c.publish()
	return nil
}

// RefreshSessions reloads the user's conversation list. Failures keep the old list.
func (c *Controller) RefreshSessions(ctx context.Context) {
	ctx, stop := c.bind(ctx)
	defer stop()

	chats, err := c.backend.ListChats(ctx)
	if err != nil {
		logger.Warn("chat.sessions.failed", "err", err)
		return
	}
	c.mu.Lock()
	c.sess.chats = chats
	c.mu.Unlock()
	c.observer.SessionsChanged(append([]model.ChatSummary(nil), chats...))
}

// Close stops the poll loop and aborts in-flight requests. It is safe to call twice.
func (c *Controller) Close() {
	c.cancel()
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	c.stopPolling()
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *Controller) publish() {
	c.observer.Updated(c.Snapshot())
}

// bind derives a context that is also cancelled when the controller closes.
func (c *Controller) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	unregister := context.AfterFunc(c.root, cancel)
	return ctx, func() {
		unregister()
		cancel()
	}
}
