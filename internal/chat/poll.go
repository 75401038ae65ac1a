package chat

import (
	"context"
	"time"

	"github.com/kimyounil1/honey-pot-sub000/internal/logger"
)

type pollLoop struct {
	gen    uint64
	chatID int64
	cancel context.CancelFunc
	done   chan struct{}
}

// startPolling replaces any running loop with one tracking chatID.
// The caller holds c.lifecycle.
func (c *Controller) startPolling(chatID int64) {
	c.stopPolling()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(c.root)
	loop := &pollLoop{gen: c.gen, chatID: chatID, cancel: cancel, done: make(chan struct{})}
	c.loop = loop
	c.mu.Unlock()

	logger.Debug("chat.poll.start", "chat_id", chatID)
	go c.poll(ctx, loop)
}

// stopPolling cancels the running loop and waits for its goroutine to exit,
// so nothing it does can land after this returns. The caller holds c.lifecycle.
func (c *Controller) stopPolling() {
	c.mu.Lock()
	loop := c.loop
	c.loop = nil
	c.gen++
	c.mu.Unlock()

	if loop == nil {
		return
	}
	loop.cancel()
	<-loop.done
	logger.Debug("chat.poll.stop", "chat_id", loop.chatID)
}

// poll asks for the processing state, waiting a fixed delay after each round
// trip, until a terminal state is seen or the loop is cancelled. A failed
// round trip is logged and retried on the next tick.
func (c *Controller) poll(ctx context.Context, loop *pollLoop) {
	defer close(loop.done)
	defer loop.cancel()

	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for {
		raw, err := c.backend.MessageState(ctx, loop.chatID)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			logger.Warn("chat.poll.failed", "chat_id", loop.chatID, "err", err)
		} else {
			state := State(raw)
			if !c.observe(loop.gen, state) {
				return
			}
			if IsTerminal(state) {
				c.finish(ctx, loop)
				return
			}
		}

		timer.Reset(c.interval)
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}

// observe records a polled state. It returns false once the loop is stale.
func (c *Controller) observe(gen uint64, state State) bool {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return false
	}
	changed := c.sess.state != state
	c.sess.state = state
	c.mu.Unlock()

	if changed {
		c.publish()
	}
	return true
}

// finish reconciles with server history after a terminal state and
// acknowledges it.
func (c *Controller) finish(ctx context.Context, loop *pollLoop) {
	records, err := c.backend.History(ctx, loop.chatID)
	if ctx.Err() != nil {
		return
	}

	c.mu.Lock()
	if loop.gen != c.gen {
		c.mu.Unlock()
		return
	}
	if err != nil {
		logger.Warn("chat.history.failed", "chat_id", loop.chatID, "err", err)
	} else {
		c.sess.applyHistory(records)
	}
	c.sess.pending = nil
	c.mu.Unlock()
	c.publish()

	c.acknowledge(ctx, loop.chatID)
}

func (c *Controller) acknowledge(ctx context.Context, chatID int64) {
	if err := c.backend.Complete(ctx, chatID); err != nil && ctx.Err() == nil {
		logger.Warn("chat.ack.failed", "chat_id", chatID, "err", err)
	}
}
