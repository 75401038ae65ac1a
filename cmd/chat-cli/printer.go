package main

import (
	"fmt"
	"sync"

	"github.com/kimyounil1/honey-pot-sub000/internal/chat"
	"github.com/kimyounil1/honey-pot-sub000/internal/model"
)

// printer echoes controller events to the terminal. Answers are printed when
// they arrive after a wait; history loaded by Open is printed by the caller.
type printer struct {
	chat.NopObserver

	mu      sync.Mutex
	waiting bool
	status  string
	last    string
}

func (p *printer) Updated(s chat.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s.Status != p.status {
		p.status = s.Status
		if s.Status != "" {
			fmt.Printf("  (%s)\n", s.Status)
		}
	}

	wasWaiting := p.waiting
	p.waiting = s.Pending() || s.Busy
	if !wasWaiting || s.Pending() || len(s.Messages) == 0 {
		return
	}
	m := s.Messages[len(s.Messages)-1]
	if m.Role == model.RoleAssistant && m.Content != p.last {
		p.last = m.Content
		fmt.Printf("\n상담사: %s\n", m.Content)
	}
}

func (p *printer) Navigate(chatID int64) {
	fmt.Printf("  [대화 #%d]\n", chatID)
}

func (p *printer) Notify(msg string) {
	fmt.Println("  !", msg)
}
