package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kimyounil1/honey-pot-sub000/internal/logger"
	"github.com/kimyounil1/honey-pot-sub000/internal/middleware"
	"github.com/kimyounil1/honey-pot-sub000/internal/model"
	"github.com/kimyounil1/honey-pot-sub000/internal/service"
)

var (
	errNoUserMessage = errors.New("valid user message not found in the request body")
	errTextRequired  = errors.New(`field "text" is required`)
)

type ChatHandler struct {
	upstream   *service.Upstream
	askTimeout time.Duration
}

func NewChatHandler(upstream *service.Upstream, askTimeout time.Duration) *ChatHandler {
	return &ChatHandler{upstream: upstream, askTimeout: askTimeout}
}

// askBody accepts both the flat ask schema and the legacy {messages:[...]} one.
type askBody struct {
	Role          string          `json:"role"`
	Text          string          `json:"text"`
	PrevChats     []string        `json:"prev_chats"`
	ChatID        *int64          `json:"chat_id"`
	DiseaseCode   *string         `json:"disease_code"`
	ProductID     *string         `json:"product_id"`
	AttachmentIDs []string        `json:"attachment_ids"`
	Messages      []model.Message `json:"messages"`
}

// normalize folds a legacy message list into the flat form. The last legacy
// message must come from the user; its attachment wins over top-level fields.
func (b askBody) normalize() (model.AskRequest, error) {
	req := model.AskRequest{
		Role:          b.Role,
		Text:          b.Text,
		PrevChats:     b.PrevChats,
		ChatID:        b.ChatID,
		DiseaseCode:   b.DiseaseCode,
		ProductID:     b.ProductID,
		AttachmentIDs: b.AttachmentIDs,
	}
	if req.Role == "" {
		req.Role = string(model.RoleUser)
	}
	if (req.Text == "" || req.PrevChats == nil) && b.Messages != nil {
		if len(b.Messages) == 0 || b.Messages[len(b.Messages)-1].Role != model.RoleUser {
			return req, errNoUserMessage
		}
		last := b.Messages[len(b.Messages)-1]
		req.Role = string(model.RoleUser)
		req.Text = last.Content
		req.PrevChats = make([]string, 0, len(b.Messages)-1)
		for _, m := range b.Messages[:len(b.Messages)-1] {
			req.PrevChats = append(req.PrevChats, m.Content)
		}
		if a := last.Attachment; a != nil {
			if a.DiseaseCode != nil {
				req.DiseaseCode = a.DiseaseCode
			}
			if a.ProductID != nil {
				req.ProductID = a.ProductID
			}
		}
	}
	if strings.TrimSpace(req.Text) == "" {
		return req, errTextRequired
	}
	return req, nil
}

// POST /api/chat, POST /api/chat/:chat_id
func (h *ChatHandler) Ask(c *gin.Context) {
	var body askBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if c.Param("chat_id") != "" {
		id, ok := chatID(c)
		if !ok {
			return
		}
		body.ChatID = &id
	}
	req, err := body.normalize()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logger.Info("chat.ask", "subject", middleware.Subject(c), logger.ChatID(req.ChatID),
		"prev_chats", len(req.PrevChats), "legacy", body.Messages != nil)
	reply, err := h.upstream.DoForm(c.Request.Context(), http.MethodPost, "/chat/ask",
		middleware.Token(c), req.Form(), h.askTimeout)
	if err != nil {
		fail(c, err)
		return
	}
	relay(c, reply)
}

// GET /api/chat/:chat_id
func (h *ChatHandler) Messages(c *gin.Context) {
	h.get(c, "/chat/%d/messages")
}

// GET /api/chat/:chat_id/messageState
func (h *ChatHandler) State(c *gin.Context) {
	h.get(c, "/chat/%d/messageState")
}

// GET|POST /api/chat/:chat_id/messageState/complete
func (h *ChatHandler) Complete(c *gin.Context) {
	h.get(c, "/chat/%d/messageState/complete")
}

// GET /api/chat/chats
func (h *ChatHandler) Chats(c *gin.Context) {
	reply, err := h.upstream.DoJSON(c.Request.Context(), http.MethodGet, "/chat/chats", middleware.Token(c), nil)
	if err != nil {
		fail(c, err)
		return
	}
	relay(c, reply)
}

func (h *ChatHandler) get(c *gin.Context, pattern string) {
	id, ok := chatID(c)
	if !ok {
		return
	}
	reply, err := h.upstream.DoJSON(c.Request.Context(), http.MethodGet, fmt.Sprintf(pattern, id), middleware.Token(c), nil)
	if err != nil {
		fail(c, err)
		return
	}
	relay(c, reply)
}
