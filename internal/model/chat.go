package model

import (
	"encoding/json"
	"net/url"
	"strconv"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Attachment references an uploaded artifact that rides on the next user message.
type Attachment struct {
	ProductID   *string `json:"product_id"`
	DiseaseCode *string `json:"disease_code"`
}

// Message is one chat entry. ID is client-local identity only and never crosses the wire.
type Message struct {
	ID         string      `json:"-"`
	Role       Role        `json:"role"`
	Content    string      `json:"content"`
	Type       string      `json:"type,omitempty"`
	State      string      `json:"state,omitempty"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

// IsPlaceholder reports whether m stands in for an assistant answer not yet known.
func (m Message) IsPlaceholder() bool {
	return m.Role == RoleAssistant && m.Content == ""
}

// SubmitRequest is what a chat client posts to the gateway.
type SubmitRequest struct {
	Messages      []Message `json:"messages"`
	ChatID        *int64    `json:"chat_id,omitempty"`
	AttachmentIDs []string  `json:"attachment_ids"`
}

// AskRequest is the body the gateway sends to the backend's /chat/ask.
type AskRequest struct {
	Role          string   `json:"role"`
	Text          string   `json:"text"`
	PrevChats     []string `json:"prev_chats"`
	ChatID        *int64   `json:"chat_id,omitempty"`
	DiseaseCode   *string  `json:"disease_code"`
	ProductID     *string  `json:"product_id"`
	AttachmentIDs []string `json:"attachment_ids,omitempty"`
}

// Form encodes the request the way the backend's ask endpoint binds it.
func (r AskRequest) Form() url.Values {
	f := url.Values{}
	f.Set("role", r.Role)
	f.Set("text", r.Text)
	for _, p := range r.PrevChats {
		f.Add("prev_chats", p)
	}
	if r.ChatID != nil {
		f.Set("chat_id", strconv.FormatInt(*r.ChatID, 10))
	}
	if r.DiseaseCode != nil {
		f.Set("disease_code", *r.DiseaseCode)
	}
	if r.ProductID != nil {
		f.Set("product_id", *r.ProductID)
	}
	if len(r.AttachmentIDs) > 0 {
		ids, _ := json.Marshal(r.AttachmentIDs)
		f.Set("attachment_ids", string(ids))
	}
	return f
}

// SubmitResponse carries either an immediate answer or only the chat id
// when the answer is produced in the background.
type SubmitResponse struct {
	OK      bool   `json:"ok,omitempty"`
	Answer  string `json:"answer,omitempty"`
	ChatID  *int64 `json:"chat_id,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

type StateResponse struct {
	State string `json:"state"`
}

const UploadSuccess = "SUCCESS"

type UploadResult struct {
	ResultCode  string  `json:"result_code"`
	ProductID   *string `json:"product_id,omitempty"`
	DiseaseCode *string `json:"disease_code,omitempty"`
	Detail      string  `json:"detail,omitempty"`
	// Raw holds the response text when it could not be decoded.
	Raw string `json:"-"`
}

func (r *UploadResult) Succeeded() bool {
	return r != nil && r.ResultCode == UploadSuccess
}

// Attachment converts a successful upload into the reference for the next message.
func (r *UploadResult) Attachment() *Attachment {
	if !r.Succeeded() {
		return nil
	}
	return &Attachment{ProductID: r.ProductID, DiseaseCode: r.DiseaseCode}
}

type LoginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}
