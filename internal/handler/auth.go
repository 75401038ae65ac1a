package handler

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/kimyounil1/honey-pot-sub000/internal/config"
	"github.com/kimyounil1/honey-pot-sub000/internal/logger"
	"github.com/kimyounil1/honey-pot-sub000/internal/model"
	"github.com/kimyounil1/honey-pot-sub000/internal/service"
)

const refreshCookie = "refresh_token"

type AuthHandler struct {
	upstream *service.Upstream
	cfg      config.AuthConfig
	secure   bool
}

func NewAuthHandler(upstream *service.Upstream, cfg config.AuthConfig, secure bool) *AuthHandler {
	return &AuthHandler{upstream: upstream, cfg: cfg, secure: secure}
}

// POST /api/login  form: username, password
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	form := url.Values{"username": {req.Username}, "password": {req.Password}}
	reply, err := h.upstream.DoForm(c.Request.Context(), http.MethodPost, "/users/login", "", form, 0)
	if err != nil {
		fail(c, err)
		return
	}
	if !reply.OK() {
		logger.Warn("login.failed", "username", req.Username, "status", reply.Status)
		if json.Valid(reply.Body) {
			c.Data(reply.Status, "application/json", reply.Body)
		} else {
			c.JSON(reply.Status, gin.H{"error": "Invalid credentials"})
		}
		return
	}

	var out model.LoginResponse
	if err := reply.Decode(&out); err != nil || out.AccessToken == "" {
		logger.Error("login.bad_reply", "username", req.Username, "err", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "invalid login response"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, out.AccessToken, h.cfg.CookieMaxAgeS, "/", "", h.secure, true)
	logger.Info("login.ok", "username", req.Username)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// POST /api/signup  body: backend user payload
func (h *AuthHandler) Signup(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || !json.Valid(body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	reply, err := h.upstream.DoJSON(c.Request.Context(), http.MethodPost, "/users/", "", json.RawMessage(body))
	if err != nil {
		fail(c, err)
		return
	}
	if !reply.OK() {
		logger.Warn("signup.failed", "status", reply.Status)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GET|POST /api/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, "", -1, "/", "", h.secure, true)
	c.SetCookie(refreshCookie, "", -1, "/", "", h.secure, true)
	c.Status(http.StatusNoContent)
}
