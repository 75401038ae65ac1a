package handler

import (
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kimyounil1/honey-pot-sub000/internal/middleware"
	"github.com/kimyounil1/honey-pot-sub000/internal/service"
)

// ProxyHandler forwards routes that need nothing beyond the bearer token.
type ProxyHandler struct {
	upstream *service.Upstream
}

func NewProxyHandler(upstream *service.Upstream) *ProxyHandler {
	return &ProxyHandler{upstream: upstream}
}

// Forward relays the request to target, a backend path whose :name segments
// are filled from the matching route params. Method, query string, body and
// content type pass through as received.
func (h *ProxyHandler) Forward(target string, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := expand(target, c)
		if q := c.Request.URL.RawQuery; q != "" {
			path += "?" + q
		}
		call := service.Call{
			Method:  c.Request.Method,
			Path:    path,
			Token:   middleware.Token(c),
			Timeout: timeout,
		}
		if c.Request.ContentLength != 0 && c.Request.Body != nil {
			call.Body = c.Request.Body
			call.ContentType = c.GetHeader("Content-Type")
		}
		reply, err := h.upstream.Do(c.Request.Context(), call)
		if err != nil {
			fail(c, err)
			return
		}
		relay(c, reply)
	}
}

func expand(target string, c *gin.Context) string {
	segs := strings.Split(target, "/")
	for i, s := range segs {
		if strings.HasPrefix(s, ":") {
			segs[i] = url.PathEscape(c.Param(s[1:]))
		}
	}
	return strings.Join(segs, "/")
}
