package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/kimyounil1/honey-pot-sub000/internal/config"
	"github.com/kimyounil1/honey-pot-sub000/internal/middleware"
	"github.com/kimyounil1/honey-pot-sub000/internal/service"
)

// passthrough lists backend routes relayed without any gateway logic.
var passthrough = []struct {
	method string
	route  string
	target string
	upload bool
}{
	{http.MethodGet, "/me/policies", "/me/policies", false},
	{http.MethodGet, "/notifications", "/notifications/", false},
	{http.MethodPost, "/notifications/:id/read", "/notifications/:id/read", false},
	{http.MethodGet, "/notifications/:id/read/mute", "/notifications", false},
	{http.MethodGet, "/claim-timeline", "/claim-timeline", false},
	{http.MethodPost, "/claim-timeline", "/claim-timeline/scan", false},
	{http.MethodPost, "/claim-timeline/scan", "/claim-timeline/scan", false},
	{http.MethodGet, "/refund/overview", "/refund/overview", false},
	{http.MethodPost, "/refund/overview", "/refund/overview", false},
	{http.MethodPost, "/policies/submit", "/policies/submit", false},
	{http.MethodGet, "/policies/:insurer/list", "/policies/:insurer/list", false},
	{http.MethodGet, "/assessments", "/assessments", false},
	{http.MethodPost, "/assessments", "/assessments", false},
	{http.MethodGet, "/assessments/:assessment_id/messages", "/assessments/:assessment_id/messages", false},
	{http.MethodPost, "/assessments/:assessment_id/messages", "/assessments/:assessment_id/messages", false},
	{http.MethodPost, "/assessments/:assessment_id/upload", "/assessments/:assessment_id/upload", true},
}

// NewRouter wires every gateway route. A nil counter disables rate limiting.
func NewRouter(cfg *config.Config, upstream *service.Upstream, counter middleware.Counter) *gin.Engine {
	authH := NewAuthHandler(upstream, cfg.Auth, cfg.IsProduction())
	chatH := NewChatHandler(upstream, cfg.Backend.ChatAskTimeout())
	fileH := NewFileHandler(upstream, cfg.Backend.UploadTimeout())
	proxyH := NewProxyHandler(upstream)

	origins := cfg.Server.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Cache-Control"},
		AllowCredentials: true,
	}))
	if counter != nil {
		r.Use(middleware.RateLimit(counter, cfg.RateLimit.QPS))
	}

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "healthy"}) })

	pub := r.Group("/api")
	pub.POST("/login", authH.Login)
	pub.POST("/signup", authH.Signup)
	pub.GET("/logout", authH.Logout)
	pub.POST("/logout", authH.Logout)

	api := r.Group("/api", middleware.CookieAuth(cfg.Auth.CookieName))
	api.POST("/chat", chatH.Ask)
	api.POST("/chat/:chat_id", chatH.Ask)

	polled := api.Group("", middleware.NoStore())
	polled.GET("/chat/chats", chatH.Chats)
	polled.GET("/chat/:chat_id", chatH.Messages)
	polled.GET("/chat/:chat_id/messageState", chatH.State)
	polled.GET("/chat/:chat_id/messageState/complete", chatH.Complete)
	polled.POST("/chat/:chat_id/messageState/complete", chatH.Complete)
	polled.POST("/file", fileH.Upload)

	for _, p := range passthrough {
		timeout := cfg.Backend.RequestTimeout()
		if p.upload {
			timeout = cfg.Backend.UploadTimeout()
		}
		polled.Handle(p.method, p.route, proxyH.Forward(p.target, timeout))
	}
	return r
}
