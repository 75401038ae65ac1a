package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kimyounil1/honey-pot-sub000/internal/logger"
	"github.com/kimyounil1/honey-pot-sub000/internal/service"
)

// relay writes the backend reply back unchanged.
func relay(c *gin.Context, reply *service.Reply) {
	ct := reply.ContentType
	if ct == "" {
		ct = "text/plain; charset=utf-8"
	}
	c.Data(reply.Status, ct, reply.Body)
}

func fail(c *gin.Context, err error) {
	logger.Error("proxy.failed", "route", c.FullPath(), "err", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func chatID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("chat_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return 0, false
	}
	return id, true
}
