package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthHandler 健康检查与 Prometheus 指标接口
type HealthHandler struct {
	engine gin.IRouter
}

func NewHealthHandler(engine gin.IRouter) *HealthHandler {
	return &HealthHandler{engine: engine}
}

func (h *HealthHandler) Init() error {
	h.engine.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"message": "hello ok！",
		})
	})
	h.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return nil
}
