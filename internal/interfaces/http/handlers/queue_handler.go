package handlers

import (
	"github.com/easayliu/tg-autorename/internal/application/contracts"
	"github.com/easayliu/tg-autorename/pkg/utils"
	"github.com/gin-gonic/gin"
)

// QueueHandler 队列状态处理器
type QueueHandler struct {
	queue contracts.RenameQueue
}

// NewQueueHandler 创建队列状态处理器
func NewQueueHandler(queue contracts.RenameQueue) *QueueHandler {
	return &QueueHandler{queue: queue}
}

// GetStats 获取队列统计
// @Summary 队列统计
// @Description 返回工作线程数、排队与处理中的任务数量以及累计结果
// @Tags 队列
// @Produce json
// @Success 200 {object} utils.Response{data=contracts.QueueStats}
// @Router /queue/stats [get]
func (h *QueueHandler) GetStats(c *gin.Context) {
	utils.Success(c, h.queue.Stats())
}
