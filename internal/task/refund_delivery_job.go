package task

import (
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/Wrestler094/launchpad/internal/config"
	"github.com/Wrestler094/launchpad/internal/logger"
	"github.com/Wrestler094/launchpad/internal/logic"
)

// RefundDeliveryJob 退款补投任务。
// 退款授权在账本侧已落定、打款投递失败的记录由本任务兜底补投。
type RefundDeliveryJob struct {
	presaleLogic *logic.PresaleLogic
	config       *config.Config
}

// NewRefundDeliveryJob 创建退款补投任务
func NewRefundDeliveryJob(presaleLogic *logic.PresaleLogic, cfg *config.Config) *RefundDeliveryJob {
	return &RefundDeliveryJob{
		presaleLogic: presaleLogic,
		config:       cfg,
	}
}

// GetName 获取任务名称
func (j *RefundDeliveryJob) GetName() string {
	return "refund_delivery_updater"
}

// GetSchedule 获取调度配置
func (j *RefundDeliveryJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *RefundDeliveryJob) Execute() {
	logger.Info("Starting refund delivery task")

	ids, err := j.presaleLogic.ListPresaleIdsWithPendingRefunds()
	if err != nil {
		logger.Error("Failed to fetch presales with pending refunds: %v", err)
		return
	}
	if len(ids) == 0 {
		logger.Debug("No pending refund deliveries")
		return
	}

	total := 0
	for _, id := range ids {
		delivered, err := j.presaleLogic.RetryRefundDeliveries(id)
		if err != nil {
			logger.Error("Refund delivery retry failed for presale %d: %v", id, err)
			continue
		}
		total += delivered
	}

	logger.Info("Refund delivery task completed. Delivered %d refunds", total)
}
