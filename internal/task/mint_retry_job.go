package task

import (
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/Wrestler094/launchpad/internal/config"
	"github.com/Wrestler094/launchpad/internal/logger"
	"github.com/Wrestler094/launchpad/internal/logic"
)

// MintRetryJob 铸币与放款补投任务。
// 成功终态下铸币投递失败的参与者与未完成的受益人放款由本任务兜底。
type MintRetryJob struct {
	presaleLogic *logic.PresaleLogic
	config       *config.Config
}

// NewMintRetryJob 创建铸币补投任务
func NewMintRetryJob(presaleLogic *logic.PresaleLogic, cfg *config.Config) *MintRetryJob {
	return &MintRetryJob{
		presaleLogic: presaleLogic,
		config:       cfg,
	}
}

// GetName 获取任务名称
func (j *MintRetryJob) GetName() string {
	return "mint_retry_updater"
}

// GetSchedule 获取调度配置
func (j *MintRetryJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *MintRetryJob) Execute() {
	logger.Info("Starting mint retry task")

	mintIds, err := j.presaleLogic.ListPresaleIdsWithPendingMints()
	if err != nil {
		logger.Error("Failed to fetch presales with pending mints: %v", err)
		return
	}
	for _, id := range mintIds {
		failures, err := j.presaleLogic.RetryMints(id)
		if err != nil {
			logger.Error("Mint retry failed for presale %d: %v", id, err)
			continue
		}
		if len(failures) > 0 {
			logger.Warn("Presale %d still has %d pending mints", id, len(failures))
		}
	}

	payoutIds, err := j.presaleLogic.ListPresaleIdsWithPendingPayout()
	if err != nil {
		logger.Error("Failed to fetch presales with pending payout: %v", err)
		return
	}
	for _, id := range payoutIds {
		if err := j.presaleLogic.ReleasePayout(id); err != nil {
			logger.Warn("Payout retry failed for presale %d: %v", id, err)
			continue
		}
		logger.Info("Released payout for presale %d", id)
	}

	logger.Info("Mint retry task completed. Checked %d presales", len(mintIds)+len(payoutIds))
}
