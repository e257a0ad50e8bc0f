package task

import (
	"errors"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/panjf2000/ants/v2"

	"github.com/Wrestler094/launchpad/internal/config"
	"github.com/Wrestler094/launchpad/internal/logger"
	"github.com/Wrestler094/launchpad/internal/logic"
	"github.com/Wrestler094/launchpad/internal/presale"
)

// PresaleCloseJob 到期关闭与裁决任务。
// 扫描进行中的预售，执行到期或满额的关闭转换，并立即裁决已关闭的预售。
type PresaleCloseJob struct {
	presaleLogic *logic.PresaleLogic
	config       *config.Config
}

// NewPresaleCloseJob 创建到期关闭任务
func NewPresaleCloseJob(presaleLogic *logic.PresaleLogic, cfg *config.Config) *PresaleCloseJob {
	return &PresaleCloseJob{
		presaleLogic: presaleLogic,
		config:       cfg,
	}
}

// GetName 获取任务名称
func (j *PresaleCloseJob) GetName() string {
	return "presale_close_updater"
}

// GetSchedule 获取调度配置
func (j *PresaleCloseJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *PresaleCloseJob) Execute() {
	logger.Info("Starting presale close task")

	now := time.Now()

	ids, err := j.presaleLogic.ListPresaleIdsByStatus(presale.StateActive, presale.StateClosed)
	if err != nil {
		logger.Error("Failed to fetch presales for close check: %v", err)
		return
	}
	if len(ids) == 0 {
		logger.Debug("No presales to check")
		return
	}

	pool, err := ants.NewPool(len(ids))
	if err != nil {
		logger.Error("Failed to create pool for %d presales: %v", len(ids), err)
		return
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for _, id := range ids {
		id := id
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			j.process(id, now)
		})
		if err != nil {
			wg.Done()
			logger.Error("Failed to submit task to pool: %v", err)
		}
	}
	wg.Wait()

	logger.Info("Presale close task completed. Checked %d presales", len(ids))
}

func (j *PresaleCloseJob) process(id int64, now time.Time) {
	closed, err := j.presaleLogic.CheckClose(id, now)
	if err != nil {
		logger.Error("Close check failed for presale %d: %v", id, err)
		return
	}
	if closed {
		logger.Info("Presale %d closed", id)
	}

	// 已关闭则裁决。未到裁决条件时Finalize返回业务错误，忽略即可。
	res, err := j.presaleLogic.Finalize(id, now)
	if err != nil {
		if !errors.Is(err, presale.ErrSaleNotClosed) && !errors.Is(err, presale.ErrAlreadyFinalized) {
			logger.Error("Finalize failed for presale %d: %v", id, err)
		}
		return
	}
	logger.Info("Presale %d finalized: outcome=%s raised=%s", id, res.Outcome, res.TotalRaised.String())
}
