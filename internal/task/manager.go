package task

import (
	"github.com/go-co-op/gocron/v2"

	"github.com/Wrestler094/launchpad/internal/config"
	"github.com/Wrestler094/launchpad/internal/logger"
	"github.com/Wrestler094/launchpad/internal/logic"
)

// Manager 任务管理器
type Manager struct {
	scheduler    gocron.Scheduler
	presaleLogic *logic.PresaleLogic
	config       *config.Config
}

// NewManager 创建新的任务管理器
func NewManager(presaleLogic *logic.PresaleLogic, cfg *config.Config) *Manager {
	s, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}

	return &Manager{
		scheduler:    s,
		presaleLogic: presaleLogic,
		config:       cfg,
	}
}

// Start 启动任务管理器
func Start(presaleLogic *logic.PresaleLogic, cfg *config.Config) *Manager {
	manager := NewManager(presaleLogic, cfg)

	// 注册所有任务
	manager.RegisterJobs()

	// 启动调度器
	manager.scheduler.Start()

	logger.Info("Task manager started successfully")
	return manager
}

// RegisterJobs 注册所有任务
func (m *Manager) RegisterJobs() {
	// 到期关闭与裁决任务
	m.registerJob(NewPresaleCloseJob(m.presaleLogic, m.config))
	// 退款补投任务
	m.registerJob(NewRefundDeliveryJob(m.presaleLogic, m.config))
	// 铸币与放款补投任务
	m.registerJob(NewMintRetryJob(m.presaleLogic, m.config))
}

// Job 后台任务接口
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

func (m *Manager) registerJob(job Job) {
	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", job.GetName(), err)
	}
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}
