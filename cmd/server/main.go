package main

import (
	"github.com/gin-gonic/gin"

	"github.com/Wrestler094/launchpad/internal/config"
	"github.com/Wrestler094/launchpad/internal/database"
	"github.com/Wrestler094/launchpad/internal/ethereum"
	"github.com/Wrestler094/launchpad/internal/logger"
	"github.com/Wrestler094/launchpad/internal/logic"
	"github.com/Wrestler094/launchpad/internal/presale"
	"github.com/Wrestler094/launchpad/internal/router"
	"github.com/Wrestler094/launchpad/internal/task"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	logger.Setup(cfg.Log)
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 初始化链客户端，未配置RPC节点时使用内存模拟客户端
	var chain logic.ChainClient
	if cfg.Chain.RpcUrl == "" {
		logger.Warn("No RPC URL configured, using in-memory mock chain client")
		chain = ethereum.NewMockClient()
	} else {
		client, err := ethereum.Init(cfg.Chain)
		if err != nil {
			logger.Fatal("Failed to initialize ethereum client: %v", err)
		}
		chain = client
	}

	// 初始化业务逻辑
	presaleLogic := logic.NewPresaleLogic(db, chain, presale.CapPolicy(cfg.Presale.CapPolicy))

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(presaleLogic)

	// 启动定时任务
	manager := task.Start(presaleLogic, cfg)
	defer manager.Stop()

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
