package router

import (
	"github.com/gin-gonic/gin"

	"github.com/Wrestler094/launchpad/internal/handler"
	"github.com/Wrestler094/launchpad/internal/logic"
)

func Setup(presaleLogic *logic.PresaleLogic) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "launchpad",
		})
	})

	// API版本组
	v1 := r.Group("/api/v1")
	{
		presaleHandler := handler.NewPresaleHandler(presaleLogic)
		contributeHandler := handler.NewContributeHandler(presaleLogic)
		refundHandler := handler.NewRefundHandler(presaleLogic)

		// 预售相关路由
		presales := v1.Group("/presales")
		{
			presales.POST("", presaleHandler.CreatePresale)
			presales.GET("", presaleHandler.GetPresales)
			presales.GET("/:id", presaleHandler.GetPresale)
			presales.POST("/:id/activate", presaleHandler.ActivatePresale)
			presales.POST("/:id/close", presaleHandler.ClosePresale)
			presales.POST("/:id/finalize", presaleHandler.FinalizePresale)
			presales.POST("/:id/cancel", presaleHandler.CancelPresale)
			presales.POST("/:id/retry-mints", presaleHandler.RetryMints)
			presales.GET("/:id/stats", presaleHandler.GetPresaleStats)

			presales.POST("/:id/contribute", contributeHandler.Contribute)
			presales.GET("/:id/contributions", contributeHandler.GetContributions)
			presales.GET("/:id/contributions/:address", contributeHandler.GetContribution)

			presales.POST("/:id/refund", refundHandler.Refund)
			presales.GET("/:id/refunds", refundHandler.GetRefundRecords)
		}

		// 落地页入口
		v1.GET("/landing/:landing_id", presaleHandler.GetPresaleByLandingPage)
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
