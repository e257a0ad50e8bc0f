package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Wrestler094/launchpad/internal/amount"
	"github.com/Wrestler094/launchpad/internal/logic"
)

type ContributeHandler struct {
	presaleLogic *logic.PresaleLogic
}

func NewContributeHandler(presaleLogic *logic.PresaleLogic) *ContributeHandler {
	return &ContributeHandler{
		presaleLogic: presaleLogic,
	}
}

// Contribute 记录一笔出资
func (h *ContributeHandler) Contribute(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的预售ID")
		return
	}

	var req ContributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	amt, err := amount.Parse(req.Amount)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的出资金额")
		return
	}

	res, err := h.presaleLogic.Contribute(id, req.Address, amt, time.Now())
	if err != nil {
		FailWith(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "出资成功", res)
}

// GetContributions 获取预售出资记录
func (h *ContributeHandler) GetContributions(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的预售ID")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	contributions, total, err := h.presaleLogic.GetContributions(id, page, pageSize)
	if err != nil {
		FailWith(c, err)
		return
	}

	items := make([]ContributionResponse, 0, len(contributions))
	for i := range contributions {
		items = append(items, ToContributionResponse(&contributions[i]))
	}
	SuccessResponse(c, http.StatusOK, "获取出资记录成功", GetContributionsResponse{
		Contributions: items,
		Pagination:    NewPagination(page, pageSize, total),
	})
}

// GetContribution 获取某参与者的出资视图（含权益预览）
func (h *ContributeHandler) GetContribution(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的预售ID")
		return
	}

	address := c.Param("address")
	if address == "" {
		ErrorResponse(c, http.StatusBadRequest, "无效的参与者地址")
		return
	}

	view, err := h.presaleLogic.GetContribution(id, address)
	if err != nil {
		FailWith(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "获取出资记录成功", view)
}
