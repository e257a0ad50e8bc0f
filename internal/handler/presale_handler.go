package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Wrestler094/launchpad/internal/amount"
	"github.com/Wrestler094/launchpad/internal/logic"
	"github.com/Wrestler094/launchpad/internal/presale"
)

type PresaleHandler struct {
	presaleLogic *logic.PresaleLogic
}

func NewPresaleHandler(presaleLogic *logic.PresaleLogic) *PresaleHandler {
	return &PresaleHandler{
		presaleLogic: presaleLogic,
	}
}

// CreatePresale 创建预售
func (h *PresaleHandler) CreatePresale(c *gin.Context) {
	var req CreatePresaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	softCap, err := amount.Parse(req.SoftCap)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的软顶金额")
		return
	}
	hardCap, err := amount.Parse(req.HardCap)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的硬顶金额")
		return
	}

	// 调用logic层创建预售
	m, err := h.presaleLogic.CreatePresale(logic.CreatePresaleParams{
		TokenAddress: req.TokenAddress,
		Beneficiary:  req.Beneficiary,
		Rate:         req.Rate,
		SoftCap:      softCap,
		HardCap:      hardCap,
		Deadline:     req.Deadline,
		CapPolicy:    req.CapPolicy,
	}, time.Now())
	if err != nil {
		FailWith(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "预售创建成功", ToPresaleResponse(m))
}

// GetPresales 获取预售列表
func (h *PresaleHandler) GetPresales(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	presales, total, err := h.presaleLogic.GetPresales(page, pageSize)
	if err != nil {
		FailWith(c, err)
		return
	}

	items := make([]PresaleResponse, 0, len(presales))
	for i := range presales {
		items = append(items, ToPresaleResponse(&presales[i]))
	}
	SuccessResponse(c, http.StatusOK, "获取预售列表成功", GetPresalesResponse{
		Presales:   items,
		Pagination: NewPagination(page, pageSize, total),
	})
}

// GetPresale 获取预售详情
func (h *PresaleHandler) GetPresale(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的预售ID")
		return
	}

	m, err := h.presaleLogic.GetPresale(id)
	if err != nil {
		FailWith(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "获取预售详情成功", ToPresaleResponse(m))
}

// GetPresaleByLandingPage 按落地页ID获取预售
func (h *PresaleHandler) GetPresaleByLandingPage(c *gin.Context) {
	landingId := c.Param("landing_id")
	if landingId == "" {
		ErrorResponse(c, http.StatusBadRequest, "无效的落地页ID")
		return
	}

	m, err := h.presaleLogic.GetPresaleByLandingPage(landingId)
	if err != nil {
		FailWith(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "获取预售详情成功", ToPresaleResponse(m))
}

// ActivatePresale 受益人激活预售
func (h *PresaleHandler) ActivatePresale(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的预售ID")
		return
	}

	var req CallerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.presaleLogic.Activate(id, req.Caller); err != nil {
		FailWith(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "预售激活成功", nil)
}

// ClosePresale 检查并执行关闭转换
func (h *PresaleHandler) ClosePresale(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的预售ID")
		return
	}

	closed, err := h.presaleLogic.CheckClose(id, time.Now())
	if err != nil {
		FailWith(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "关闭检查完成", gin.H{"closed": closed})
}

// FinalizePresale 裁决预售
func (h *PresaleHandler) FinalizePresale(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的预售ID")
		return
	}

	res, err := h.presaleLogic.Finalize(id, time.Now())
	if err != nil {
		FailWith(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "预售裁决完成", gin.H{
		"outcome":       string(res.Outcome),
		"totalRaised":   res.TotalRaised.String(),
		"mintFailures":  res.MintFailures,
		"payoutPending": res.PayoutPending,
	})
}

// CancelPresale 受益人取消预售
func (h *PresaleHandler) CancelPresale(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的预售ID")
		return
	}

	var req CallerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.presaleLogic.Cancel(id, req.Caller); err != nil {
		FailWith(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "预售取消成功", nil)
}

// RetryMints 补投失败的铸币并补放款
func (h *PresaleHandler) RetryMints(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的预售ID")
		return
	}

	failures, err := h.presaleLogic.RetryMints(id)
	if err != nil {
		FailWith(c, err)
		return
	}
	if err := h.presaleLogic.ReleasePayout(id); err != nil && !presale.Retryable(err) {
		FailWith(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "铸币补投完成", gin.H{"failures": failures})
}

// GetPresaleStats 获取预售统计信息
func (h *PresaleHandler) GetPresaleStats(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的预售ID")
		return
	}

	stats, err := h.presaleLogic.GetPresaleStats(id, time.Now())
	if err != nil {
		FailWith(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "获取预售统计成功", stats)
}
