package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Wrestler094/launchpad/internal/logic"
	"github.com/Wrestler094/launchpad/internal/presale"
)

type RefundHandler struct {
	presaleLogic *logic.PresaleLogic
}

func NewRefundHandler(presaleLogic *logic.PresaleLogic) *RefundHandler {
	return &RefundHandler{
		presaleLogic: presaleLogic,
	}
}

// Refund 参与者申请退款
func (h *RefundHandler) Refund(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的预售ID")
		return
	}

	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	amt, err := h.presaleLogic.Refund(id, req.Address)
	if err != nil {
		if presale.Retryable(err) {
			// 退款已授权，打款投递失败，后台任务会补投
			SuccessResponse(c, http.StatusAccepted, "退款已受理，打款稍后到账", gin.H{
				"amount":  amt.String(),
				"pending": true,
			})
			return
		}
		FailWith(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "退款成功", gin.H{
		"amount":  amt.String(),
		"pending": false,
	})
}

// GetRefundRecords 获取预售退款记录
func (h *RefundHandler) GetRefundRecords(c *gin.Context) {
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

	refunds, total, err := h.presaleLogic.GetRefundRecords(id, page, pageSize)
	if err != nil {
		FailWith(c, err)
		return
	}

	items := make([]RefundRecordResponse, 0, len(refunds))
	for i := range refunds {
		items = append(items, ToRefundRecordResponse(&refunds[i]))
	}
	SuccessResponse(c, http.StatusOK, "获取退款记录成功", gin.H{
		"refunds":    items,
		"pagination": NewPagination(page, pageSize, total),
	})
}
