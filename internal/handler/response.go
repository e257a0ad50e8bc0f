package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Wrestler094/launchpad/internal/logic"
	"github.com/Wrestler094/launchpad/internal/presale"
)

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// FailWith 按业务错误类型映射HTTP状态码
func FailWith(c *gin.Context, err error) {
	switch {
	case errors.Is(err, logic.ErrPresaleNotFound),
		errors.Is(err, logic.ErrContributionNotFound):
		ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, presale.ErrInvalidParameters):
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, presale.ErrUnauthorized):
		ErrorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, presale.ErrSaleClosed),
		errors.Is(err, presale.ErrSaleNotClosed),
		errors.Is(err, presale.ErrSaleFinalized),
		errors.Is(err, presale.ErrAlreadyFinalized),
		errors.Is(err, presale.ErrExceedsHardCap),
		errors.Is(err, presale.ErrAlreadyRefunded),
		errors.Is(err, presale.ErrNothingToRefund):
		ErrorResponse(c, http.StatusConflict, err.Error())
	case presale.Retryable(err):
		// 账本侧已落定，投递失败由后台任务兜底
		ErrorResponse(c, http.StatusBadGateway, err.Error())
	default:
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
	}
}
