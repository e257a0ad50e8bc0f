package handler

import (
	"time"

	"github.com/Wrestler094/launchpad/internal/model"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// 分页信息结构
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"totalPage"`
}

// NewPagination 计算分页信息
func NewPagination(page, pageSize int, total int64) Pagination {
	totalPage := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		totalPage++
	}
	return Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	}
}

// 预售相关响应模型

// PresaleResponse 预售响应模型
type PresaleResponse struct {
	ID            int64     `json:"id"`
	TokenAddress  string    `json:"tokenAddress"`
	Beneficiary   string    `json:"beneficiary"`
	Rate          uint64    `json:"rate"`
	SoftCap       string    `json:"softCap"`
	HardCap       string    `json:"hardCap"`
	TotalRaised   string    `json:"totalRaised"`
	Deadline      time.Time `json:"deadline"`
	CapPolicy     string    `json:"capPolicy"`
	Status        string    `json:"status"`
	Cancelled     bool      `json:"cancelled"`
	FundsReleased bool      `json:"fundsReleased"`
	LandingPageId string    `json:"landingPageId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ToPresaleResponse 模型转响应
func ToPresaleResponse(m *model.PresaleModel) PresaleResponse {
	return PresaleResponse{
		ID:            m.Id,
		TokenAddress:  m.TokenAddress,
		Beneficiary:   m.Beneficiary,
		Rate:          m.Rate,
		SoftCap:       m.SoftCap.String(),
		HardCap:       m.HardCap.String(),
		TotalRaised:   m.TotalRaised.String(),
		Deadline:      m.Deadline,
		CapPolicy:     m.CapPolicy,
		Status:        string(m.Status),
		Cancelled:     m.Cancelled,
		FundsReleased: m.FundsReleased,
		LandingPageId: m.LandingPageId,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// GetPresalesResponse 获取预售列表响应
type GetPresalesResponse struct {
	Presales   []PresaleResponse `json:"presales"`
	Pagination Pagination        `json:"pagination"`
}

// ContributionResponse 出资记录响应模型
type ContributionResponse struct {
	ID              int64     `json:"id"`
	PresaleId       int64     `json:"presaleId"`
	Address         string    `json:"address"`
	Amount          string    `json:"amount"`
	Refunded        bool      `json:"refunded"`
	TransferPending bool      `json:"transferPending"`
	Claimed         bool      `json:"claimed"`
	MintPending     bool      `json:"mintPending"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ToContributionResponse 模型转响应
func ToContributionResponse(m *model.ContributionModel) ContributionResponse {
	return ContributionResponse{
		ID:              m.Id,
		PresaleId:       m.PresaleId,
		Address:         m.Address,
		Amount:          m.Amount.String(),
		Refunded:        m.Refunded,
		TransferPending: m.TransferPending,
		Claimed:         m.Claimed,
		MintPending:     m.MintPending,
		CreatedAt:       m.CreatedAt,
	}
}

// GetContributionsResponse 获取出资记录响应
type GetContributionsResponse struct {
	Contributions []ContributionResponse `json:"contributions"`
	Pagination    Pagination             `json:"pagination"`
}

// RefundRecordResponse 退款记录响应模型
type RefundRecordResponse struct {
	ID        int64     `json:"id"`
	PresaleId int64     `json:"presaleId"`
	Address   string    `json:"address"`
	Amount    string    `json:"amount"`
	Status    string    `json:"status"`
	TxHash    string    `json:"txHash"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToRefundRecordResponse 模型转响应
func ToRefundRecordResponse(m *model.RefundRecordModel) RefundRecordResponse {
	return RefundRecordResponse{
		ID:        m.Id,
		PresaleId: m.PresaleId,
		Address:   m.Address,
		Amount:    m.Amount.String(),
		Status:    m.Status,
		TxHash:    m.TxHash,
		Reason:    m.Reason,
		CreatedAt: m.CreatedAt,
	}
}

// 请求模型

// CreatePresaleRequest 创建预售请求
type CreatePresaleRequest struct {
	TokenAddress string    `json:"tokenAddress" binding:"required"`
	Beneficiary  string    `json:"beneficiary" binding:"required"`
	Rate         uint64    `json:"rate" binding:"required"`
	SoftCap      string    `json:"softCap" binding:"required"`
	HardCap      string    `json:"hardCap" binding:"required"`
	Deadline     time.Time `json:"deadline" binding:"required"`
	CapPolicy    string    `json:"capPolicy"`
}

// CallerRequest 带调用者地址的请求（地址由接入层认证后注入）
type CallerRequest struct {
	Caller string `json:"caller" binding:"required"`
}

// ContributeRequest 出资请求
type ContributeRequest struct {
	Address string `json:"address" binding:"required"`
	Amount  string `json:"amount" binding:"required"`
}

// RefundRequest 退款请求
type RefundRequest struct {
	Address string `json:"address" binding:"required"`
}
