package presale

import (
	"errors"
	"fmt"
)

// 预售账本层的错误类型。除了外部转账失败（ErrTransferFailed）可重试之外，
// 其余错误都是终态错误，重试同一调用不会成功。
var (
	ErrInvalidParameters = errors.New("presale: invalid parameters")
	ErrSaleClosed        = errors.New("presale: sale closed")
	ErrSaleNotClosed     = errors.New("presale: sale not closed")
	ErrSaleFinalized     = errors.New("presale: sale finalized")
	ErrAlreadyFinalized  = errors.New("presale: already finalized")
	ErrExceedsHardCap    = errors.New("presale: exceeds hard cap")
	ErrAlreadyRefunded   = errors.New("presale: already refunded")
	ErrNothingToRefund   = errors.New("presale: nothing to refund")
	ErrUnauthorized      = errors.New("presale: unauthorized")

	// ErrTransferFailed 外部转账（铸币/打款）失败。账本侧状态已落定，
	// 只有转账投递可以重试，调用方不得据此回滚账本。
	ErrTransferFailed = errors.New("presale: external transfer failed")
)

// transferError 包装外部转账失败的原因
func transferError(cause error) error {
	return fmt.Errorf("%w: %v", ErrTransferFailed, cause)
}

// Retryable 判断错误是否可重试
func Retryable(err error) bool {
	return errors.Is(err, ErrTransferFailed)
}
