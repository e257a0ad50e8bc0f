package logic

import "errors"

// ErrPresaleNotFound 预售不存在
var ErrPresaleNotFound = errors.New("预售不存在")

// ErrContributionNotFound 出资记录不存在
var ErrContributionNotFound = errors.New("未找到出资记录")
