package presale

import "time"

// Expired 判断截止时间是否已过。核心代码从不读取墙钟，
// now由调用方在每次变更调用时传入，保证所有状态转换可确定性重放。
func Expired(deadline, now time.Time) bool {
	return !now.Before(deadline)
}
