package amount

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// ErrOverflow 金额运算溢出
var ErrOverflow = errors.New("amount: overflow")

// Amount 以最小不可分割单位（wei）表示的金额。
// 内部使用256位无符号整数，所有运算都做溢出检查，核心代码中不出现浮点数。
type Amount struct {
	v uint256.Int
}

// Zero 零金额
func Zero() Amount {
	return Amount{}
}

// FromUint64 从uint64构造金额
func FromUint64(u uint64) Amount {
	var a Amount
	a.v.SetUint64(u)
	return a
}

// Parse 解析十进制字符串金额
func Parse(s string) (Amount, error) {
	var a Amount
	if err := a.v.SetFromDecimal(s); err != nil {
		return Amount{}, fmt.Errorf("amount: invalid decimal %q: %w", s, err)
	}
	return a, nil
}

// MustParse 解析十进制字符串金额，失败时panic（仅用于常量和测试）
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Add 加法，溢出时返回ErrOverflow
func (a Amount) Add(b Amount) (Amount, error) {
	var r Amount
	if _, overflow := r.v.AddOverflow(&a.v, &b.v); overflow {
		return Amount{}, ErrOverflow
	}
	return r, nil
}

// Sub 减法，下溢时返回ErrOverflow
func (a Amount) Sub(b Amount) (Amount, error) {
	var r Amount
	if _, underflow := r.v.SubOverflow(&a.v, &b.v); underflow {
		return Amount{}, ErrOverflow
	}
	return r, nil
}

// MulRate 按整数兑换率计算代币数量。
// 256位中间结果保证 amount * rate 不会静默截断；兑换率定义为整数倍数而非比例，
// 因此不涉及除法和舍入。
func (a Amount) MulRate(rate uint64) (Amount, error) {
	var r Amount
	m := new(uint256.Int).SetUint64(rate)
	if _, overflow := r.v.MulOverflow(&a.v, m); overflow {
		return Amount{}, ErrOverflow
	}
	return r, nil
}

// Cmp 比较：a<b返回-1，相等返回0，a>b返回1
func (a Amount) Cmp(b Amount) int {
	return a.v.Cmp(&b.v)
}

// IsZero 是否为零
func (a Amount) IsZero() bool {
	return a.v.IsZero()
}

// String 十进制字符串表示，用于持久化和展示
func (a Amount) String() string {
	return a.v.Dec()
}

// BigInt 转换为big.Int，用于链上调用边界
func (a Amount) BigInt() *big.Int {
	return a.v.ToBig()
}

// MarshalJSON JSON序列化为十进制字符串
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.v.Dec() + `"`), nil
}

// UnmarshalJSON 从十进制字符串反序列化
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value 实现driver.Valuer，数据库中存储为十进制字符串
func (a Amount) Value() (driver.Value, error) {
	return a.v.Dec(), nil
}

// Scan 实现sql.Scanner
func (a *Amount) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		parsed, err := Parse(v)
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	case []byte:
		parsed, err := Parse(string(v))
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	case int64:
		if v < 0 {
			return fmt.Errorf("amount: negative value %d", v)
		}
		*a = FromUint64(uint64(v))
		return nil
	case nil:
		*a = Zero()
		return nil
	default:
		return fmt.Errorf("amount: cannot scan %T", src)
	}
}
