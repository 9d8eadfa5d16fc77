package codec

import (
	"strconv"
)

// Int stores integers as decimal text (or Base when set), the form the
// store's own INCR family reads and writes.
type Int struct {
	Base int // 0 => 10
}

var _ Codec[int64] = Int{}

func (c Int) base() int {
	if c.Base == 0 {
		return 10
	}
	return c.Base
}

func (c Int) Encode(v int64) ([]byte, error) {
	return strconv.AppendInt(nil, v, c.base()), nil
}

func (c Int) Decode(b []byte) (int64, error) {
	return strconv.ParseInt(string(b), c.base(), 64)
}

// Float stores floats in the shortest text form that round-trips.
type Float struct {
	BitSize int // 0 => 64
}

var _ Codec[float64] = Float{}

func (c Float) bits() int {
	if c.BitSize == 0 {
		return 64
	}
	return c.BitSize
}

func (c Float) Encode(v float64) ([]byte, error) {
	return strconv.AppendFloat(nil, v, 'f', -1, c.bits()), nil
}

func (c Float) Decode(b []byte) (float64, error) {
	return strconv.ParseFloat(string(b), c.bits())
}

// Bool stores "1"/"0" and reads anything strconv.ParseBool accepts.
type Bool struct{}

var _ Codec[bool] = Bool{}

func (Bool) Encode(v bool) ([]byte, error) {
	if v {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

func (Bool) Decode(b []byte) (bool, error) {
	return strconv.ParseBool(string(b))
}

// Func adapts a pair of functions. Use it when the element type needs
// arguments beyond the raw value:
//
//	codec.Func[Money]{
//		Dec: func(b []byte) (Money, error) { return ParseMoney(string(b), "EUR") },
//		Enc: func(m Money) ([]byte, error) { return []byte(m.Amount()), nil },
//	}
type Func[V any] struct {
	Enc func(V) ([]byte, error)
	Dec func([]byte) (V, error)
}

func (c Func[V]) Encode(v V) ([]byte, error) { return c.Enc(v) }
func (c Func[V]) Decode(b []byte) (V, error) { return c.Dec(b) }
