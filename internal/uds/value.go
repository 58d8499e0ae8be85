package uds

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Mnaffeti/sovd-server/pkg/apperr"
)

// CodecKind はデータ項目値の表現形式を表す。プロトコル慣習により閉集合。
type CodecKind string

const (
	CodecASCII     CodecKind = "ascii"
	CodecFixedUint CodecKind = "fixed_uint"
	CodecBCD       CodecKind = "bcd"
	CodecScaled    CodecKind = "scaled"
	CodecRawBytes  CodecKind = "raw"
)

// ValueCodec はDID値のバイト列と論理値の相互変換を定義する。
// Lengthはワイヤ上の固定バイト長（0は可変長）。
// ScaledのFactor/Offsetは physical = raw*Factor + Offset の線形変換。
type ValueCodec struct {
	Kind   CodecKind `json:"kind"`
	Length int       `json:"length"`
	Factor float64   `json:"factor,omitempty"`
	Offset float64   `json:"offset,omitempty"`
	Unit   string    `json:"unit,omitempty"`
}

// DecodeValue はワイヤ形式のバイト列を人間可読の文字列値に変換する。
func (c *ValueCodec) DecodeValue(raw []byte) (string, error) {
	if c.Length > 0 && len(raw) != c.Length {
		return "", apperr.NewDecodeError(
			fmt.Sprintf("value length %d does not match codec length %d", len(raw), c.Length), raw)
	}

	switch c.Kind {
	case CodecASCII:
		return strings.TrimRight(string(raw), "\x00 "), nil

	case CodecFixedUint:
		if len(raw) == 0 || len(raw) > 8 {
			return "", apperr.NewDecodeError("fixed uint value must be 1-8 bytes", raw)
		}
		return strconv.FormatUint(bytesToUint(raw), 10), nil

	case CodecBCD:
		var sb strings.Builder
		for _, b := range raw {
			hi, lo := b>>4, b&0x0F
			if hi > 9 || lo > 9 {
				return "", apperr.NewDecodeError("invalid BCD digit", raw)
			}
			sb.WriteByte('0' + hi)
			sb.WriteByte('0' + lo)
		}
		return sb.String(), nil

	case CodecScaled:
		if len(raw) == 0 || len(raw) > 8 {
			return "", apperr.NewDecodeError("scaled value must be 1-8 bytes", raw)
		}
		phys := float64(bytesToUint(raw))*c.Factor + c.Offset
		return strconv.FormatFloat(phys, 'f', -1, 64), nil

	case CodecRawBytes:
		return fmt.Sprintf("%X", raw), nil

	default:
		return "", apperr.NewDecodeError(fmt.Sprintf("unknown codec kind %q", c.Kind), raw)
	}
}

// EncodeValue は人間可読の文字列値をワイヤ形式のバイト列に変換する。
// DecodeValueと往復可能であること。
func (c *ValueCodec) EncodeValue(value string) ([]byte, error) {
	switch c.Kind {
	case CodecASCII:
		raw := []byte(value)
		if c.Length > 0 {
			if len(raw) > c.Length {
				return nil, fmt.Errorf("%w: ascii value longer than %d bytes", apperr.ErrInvalidRequest, c.Length)
			}
			padded := make([]byte, c.Length)
			copy(padded, raw)
			for i := len(raw); i < c.Length; i++ {
				padded[i] = ' '
			}
			raw = padded
		}
		return raw, nil

	case CodecFixedUint:
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an unsigned integer", apperr.ErrInvalidRequest, value)
		}
		return uintToBytes(n, c.Length)

	case CodecBCD:
		if len(value)%2 != 0 {
			return nil, fmt.Errorf("%w: BCD value must have even digit count", apperr.ErrInvalidRequest)
		}
		raw := make([]byte, len(value)/2)
		for i := 0; i < len(value); i += 2 {
			hi, lo := value[i], value[i+1]
			if hi < '0' || hi > '9' || lo < '0' || lo > '9' {
				return nil, fmt.Errorf("%w: %q is not a decimal digit string", apperr.ErrInvalidRequest, value)
			}
			raw[i/2] = (hi-'0')<<4 | (lo - '0')
		}
		if c.Length > 0 && len(raw) != c.Length {
			return nil, fmt.Errorf("%w: BCD value must be %d bytes", apperr.ErrInvalidRequest, c.Length)
		}
		return raw, nil

	case CodecScaled:
		phys, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", apperr.ErrInvalidRequest, value)
		}
		if c.Factor == 0 {
			return nil, fmt.Errorf("%w: scaled codec with zero factor", apperr.ErrInvalidRequest)
		}
		raw := math.Round((phys - c.Offset) / c.Factor)
		if raw < 0 {
			return nil, fmt.Errorf("%w: scaled value below range", apperr.ErrInvalidRequest)
		}
		return uintToBytes(uint64(raw), c.Length)

	case CodecRawBytes:
		if len(value)%2 != 0 {
			return nil, fmt.Errorf("%w: hex value must have even length", apperr.ErrInvalidRequest)
		}
		raw := make([]byte, len(value)/2)
		for i := 0; i < len(raw); i++ {
			n, err := strconv.ParseUint(value[i*2:i*2+2], 16, 8)
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not a hex string", apperr.ErrInvalidRequest, value)
			}
			raw[i] = byte(n)
		}
		return raw, nil

	default:
		return nil, fmt.Errorf("%w: unknown codec kind %q", apperr.ErrInvalidRequest, c.Kind)
	}
}

func bytesToUint(raw []byte) uint64 {
	var n uint64
	for _, b := range raw {
		n = n<<8 | uint64(b)
	}
	return n
}

func uintToBytes(n uint64, length int) ([]byte, error) {
	if length <= 0 {
		length = 1
		for v := n; v > 0xFF; v >>= 8 {
			length++
		}
	}
	if length > 8 {
		return nil, fmt.Errorf("%w: value width exceeds 8 bytes", apperr.ErrInvalidRequest)
	}
	if length < 8 && n >= 1<<(uint(length)*8) {
		return nil, fmt.Errorf("%w: value does not fit in %d bytes", apperr.ErrInvalidRequest, length)
	}
	raw := make([]byte, length)
	for i := length - 1; i >= 0; i-- {
		raw[i] = byte(n)
		n >>= 8
	}
	return raw, nil
}
