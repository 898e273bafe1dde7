package keycodec

import "errors"

// Delimiter separates key fields. Escaped fields never contain it.
const Delimiter byte = 0x00

const escapeByte byte = 0x01

// errBadEscape is wrapped into MalformedKeyError by the converter.
var errBadEscape = errors.New("invalid escape sequence")

// AppendEscaped appends the order-preserving escaping of b to dst:
// 0x00 becomes 0x01 0x01 and 0x01 becomes 0x01 0x02.
func AppendEscaped(dst, b []byte) []byte {
	for _, c := range b {
		switch c {
		case 0x00:
			dst = append(dst, escapeByte, 0x01)
		case escapeByte:
			dst = append(dst, escapeByte, 0x02)
		default:
			dst = append(dst, c)
		}
	}
	return dst
}

// Escape returns the escaped form of b.
func Escape(b []byte) []byte {
	return AppendEscaped(make([]byte, 0, len(b)+2), b)
}

// Unescape reverses Escape.
func Unescape(b []byte) ([]byte, error) {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		c := b[i]
		switch c {
		case Delimiter:
			return nil, errBadEscape
		case escapeByte:
			if i+1 >= len(b) {
				return nil, errBadEscape
			}
			i++
			switch b[i] {
			case 0x01:
				out = append(out, 0x00)
			case 0x02:
				out = append(out, escapeByte)
			default:
				return nil, errBadEscape
			}
		default:
			out = append(out, c)
		}
	}
	return out, nil
}
