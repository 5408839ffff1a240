package acroform

import (
	"encoding/hex"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

const (
	minFontSize     = 4.0
	maxAutoFontSize = 12.0
)

// encodeText encodes s as a PDF text string. ASCII is stored as is, anything else
// as UTF-16BE with a byte order mark.
func encodeText(s string) types.HexLiteral {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return types.HexLiteral(hex.EncodeToString([]byte(s)))
	}

	units := utf16.Encode([]rune(s))
	b := make([]byte, 0, 2+2*len(units))
	b = append(b, 0xFE, 0xFF)
	for _, u := range units {
		b = append(b, byte(u>>8), byte(u))
	}
	return types.HexLiteral(hex.EncodeToString(b))
}

// winAnsiHex renders s as a hex string operand in WinAnsiEncoding for the
// standard Helvetica font. Unmappable runes become '?'.
func winAnsiHex(s string) string {
	enc := encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())
	out, err := enc.String(s)
	if err != nil {
		out = strings.Map(func(r rune) rune {
			if r < 0x80 {
				return r
			}
			return '?'
		}, s)
	}
	return "<" + hex.EncodeToString([]byte(out)) + ">"
}

// appearanceStyle is the subset of a default appearance string the engine honours
type appearanceStyle struct {
	font     string
	size     float64
	colorOps string
}

// parseDA extracts font, size and fill colour operators from a DA string such as
// "/Helv 10 Tf 0 g". A size of 0 means auto.
func parseDA(da string) appearanceStyle {
	style := appearanceStyle{colorOps: "0 g"}
	parts := strings.Fields(da)
	for i := 0; i < len(parts); i++ {
		switch parts[i] {
		case "Tf":
			if i >= 2 {
				style.font = strings.TrimPrefix(parts[i-2], "/")
				if size, err := strconv.ParseFloat(parts[i-1], 64); err == nil {
					style.size = size
				}
			}
		case "rg":
			if i >= 3 {
				style.colorOps = strings.Join(parts[i-3:i+1], " ")
			}
		case "g":
			if i >= 1 {
				style.colorOps = strings.Join(parts[i-1:i+1], " ")
			}
		case "k":
			if i >= 4 {
				style.colorOps = strings.Join(parts[i-4:i+1], " ")
			}
		}
	}
	return style
}

// fontSize resolves the size to draw with inside a box of the given height
func (s appearanceStyle) fontSize(height float64) float64 {
	if s.size > 0 {
		return s.size
	}
	auto := (height - 4) * 0.7
	if auto > maxAutoFontSize {
		auto = maxAutoFontSize
	}
	if auto < minFontSize {
		auto = minFontSize
	}
	return auto
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(math.Round(f*1000)/1000, 'f', -1, 64)
}
