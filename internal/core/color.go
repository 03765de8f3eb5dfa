package core

// Color is the foreground color of a screen cell.
// The platform maps it to an ANSI 256-color code.
type Color uint8

const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
)

// tilePalette cycles through distinct colors for increasing tile values.
var tilePalette = []Color{
	ColorCyan,          // 2
	ColorGreen,         // 4
	ColorYellow,        // 8
	ColorOrange,        // 16
	ColorRed,           // 32
	ColorMagenta,       // 64
	ColorBlue,          // 128
	ColorBrightCyan,    // 256
	ColorBrightGreen,   // 512
	ColorBrightYellow,  // 1024
	ColorBrightMagenta, // 2048
}

// ValueColor returns the display color of a power-of-two tile value.
func ValueColor(value int) Color {
	if value < 2 {
		return ColorGray
	}
	exp := 0
	for v := value; v > 2; v >>= 1 {
		exp++
	}
	return tilePalette[exp%len(tilePalette)]
}
