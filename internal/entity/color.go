package entity

// Color is the closed set of stone colors. The zero value means "no
// color" and is used for an unset winner.
type Color string

const (
	ColorNone  Color = ""
	ColorBlack Color = "black"
	ColorWhite Color = "white"
)

// Opponent returns the other color. Calling it on ColorNone returns
// ColorNone.
func (that Color) Opponent() Color {
	switch that {
	case ColorBlack:
		return ColorWhite
	case ColorWhite:
		return ColorBlack
	default:
		return ColorNone
	}
}

func (that Color) IsValid() bool {
	return that == ColorBlack || that == ColorWhite
}
