package core

// Color represents a foreground color for a screen cell.
// Uses ANSI 256-color codes for terminal compatibility.
type Color uint8

// Predefined colors for match elements.
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

var teamColors = [...]Color{ColorBrightRed, ColorBrightBlue, ColorBrightGreen, ColorBrightYellow, ColorBrightMagenta, ColorBrightCyan}

// TeamColor returns the color used to draw everything owned by a team.
func TeamColor(team int) Color {
	if team < 0 {
		return ColorGray
	}
	return teamColors[team%len(teamColors)]
}
