package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/brawl-core/internal/content"
	"github.com/vovakirdan/brawl-core/internal/core"
	"github.com/vovakirdan/brawl-core/internal/game"
	"github.com/vovakirdan/brawl-core/internal/sim"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:       lipgloss.NewStyle(),
	core.ColorRed:           lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:         lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:        lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorBlue:          lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorMagenta:       lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	core.ColorCyan:          lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorWhite:         lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	core.ColorBrightRed:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	core.ColorBrightGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	core.ColorBrightYellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorBrightBlue:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	core.ColorBrightMagenta: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	core.ColorBrightCyan:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	core.ColorBrightWhite:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
	core.ColorOrange:        lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorGray:          lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			startColor := s.GetCell(x, y).Color

			var run strings.Builder
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// DrawMatch draws the stage and every entity of snap onto s, framed by the
// snapshot camera.
func DrawMatch(s *core.Screen, snap game.RenderSnapshot) {
	s.Clear()
	vp := core.Viewport{World: snap.Camera, Cols: s.Width(), Rows: s.Height()}

	if snap.Stage != nil {
		drawStage(s, vp, snap.Stage)
	}

	teams := make(map[int]int, len(snap.Players))
	for _, p := range snap.Players {
		teams[p.ID] = p.Team
	}

	for _, e := range snap.Entities {
		color := core.ColorWhite
		if e.PlayerID >= 0 {
			color = core.TeamColor(teams[e.PlayerID])
		}
		for _, b := range e.Boxes {
			switch b.Role {
			case content.RoleHit:
				drawRing(s, vp, b, '×', core.ColorBrightRed)
			case sim.RoleShield:
				drawRing(s, vp, b, '○', core.ColorCyan)
			}
		}

		x, y := vp.Project(e.Position)
		switch e.Kind {
		case "player":
			glyph := '@'
			if name := []rune(strings.ToUpper(e.DefKey)); len(name) > 0 {
				glyph = name[0]
			}
			s.SetColored(x, y, glyph, color)
			facing := '<'
			dx := -1
			if e.FaceRight {
				facing, dx = '>', 1
			}
			s.SetColored(x+dx, y, facing, color)
			s.SetColored(x, y-1, 'o', color)
		case "item":
			s.SetColored(x, y, '*', core.ColorBrightYellow)
		case "projectile":
			s.SetColored(x, y, '•', color)
		default:
			s.SetColored(x, y, '?', core.ColorGray)
		}
	}

	if text, ok := stateBanners[snap.State]; ok {
		drawBanner(s, text)
	}
}

// stateBanners labels the states that hold or rewind the match.
var stateBanners = map[game.State]string{
	game.StatePaused:          "PAUSED",
	game.StateReplayBackwards: "◀◀ REWIND",
}

// drawBanner boxes text in the middle of the screen.
func drawBanner(s *core.Screen, text string) {
	w := len([]rune(text)) + 4
	y := s.Height()/2 - 1
	s.DrawTextCentered(y+1, " "+text+" ", core.ColorBrightWhite)
	s.DrawBox(core.NewRect((s.Width()-w)/2, y, w, 3), core.ColorGray)
}

func drawStage(s *core.Screen, vp core.Viewport, stage *content.Stage) {
	for i := range stage.Surfaces {
		surface := &stage.Surfaces[i]
		r, c := '#', core.ColorGray
		switch {
		case surface.IsPassThrough():
			r, c = '-', core.ColorWhite
		case surface.IsFloor():
			r, c = '=', core.ColorBrightWhite
		}
		x1, y1 := vp.Project(surface.P1())
		x2, y2 := vp.Project(surface.P2())
		s.DrawLine(x1, y1, x2, y2, r, c)
	}
}

// drawRing outlines a circular box with up to 16 points.
func drawRing(s *core.Screen, vp core.Viewport, b sim.WorldBox, r rune, c core.Color) {
	const points = 16
	for i := range points {
		a := 2 * math.Pi * float64(i) / points
		p := core.Point{X: b.Center.X + b.Radius*math.Cos(a), Y: b.Center.Y + b.Radius*math.Sin(a)}
		x, y := vp.Project(p)
		s.SetColored(x, y, r, c)
	}
}

var (
	hudBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	hudDim   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	hudTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
)

// hudHeight is the number of rows RenderHUD uses.
const hudHeight = 3

var termColors = map[core.Color]lipgloss.Color{
	core.ColorBrightRed:     "9",
	core.ColorBrightGreen:   "10",
	core.ColorBrightYellow:  "11",
	core.ColorBrightBlue:    "12",
	core.ColorBrightMagenta: "13",
	core.ColorBrightCyan:    "14",
	core.ColorGray:          "245",
}

// RenderHUD shows each player's damage and stocks next to the frame, timer
// and match mode.
func RenderHUD(snap game.RenderSnapshot, width int) string {
	boxes := make([]string, 0, len(snap.Players)+1)
	for _, p := range snap.Players {
		color := termColors[core.TeamColor(p.Team)]
		style := hudBox.BorderForeground(color)

		stocks := "∞"
		if p.Stocks >= 0 {
			stocks = strings.Repeat("●", p.Stocks)
		}
		line := fmt.Sprintf("P%d %s %3.0f%% %s", p.ID+1, p.Fighter, p.Damage, stocks)
		if p.Eliminated {
			line = fmt.Sprintf("P%d %s out", p.ID+1, p.Fighter)
			style = style.Foreground(lipgloss.Color("241"))
		}
		boxes = append(boxes, style.Render(line))
	}

	status := fmt.Sprintf("frame %d  %s", snap.Frame, snap.State)
	if snap.HasTimer {
		secs := int(snap.Timer.Seconds())
		status = fmt.Sprintf("%d:%02d  %s", secs/60, secs%60, status)
	}
	boxes = append(boxes, hudBox.BorderForeground(lipgloss.Color("240")).Render(hudDim.Render(status)))

	return lipgloss.NewStyle().MaxWidth(width).Render(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
}

// RenderResults draws the end of match screen.
func RenderResults(q game.Quit, width int) string {
	var b strings.Builder
	switch q.Reason {
	case game.QuitDisconnected:
		b.WriteString(hudTitle.Render("DISCONNECTED"))
		b.WriteString("\n\n")
		b.WriteString(q.Message)
	case game.QuitResults:
		title := "GAME!"
		if q.Results != nil && q.Results.TimeOut {
			title = "TIME!"
		}
		b.WriteString(hudTitle.Render(title))
		b.WriteString("\n\n")
		if q.Results != nil {
			b.WriteString(resultsTable(q.Results))
		}
	default:
		b.WriteString(hudTitle.Render("MATCH ENDED"))
	}
	b.WriteString("\n\n")
	b.WriteString(hudDim.Render("enter/q: leave"))

	return lipgloss.Place(width, lipgloss.Height(b.String())+2, lipgloss.Center, lipgloss.Center,
		hudBox.BorderForeground(lipgloss.Color("240")).Padding(1, 4).Render(b.String()))
}

func resultsTable(r *game.Results) string {
	header := fmt.Sprintf("%-6s %-4s %-10s %5s %6s %7s %8s", "place", "", "fighter", "kills", "deaths", "damage", "l-cancel")
	lines := []string{hudDim.Render(header)}
	for _, p := range r.Players {
		style := lipgloss.NewStyle().Foreground(termColors[core.TeamColor(p.Team)])
		line := fmt.Sprintf("%-6d P%-3d %-10s %5d %6d %6.0f%% %7.0f%%",
			p.Place, p.Player+1, p.Fighter, p.Kills, p.Deaths, p.FinalDamage, p.LCancelPercent)
		lines = append(lines, style.Render(line))
	}
	return strings.Join(lines, "\n")
}
