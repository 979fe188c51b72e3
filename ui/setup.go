package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"reversi-local/engine/search"
	"reversi-local/types"
)

// SetupChoice is what the user picked on the setup card.
type SetupChoice struct {
	Strategies [2]types.Strategy
	Level      int
	// Resume continues the saved game instead of starting a new one.
	Resume bool
}

type setupButton struct {
	label   string
	primary bool
	action  func()
}

// Setup rows, top to bottom.
const (
	rowDark = iota
	rowLight
	rowLevel
	rowButtons
	rowCount
)

// SetupUI is the start screen: a rounded card with a player choice per side,
// a strength slider and a button bar.
type SetupUI struct {
	*tview.Box

	choice  SetupChoice
	focus   int
	button  int
	buttons []setupButton
}

// NewSetup creates the setup card. onStart receives the choice when the
// user resumes or starts a game; resume offers the Resume button.
func NewSetup(initial SetupChoice, resume bool, onStart func(SetupChoice), onHistory, onColors, onQuit func()) *SetupUI {
	s := &SetupUI{
		Box:    tview.NewBox(),
		choice: initial,
		focus:  rowButtons,
	}
	start := func(resume bool) func() {
		return func() {
			c := s.choice
			c.Resume = resume
			onStart(c)
		}
	}
	if resume {
		s.buttons = append(s.buttons, setupButton{"Resume", true, start(true)})
	}
	s.buttons = append(s.buttons,
		setupButton{"New game", !resume, start(false)},
		setupButton{"History", false, onHistory},
		setupButton{"Colors", false, onColors},
		setupButton{"Quit", false, onQuit},
	)
	return s
}

// Choice returns the current selection.
func (s *SetupUI) Choice() SetupChoice {
	return s.choice
}

// InputHandler moves between rows with ↑/↓ or Tab and changes values with ←/→.
func (s *SetupUI) InputHandler() func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
	return s.WrapInputHandler(func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
		switch event.Key() {
		case tcell.KeyUp, tcell.KeyBacktab:
			s.focus = (s.focus + rowCount - 1) % rowCount
		case tcell.KeyDown, tcell.KeyTab:
			s.focus = (s.focus + 1) % rowCount
		case tcell.KeyLeft:
			s.step(-1)
		case tcell.KeyRight:
			s.step(1)
		case tcell.KeyEnter:
			if s.focus != rowButtons {
				s.focus = rowButtons
				return
			}
			if b := s.buttons[s.button]; b.action != nil {
				b.action()
			}
		case tcell.KeyRune:
			switch event.Rune() {
			case 'h':
				s.step(-1)
			case 'l':
				s.step(1)
			case 'k':
				s.focus = (s.focus + rowCount - 1) % rowCount
			case 'j':
				s.focus = (s.focus + 1) % rowCount
			}
		}
	})
}

func (s *SetupUI) step(d int) {
	switch s.focus {
	case rowDark, rowLight:
		i := s.focus - rowDark
		if s.choice.Strategies[i] == types.Manual {
			s.choice.Strategies[i] = types.Computer
		} else {
			s.choice.Strategies[i] = types.Manual
		}
	case rowLevel:
		s.choice.Level = min(max(s.choice.Level+d, 0), search.MaxLevel)
	case rowButtons:
		s.button = (s.button + len(s.buttons) + d) % len(s.buttons)
	}
}

// Draw renders the card.
func (s *SetupUI) Draw(screen tcell.Screen) {
	s.Box.DrawForSubclass(screen, s)
	x, y, width, height := s.GetInnerRect()
	if width < 56 || height < 17 {
		return
	}

	bg := tcell.StyleDefault.Background(MenuColors.CardBG)
	border := bg.Foreground(MenuColors.Border)
	if s.HasFocus() {
		border = bg.Foreground(MenuColors.BorderFocus)
	}
	for row := y; row < y+height; row++ {
		for col := x; col < x+width; col++ {
			screen.SetContent(col, row, ' ', nil, bg)
		}
	}
	drawFrame(screen, x, y, width, height, border)

	title := "⬤  R E V E R S I"
	drawText(screen, x+(width-len([]rune(title)))/2, y+2, title, bg.Foreground(MenuColors.Title).Bold(true))
	drawDivider(screen, x, y+4, width, border)

	row := y + 6
	left := x + 3
	for i, side := range types.Sides {
		s.drawToggle(screen, left, row, side.String(), s.choice.Strategies[i], s.focus == rowDark+i)
		row += 2
	}
	s.drawSlider(screen, left, row, "Strength", s.focus == rowLevel)
	row += 2
	drawDivider(screen, x, row, width, border)
	row += 2
	s.drawButtons(screen, left, row)

	hint := "↑↓ row   ←→ change   ⏎ select"
	drawText(screen, x+(width-len([]rune(hint)))/2, y+height-2, hint, bg.Foreground(MenuColors.Hint))
}

func (s *SetupUI) drawCursor(screen tcell.Screen, x, y int, focused bool) {
	bg := tcell.StyleDefault.Background(MenuColors.CardBG)
	if focused {
		screen.SetContent(x, y, '▸', nil, bg.Foreground(MenuColors.Selected))
	}
}

func (s *SetupUI) drawToggle(screen tcell.Screen, x, y int, label string, value types.Strategy, focused bool) {
	bg := tcell.StyleDefault.Background(MenuColors.CardBG)
	s.drawCursor(screen, x, y, focused)
	screen.SetContent(x+2, y, '◈', nil, bg.Foreground(MenuColors.TitleAccent))
	drawText(screen, x+4, y, label, bg.Foreground(MenuColors.Label))

	col := x + 14
	for _, opt := range []types.Strategy{types.Manual, types.Computer} {
		style := bg.Foreground(MenuColors.Unselected)
		bullet := '○'
		if opt == value {
			style = bg.Foreground(MenuColors.Selected)
			bullet = '●'
		}
		screen.SetContent(col, y, bullet, nil, style)
		col += 2
		col += drawText(screen, col, y, opt.String(), style) + 2
	}
}

func (s *SetupUI) drawSlider(screen tcell.Screen, x, y int, label string, focused bool) {
	bg := tcell.StyleDefault.Background(MenuColors.CardBG)
	selected := bg.Foreground(MenuColors.Selected)
	unselected := bg.Foreground(MenuColors.Unselected)
	s.drawCursor(screen, x, y, focused)
	screen.SetContent(x+2, y, '◈', nil, bg.Foreground(MenuColors.TitleAccent))
	drawText(screen, x+4, y, label, bg.Foreground(MenuColors.Label))

	arrow := unselected
	if focused {
		arrow = selected
	}
	col := x + 14
	screen.SetContent(col, y, '◀', nil, arrow)
	col += 2
	for i := 0; i <= search.MaxLevel; i++ {
		if i <= s.choice.Level {
			screen.SetContent(col, y, '█', nil, selected)
		} else {
			screen.SetContent(col, y, '░', nil, unselected)
		}
		col++
	}
	col++
	col += drawText(screen, col, y, fmt.Sprintf("%d", s.choice.Level), bg.Foreground(MenuColors.Label)) + 1
	screen.SetContent(col, y, '▶', nil, arrow)
}

func (s *SetupUI) drawButtons(screen tcell.Screen, x, y int) {
	bg := tcell.StyleDefault.Background(MenuColors.CardBG)
	col := x
	for i, b := range s.buttons {
		label := b.label
		if b.primary {
			label = "▶ " + label
		}
		if s.focus == rowButtons && i == s.button {
			pill := tcell.StyleDefault.Foreground(MenuColors.ButtonText).Background(MenuColors.ButtonFocus)
			col += drawText(screen, col, y, " "+label+" ", pill)
		} else {
			screen.SetContent(col, y, '[', nil, bg.Foreground(MenuColors.Border))
			n := drawText(screen, col+1, y, label, bg.Foreground(MenuColors.Hint))
			screen.SetContent(col+1+n, y, ']', nil, bg.Foreground(MenuColors.Border))
			col += n + 2
		}
		col += 2
	}
}

// drawFrame draws a rounded border.
func drawFrame(screen tcell.Screen, x, y, width, height int, style tcell.Style) {
	for col := x + 1; col < x+width-1; col++ {
		screen.SetContent(col, y, '─', nil, style)
		screen.SetContent(col, y+height-1, '─', nil, style)
	}
	for row := y + 1; row < y+height-1; row++ {
		screen.SetContent(x, row, '│', nil, style)
		screen.SetContent(x+width-1, row, '│', nil, style)
	}
	screen.SetContent(x, y, '╭', nil, style)
	screen.SetContent(x+width-1, y, '╮', nil, style)
	screen.SetContent(x, y+height-1, '╰', nil, style)
	screen.SetContent(x+width-1, y+height-1, '╯', nil, style)
}

func drawDivider(screen tcell.Screen, x, y, width int, style tcell.Style) {
	screen.SetContent(x, y, '├', nil, style)
	for col := x + 1; col < x+width-1; col++ {
		screen.SetContent(col, y, '─', nil, style)
	}
	screen.SetContent(x+width-1, y, '┤', nil, style)
}
