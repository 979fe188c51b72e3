// Package ui specifies custom controls for tview to play Reversi in the terminal.
package ui

import (
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"reversi-local/board"
	"reversi-local/config"
	"reversi-local/engine"
	"reversi-local/types"
)

const confirmPage = "confirm"

// BoardUI draws the board and is the controller's host. All of its methods
// run on the tview event loop.
type BoardUI struct {
	Box       *tview.Box
	hint      *tview.TextView
	app       *tview.Application
	pages     *tview.Pages
	cfg       *config.Config
	styles    []tcell.Color
	infoPanel *GameInfoPanel
	ctrl      *engine.Controller

	board      board.Board
	turn       types.Turn
	searching  [2]bool
	strategies [2]types.Strategy
	lastPlayed types.Coordinate
	hasLast    bool
	passed     string
	notice     string
	selX       int
	selY       int
	focusMode  bool
}

// NewBoardUI returns a board view. Confirmation dialogs are shown on pages.
func NewBoardUI(app *tview.Application, pages *tview.Pages, c *config.Config, hint *tview.TextView) *BoardUI {
	g := &BoardUI{
		Box:   tview.NewBox(),
		hint:  hint,
		app:   app,
		pages: pages,
		board: board.New(),
		turn:  types.TurnOf(types.Dark),
		selX:  -1,
		selY:  -1,
	}
	g.SetConfig(c)
	g.Box.SetDrawFunc(g.draw)
	return g
}

// Dispatcher marshals search results onto the tview event loop.
func Dispatcher(app *tview.Application) engine.Dispatcher {
	return engine.DispatcherFunc(func(f func()) {
		app.QueueUpdateDraw(f)
	})
}

// Attach connects the view to the controller it hosts.
func (g *BoardUI) Attach(ctrl *engine.Controller) {
	g.ctrl = ctrl
}

func (g *BoardUI) SetConfig(c *config.Config) {
	g.styles = []tcell.Color{
		tcell.PaletteColor(c.Theme.Colors.BoardColor),        // 0
		tcell.PaletteColor(c.Theme.Colors.DarkColor),         // 1
		tcell.PaletteColor(c.Theme.Colors.LightColor),        // 2
		tcell.PaletteColor(c.Theme.Colors.BoardColorAlt),     // 3
		tcell.PaletteColor(c.Theme.Colors.HintColor),         // 4
		tcell.PaletteColor(c.Theme.Colors.CursorColorFG),     // 5
		tcell.PaletteColor(c.Theme.Colors.LastPlayedColorBG), // 6
		tcell.PaletteColor(c.Theme.Colors.CursorColorBG),     // 7
		tcell.PaletteColor(c.Theme.Colors.LineColor),         // 8
	}
	g.cfg = c
}

func (g *BoardUI) MessageChanged(turn types.Turn) {
	g.turn = turn
	if turn.Over {
		g.ResetSelection()
	}
	g.refreshHint()
}

func (g *BoardUI) CountsChanged(dark, light int) {
	if g.infoPanel != nil {
		g.infoPanel.SetCounts(dark, light)
	}
}

func (g *BoardUI) StrategyChanged(side types.Side, s types.Strategy) {
	g.strategies[side.Index()] = s
	if g.infoPanel != nil {
		g.infoPanel.SetStrategy(side, s)
	}
	g.refreshHint()
}

func (g *BoardUI) SearchingChanged(side types.Side, searching bool) {
	g.searching[side.Index()] = searching
	if g.infoPanel != nil {
		g.infoPanel.SetSearching(side, searching)
	}
	g.refreshHint()
}

// DiskChanged shows one disk and reports completion after the configured
// animation delay.
func (g *BoardUI) DiskChanged(c types.Coordinate, cell types.Cell, done func()) {
	if g.board.At(c) == types.Empty {
		g.lastPlayed, g.hasLast = c, true
		g.passed = ""
		g.notice = ""
	}
	g.board.Set(c, cell)

	delay := g.cfg.AnimationDelay()
	if delay <= 0 {
		done()
		return
	}
	time.AfterFunc(delay, func() {
		g.app.QueueUpdateDraw(done)
	})
}

func (g *BoardUI) BoardReplaced(b board.Board) {
	g.board = b
	g.hasLast = false
	g.passed = ""
	g.notice = ""
	g.ResetSelection()
	g.refreshHint()
}

func (g *BoardUI) Passed(side types.Side) {
	g.passed = fmt.Sprintf("%s has no move and passes", side)
	g.refreshHint()
}

// RequestResetConfirmation shows a modal asking whether to start over.
func (g *BoardUI) RequestResetConfirmation(respond func(bool)) {
	modal := tview.NewModal().
		SetText("Abandon this game and start a new one?").
		AddButtons([]string{"New game", "Keep playing"}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			g.pages.RemovePage(confirmPage)
			g.app.SetFocus(g.Box)
			respond(buttonIndex == 0)
		})
	g.pages.AddPage(confirmPage, modal, true, true)
	g.app.SetFocus(modal)
}

// SelectedTile returns the cursor position, if any.
func (g *BoardUI) SelectedTile() (types.Coordinate, bool) {
	if g.selX == -1 && g.selY == -1 {
		return types.Coordinate{}, false
	}
	return types.Coordinate{X: g.selX, Y: g.selY}, true
}

func (g *BoardUI) MoveSelection(h, v int) {
	if g.turn.Over {
		g.ResetSelection()
		return
	}
	if _, ok := g.SelectedTile(); !ok {
		if g.hasLast {
			g.selX, g.selY = g.lastPlayed.X, g.lastPlayed.Y
		} else {
			g.selX, g.selY = types.BoardSize/2-1, types.BoardSize/2-1
		}
		return
	}
	if g.selX+h < 0 || g.selX+h >= types.BoardSize {
		return
	}
	if g.selY+v < 0 || g.selY+v >= types.BoardSize {
		return
	}
	g.selX += h
	g.selY += v
}

func (g *BoardUI) ResetSelection() {
	g.selX = -1
	g.selY = -1
}

// PlayMove places a disk at the cursor for the side to move.
func (g *BoardUI) PlayMove() {
	c, ok := g.SelectedTile()
	if !ok || g.ctrl == nil {
		return
	}
	err := g.ctrl.PlaceDiskAt(c)
	switch {
	case errors.Is(err, board.ErrIllegalMove):
		g.notice = fmt.Sprintf("%s is not a legal move", c)
	case errors.Is(err, engine.ErrNotAwaitingMove):
		g.notice = "Not your turn"
	}
	g.refreshHint()
}

// ToggleStrategy switches side between manual and computer play.
func (g *BoardUI) ToggleStrategy(side types.Side) {
	if g.ctrl == nil {
		return
	}
	next := types.Computer
	if g.ctrl.Strategy(side) == types.Computer {
		next = types.Manual
	}
	g.ctrl.SetStrategy(side, next)
}

// ToggleFocusMode toggles focus mode and returns the new state.
func (g *BoardUI) ToggleFocusMode() bool {
	g.focusMode = !g.focusMode
	g.refreshHint()
	return g.focusMode
}

// SetFocusMode sets focus mode to the given state.
func (g *BoardUI) SetFocusMode(enabled bool) {
	g.focusMode = enabled
	g.refreshHint()
}

// Notify shows a one-off message in the status bar.
func (g *BoardUI) Notify(msg string) {
	g.notice = msg
	g.refreshHint()
}

// awaitingManual reports whether the user is expected to move.
func (g *BoardUI) awaitingManual() bool {
	return !g.turn.Over && g.strategies[g.turn.Side.Index()] == types.Manual && !g.searching[g.turn.Side.Index()]
}

func (g *BoardUI) refreshHint() {
	if g.focusMode {
		g.hint.SetText("  f to toggle")
		return
	}

	var statusLine, turnLine, controlsLine string
	switch {
	case g.notice != "":
		statusLine = fmt.Sprintf("  ! %s\n", g.notice)
	case g.passed != "":
		statusLine = fmt.Sprintf("  ○ %s\n", g.passed)
	}

	if g.turn.Over {
		turnLine = fmt.Sprintf("  Game over: %s\n", g.turn)
		controlsLine = "  n · new game   q · menu"
	} else {
		side := g.turn.Side
		if g.searching[side.Index()] {
			turnLine = fmt.Sprintf("  ◌ %s is thinking...\n", side)
		} else {
			turnLine = fmt.Sprintf("  %s %s\n", g.diskRune(side.Cell()), g.turn)
		}
		controlsLine = "  hjkl/↑↓←→ move   ⏎ place   1/2 toggle computer   n new   f focus   q menu"
	}
	g.hint.SetText(statusLine + turnLine + controlsLine)
}

func (g *BoardUI) diskRune(cell types.Cell) string {
	switch cell {
	case types.DarkDisk:
		return string(g.cfg.Theme.Symbols.DarkDisk)
	case types.LightDisk:
		return string(g.cfg.Theme.Symbols.LightDisk)
	}
	return string(g.cfg.Theme.Symbols.BoardSquare)
}

func (g *BoardUI) draw(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	// 2 characters per cell for square appearance
	boardW, boardH := types.BoardSize*2, types.BoardSize
	left, top := x+4, y

	var hints []types.Coordinate
	if g.cfg.Theme.ShowHints && g.awaitingManual() {
		hints = g.board.LegalMoves(g.turn.Side)
	}
	isHint := func(c types.Coordinate) bool {
		for _, h := range hints {
			if h == c {
				return true
			}
		}
		return false
	}

	for by := 0; by < types.BoardSize; by++ {
		for bx := 0; bx < types.BoardSize; bx++ {
			c := types.Coordinate{X: bx, Y: by}
			bg := g.styles[0]
			if (bx%2+by%2)%2 == 1 {
				bg = g.styles[3]
			}
			fg := g.styles[8]
			r := g.cfg.Theme.Symbols.BoardSquare

			switch cell := g.board.At(c); cell {
			case types.DarkDisk:
				fg, r = g.styles[1], g.cfg.Theme.Symbols.DarkDisk
			case types.LightDisk:
				fg, r = g.styles[2], g.cfg.Theme.Symbols.LightDisk
			default:
				if isHint(c) {
					fg, r = g.styles[4], g.cfg.Theme.Symbols.Hint
				}
			}

			if bx == g.selX && by == g.selY {
				if g.cfg.Theme.DrawCursorBackground {
					bg = g.styles[7]
				} else {
					fg = g.styles[5]
				}
			} else if g.hasLast && c == g.lastPlayed && g.cfg.Theme.DrawLastPlayedBackground {
				bg = g.styles[6]
			}

			style := tcell.StyleDefault.Background(bg).Foreground(fg)
			screen.SetContent(left+bx*2, top+by, r, nil, style)
			screen.SetContent(left+bx*2+1, top+by, ' ', nil, style)
		}
	}
	g.drawCoordinates(screen, x, y)
	return x, y, boardW + 4, boardH + 2
}

// drawCoordinates labels files a-h below the board and ranks 1-8 from the top.
func (g *BoardUI) drawCoordinates(s tcell.Screen, x, y int) {
	style := tcell.StyleDefault
	highlight := tcell.StyleDefault.Background(g.styles[7])
	lpHighlight := tcell.StyleDefault.Background(g.styles[6])

	for ix := 0; ix < types.BoardSize; ix++ {
		st := style
		if ix == g.selX {
			st = highlight
		} else if g.hasLast && ix == g.lastPlayed.X {
			st = lpHighlight
		}
		s.SetContent(x+4+ix*2, y+types.BoardSize+1, rune('a'+ix), nil, st)
		s.SetContent(x+4+ix*2+1, y+types.BoardSize+1, ' ', nil, st)
	}
	for iy := 0; iy < types.BoardSize; iy++ {
		st := style
		if iy == g.selY {
			st = highlight
		} else if g.hasLast && iy == g.lastPlayed.Y {
			st = lpHighlight
		}
		s.SetContent(x+2, y+iy, rune('1'+iy), nil, st)
	}
}
