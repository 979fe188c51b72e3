package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"reversi-local/history"
	"reversi-local/types"
)

// GameInfoPanel displays the score and the players alongside the board.
type GameInfoPanel struct {
	box        *tview.TextView
	counts     [2]int
	strategies [2]types.Strategy
	searching  [2]bool
	level      int
	totals     *history.Totals
}

// NewGameInfoPanel creates a new game info panel.
func NewGameInfoPanel(level int) *GameInfoPanel {
	panel := &GameInfoPanel{
		box:    tview.NewTextView(),
		counts: [2]int{2, 2},
		level:  level,
	}
	panel.box.SetDynamicColors(true)
	panel.box.SetBorder(false)
	panel.box.SetTextAlign(tview.AlignLeft)
	panel.refresh()
	return panel
}

// Box returns the underlying tview component.
func (p *GameInfoPanel) Box() *tview.TextView {
	return p.box
}

func (p *GameInfoPanel) SetCounts(dark, light int) {
	p.counts = [2]int{dark, light}
	p.refresh()
}

func (p *GameInfoPanel) SetStrategy(side types.Side, s types.Strategy) {
	p.strategies[side.Index()] = s
	p.refresh()
}

func (p *GameInfoPanel) SetSearching(side types.Side, searching bool) {
	p.searching[side.Index()] = searching
	p.refresh()
}

func (p *GameInfoPanel) SetLevel(level int) {
	p.level = level
	p.refresh()
}

// SetTotals shows the archived record; nil hides it.
func (p *GameInfoPanel) SetTotals(t *history.Totals) {
	p.totals = t
	p.refresh()
}

func (p *GameInfoPanel) refresh() {
	var text strings.Builder

	text.WriteString("[white::b]Score[-:-:-]\n")
	text.WriteString("[dimgray]──────────────────────[-:-:-]\n")
	for _, side := range types.Sides {
		fmt.Fprintf(&text, "[white]%-6s[-:-:-] %2d  %s\n", side, p.counts[side.Index()], bar(p.counts[side.Index()]))
	}

	text.WriteString("\n[white::b]Players[-:-:-]\n")
	text.WriteString("[dimgray]──────────────────────[-:-:-]\n")
	for _, side := range types.Sides {
		i := side.Index()
		status := ""
		if p.searching[i] {
			status = " [yellow]◌[-]"
		}
		fmt.Fprintf(&text, "[white]%-6s[-:-:-] %s%s\n", side, p.strategies[i], status)
	}
	fmt.Fprintf(&text, "[white]Level[-:-:-]  %d\n", p.level)

	if p.totals != nil {
		text.WriteString("\n[white::b]Record[-:-:-]\n")
		text.WriteString("[dimgray]──────────────────────[-:-:-]\n")
		fmt.Fprintf(&text, "[white]Dark[-:-:-]   %d\n", p.totals.DarkWins)
		fmt.Fprintf(&text, "[white]Light[-:-:-]  %d\n", p.totals.LightWins)
		fmt.Fprintf(&text, "[white]Ties[-:-:-]   %d\n", p.totals.Ties)
	}

	p.box.SetText(text.String())
}

// bar renders a disk count as a short gauge, one block per four disks.
func bar(n int) string {
	return "[dimgray]" + strings.Repeat("▮", (n+3)/4) + "[-]"
}

// CreateGameLayout creates the main game layout with board and side panel.
func CreateGameLayout(board *BoardUI, hint *tview.TextView, level int) *tview.Flex {
	board.infoPanel = NewGameInfoPanel(level)

	boardRow := tview.NewFlex().SetDirection(tview.FlexColumn)
	boardRow.AddItem(board.Box, 0, 1, true)
	boardRow.AddItem(board.infoPanel.Box(), 26, 0, false)

	mainFlex := tview.NewFlex().SetDirection(tview.FlexRow)
	mainFlex.AddItem(boardRow, 0, 1, true)
	mainFlex.AddItem(hint, 5, 0, false)
	return mainFlex
}

// InfoPanel returns the side panel created by CreateGameLayout.
func (g *BoardUI) InfoPanel() *GameInfoPanel {
	return g.infoPanel
}

// RebuildNormalLayout restores the normal game layout with board, info panel, and hint.
func RebuildNormalLayout(gameFrame *tview.Flex, board *BoardUI, hint *tview.TextView) {
	gameFrame.Clear()

	boardRow := tview.NewFlex().SetDirection(tview.FlexColumn)
	boardRow.AddItem(board.Box, 0, 1, true)
	boardRow.AddItem(board.infoPanel.Box(), 26, 0, false)

	gameFrame.SetDirection(tview.FlexRow)
	gameFrame.AddItem(boardRow, 0, 1, true)
	gameFrame.AddItem(hint, 5, 0, false)
}

// BuildFocusLayout builds the focus mode layout with just the centered board.
func BuildFocusLayout(gameFrame *tview.Flex, board *BoardUI) {
	gameFrame.Clear()

	boardWidth := types.BoardSize*2 + 4 // 2 chars per cell + coordinates
	boardHeight := types.BoardSize + 2

	gameFrame.SetDirection(tview.FlexRow)
	gameFrame.AddItem(nil, 0, 1, false)

	centerRow := tview.NewFlex().SetDirection(tview.FlexColumn)
	centerRow.AddItem(nil, 0, 1, false)
	centerRow.AddItem(board.Box, boardWidth, 0, true)
	centerRow.AddItem(nil, 0, 1, false)

	gameFrame.AddItem(centerRow, boardHeight, 0, true)
	gameFrame.AddItem(nil, 0, 1, false)
}

// CreateCenteredForm centers a fixed-width primitive horizontally.
func CreateCenteredForm(form tview.Primitive, maxWidth int) *tview.Flex {
	centered := tview.NewFlex().SetDirection(tview.FlexColumn)
	centered.AddItem(nil, 0, 1, false)
	centered.AddItem(form, maxWidth, 0, true)
	centered.AddItem(nil, 0, 1, false)
	return centered
}
