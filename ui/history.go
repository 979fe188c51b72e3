package ui

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"reversi-local/history"
	"reversi-local/types"
)

const historyLimit = 200

// HistoryBrowserUI lists archived results with a detail pane.
type HistoryBrowserUI struct {
	flex     *tview.Flex
	gameList *tview.List
	preview  *tview.Box
	hint     *tview.TextView
	store    *history.Store
	games    []history.Game
	totals   history.Totals
	err      error
	selected int
	onDone   func()
}

// NewHistoryBrowser creates the history screen. store may be nil when the
// archive could not be opened.
func NewHistoryBrowser(store *history.Store, onDone func()) *HistoryBrowserUI {
	hb := &HistoryBrowserUI{
		store:  store,
		onDone: onDone,
	}

	hb.gameList = tview.NewList()
	hb.gameList.SetBorder(true)
	hb.gameList.SetTitle(" Finished Games ")
	hb.gameList.ShowSecondaryText(false)
	hb.gameList.SetHighlightFullLine(true)
	hb.gameList.SetMainTextStyle(tcell.StyleDefault.Foreground(MenuColors.Label))
	hb.gameList.SetSelectedStyle(tcell.StyleDefault.
		Foreground(MenuColors.ButtonText).
		Background(MenuColors.ButtonFocus))

	hb.preview = tview.NewBox()
	hb.preview.SetBorder(true)
	hb.preview.SetTitle(" Details ")
	hb.preview.SetDrawFunc(hb.drawPreview)

	hb.hint = tview.NewTextView()
	hb.hint.SetDynamicColors(true)
	hb.hint.SetBorder(false)
	hb.hint.SetText("  [dimgray]r[-] reload  [dimgray]q[-] back")

	hb.gameList.SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		hb.selected = index
	})
	hb.gameList.SetInputCapture(hb.handleInput)

	topRow := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(hb.gameList, 38, 0, true).
		AddItem(hb.preview, 0, 1, false)

	hb.flex = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(topRow, 0, 1, true).
		AddItem(hb.hint, 1, 0, false)

	hb.Refresh()
	return hb
}

// Flex returns the flex container for this UI.
func (hb *HistoryBrowserUI) Flex() *tview.Flex {
	return hb.flex
}

// Refresh reloads the list from the archive.
func (hb *HistoryBrowserUI) Refresh() {
	hb.gameList.Clear()
	hb.games = nil
	hb.selected = 0
	hb.err = nil

	if hb.store == nil {
		hb.gameList.AddItem("[dimgray]Archive unavailable[-]", "", 0, nil)
		return
	}
	ctx := context.Background()
	games, err := hb.store.Recent(ctx, historyLimit)
	if err == nil {
		hb.totals, err = hb.store.Totals(ctx)
	}
	if err != nil {
		hb.err = err
		hb.gameList.AddItem("[red]Could not read archive[-]", "", 0, nil)
		return
	}
	if len(games) == 0 {
		hb.gameList.AddItem("[dimgray]No games found[-]", "", 0, nil)
		return
	}

	hb.games = games
	for _, g := range games {
		label := fmt.Sprintf("%s  %2d-%-2d  %s", g.FinishedAt.Format("2006-01-02 15:04"), g.Dark, g.Light, outcome(g.Winner))
		hb.gameList.AddItem(label, "", 0, nil)
	}
}

func outcome(winner types.Cell) string {
	return types.GameOver(winner).String()
}

func (hb *HistoryBrowserUI) handleInput(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEscape:
		if hb.onDone != nil {
			hb.onDone()
		}
		return nil
	case tcell.KeyRune:
		switch event.Rune() {
		case 'q':
			if hb.onDone != nil {
				hb.onDone()
			}
			return nil
		case 'r':
			hb.Refresh()
			return nil
		}
	}
	return event
}

// drawPreview renders the selected game and the overall record.
func (hb *HistoryBrowserUI) drawPreview(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	infoStyle := tcell.StyleDefault.Foreground(tcell.PaletteColor(250))
	dimStyle := tcell.StyleDefault.Foreground(tcell.PaletteColor(245))
	resultStyle := tcell.StyleDefault.Foreground(tcell.PaletteColor(109))
	startX, row := x+2, y+1

	if hb.err != nil {
		drawText(screen, startX, row, hb.err.Error(), dimStyle)
		return x, y, width, height
	}

	if hb.selected >= 0 && hb.selected < len(hb.games) && height > 10 {
		g := hb.games[hb.selected]
		drawText(screen, startX, row, outcome(g.Winner), resultStyle)
		row += 2
		drawText(screen, startX, row, fmt.Sprintf("Dark   %2d  (%s)", g.Dark, g.Strategies[0]), infoStyle)
		row++
		drawText(screen, startX, row, fmt.Sprintf("Light  %2d  (%s)", g.Light, g.Strategies[1]), infoStyle)
		row++
		drawText(screen, startX, row, g.FinishedAt.Format("Mon 2 Jan 2006 15:04"), dimStyle)
		row++
		drawText(screen, startX, row, g.ID, dimStyle)
		row += 2
	}

	drawText(screen, startX, row, fmt.Sprintf("%d games", hb.totals.Games()), infoStyle)
	row++
	drawText(screen, startX, row, fmt.Sprintf("Dark %d · Light %d · Ties %d", hb.totals.DarkWins, hb.totals.LightWins, hb.totals.Ties), dimStyle)
	return x, y, width, height
}

// drawText writes text at the given position and returns the columns used.
func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) int {
	n := 0
	for _, ch := range text {
		screen.SetContent(x+n, y, ch, nil, style)
		n++
	}
	return n
}
