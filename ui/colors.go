package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"reversi-local/board"
	"reversi-local/config"
	"reversi-local/types"
)

type paletteEntry struct {
	code int
	name string
}

// Felt-like tones for the board squares.
var boardColors = []paletteEntry{
	{28, "Green"},
	{22, "Dark Green"},
	{29, "Sea Green"},
	{34, "Bright Green"},
	{65, "Moss"},
	{23, "Teal"},
	{24, "Dark Cyan"},
	{94, "Saddle Brown"},
	{136, "Dark Brown"},
	{180, "Tan"},
	{240, "Gray"},
	{236, "Charcoal"},
}

// ColorConfigUI picks the board colors with a live preview and saves the
// result to the config file.
type ColorConfigUI struct {
	flex      *tview.Flex
	colorList *tview.List
	preview   *tview.Box
	cfg       *config.Config
	onDone    func(err error)

	primary   int
	alternate int
	// editingAlt selects which of the two checkerboard colors the list edits.
	editingAlt bool
}

// NewColorConfig creates the color screen. onDone receives the error from
// saving the config, if any.
func NewColorConfig(cfg *config.Config, onDone func(err error)) *ColorConfigUI {
	cc := &ColorConfigUI{
		cfg:       cfg,
		onDone:    onDone,
		primary:   cfg.Theme.Colors.BoardColor,
		alternate: cfg.Theme.Colors.BoardColorAlt,
	}

	cc.colorList = tview.NewList()
	cc.colorList.SetBorder(true)
	cc.colorList.ShowSecondaryText(false)
	cc.populateColorList()

	cc.colorList.SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		if index < 0 || index >= len(boardColors) {
			return
		}
		if cc.editingAlt {
			cc.alternate = boardColors[index].code
		} else {
			cc.primary = boardColors[index].code
		}
	})
	cc.colorList.SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		if !cc.editingAlt {
			cc.editingAlt = true
			cc.populateColorList()
			return
		}
		cc.cfg.Theme.Colors.BoardColor = cc.primary
		cc.cfg.Theme.Colors.BoardColorAlt = cc.alternate
		err := cc.cfg.Save()
		cc.editingAlt = false
		cc.populateColorList()
		if cc.onDone != nil {
			cc.onDone(err)
		}
	})

	cc.preview = tview.NewBox()
	cc.preview.SetBorder(true)
	cc.preview.SetTitle(" Preview ")
	cc.preview.SetDrawFunc(cc.drawPreview)

	hint := tview.NewTextView().
		SetText("  ↑↓ choose   ⏎ confirm   Tab switch square   Esc back").
		SetTextColor(MenuColors.Hint)

	topRow := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(cc.colorList, 30, 0, true).
		AddItem(cc.preview, 0, 1, false)
	cc.flex = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(topRow, 0, 1, true).
		AddItem(hint, 1, 0, false)
	return cc
}

// Flex returns the flex container for this UI.
func (cc *ColorConfigUI) Flex() *tview.Flex {
	return cc.flex
}

// SetInputCapture sets the input capture function for the list.
func (cc *ColorConfigUI) SetInputCapture(capture func(event *tcell.EventKey) *tcell.EventKey) {
	cc.colorList.SetInputCapture(capture)
}

// ToggleMode switches between editing the two square colors.
func (cc *ColorConfigUI) ToggleMode() {
	cc.editingAlt = !cc.editingAlt
	cc.populateColorList()
}

func (cc *ColorConfigUI) populateColorList() {
	cc.colorList.Clear()
	current := cc.primary
	title := " Light Squares "
	if cc.editingAlt {
		current = cc.alternate
		title = " Dark Squares "
	}
	cc.colorList.SetTitle(title)

	selected := 0
	for i, c := range boardColors {
		swatch := tcell.PaletteColor(c.code).Hex()
		cc.colorList.AddItem(fmt.Sprintf("[#%06x]██[-] %s", swatch, c.name), "", 0, nil)
		if c.code == current {
			selected = i
		}
	}
	cc.colorList.SetCurrentItem(selected)
}

func (cc *ColorConfigUI) drawPreview(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	b := board.New()
	sym := cc.cfg.Theme.Symbols
	startX, startY := x+2, y+1
	for by := 0; by < types.BoardSize && startY+by < y+height-1; by++ {
		for bx := 0; bx < types.BoardSize; bx++ {
			bg := tcell.PaletteColor(cc.primary)
			if (bx+by)%2 == 1 {
				bg = tcell.PaletteColor(cc.alternate)
			}
			style := tcell.StyleDefault.Background(bg).Foreground(tcell.PaletteColor(cc.cfg.Theme.Colors.LineColor))
			r := sym.BoardSquare
			switch b.At(types.Coordinate{X: bx, Y: by}) {
			case types.DarkDisk:
				r = sym.DarkDisk
				style = style.Foreground(tcell.PaletteColor(cc.cfg.Theme.Colors.DarkColor))
			case types.LightDisk:
				r = sym.LightDisk
				style = style.Foreground(tcell.PaletteColor(cc.cfg.Theme.Colors.LightColor))
			}
			screen.SetContent(startX+bx*2, startY+by, r, nil, style)
			screen.SetContent(startX+bx*2+1, startY+by, ' ', nil, style)
		}
	}
	return x, y, width, height
}
