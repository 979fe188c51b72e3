package ui

import "github.com/gdamore/tcell/v2"

// MenuColors is the palette shared by the setup card and the list screens.
var MenuColors = struct {
	Border      tcell.Color
	BorderFocus tcell.Color
	CardBG      tcell.Color
	Title       tcell.Color
	TitleAccent tcell.Color
	Label       tcell.Color
	Hint        tcell.Color
	Selected    tcell.Color
	Unselected  tcell.Color
	ButtonFocus tcell.Color
	ButtonText  tcell.Color
}{
	Border:      tcell.PaletteColor(65),
	BorderFocus: tcell.PaletteColor(114),
	CardBG:      tcell.PaletteColor(235),
	Title:       tcell.PaletteColor(255),
	TitleAccent: tcell.PaletteColor(114),
	Label:       tcell.PaletteColor(250),
	Hint:        tcell.PaletteColor(245),
	Selected:    tcell.PaletteColor(150),
	Unselected:  tcell.PaletteColor(243),
	ButtonFocus: tcell.PaletteColor(71),
	ButtonText:  tcell.PaletteColor(255),
}
