package config

var DefaultConfig Config
var DefaultTheme Theme

func init() {
	DefaultTheme = Theme{
		DrawCursorBackground:     true,
		DrawLastPlayedBackground: true,
		ShowHints:                true,
		Colors: ConfigColors{
			BoardColor:        28,
			BoardColorAlt:     22,
			DarkColor:         232,
			LightColor:        255,
			LineColor:         22,
			HintColor:         150,
			CursorColorFG:     11,
			CursorColorBG:     4,
			LastPlayedColorBG: 2,
		},
		Symbols: ConfigSymbols{
			DarkDisk:    '●',
			LightDisk:   '●',
			BoardSquare: '·',
			Hint:        '∙',
		},
	}

	DefaultConfig = Config{
		Theme: DefaultTheme,
		Players: PlayersConfig{
			Dark:  "manual",
			Light: "computer",
		},
		Search: SearchConfig{
			Level:   3,
			ThinkMs: 400,
		},
		AnimationMs: 60,
	}
}
