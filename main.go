// reversi-local is a terminal application to play Reversi offline, against
// a friend or the computer.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"reversi-local/config"
	"reversi-local/engine"
	"reversi-local/engine/search"
	"reversi-local/history"
	"reversi-local/logging"
	"reversi-local/snapshot"
	"reversi-local/types"
	"reversi-local/ui"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootOptions holds the flags of the play command and the global --config.
type rootOptions struct {
	configPath string
	dark       string
	light      string
	level      int
	newGame    bool
	debug      bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "reversi-local",
		Short:        "Play Reversi in the terminal",
		Version:      Version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if err := applyOverrides(cfg, opts); err != nil {
				return err
			}
			return play(cfg, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/reversi-local/config.json)")
	cmd.Flags().StringVar(&opts.dark, "dark", "", "dark player (manual or computer)")
	cmd.Flags().StringVar(&opts.light, "light", "", "light player (manual or computer)")
	cmd.Flags().IntVar(&opts.level, "level", -1, fmt.Sprintf("computer strength (0-%d)", search.MaxLevel))
	cmd.Flags().BoolVar(&opts.newGame, "new", false, "start a new game immediately, ignoring the saved one")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "write debug events to the log file")

	cmd.AddCommand(newShowCommand(opts))
	cmd.AddCommand(newHistoryCommand(opts))
	cmd.AddCommand(newConfigCommand(opts))
	return cmd
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	if opts.configPath != "" {
		return config.Load(opts.configPath)
	}
	return config.InitConfig()
}

// applyOverrides folds the play flags into cfg.
func applyOverrides(cfg *config.Config, opts *rootOptions) error {
	if opts.dark != "" {
		cfg.Players.Dark = opts.dark
	}
	if opts.light != "" {
		cfg.Players.Light = opts.light
	}
	if opts.level >= 0 {
		cfg.Search.Level = opts.level
	}
	return cfg.Validate()
}

// game bundles everything the terminal session wires together.
type game struct {
	cfg      *config.Config
	app      *tview.Application
	rootPage *tview.Pages
	board    *ui.BoardUI
	frame    *tview.Flex
	hint     *tview.TextView
	ctrl     *engine.Controller
	searcher *search.Searcher
	store    *snapshot.FileStore
	archive  *history.Store
	started  bool
}

func play(cfg *config.Config, opts *rootOptions) error {
	logPath, err := cfg.Storage.DebugLogPath()
	if err != nil {
		return err
	}
	closer, err := logging.Init(logPath, opts.debug)
	if err != nil {
		return err
	}
	defer closer.Close()

	savePath, err := cfg.Storage.SaveFilePath()
	if err != nil {
		return err
	}
	g := &game{
		cfg:      cfg,
		store:    snapshot.NewFileStore(savePath),
		searcher: search.New(search.Config{Level: cfg.Search.Level, ThinkTime: cfg.Search.ThinkTime()}),
	}

	if dbPath, err := cfg.Storage.HistoryDBPath(); err == nil {
		if g.archive, err = history.Open(dbPath); err != nil {
			log.Warn().Err(err).Str("path", dbPath).Msg("results archive unavailable")
		}
	}
	if g.archive != nil {
		defer g.archive.Close()
	}

	dark, light, _ := cfg.Players.Strategies()
	choice := ui.SetupChoice{Strategies: [2]types.Strategy{dark, light}, Level: cfg.Search.Level}
	saved, err := g.store.Load()
	hasSave := err == nil && !opts.newGame
	if err != nil && !errors.Is(err, snapshot.ErrNotExist) {
		log.Warn().Err(err).Msg("ignoring unreadable saved game")
	}
	if hasSave && opts.dark == "" && opts.light == "" {
		choice.Strategies = saved.Strategies
	}

	g.build(choice, hasSave)
	if opts.newGame {
		g.start(choice)
	}

	log.Info().Str("version", Version).Str("save", savePath).Msg("starting")
	if err := g.app.SetRoot(g.rootPage, true).Run(); err != nil {
		return err
	}
	if g.started {
		if err := g.ctrl.Save(); err != nil {
			return fmt.Errorf("saving game: %w", err)
		}
	}
	return nil
}

func (g *game) build(choice ui.SetupChoice, hasSave bool) {
	g.app = tview.NewApplication()
	g.rootPage = tview.NewPages()
	g.rootPage.SetBorder(true).SetTitle(" ⬤ reversi ")

	g.hint = tview.NewTextView()
	g.hint.SetBorder(true)
	g.hint.SetBorderPadding(0, 0, 1, 1)
	g.hint.SetTitle(" Status ")
	g.hint.SetTitleAlign(tview.AlignLeft)
	g.board = ui.NewBoardUI(g.app, g.rootPage, g.cfg, g.hint)
	g.frame = ui.CreateGameLayout(g.board, g.hint, choice.Level)
	g.refreshTotals()

	g.ctrl = engine.NewController(g.board, g.searcher, ui.Dispatcher(g.app),
		engine.WithStore(g.store),
		engine.WithStrategies(choice.Strategies[0], choice.Strategies[1]),
		engine.WithGameOverFunc(g.archiveResult),
	)
	g.board.Attach(g.ctrl)
	g.board.Box.SetInputCapture(g.handleBoardKey)

	setup := ui.NewSetup(choice, hasSave, g.start,
		func() { g.rootPage.SwitchToPage("history") },
		func() { g.rootPage.SwitchToPage("colors") },
		g.app.Stop,
	)

	browser := ui.NewHistoryBrowser(g.archive, func() {
		g.rootPage.SwitchToPage("setup")
	})

	colors := ui.NewColorConfig(g.cfg, func(err error) {
		if err != nil {
			log.Warn().Err(err).Msg("saving config")
		}
		g.board.SetConfig(g.cfg)
		g.rootPage.SwitchToPage("setup")
	})
	colors.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEsc || (event.Key() == tcell.KeyRune && event.Rune() == 'q') {
			g.rootPage.SwitchToPage("setup")
			return nil
		}
		if event.Key() == tcell.KeyTab {
			colors.ToggleMode()
			return nil
		}
		return event
	})

	card := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(setup, 20, 0, true).
		AddItem(nil, 0, 1, false)
	g.rootPage.AddPage("setup", ui.CreateCenteredForm(card, 62), true, true)
	g.rootPage.AddPage("gameview", g.frame, true, false)
	g.rootPage.AddPage("history", browser.Flex(), true, false)
	g.rootPage.AddPage("colors", colors.Flex(), true, false)
	g.rootPage.SetChangedFunc(func() {
		if name, _ := g.rootPage.GetFrontPage(); name == "history" {
			browser.Refresh()
		}
	})
}

// start resumes the saved game or begins a new one with the chosen players.
func (g *game) start(choice ui.SetupChoice) {
	g.searcher.SetLevel(choice.Level)
	g.board.InfoPanel().SetLevel(g.searcher.Level())

	if choice.Resume {
		if err := g.ctrl.Load(); err != nil {
			g.showError(fmt.Sprintf("Failed to load the saved game:\n%s", err))
			return
		}
		for i, side := range types.Sides {
			g.ctrl.SetStrategy(side, choice.Strategies[i])
		}
	} else {
		g.ctrl.Restore(snapshot.New(choice.Strategies[0], choice.Strategies[1]))
	}
	g.ctrl.Start()
	g.started = true
	g.rootPage.SwitchToPage("gameview")
}

func (g *game) showError(msg string) {
	modal := tview.NewModal().
		SetText(msg).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			g.rootPage.RemovePage("error")
		})
	g.rootPage.AddPage("error", modal, true, true)
}

func (g *game) archiveResult(r engine.Result) {
	if g.archive == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := g.archive.Record(ctx, r); err != nil {
		log.Warn().Err(err).Msg("archiving result")
		return
	}
	g.refreshTotals()
}

func (g *game) refreshTotals() {
	if g.archive == nil {
		return
	}
	totals, err := g.archive.Totals(context.Background())
	if err != nil {
		log.Warn().Err(err).Msg("reading totals")
		return
	}
	g.board.InfoPanel().SetTotals(&totals)
}

func (g *game) handleBoardKey(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyRune && event.Rune() == 'q' {
		if _, ok := g.board.SelectedTile(); ok {
			g.board.ResetSelection()
		} else {
			g.rootPage.SwitchToPage("setup")
		}
		return nil
	}
	switch event.Key() {
	case tcell.KeyUp:
		g.board.MoveSelection(0, -1)
	case tcell.KeyDown:
		g.board.MoveSelection(0, 1)
	case tcell.KeyLeft:
		g.board.MoveSelection(-1, 0)
	case tcell.KeyRight:
		g.board.MoveSelection(1, 0)
	case tcell.KeyEnter:
		g.board.PlayMove()
	case tcell.KeyRune:
		switch event.Rune() {
		case 'h':
			g.board.MoveSelection(-1, 0)
		case 'j':
			g.board.MoveSelection(0, 1)
		case 'k':
			g.board.MoveSelection(0, -1)
		case 'l':
			g.board.MoveSelection(1, 0)
		case ' ':
			g.board.PlayMove()
		case '1':
			g.board.ToggleStrategy(types.Dark)
		case '2':
			g.board.ToggleStrategy(types.Light)
		case 'n':
			g.ctrl.Reset()
		case 's':
			if err := g.ctrl.Save(); err != nil {
				g.board.Notify(fmt.Sprintf("Save failed: %s", err))
			} else {
				g.board.Notify("Game saved")
			}
		case 'f':
			if g.board.ToggleFocusMode() {
				ui.BuildFocusLayout(g.frame, g.board)
			} else {
				ui.RebuildNormalLayout(g.frame, g.board, g.hint)
			}
		}
	}
	return event
}
