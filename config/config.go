package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"reversi-local/types"
)

const appDir = "reversi-local"

var (
	cfgFile     = appDir + "/config.json"
	saveFile    = appDir + "/game.txt"
	historyFile = appDir + "/history.db"
	logFile     = appDir + "/debug.log"
)

type InvalidConfig struct {
	err string
}

func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("Config error: %s", e.err)
}

type ConfigColors struct {
	BoardColor        int `json:"board"`
	BoardColorAlt     int `json:"board_alt"`
	DarkColor         int `json:"dark"`
	LightColor        int `json:"light"`
	LineColor         int `json:"line"`
	HintColor         int `json:"hint"`
	CursorColorFG     int `json:"cursor_fg"`
	CursorColorBG     int `json:"cursor_bg"`
	LastPlayedColorBG int `json:"last_played_bg"`
}

type ConfigSymbols struct {
	DarkDisk    rune `json:"dark"`
	LightDisk   rune `json:"light"`
	BoardSquare rune `json:"board"`
	Hint        rune `json:"hint"`
}

type Theme struct {
	DrawCursorBackground     bool          `json:"draw_cursor_bg"`
	DrawLastPlayedBackground bool          `json:"draw_last_played_bg"`
	ShowHints                bool          `json:"show_hints"`
	Colors                   ConfigColors  `json:"colors"`
	Symbols                  ConfigSymbols `json:"symbols"`
}

// PlayersConfig holds the default strategy of each side.
type PlayersConfig struct {
	Dark  string `json:"dark"`
	Light string `json:"light"`
}

// Strategies parses both players.
func (p PlayersConfig) Strategies() (dark, light types.Strategy, err error) {
	if dark, err = types.ParseStrategy(p.Dark); err != nil {
		return
	}
	light, err = types.ParseStrategy(p.Light)
	return
}

// SearchConfig holds the computer player settings.
type SearchConfig struct {
	Level   int `json:"level"`
	ThinkMs int `json:"think_ms"`
}

func (s SearchConfig) ThinkTime() time.Duration {
	return time.Duration(s.ThinkMs) * time.Millisecond
}

// StorageConfig holds file locations. Empty values select the xdg defaults.
type StorageConfig struct {
	SaveFile  string `json:"save_file"`
	HistoryDB string `json:"history_db"`
	DebugLog  string `json:"debug_log"`
}

func (s StorageConfig) SaveFilePath() (string, error) {
	return orDefault(s.SaveFile, xdg.DataFile, saveFile)
}

func (s StorageConfig) HistoryDBPath() (string, error) {
	return orDefault(s.HistoryDB, xdg.DataFile, historyFile)
}

func (s StorageConfig) DebugLogPath() (string, error) {
	return orDefault(s.DebugLog, xdg.StateFile, logFile)
}

func orDefault(path string, locate func(string) (string, error), rel string) (string, error) {
	if path != "" {
		return path, nil
	}
	return locate(rel)
}

type Config struct {
	Theme       Theme         `json:"theme"`
	Players     PlayersConfig `json:"players"`
	Search      SearchConfig  `json:"search"`
	Storage     StorageConfig `json:"storage"`
	AnimationMs int           `json:"animation_ms"`
}

// AnimationDelay is the pause between two disk updates on screen.
func (c *Config) AnimationDelay() time.Duration {
	return time.Duration(c.AnimationMs) * time.Millisecond
}

// InitConfig loads the user's config file, falling back to the defaults when
// there is none.
func InitConfig() (*Config, error) {
	absPath, err := xdg.SearchConfigFile(cfgFile)
	if err != nil {
		config := DefaultConfig
		return &config, nil
	}
	return Load(absPath)
}

// Load reads the config at filePath over the defaults and validates it.
func Load(filePath string) (*Config, error) {
	config := DefaultConfig
	if err := readCfgFile(filePath, &config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Path returns where the config file is, or would be written.
func Path() (string, error) {
	if absPath, err := xdg.SearchConfigFile(cfgFile); err == nil {
		return absPath, nil
	}
	return xdg.ConfigFile(cfgFile)
}

func (c *Config) Validate() error {
	for _, r := range []rune{c.Theme.Symbols.DarkDisk, c.Theme.Symbols.LightDisk, c.Theme.Symbols.BoardSquare, c.Theme.Symbols.Hint} {
		if r < 32 || (r >= 127 && r <= 159) {
			return &InvalidConfig{"Unicode characters 1-31 and 127-159 are not allowed"}
		}
	}
	if _, _, err := c.Players.Strategies(); err != nil {
		return &InvalidConfig{err.Error()}
	}
	if c.Search.Level < 0 || c.Search.Level > 8 {
		return &InvalidConfig{fmt.Sprintf("search level must be between 0 and 8, got %d", c.Search.Level)}
	}
	if c.Search.ThinkMs < 0 {
		return &InvalidConfig{"search think_ms must not be negative"}
	}
	if c.AnimationMs < 0 {
		return &InvalidConfig{"animation_ms must not be negative"}
	}
	return nil
}

func (c *Config) Save() error {
	absPath, err := xdg.ConfigFile(cfgFile)
	if err != nil {
		return err
	}
	return saveCfgFile(absPath, c, 0664)
}

func saveCfgFile(filePath string, a interface{}, perm fs.FileMode) error {
	jsonData, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return err
	}
	return os.WriteFile(filePath, jsonData, perm)
}

func readCfgFile(filePath string, a interface{}) error {
	configReader, err := os.ReadFile(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(configReader, a); err != nil {
		return &InvalidConfig{fmt.Sprintf("%s: %v", filePath, err)}
	}
	return nil
}
