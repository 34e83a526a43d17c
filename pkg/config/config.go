// Package config handles configuration for board-runner.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/board-runner/pkg/core"
)

// Environment variables that override the config file.
const (
	EnvBaseURL   = "BOARD_BASE_URL"
	EnvEmail     = "BOARD_EMAIL"
	EnvPassword  = "BOARD_PASSWORD"
	EnvEngine    = "BROWSER_ENGINE"
	EnvHeadless  = "BROWSER_HEADLESS"
	EnvOutputDir = "REPORT_OUTPUT_DIR"
)

// Config represents the run configuration (config.yaml).
type Config struct {
	Browser Browser `yaml:"browser"`
	Board   Board   `yaml:"board"`
	Report  Report  `yaml:"report"`
	Data    Data    `yaml:"data"` // Overrides for the suite's literal inputs
}

// Browser holds engine settings.
type Browser struct {
	Engine   string        `yaml:"engine"`   // chromium, firefox, webkit
	Headless bool          `yaml:"headless"` // Run without a window
	SlowMo   time.Duration `yaml:"slowMo"`   // Delay between engine operations
	Timeout  time.Duration `yaml:"timeout"`  // Wait budget per gesture
	Viewport Viewport      `yaml:"viewport"`
}

// Viewport is the browser context size.
type Viewport struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Board holds the application under test and its credentials.
type Board struct {
	BaseURL  string `yaml:"baseUrl"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// Report holds Outcome Reporter settings.
type Report struct {
	OutputDir   string `yaml:"outputDir"`
	Title       string `yaml:"title"`
	Environment string `yaml:"environment"`
	User        string `yaml:"user"`
	Allure      bool   `yaml:"allure"`
}

// Data overrides the literal inputs of the kanban suite. Empty fields keep defaults.
type Data struct {
	BoardName   string     `yaml:"boardName"`
	Lists       []string   `yaml:"lists"`
	Cards       []CardData `yaml:"cards"`
	DueDateCard string     `yaml:"dueDateCard"`
	DragCard    string     `yaml:"dragCard"`
	DragTo      string     `yaml:"dragTo"`
	ArchiveCard string     `yaml:"archiveCard"`
}

// CardData is one card to create.
type CardData struct {
	List string `yaml:"list"`
	Name string `yaml:"name"`
}

// Default returns the configuration used when no file provides a value.
func Default() *Config {
	return &Config{
		Browser: Browser{
			Engine:   core.EngineChromium,
			Headless: true,
			SlowMo:   50 * time.Millisecond,
			Timeout:  30 * time.Second,
			Viewport: Viewport{Width: 1920, Height: 1080},
		},
		Board: Board{
			BaseURL: "https://trello.com",
		},
		Report: Report{
			OutputDir:   filepath.Join(GetHome(), "reports"),
			Title:       "Trello Test Execution Report",
			Environment: "QA",
			User:        "Tester",
		},
	}
}

// Load loads configuration from a file on top of Default, then applies the
// environment (including a .env file in the working directory).
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir looks for config.yaml or config.yml in the directory.
// Without a file, defaults plus environment are returned.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range []string{"config.yaml", "config.yml"} {
		configPath := filepath.Join(dir, name)
		if _, err := os.Stat(configPath); err == nil {
			return Load(configPath)
		}
	}

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables and normalizes the result. A .env
// file is read first; variables already present in the process environment win.
func (c *Config) ApplyEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	if v := os.Getenv(EnvBaseURL); v != "" {
		c.Board.BaseURL = v
	}
	if v := os.Getenv(EnvEmail); v != "" {
		c.Board.Email = v
	}
	if v := os.Getenv(EnvPassword); v != "" {
		c.Board.Password = v
	}
	if v := os.Getenv(EnvEngine); v != "" {
		c.Browser.Engine = v
	}
	if v := os.Getenv(EnvHeadless); v != "" {
		headless, err := strconv.ParseBool(v)
		if err != nil {
			return core.ErrInvalidConfig.WithMessage(fmt.Sprintf("%s=%q is not a boolean", EnvHeadless, v))
		}
		c.Browser.Headless = headless
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.Report.OutputDir = v
	}
	c.Normalize()
	return nil
}

// Normalize trims values and lower-cases the engine name. Call it after
// overlaying values from outside the config file.
func (c *Config) Normalize() {
	c.Browser.Engine = strings.ToLower(strings.TrimSpace(c.Browser.Engine))
	c.Board.BaseURL = strings.TrimSpace(c.Board.BaseURL)
}

// Validate checks that everything setup needs is present and well-formed.
// Missing values return ErrMissingRequired, malformed values ErrInvalidConfig.
func (c *Config) Validate() error {
	missing := []string{}
	if c.Board.BaseURL == "" {
		missing = append(missing, "board.baseUrl")
	}
	if c.Board.Email == "" {
		missing = append(missing, "board.email")
	}
	if c.Board.Password == "" {
		missing = append(missing, "board.password")
	}
	if len(missing) > 0 {
		return core.ErrMissingRequired.WithMessage("missing required config: " + strings.Join(missing, ", ")).
			WithDetails(map[string]interface{}{"fields": missing})
	}

	if !core.IsValidEngine(c.Browser.Engine) {
		return core.ErrInvalidConfig.WithMessage(fmt.Sprintf("browser.engine %q must be one of %s",
			c.Browser.Engine, strings.Join(core.Engines, ", ")))
	}
	if c.Browser.Viewport.Width <= 0 || c.Browser.Viewport.Height <= 0 {
		return core.ErrInvalidConfig.WithMessage(fmt.Sprintf("browser.viewport %dx%d must be positive",
			c.Browser.Viewport.Width, c.Browser.Viewport.Height))
	}
	if c.Browser.Timeout <= 0 {
		return core.ErrInvalidConfig.WithMessage("browser.timeout must be positive")
	}
	if c.Browser.SlowMo < 0 {
		return core.ErrInvalidConfig.WithMessage("browser.slowMo must not be negative")
	}
	return nil
}

// LaunchOptions converts browser settings for a core.Launcher.
func (c *Config) LaunchOptions() core.LaunchOptions {
	return core.LaunchOptions{
		Engine:   c.Browser.Engine,
		Headless: c.Browser.Headless,
		SlowMo:   c.Browser.SlowMo,
		Timeout:  c.Browser.Timeout,
	}
}

// Viewport converts the configured viewport.
func (c *Config) Viewport() core.Viewport {
	return core.Viewport{Width: c.Browser.Viewport.Width, Height: c.Browser.Viewport.Height}
}
