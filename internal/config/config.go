package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"leadlist-tui/internal/logging"
	"leadlist-tui/internal/source"
	"leadlist-tui/internal/ui"
	"leadlist-tui/internal/viewport"
	"leadlist-tui/internal/window"
	"leadlist-tui/pkg/types"
)

const (
	// DefaultFile is read when no config path is given and it exists
	DefaultFile = "leadlist.json"
	// DefaultEnvFile holds optional LEADLIST_* overrides
	DefaultEnvFile = ".env"

	envPrefix = "LEADLIST_"
)

const (
	SourceSynthetic = "synthetic"
	SourceRemote    = "remote"
)

var (
	// ErrInvalid is wrapped by every validation failure
	ErrInvalid = errors.New("invalid config")
)

// Duration is a time.Duration that reads "150ms" strings or plain
// milliseconds from JSON
type Duration time.Duration

// MarshalJSON writes the duration as a string
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON accepts "100ms" or 100
func (d *Duration) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		parsed, err := time.ParseDuration(text)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	}
	var millis int64
	if err := json.Unmarshal(data, &millis); err != nil {
		return fmt.Errorf("duration must be a string or milliseconds: %w", err)
	}
	*d = Duration(time.Duration(millis) * time.Millisecond)
	return nil
}

// ViewportConfig holds the row geometry and buffers of the list
type ViewportConfig struct {
	Metrics          window.RowMetrics `json:"metrics"`
	Buffers          window.Config     `json:"buffers"`
	ThrottleInterval Duration          `json:"throttle_interval"`
	CacheSize        int               `json:"cache_size"`
}

// LoaderConfig controls paging
type LoaderConfig struct {
	PageSize int           `json:"page_size"`
	Timeout  Duration      `json:"timeout"`
	Sort     types.SortKey `json:"sort"`
}

// SyntheticConfig shapes the generated data set
type SyntheticConfig struct {
	Total     int      `json:"total"`
	Seed      uint64   `json:"seed"`
	Latency   Duration `json:"latency"`
	HideTotal bool     `json:"hide_total"`
}

// ServeConfig configures the JSON-RPC page server
type ServeConfig struct {
	Listen string `json:"listen"`
	Name   string `json:"name"`
	Path   string `json:"path"`
}

// Config is the complete application configuration
type Config struct {
	Source    string          `json:"source"`
	Nodes     []string        `json:"nodes"`
	Theme     string          `json:"theme"`
	AltScreen bool            `json:"alt_screen"`
	Viewport  ViewportConfig  `json:"viewport"`
	Loader    LoaderConfig    `json:"loader"`
	Synthetic SyntheticConfig `json:"synthetic"`
	Layout    ui.LayoutConfig `json:"layout"`
	Log       logging.Config  `json:"log"`
	Serve     ServeConfig     `json:"serve"`
}

// Default returns the terminal defaults: one line per row, a one line
// trailer and buffers measured in lines
func Default() *Config {
	return &Config{
		Source:    SourceSynthetic,
		Theme:     "dark",
		AltScreen: true,
		Viewport: ViewportConfig{
			Metrics:          window.RowMetrics{RowHeight: 1, RowMargin: 0, TrailerHeight: 1},
			Buffers:          window.Config{ViewBuffer: 40, EndBuffer: 15},
			ThrottleInterval: Duration(viewport.DefaultThrottleInterval),
			CacheSize:        512,
		},
		Loader: LoaderConfig{
			PageSize: 100,
			Timeout:  Duration(10 * time.Second),
			Sort:     types.SortByName,
		},
		Synthetic: SyntheticConfig{
			Total:   5000,
			Seed:    1,
			Latency: Duration(150 * time.Millisecond),
		},
		Layout: ui.DefaultLayoutConfig(),
		Log:    logging.DefaultConfig(),
		Serve: ServeConfig{
			Listen: ":8080",
			Name:   "leadlist",
			Path:   "/rpc",
		},
	}
}

// Load builds the configuration from defaults, the JSON file at path, the
// env file and LEADLIST_* environment variables, in that order. An empty
// path reads DefaultFile when present.
func Load(path, envFile string) (*Config, error) {
	return load(path, envFile, os.LookupEnv)
}

func load(path, envFile string, lookupEnv func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := cfg.readFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	dotenv := map[string]string{}
	if envFile != "" {
		values, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			dotenv = values
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
	}

	// the process environment wins over the env file
	lookup := func(key string) (string, bool) {
		if v, ok := lookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}
	integer := func(name string, dst *int) {
		if v, ok := lookup(envPrefix + name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	duration := func(name string, dst *Duration) {
		if v, ok := lookup(envPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = Duration(d)
		}
	}

	str("SOURCE", &c.Source)
	str("THEME", &c.Theme)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FILE", &c.Log.File)
	str("LISTEN", &c.Serve.Listen)
	integer("TOTAL", &c.Synthetic.Total)
	integer("PAGE_SIZE", &c.Loader.PageSize)
	duration("LATENCY", &c.Synthetic.Latency)
	duration("THROTTLE", &c.Viewport.ThrottleInterval)
	duration("TIMEOUT", &c.Loader.Timeout)

	if v, ok := lookup(envPrefix + "NODES"); ok {
		c.Nodes = nil
		for _, node := range strings.Split(v, ",") {
			if node = strings.TrimSpace(node); node != "" {
				c.Nodes = append(c.Nodes, node)
			}
		}
	}
	if v, ok := lookup(envPrefix + "SORT"); ok {
		sort, err := types.ParseSortKey(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSORT: %w", envPrefix, err))
		} else {
			c.Loader.Sort = sort
		}
	}
	return errors.Join(errs...)
}

// Validate checks every section and fails on the first invalid one
func (c *Config) Validate() error {
	switch c.Source {
	case SourceSynthetic:
	case SourceRemote:
		if len(c.Nodes) == 0 {
			return fmt.Errorf("%w: remote source needs at least one node", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown source %q", ErrInvalid, c.Source)
	}
	if c.Loader.PageSize <= 0 {
		return fmt.Errorf("%w: page size %d", ErrInvalid, c.Loader.PageSize)
	}
	if c.Synthetic.Total < 0 {
		return fmt.Errorf("%w: total %d", ErrInvalid, c.Synthetic.Total)
	}
	if err := c.ViewportOptions().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// ViewportOptions converts the viewport section for viewport.New
func (c *Config) ViewportOptions() viewport.Options {
	return viewport.Options{
		Metrics:          c.Viewport.Metrics,
		Config:           c.Viewport.Buffers,
		ThrottleInterval: time.Duration(c.Viewport.ThrottleInterval),
	}
}

// LoaderConfig converts the loader section
func (c *Config) LoaderConfig() source.LoaderConfig {
	return source.LoaderConfig{
		PageSize: c.Loader.PageSize,
		Timeout:  time.Duration(c.Loader.Timeout),
		Sort:     c.Loader.Sort,
	}
}

// SyntheticConfig converts the synthetic section
func (c *Config) SyntheticConfig() source.SyntheticConfig {
	return source.SyntheticConfig{
		Total:     c.Synthetic.Total,
		Seed:      c.Synthetic.Seed,
		Latency:   time.Duration(c.Synthetic.Latency),
		HideTotal: c.Synthetic.HideTotal,
	}
}

// UIOptions converts the presentation settings
func (c *Config) UIOptions() ui.Options {
	return ui.Options{
		Theme: c.Theme,
		List: ui.ListConfig{
			Viewport:  c.ViewportOptions(),
			CacheSize: c.Viewport.CacheSize,
		},
		Layout: c.Layout,
	}
}
