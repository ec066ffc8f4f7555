// Package config loads the declarative activity stream configuration:
// named verb streams, enabled filters and upgraders, link builders, and verb
// labels. Names in the file are resolved against factories the host compiles
// in, mirroring how the registries are populated once at startup.
package config

import (
	"fmt"
	"os"

	"github.com/goliatone/go-activitystream/pkg/types"
	"github.com/goliatone/go-activitystream/stream"
	"gopkg.in/yaml.v3"
)

const (
	defaultListenerWorkers   = 2
	defaultListenerQueueSize = 64
)

// Config is the full declarative configuration.
type Config struct {
	Streams      []StreamConfig      `yaml:"streams"`
	Filters      []FilterConfig      `yaml:"filters"`
	LinkBuilders []LinkBuilderConfig `yaml:"link_builders"`
	Upgraders    []UpgraderConfig    `yaml:"upgraders"`
	VerbLabels   map[string]string   `yaml:"verb_labels"`
	Listener     ListenerConfig      `yaml:"listener"`
}

// StreamConfig declares a named verb set.
type StreamConfig struct {
	Name  string   `yaml:"name"`
	Verbs []string `yaml:"verbs"`
}

// FilterConfig enables a stream filter by name. Verbs are passed to the
// filter's factory; Enabled defaults to true.
type FilterConfig struct {
	Name    string   `yaml:"name"`
	Enabled *bool    `yaml:"enabled"`
	Verbs   []string `yaml:"verbs"`
}

// LinkBuilderConfig registers a link builder by name.
type LinkBuilderConfig struct {
	Name    string `yaml:"name"`
	BaseURL string `yaml:"base_url"`
	Default bool   `yaml:"default"`
}

// UpgraderConfig enables an upgrader by name; Enabled defaults to true.
type UpgraderConfig struct {
	Name    string `yaml:"name"`
	Enabled *bool  `yaml:"enabled"`
}

// ListenerConfig sizes the async bundle listener.
type ListenerConfig struct {
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`
}

// Validate performs basic validation on the configuration.
func (c *Config) Validate() error {
	seenStreams := make(map[string]bool)
	for _, s := range c.Streams {
		if s.Name == "" {
			return fmt.Errorf("stream name is required")
		}
		if seenStreams[s.Name] {
			return fmt.Errorf("duplicate stream name: %s", s.Name)
		}
		seenStreams[s.Name] = true
	}
	for _, f := range c.Filters {
		if f.Name == "" {
			return fmt.Errorf("filter name is required")
		}
	}
	for _, b := range c.LinkBuilders {
		if b.Name == "" {
			return fmt.Errorf("link builder name is required")
		}
	}
	for _, u := range c.Upgraders {
		if u.Name == "" {
			return fmt.Errorf("upgrader name is required")
		}
	}
	if c.Listener.Workers < 0 {
		return fmt.Errorf("listener workers must not be negative")
	}
	return nil
}

// SetDefaults sets reasonable default values for optional fields.
func (c *Config) SetDefaults() {
	if c.Listener.Workers == 0 {
		c.Listener.Workers = defaultListenerWorkers
	}
	if c.Listener.QueueSize == 0 {
		c.Listener.QueueSize = defaultListenerQueueSize
	}
}

// LoadConfig reads the YAML config file at the given path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML configuration bytes, applies defaults, and
// validates the result.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (f FilterConfig) enabled() bool   { return f.Enabled == nil || *f.Enabled }
func (u UpgraderConfig) enabled() bool { return u.Enabled == nil || *u.Enabled }

// FilterFactory builds a stream filter from its declarative entry.
type FilterFactory func(cfg FilterConfig) (types.StreamFilter, error)

// UpgraderFactory builds an upgrader by name.
type UpgraderFactory func() (types.Upgrader, error)

// LinkBuilderFactory builds a link builder from its declarative entry. When
// nil, stream.NewDefaultLinkBuilder(cfg.BaseURL) is used.
type LinkBuilderFactory func(cfg LinkBuilderConfig) (types.LinkBuilder, error)

// BuildOptions carries the compiled-in factories the declarative names
// resolve against.
type BuildOptions struct {
	Store        types.ActivityStore
	Clock        types.Clock
	Logger       types.Logger
	Filters      map[string]FilterFactory
	Upgraders    map[string]UpgraderFactory
	LinkBuilders map[string]LinkBuilderFactory
}

// Build assembles a stream.Config from the declarative file and the host's
// factories. Unknown names fail loudly; registries are meant to be complete
// at startup, not patched at runtime.
func (c *Config) Build(opts BuildOptions) (stream.Config, error) {
	out := stream.Config{
		Store:      opts.Store,
		Clock:      opts.Clock,
		Logger:     opts.Logger,
		VerbLabels: c.VerbLabels,
	}

	for _, s := range c.Streams {
		out.Streams = append(out.Streams, stream.ActivityStream{Name: s.Name, Verbs: s.Verbs})
	}

	for _, f := range c.Filters {
		if !f.enabled() {
			continue
		}
		factory, ok := opts.Filters[f.Name]
		if !ok {
			return stream.Config{}, fmt.Errorf("unknown filter: %s", f.Name)
		}
		filter, err := factory(f)
		if err != nil {
			return stream.Config{}, fmt.Errorf("building filter %s: %w", f.Name, err)
		}
		out.Filters = append(out.Filters, filter)
	}

	for _, b := range c.LinkBuilders {
		var builder types.LinkBuilder
		if factory, ok := opts.LinkBuilders[b.Name]; ok {
			built, err := factory(b)
			if err != nil {
				return stream.Config{}, fmt.Errorf("building link builder %s: %w", b.Name, err)
			}
			builder = built
		} else {
			builder = stream.NewDefaultLinkBuilder(b.BaseURL)
		}
		out.LinkBuilders = append(out.LinkBuilders, stream.LinkBuilderRegistration{
			Name:    b.Name,
			Builder: builder,
			Default: b.Default,
		})
	}

	for _, u := range c.Upgraders {
		if !u.enabled() {
			continue
		}
		factory, ok := opts.Upgraders[u.Name]
		if !ok {
			return stream.Config{}, fmt.Errorf("unknown upgrader: %s", u.Name)
		}
		upgrader, err := factory()
		if err != nil {
			return stream.Config{}, fmt.Errorf("building upgrader %s: %w", u.Name, err)
		}
		out.Upgraders = append(out.Upgraders, upgrader)
	}

	return out, nil
}
