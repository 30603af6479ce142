// Package config handles jrebase.toml rebase configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/daimatz/jrebase/pkg/description"
	"github.com/daimatz/jrebase/pkg/matcher"
	"github.com/daimatz/jrebase/pkg/rebase"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// FileName is the configuration file looked up by FindAndLoad.
const FileName = "jrebase.toml"

const (
	DefaultPlaceholder = "jrebase/Placeholder"
	TransformerSuffix  = "suffix"
	TransformerPrefix  = "prefix"
)

// ErrInvalid is returned for configurations that parse but cannot be used.
var ErrInvalid = errors.New("invalid configuration")

// Config represents a jrebase.toml file.
type Config struct {
	Rebase          Rebase           `toml:"rebase"`
	Ignore          []Ignore         `toml:"ignore"`
	Transformations []Transformation `toml:"transformation"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`
}

// Rebase configures how rebased methods are named and padded.
type Rebase struct {
	Placeholder string `toml:"placeholder"`
	Transformer string `toml:"transformer"`
	Affix       string `toml:"affix"`
}

// Ignore excludes methods from rebasing. An empty descriptor matches every
// overload.
type Ignore struct {
	Name       string `toml:"name"`
	Descriptor string `toml:"descriptor"`
}

// Transformation is a plugin entry.
type Transformation struct {
	Plugin    string            `toml:"plugin"`
	Arguments map[string]string `toml:"arguments"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	c := &Config{}
	c.setDefaults()
	return c
}

// Load parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	c.Path = path
	c.setDefaults()
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

// FindAndLoad walks up from startDir to find a jrebase.toml file and loads
// it. The defaults are returned when no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

func (c *Config) setDefaults() {
	if c.Rebase.Placeholder == "" {
		c.Rebase.Placeholder = DefaultPlaceholder
	}
	if c.Rebase.Transformer == "" {
		c.Rebase.Transformer = TransformerSuffix
	}
	if c.Rebase.Affix == "" {
		c.Rebase.Affix = rebase.DefaultAffix
	}
}

func (c *Config) validate() error {
	switch c.Rebase.Transformer {
	case TransformerSuffix, TransformerPrefix:
	default:
		return fmt.Errorf("unknown transformer %q: %w", c.Rebase.Transformer, ErrInvalid)
	}
	for i, ignore := range c.Ignore {
		if ignore.Name == "" {
			return fmt.Errorf("ignore entry %d has no name: %w", i, ErrInvalid)
		}
	}
	for _, t := range c.Transformations {
		if _, err := t.PluginName(); err != nil {
			return err
		}
	}
	return nil
}

// PlaceholderType describes the placeholder type appended to rebased
// constructors.
func (c *Config) PlaceholderType() description.Type {
	return description.NewLatentType(c.Rebase.Placeholder, 0, description.Object)
}

// NameTransformer returns the configured naming strategy.
func (c *Config) NameTransformer() rebase.NameTransformer {
	if c.Rebase.Transformer == TransformerPrefix {
		return rebase.NewPrefixing(c.Rebase.Affix)
	}
	return rebase.NewSuffixing(c.Rebase.Affix)
}

// IgnoreMatcher matches the methods of any ignore entry.
func (c *Config) IgnoreMatcher() matcher.Matcher[description.Method] {
	if len(c.Ignore) == 0 {
		return matcher.None[description.Method]()
	}
	rules := make([]matcher.Matcher[description.Method], 0, len(c.Ignore))
	for _, ignore := range c.Ignore {
		var rule matcher.Matcher[description.Method] = matcher.Named(ignore.Name)
		if ignore.Descriptor != "" {
			rule = matcher.Named(ignore.Name).And(matcher.HasDescriptor(ignore.Descriptor))
		}
		rules = append(rules, rule)
	}
	return matcher.AnyOf(rules...)
}

// Resolver builds the rebase resolver described by c.
func (c *Config) Resolver() *rebase.Default {
	return rebase.NewResolver(c.IgnoreMatcher(), c.PlaceholderType(), c.NameTransformer())
}

// PluginName returns the plugin name, failing when it is missing.
func (t Transformation) PluginName() (string, error) {
	if t.Plugin == "" {
		return "", fmt.Errorf("plugin name is not defined: %w", ErrInvalid)
	}
	return t.Plugin, nil
}

// ArgumentNames returns the argument keys in sorted order.
func (t Transformation) ArgumentNames() []string {
	names := maps.Keys(t.Arguments)
	slices.Sort(names)
	return names
}
