package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/stance/pkg/stance/internalerr"
	"github.com/cognicore/stance/pkg/stance/lexeme"
)

// Config is the stance configuration file.
type Config struct {
	Corpus  Corpus `yaml:"corpus"`
	Lists   Lists  `yaml:"lists"`
	Lexicon string `yaml:"lexicon"`
	Filter  Filter `yaml:"filter"`
	Store   Store  `yaml:"store"`
	Model   Model  `yaml:"model"`
}

// Corpus names the two class files.
type Corpus struct {
	Positive  string `yaml:"positive"`
	Negative  string `yaml:"negative"`
	StripHTML bool   `yaml:"strip_html"`
}

// Lists names the special word lists.
type Lists struct {
	StopWords        string `yaml:"stop_words"`
	Kernel           string `yaml:"kernel"`
	Periphery        string `yaml:"periphery"`
	BuiltinStopwords string `yaml:"builtin_stopwords"` // language code, "" disables
}

// Filter selects the words used for training.
type Filter struct {
	Classes      []string `yaml:"classes"`
	MinFrequency int      `yaml:"min_frequency"`
}

// Store configures persistence.
type Store struct {
	Path string `yaml:"path"` // sqlite file, "" keeps everything in memory
}

// Model names the persisted model.
type Model struct {
	Name string `yaml:"name"`
}

// Defaults returns a configuration with every optional field set.
func Defaults() *Config {
	return &Config{
		Filter: Filter{Classes: []string{"NN", "VB", "JJ", "RB"}},
		Model:  Model{Name: "default"},
	}
}

// Load reads a YAML configuration file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from STANCE_* environment variables. When
// envFile is set it is read first with godotenv; variables already in the
// environment win over the file.
func ApplyEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	setString(&cfg.Corpus.Positive, "STANCE_POSITIVE")
	setString(&cfg.Corpus.Negative, "STANCE_NEGATIVE")
	setString(&cfg.Lists.StopWords, "STANCE_STOP_WORDS")
	setString(&cfg.Lists.Kernel, "STANCE_KERNEL")
	setString(&cfg.Lists.Periphery, "STANCE_PERIPHERY")
	setString(&cfg.Lists.BuiltinStopwords, "STANCE_BUILTIN_STOPWORDS")
	setString(&cfg.Lexicon, "STANCE_LEXICON")
	setString(&cfg.Store.Path, "STANCE_STORE_PATH")
	setString(&cfg.Model.Name, "STANCE_MODEL_NAME")

	if v, ok := os.LookupEnv("STANCE_STRIP_HTML"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("STANCE_STRIP_HTML=%q: %w", v, internalerr.ErrInvalidConfig)
		}
		cfg.Corpus.StripHTML = b
	}
	if v, ok := os.LookupEnv("STANCE_MIN_FREQUENCY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("STANCE_MIN_FREQUENCY=%q: %w", v, internalerr.ErrInvalidConfig)
		}
		cfg.Filter.MinFrequency = n
	}
	if v, ok := os.LookupEnv("STANCE_CLASSES"); ok {
		cfg.Filter.Classes = splitList(v)
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = strings.TrimSpace(v)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks that the configuration can drive training.
func (c *Config) Validate() error {
	if c.Corpus.Positive == "" || c.Corpus.Negative == "" {
		return fmt.Errorf("corpus: positive and negative files are required: %w", internalerr.ErrInvalidConfig)
	}
	if c.Filter.MinFrequency < 0 {
		return fmt.Errorf("filter: min_frequency must not be negative: %w", internalerr.ErrInvalidConfig)
	}
	if _, err := c.Classes(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Model.Name) == "" {
		return fmt.Errorf("model: name is required: %w", internalerr.ErrInvalidConfig)
	}
	return nil
}

// Classes parses the configured word classes.
func (c *Config) Classes() ([]lexeme.POS, error) {
	out := make([]lexeme.POS, 0, len(c.Filter.Classes))
	for _, name := range c.Filter.Classes {
		pos := lexeme.ParsePOS(name)
		if !pos.IsWord() {
			return nil, fmt.Errorf("filter: unknown word class %q: %w", name, internalerr.ErrInvalidConfig)
		}
		out = append(out, pos)
	}
	return out, nil
}

// Loader returns a component loader for the configured files.
func (c *Config) Loader() (*Loader, error) {
	classes, err := c.Classes()
	if err != nil {
		return nil, err
	}
	return &Loader{
		StopWordsPath:    c.Lists.StopWords,
		KernelPath:       c.Lists.Kernel,
		PeripheryPath:    c.Lists.Periphery,
		LexiconPath:      c.Lexicon,
		BuiltinStopwords: c.Lists.BuiltinStopwords,
		Classes:          classes,
		StripHTML:        c.Corpus.StripHTML,
	}, nil
}
