package config

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Duration decodes YAML duration strings such as "250ms" or "1s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("duration must be a string like \"1s\"")
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// Config is the YAML-backed runtime configuration for the translation
// pipeline and its providers.
type Config struct {
	Assets   AssetsConfig   `yaml:"assets"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Parser   ParserConfig   `yaml:"parser"`
	Speech   SpeechConfig   `yaml:"speech"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// AssetsConfig locates the sign clip library.
type AssetsConfig struct {
	Dir      string `yaml:"dir"`
	Manifest string `yaml:"manifest"`
}

// PipelineConfig tunes the streaming session queues and polling.
type PipelineConfig struct {
	VideoQueueCapacity int      `yaml:"video_queue_capacity"`
	TextQueueCapacity  int      `yaml:"text_queue_capacity"`
	PollInterval       Duration `yaml:"poll_interval"`
}

// ParserConfig locates the sentence parsing service.
type ParserConfig struct {
	URL     string   `yaml:"url"`
	Timeout Duration `yaml:"timeout"`
}

// SpeechConfig configures the live speech recognition provider.
type SpeechConfig struct {
	Endpoint  string `yaml:"endpoint"`
	APIKeyEnv string `yaml:"api_key_env"`
	Language  string `yaml:"language"`
	Model     string `yaml:"model"`
}

// LoggingConfig controls session logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Assets: AssetsConfig{Dir: "assets"},
		Pipeline: PipelineConfig{
			VideoQueueCapacity: 10,
			TextQueueCapacity:  256,
			PollInterval:       Duration(time.Second),
		},
		Parser: ParserConfig{URL: "http://127.0.0.1:8090", Timeout: Duration(10 * time.Second)},
		Speech: SpeechConfig{
			Endpoint:  "https://api.deepgram.com/v1/listen",
			APIKeyEnv: "SIGNSTREAM_RECOGNITION_DEEPGRAM_API_KEY",
			Language:  "en-US",
			Model:     "nova-2",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads a YAML config file over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field that has no sensible zero value.
func (c Config) Validate() error {
	if c.Assets.Dir == "" {
		return fmt.Errorf("assets.dir is required")
	}
	if c.Pipeline.VideoQueueCapacity <= 0 {
		return fmt.Errorf("pipeline.video_queue_capacity must be positive, got %d", c.Pipeline.VideoQueueCapacity)
	}
	if c.Pipeline.TextQueueCapacity <= 0 {
		return fmt.Errorf("pipeline.text_queue_capacity must be positive, got %d", c.Pipeline.TextQueueCapacity)
	}
	if c.Pipeline.PollInterval <= 0 {
		return fmt.Errorf("pipeline.poll_interval must be positive, got %s", c.Pipeline.PollInterval)
	}
	if c.Parser.URL == "" {
		return fmt.Errorf("parser.url is required")
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

// Logger builds a logger at the configured level.
func (c Config) Logger() *logrus.Logger {
	log := logrus.New()
	level, err := logrus.ParseLevel(c.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}
