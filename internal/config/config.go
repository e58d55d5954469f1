package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	DefaultFormat       = "chat"
	DefaultTimeout      = 60 * time.Second
	DefaultRetryMax     = 3
	DefaultPreviewBytes = 200
	DefaultMaxRawBytes  = 256 * 1024
)

// Config holds runtime configuration values.
type Config struct {
	Format       string
	SchemaFile   string
	Endpoint     string
	Timeout      time.Duration
	RetryMax     int
	AssignIDs    bool
	Quiet        bool
	JSON         bool
	Verbose      bool
	LogFile      string
	OutputFormat string
	PreviewBytes int
	MaxRawBytes  int
}

type rawConfig struct {
	Format       string `mapstructure:"format"`
	SchemaFile   string `mapstructure:"schema_file"`
	Endpoint     string `mapstructure:"endpoint"`
	Timeout      string `mapstructure:"timeout"`
	RetryMax     int    `mapstructure:"retry_max"`
	AssignIDs    bool   `mapstructure:"assign_ids"`
	Quiet        bool   `mapstructure:"quiet"`
	JSON         bool   `mapstructure:"json"`
	Verbose      bool   `mapstructure:"verbose"`
	LogFile      string `mapstructure:"log_file"`
	OutputFormat string `mapstructure:"output_format"`
	PreviewBytes int    `mapstructure:"preview_bytes"`
	MaxRawBytes  int    `mapstructure:"max_raw_bytes"`
}

// Load resolves configuration from defaults, config files, env, and flags.
func Load(cmd *cobra.Command) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CALLNORM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("format", DefaultFormat)
	v.SetDefault("schema_file", "")
	v.SetDefault("endpoint", "")
	v.SetDefault("timeout", DefaultTimeout.String())
	v.SetDefault("retry_max", DefaultRetryMax)
	v.SetDefault("assign_ids", false)
	v.SetDefault("quiet", false)
	v.SetDefault("json", false)
	v.SetDefault("verbose", false)
	v.SetDefault("log_file", "")
	v.SetDefault("output_format", "text")
	v.SetDefault("preview_bytes", DefaultPreviewBytes)
	v.SetDefault("max_raw_bytes", DefaultMaxRawBytes)

	if cmd != nil {
		_ = v.BindPFlag("format", cmd.Flags().Lookup("format"))
		_ = v.BindPFlag("schema_file", cmd.Flags().Lookup("schema"))
		_ = v.BindPFlag("endpoint", cmd.Flags().Lookup("endpoint"))
		_ = v.BindPFlag("timeout", cmd.Flags().Lookup("timeout"))
		_ = v.BindPFlag("assign_ids", cmd.Flags().Lookup("assign-ids"))
		_ = v.BindPFlag("quiet", cmd.Flags().Lookup("quiet"))
		_ = v.BindPFlag("json", cmd.Flags().Lookup("json"))
		_ = v.BindPFlag("verbose", cmd.Flags().Lookup("verbose"))
		_ = v.BindPFlag("log_file", cmd.Flags().Lookup("log-file"))
	}

	if seconds := os.Getenv("CALLNORM_TIMEOUT_SECONDS"); seconds != "" {
		v.Set("timeout", seconds+"s")
	}

	if err := loadConfigFile(v); err != nil {
		return Config{}, err
	}

	var raw rawConfig
	decoder, _ := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "mapstructure", Result: &raw})
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return Config{}, err
	}

	timeout := DefaultTimeout
	if raw.Timeout != "" {
		parsed, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("invalid timeout duration: %w", err)
		}
		timeout = parsed
	}

	jsonOutput := raw.JSON
	if cmd != nil && cmd.Flags().Changed("json") {
		jsonOutput = v.GetBool("json")
	} else if strings.EqualFold(raw.OutputFormat, "json") {
		jsonOutput = true
	}

	cfg := Config{
		Format:       raw.Format,
		SchemaFile:   raw.SchemaFile,
		Endpoint:     raw.Endpoint,
		Timeout:      timeout,
		RetryMax:     raw.RetryMax,
		AssignIDs:    raw.AssignIDs,
		Quiet:        raw.Quiet,
		JSON:         jsonOutput,
		Verbose:      raw.Verbose,
		LogFile:      raw.LogFile,
		OutputFormat: raw.OutputFormat,
		PreviewBytes: raw.PreviewBytes,
		MaxRawBytes:  raw.MaxRawBytes,
	}

	if cfg.Format == "" {
		cfg.Format = DefaultFormat
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryMax < 0 {
		cfg.RetryMax = DefaultRetryMax
	}
	if cfg.PreviewBytes <= 0 {
		cfg.PreviewBytes = DefaultPreviewBytes
	}
	if cfg.MaxRawBytes <= 0 {
		cfg.MaxRawBytes = DefaultMaxRawBytes
	}

	return cfg, nil
}

func loadConfigFile(v *viper.Viper) error {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	base := filepath.Join(configDir, "callnorm")
	candidates := []string{
		filepath.Join(base, "config.yaml"),
		filepath.Join(base, "config.yml"),
		filepath.Join(base, "config.json"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return err
			}
			return nil
		}
	}
	return nil
}
