package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/adambasile/jobmatcher/internal/logger"
	"github.com/adambasile/jobmatcher/internal/skills"
)

const (
	app       = "jobmatcher"
	envPrefix = "JOBMATCHER"

	commandMatch = "match"
	commandServe = "serve"
)

type Config struct {
	Jobseekers  string         `mapstructure:"jobseekers" validate:"required"`
	Jobs        string         `mapstructure:"jobs" validate:"required"`
	Output      string         `mapstructure:"output"`
	Format      string         `mapstructure:"format" validate:"omitempty,oneof=csv json yaml"`
	ExcludeFile string         `mapstructure:"exclude-file"`
	Matching    MatchingConfig `mapstructure:"matching"`
	Filters     FiltersConfig  `mapstructure:"filters"`
	Serve       ServeConfig    `mapstructure:"serve"`
}

type MatchingConfig struct {
	DedupeSkills    bool `mapstructure:"dedupe-skills"`
	DropEmptySkills bool `mapstructure:"drop-empty-skills"`
}

type FiltersConfig struct {
	MinPercent float64 `mapstructure:"min-percent" validate:"gte=0"`
	MinCount   int     `mapstructure:"min-count" validate:"gte=0"`
	Top        int     `mapstructure:"top" validate:"gte=0"`
}

type ServeConfig struct {
	Address   string `mapstructure:"address" validate:"required"`
	TokenFile string `mapstructure:"token-file"`
}

var validate = validator.New()

// Validate checks the settings used by the given command.
func (c *Config) Validate(command string) error {
	var err error
	switch command {
	case commandServe:
		err = validate.StructExcept(c, "Jobseekers", "Jobs")
	default:
		err = validate.StructExcept(c, "Serve")
	}
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// SkillOptions maps the matching section onto tokenizer options.
func (c *Config) SkillOptions() skills.Options {
	return skills.Options{
		Dedupe:    c.Matching.DedupeSkills,
		DropEmpty: c.Matching.DropEmptySkills,
	}
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobmatcher matches jobseekers to jobs by the share of required skills they have",
		Long: "jobmatcher reads a jobseekers table (id, name, skills) and a jobs table (id, title, required_skills)\n" +
			"and reports, for every pair sharing a skill, how many of the job's required skills the jobseeker has.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initConfig()
		},
	}
)

// Execute executes the root command. SIGINT and SIGTERM cancel its context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobmatcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	mustBind("debug", rootCmd.PersistentFlags().Lookup("debug"))
	mustBind("json", rootCmd.PersistentFlags().Lookup("json"))

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// The config file is optional unless it was asked for explicitly.
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}

	return nil
}

func getConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	return &config, nil
}

// newLogger builds the logger of one invocation of command.
func newLogger(command string) (*zap.Logger, error) {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}

	return logger.WithCommonFields(l, uuid.NewString(), command), nil
}

func mustBind(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding %s flag: %v", key, err))
	}
}
