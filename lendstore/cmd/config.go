package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultDB       = "library-db.bin"
	defaultLoanDays = 7
	// maxLoanDays keeps loanPeriod well inside time.Duration.
	maxLoanDays = 100 * 365
)

// config is the resolved global configuration of one run.
type config struct {
	DB        string
	As        string
	Format    string
	LogLevel  string
	Verbose   bool
	LoanDays  int
	Approvers []string
	DumpDir   string
}

func (c config) loanPeriod() time.Duration {
	return time.Duration(c.LoanDays) * 24 * time.Hour
}

// setupViperConfig configures Viper with environment variables and config files
func setupViperConfig(v *viper.Viper) {
	// LENDSTORE_CONFIG points at an explicit config file
	if configFile := os.Getenv("LENDSTORE_CONFIG"); configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("lendstore")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.lendstore")
	}

	v.SetEnvPrefix("LENDSTORE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("db", defaultDB)
	v.SetDefault("format", "table")
	v.SetDefault("log-level", "warn")
	v.SetDefault("loan-days", defaultLoanDays)
}

// addGlobalFlags adds persistent flags that apply to all commands and binds them to v.
func addGlobalFlags(flags *pflag.FlagSet, v *viper.Viper) {
	flags.StringP("db", "d", defaultDB, "Library snapshot file")
	flags.String("as", "", "Chat id of the member running the command")
	flags.StringP("format", "f", "table", "Output format (table|json|yaml)")
	flags.String("log-level", "warn", "Log level (debug|info|warn|error)")
	flags.BoolP("verbose", "v", false, "Also write logs to stderr")
	flags.Int("loan-days", defaultLoanDays, "Days between handout and due date")
	flags.StringSlice("approver", nil, "Chat id allowed to approve handouts and returns (repeatable; space separated in LENDSTORE_APPROVER)")
	flags.String("dump-dir", "", "Directory for emergency dumps (default: system temp dir)")

	_ = v.BindPFlags(flags)
}

// loadConfig reads the configuration, ignoring a missing config file.
func loadConfig(v *viper.Viper) (config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config{}, NewConfigError("read configuration", err.Error(), "Check LENDSTORE_CONFIG and lendstore.yaml")
		}
	}

	cfg := config{
		DB:        v.GetString("db"),
		As:        v.GetString("as"),
		Format:    strings.ToLower(v.GetString("format")),
		LogLevel:  v.GetString("log-level"),
		Verbose:   v.GetBool("verbose"),
		LoanDays:  v.GetInt("loan-days"),
		Approvers: v.GetStringSlice("approver"),
		DumpDir:   v.GetString("dump-dir"),
	}

	if !slices.Contains(outputFormats, cfg.Format) {
		return config{}, NewConfigError("start", fmt.Sprintf("unknown format %q", cfg.Format),
			"Use one of: "+strings.Join(outputFormats, ", "))
	}
	if cfg.LoanDays < 1 || cfg.LoanDays > maxLoanDays {
		return config{}, NewConfigError("start",
			fmt.Sprintf("loan-days must be between 1 and %d, got %d", maxLoanDays, cfg.LoanDays))
	}
	if cfg.DB == "" {
		return config{}, NewConfigError("start", "no library file", CommonSuggestions.CheckDB)
	}
	return cfg, nil
}
