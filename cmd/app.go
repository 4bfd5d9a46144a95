// Package cmd implements the CLI application to manage a personal ledger.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/subcommands"
	"github.com/spf13/viper"

	"github.com/dinheiro/ledger"
	"github.com/dinheiro/ledger/sqlstore"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on
// the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&statementCmd{}, "reports")
	c.Register(&summaryCmd{}, "reports")

	c.Register(&transferCmd{}, "postings")

	c.Register(&buyCmd{}, "investments")
	c.Register(&sellCmd{}, "investments")
	c.Register(&refreshQuotesCmd{}, "investments")

	c.Register(&expandCmd{}, "recurring")
	c.Register(&editCmd{}, "recurring")
	c.Register(&deleteCmd{}, "recurring")

	c.Register(&exportCmd{}, "data")
	c.Register(&importCmd{}, "data")
}

// Config holds application configuration.
type Config struct {
	Database struct {
		Path string
	}
	Ledger struct {
		BaseCurrency  string
		HorizonMonths int
	}
}

// LoadConfig reads configuration from file and env. Env var overrides use
// prefix DINHEIRO_.
func LoadConfig() (Config, error) {
	v := viper.New()

	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "dinheiro", "ledger.db"))
	v.SetDefault("ledger.basecurrency", "EUR")
	v.SetDefault("ledger.horizonmonths", 12)

	v.SetConfigType("toml")
	if cfgPath := os.Getenv("DINHEIRO_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "dinheiro"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("DINHEIRO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// the config file is optional
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// OpenStore opens the configured database, creating its directory if needed.
func OpenStore() (*sqlstore.Store, Config, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, cfg, err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, cfg, fmt.Errorf("mkdir database dir: %w", err)
	}
	store, err := sqlstore.Open(cfg.Database.Path)
	return store, cfg, err
}

// parseRange builds a date range from two optional flag values, defaulting to
// the current month.
func parseRange(start, end string) (ledger.Range, error) {
	if start == "" && end == "" {
		return ledger.MonthOf(ledger.Today()), nil
	}
	from, err := ledger.ParseDate(start)
	if err != nil {
		return ledger.Range{}, fmt.Errorf("parsing start date: %w", err)
	}
	to := ledger.Today()
	if end != "" {
		to, err = ledger.ParseDate(end)
		if err != nil {
			return ledger.Range{}, fmt.Errorf("parsing end date: %w", err)
		}
	}
	return ledger.NewRange(from, to), nil
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, err)
	return subcommands.ExitFailure
}
