package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool

	// Logger is built in PersistentPreRunE from --verbose.
	Logger = slog.New(slog.DiscardHandler)
)

var RootCmd = &cobra.Command{
	Use:   "schema-export",
	Short: "Export mapped schemas as DDL scripts",
	Long: `
  ____   ____ _   _ _____ __  __    _      _______  ______   ___  ____ _____
 / ___| / ___| | | | ____|  \/  |  / \    | ____\ \/ /  _ \ / _ \|  _ \_   _|
 \___ \| |   | |_| |  _| | |\/| | / _ \   |  _|  \  /| |_) | | | | |_) || |
  ___) | |___|  _  | |___| |  | |/ ___ \  | |___ /  \|  __/| |_| |  _ < | |
 |____/ \____|_| |_|_____|_|  |_/_/   \_\ |_____/_/\_\_|    \___/|_| \_\|_|

SCHEMA EXPORT - drop/create DDL export with table exclusion
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if viper.GetBool("verbose") {
			level = slog.LevelDebug
		}
		Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		return nil
	},
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := RootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "properties", "", "properties file: yaml or java .properties (default is ./schema-export.yaml)")
	flags.String("dsn", "", "Database Source Name (DSN)")
	flags.String("driver", "", "database/sql driver name (postgres, pgx, mysql, sqlserver, oracle, sqlite)")
	flags.String("dialect", "", "SQL dialect (defaults to the driver's)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	viper.BindPFlag("connection.dsn", flags.Lookup("dsn"))
	viper.BindPFlag("connection.driver", flags.Lookup("driver"))
	viper.BindPFlag("connection.dialect", flags.Lookup("dialect"))
	viper.BindPFlag("verbose", flags.Lookup("verbose"))
}

// initConfig loads .env, then the properties file, then environment
// variables prefixed with SCHEMA_EXPORT_.
func initConfig() {
	// A missing .env is the common case.
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag. The extension selects the format.
		viper.SetConfigFile(cfgFile)
	} else {
		// 1. Executable Directory (Priority 1)
		ex, err := os.Executable()
		if err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}

		// 2. Current Directory (Priority 2)
		viper.AddConfigPath(".")

		viper.SetConfigName("schema-export")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SCHEMA_EXPORT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Warning: could not read %s: %v\n", cfgFile, err)
	}
}
