// libreshelf is a small library-management server: librarians catalog
// books, register students, issue and return loans; students get an
// approval-gated self-service portal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/libreshelf/libreshelf/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "libreshelf",
		Short:         "Library management server",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()

			if err := v.BindPFlag("db_path", cmd.Root().PersistentFlags().Lookup("db")); err != nil {
				return err
			}
			if err := v.BindPFlag("addr", cmd.Root().PersistentFlags().Lookup("addr")); err != nil {
				return err
			}
			if err := v.BindPFlag("log_file", cmd.Root().PersistentFlags().Lookup("log")); err != nil {
				return err
			}
			if err := v.BindPFlag("admin_user", cmd.Root().PersistentFlags().Lookup("admin-user")); err != nil {
				return err
			}

			var err error
			cfg, err = config.Load(v, cfgFile)
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./libreshelf.yaml)")
	pf.StringP("db", "d", "libreshelf.sqlite3", "SQLite database path")
	pf.StringP("addr", "a", ":8080", "listen address")
	pf.StringP("log", "l", "", "log file path (default: stdout/stderr only)")
	pf.String("admin-user", "admin", "admin username created on first run")

	cmd.AddCommand(
		newInitCmd(),
		newServeCmd(),
		newImportBooksCmd(),
		newImportStudentsCmd(),
		newResetPasswordCmd(),
	)

	return cmd
}
