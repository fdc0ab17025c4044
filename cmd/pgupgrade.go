package cmd

import (
	"github.com/spf13/cobra"

	"macops/internal/pgupgrade"
)

// newPgUpgradeCmd upgrades a Homebrew PostgreSQL install between major versions.
func newPgUpgradeCmd(o *rootOptions) *cobra.Command {
	var oldVer, newVer string

	c := &cobra.Command{
		Use:   "pg-upgrade",
		Short: "Upgrade Homebrew PostgreSQL to a new major version",
		Long: `Back up every database with pg_dumpall, install the new postgresql@NEW
formula, initialize its data directory, run pg_upgrade and switch the
brew service from the old version to the new one.`,
		Example: "  macops pg-upgrade -o 16 -n 17",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := o.commandLogger("pg_upgrade")
			if err != nil {
				return err
			}
			u := &pgupgrade.Upgrader{
				Exec: o.newExec(log),
				Log:  log,
				Home: o.home,
			}
			_, err = u.Upgrade(oldVer, newVer)
			return err
		},
	}

	c.Flags().StringVarP(&oldVer, "old-version", "o", "", "Current PostgreSQL major version (e.g. 16)")
	c.Flags().StringVarP(&newVer, "new-version", "n", "", "Target PostgreSQL major version (e.g. 17)")
	_ = c.MarkFlagRequired("old-version")
	_ = c.MarkFlagRequired("new-version")
	return c
}
