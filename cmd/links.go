package cmd

import (
	"github.com/spf13/cobra"

	"macops/internal/config"
	"macops/internal/dotfiles"
)

// newLinksCmd links the configured dotfiles into the home directory.
func newLinksCmd(o *rootOptions) *cobra.Command {
	var (
		bundle string
		dryRun bool
	)

	c := &cobra.Command{
		Use:   "links",
		Short: "Symlink dotfiles into the home directory",
		Long: `Create a symlink in the home directory for every entry under
dotfiles.links in the config, replacing whatever is there. With --bundle
(or dotfiles.bundle) the archive is first unpacked into dotfiles.base.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := o.commandLogger("symlinks")
			if err != nil {
				return err
			}

			df := o.cfg.Dotfiles
			if bundle != "" {
				df.Bundle = config.ExpandPath(bundle, o.home)
			}

			switch {
			case df.Bundle == "":
			case dryRun:
				log.Info("Dry run: not unpacking %s", df.Bundle)
			default:
				if _, err := (&dotfiles.Unpacker{Log: log}).Unpack(df.Bundle, df.Base); err != nil {
					return err
				}
			}

			return (&dotfiles.Installer{Log: log, DryRun: dryRun}).Install(df.Links)
		},
	}

	c.Flags().StringVar(&bundle, "bundle", "", "Dotfiles archive (.zip, .7z, .tar[.gz|.bz2|.xz]) to unpack before linking")
	c.Flags().BoolVar(&dryRun, "dry-run", false, "Log the links without touching the filesystem")
	return c
}
