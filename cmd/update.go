package cmd

import (
	"github.com/spf13/cobra"

	"macops/internal/config"
	"macops/internal/update"
)

// newUpdateCmd runs the uv and Homebrew maintenance sequence.
func newUpdateCmd(o *rootOptions) *cobra.Command {
	var (
		opts     update.Options
		brewfile string
	)

	c := &cobra.Command{
		Use:   "update",
		Short: "Update uv, uv tools and Homebrew packages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := o.commandLogger("update")
			if err != nil {
				return err
			}

			opts.Brewfile = o.cfg.Brewfile
			if brewfile != "" {
				opts.Brewfile = config.ExpandPath(brewfile, o.home)
			}
			u := &update.Updater{Exec: o.newExec(log), Log: log}
			return u.Run(opts)
		},
	}

	c.Flags().BoolVar(&opts.SkipUv, "skip-uv", false, "Skip the uv self/tool update")
	c.Flags().BoolVar(&opts.SkipBrew, "skip-brew", false, "Skip the Homebrew update")
	c.Flags().StringVar(&brewfile, "brewfile", "", "Brewfile written by brew bundle dump (overrides the config)")
	return c
}
