package cmd

import (
	"fmt"

	tomlarchive "github.com/bnema/lobbymatch/internal/adapters/archive/toml"
	"github.com/bnema/lobbymatch/internal/config"
	"github.com/spf13/cobra"
)

func newExportCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Save the server's current status snapshot to a TOML archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			archive, err := tomlarchive.NewArchive(app.viper)
			if err != nil {
				return err
			}

			view, err := fetchSnapshot(cmd, app, true)
			if err != nil {
				return err
			}

			if err := archive.Save(cmd.Context(), view); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Exported status to %s\n", archive.Path())
			return err
		},
	}

	cmd.Flags().String("path", "", "Archive file to write (default ~/.lobbymatch/status.toml)")
	_ = app.viper.BindPFlag(config.KeyArchivePath, cmd.Flags().Lookup("path"))

	return cmd
}
