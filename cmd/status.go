package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	tomlarchive "github.com/bnema/lobbymatch/internal/adapters/archive/toml"
	"github.com/bnema/lobbymatch/internal/adapters/gateway"
	statusadapter "github.com/bnema/lobbymatch/internal/adapters/render/status"
	"github.com/bnema/lobbymatch/internal/domain"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *app) *cobra.Command {
	var asJSON bool
	var asTOML bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show station lobby ids with recent lobby and game history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if asJSON && asTOML {
				return fmt.Errorf("--json and --toml are mutually exclusive")
			}

			view, err := fetchSnapshot(cmd, app, !asJSON && !asTOML)
			if err != nil {
				return err
			}

			return writeStatusOutput(cmd, app, view, asJSON, asTOML)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().BoolVar(&asTOML, "toml", false, "Render the snapshot as a TOML archive document")

	return cmd
}

func fetchSnapshot(cmd *cobra.Command, app *app, withSpinner bool) (domain.StatusView, error) {
	var view domain.StatusView
	fetch := func(ctx context.Context) error {
		var err error
		view, err = app.client.Snapshot(ctx)
		return err
	}

	var err error
	if withSpinner {
		err = runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Fetching lobby status...", fetch)
	} else {
		err = fetch(cmd.Context())
	}
	if err != nil {
		return domain.StatusView{}, fmt.Errorf("fetch status: %w", err)
	}

	return view, nil
}

func writeStatusOutput(cmd *cobra.Command, app *app, view domain.StatusView, asJSON, asTOML bool) error {
	switch {
	case asJSON:
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(gateway.NewStatusPayload(view))
	case asTOML:
		data, err := tomlarchive.Encode(view)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	rendered, err := app.statusRenderer(view, statusadapter.RenderOptions{Now: app.now()})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
