package cmd

import (
	"fmt"

	"github.com/bnema/lobbymatch/internal/domain"
	"github.com/spf13/cobra"
)

func newReportCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "report <station> [lobby-id]",
		Short: "Report a station's lobby id, as a station client would",
		Long:  "Report the lobby id a station currently sees. Omitting the lobby id reports that the station has no lobby.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			station, err := domain.ParseStation(args[0])
			if err != nil {
				return err
			}

			var sessionID domain.SessionID
			if len(args) == 2 {
				sessionID = domain.SessionID(args[1])
			}

			verdict, err := app.client.ReportSession(cmd.Context(), station, sessionID)
			if err != nil {
				return fmt.Errorf("report lobby id: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), verdictLabel(verdict))
			return err
		},
	}
}

func newCompleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:     "complete <station>",
		Aliases: []string{"game-end"},
		Short:   "Report that a station finished its game",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			station, err := domain.ParseStation(args[0])
			if err != nil {
				return err
			}

			if err := app.client.CompleteSession(cmd.Context(), station); err != nil {
				return fmt.Errorf("report game end: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return err
		},
	}
}

func newResetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear every station's lobby id (history is kept)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.client.Reset(cmd.Context()); err != nil {
				return fmt.Errorf("reset: %w", err)
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return err
		},
	}
}

func verdictLabel(verdict domain.Verdict) string {
	if verdict == domain.VerdictNoMatch {
		return "waiting"
	}
	return string(verdict)
}
