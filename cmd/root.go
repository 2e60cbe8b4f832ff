package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	app := newApp()

	rootCmd := &cobra.Command{
		Use:           "lobbymatch",
		Short:         "Lobby matchmaker for four game stations",
		Long:          "lobbymatch pairs stations pc1..pc4 that report the same lobby id, refuses to re-pair the two stations that just finished a game together, and keeps a rolling lobby and game history.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.configFile, "config", "", "Path to a lobbymatch config file (toml, yaml or json)")
	flags.String("server", "", "Base URL of a running lobbymatch server")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	_ = app.viper.BindPFlag("server", flags.Lookup("server"))
	_ = app.viper.BindPFlag("log_level", flags.Lookup("log-level"))

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(app),
		newReportCmd(app),
		newCompleteCmd(app),
		newResetCmd(app),
		newStatusCmd(app),
		newExportCmd(app),
	)

	return rootCmd
}
