package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/bnema/lobbymatch/internal/adapters/client"
	statusadapter "github.com/bnema/lobbymatch/internal/adapters/render/status"
	"github.com/bnema/lobbymatch/internal/config"
	"github.com/bnema/lobbymatch/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type app struct {
	viper          *viper.Viper
	configFile     string
	cfg            config.Config
	logger         *slog.Logger
	client         *client.Client
	httpClient     *http.Client
	statusRenderer func(domain.StatusView, statusadapter.RenderOptions) (string, error)
	now            func() time.Time
}

func newApp() *app {
	return &app{
		viper:          config.New(),
		logger:         newLogger(io.Discard, slog.LevelInfo),
		httpClient:     &http.Client{Timeout: 10 * time.Second},
		statusRenderer: statusadapter.Render,
		now:            time.Now,
	}
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.viper, a.configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a.cfg = cfg
	a.logger = newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	a.client = client.New(cfg.Server, a.httpClient)

	return nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
