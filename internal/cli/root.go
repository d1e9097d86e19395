// Package cli wires configuration, logging and services behind the
// tickerdesk command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"TickerDesk/internal/config"
	"TickerDesk/internal/desk"
	"TickerDesk/internal/gateway"
	"TickerDesk/internal/logging"
	"TickerDesk/internal/portfolio"
	"TickerDesk/internal/scheduler"
	"TickerDesk/internal/ui"
)

// app carries what every command needs once flags are parsed.
type app struct {
	cfgPath string
	apiURL  string
	view    string
	cfg     *config.Config
}

// services is the wired service graph.
type services struct {
	gw    gateway.Gateway
	sched *scheduler.Scheduler
	port  *portfolio.Controller
	desk  *desk.Desk
}

func (a *app) services(log zerolog.Logger) *services {
	var gw gateway.Gateway = gateway.NewHTTPGateway(a.cfg.API.BaseURL, a.cfg.API.Timeout, a.cfg.Proxy, log)
	log.Debug().Str("gateway", gw.Name()).Str("api", a.cfg.API.BaseURL).Msg("gateway ready")
	sched := scheduler.NewScheduler(log)
	port := portfolio.NewController(gw, sched, a.cfg.Dashboard.PollInterval, log)
	return &services{
		gw:    gw,
		sched: sched,
		port:  port,
		desk:  desk.New(gw, port, a.cfg.Dashboard.Symbol, log),
	}
}

// console is the logger of one-shot commands.
func (a *app) console() (zerolog.Logger, error) {
	return logging.Console(a.cfg.Log.Level)
}

// NewRootCmd builds the command tree. Without a subcommand it opens the
// dashboard.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "tickerdesk",
		Short:         "Terminal dashboard for stock analysis, screening and paper trading",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.Path(a.cfgPath))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if a.apiURL != "" {
				cfg.API.BaseURL = a.apiURL
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config validation: %w", err)
			}
			a.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDashboard(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "config file (default "+config.DefaultPath+")")
	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "analysis service base URL")
	root.Flags().StringVar(&a.view, "view", desk.Overview.String(), "tab shown at start")

	root.AddCommand(
		a.analyzeCmd(),
		a.screenCmd(),
		a.backtestCmd(),
		a.portfolioCmd(),
		a.traderCmd(),
		a.resetCmd(),
	)
	return root
}

// Execute runs the command tree until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

func (a *app) runDashboard(ctx context.Context) error {
	view, err := desk.ParseView(a.view)
	if err != nil {
		return err
	}
	log, closer, err := logging.File(a.cfg.Log.Level, a.cfg.Log.File)
	if err != nil {
		return err
	}
	defer closeQuietly(closer)
	log.Info().Str("api", a.cfg.API.BaseURL).Str("symbol", a.cfg.Dashboard.Symbol).Msg("dashboard starting")

	svc := a.services(log)
	svc.sched.Start()
	defer svc.sched.Stop()
	defer svc.port.Leave()

	m := ui.NewModel(ctx, svc.desk, ui.Options{
		APIURL:      a.cfg.API.BaseURL,
		ResetAmount: a.cfg.ResetAmount(),
		View:        view,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	log.Info().Msg("dashboard stopped")
	return nil
}

func closeQuietly(c io.Closer) { _ = c.Close() }
