package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"TickerDesk/internal/interpret"
	"TickerDesk/internal/model"
	"TickerDesk/internal/portfolio"
	"TickerDesk/internal/report"
	"TickerDesk/internal/screener"
)

func (a *app) analyzeCmd() *cobra.Command {
	var explain string
	cmd := &cobra.Command{
		Use:   "analyze [SYMBOL]",
		Short: "Show quote, forecast and indicator readings for a symbol",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := a.console()
			if err != nil {
				return err
			}
			d := a.services(log).desk
			symbol := ""
			if len(args) == 1 {
				symbol = args[0]
			}
			if err := d.Analyze(cmd.Context(), symbol); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if explain != "" {
				kind, err := interpret.ParseKind(explain)
				if err != nil {
					return err
				}
				in, err := d.Inspect(kind)
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(out, report.FormatInsight(in))
				return err
			}
			s := d.State()
			_, err = fmt.Fprint(out, report.FormatAnalysis(s.Stock, s.Forecast, s.Series))
			return err
		},
	}
	cmd.Flags().StringVar(&explain, "explain", "", "explain one indicator: rsi, macd, bb or sma")
	return cmd
}

func (a *app) screenCmd() *cobra.Command {
	values := make(map[screener.Field]*string, len(screener.Fields))
	cmd := &cobra.Command{
		Use:   "screen",
		Short: "Find symbols matching price, momentum and sector filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := a.console()
			if err != nil {
				return err
			}
			d := a.services(log).desk
			for _, f := range screener.Fields {
				if err := d.SetFilter(f, *values[f]); err != nil {
					return err
				}
			}
			if err := d.RunScreener(cmd.Context()); err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), report.FormatScreener(d.State().Rows))
			return err
		},
	}
	for _, f := range screener.Fields {
		values[f] = cmd.Flags().String(flagName(f), "", f.Label())
	}
	return cmd
}

// flagName turns a query key such as min_price into min-price.
func flagName(f screener.Field) string {
	return strings.ReplaceAll(string(f), "_", "-")
}

func (a *app) backtestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backtest [SYMBOL]",
		Short: "Run the strategy backtest for a symbol",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := a.console()
			if err != nil {
				return err
			}
			symbol := a.cfg.Dashboard.Symbol
			if len(args) == 1 {
				symbol = args[0]
			}
			r, err := a.services(log).gw.Backtest(cmd.Context(), model.NormalizeSymbol(symbol))
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), report.FormatBacktest(r))
			return err
		},
	}
}

func (a *app) portfolioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "portfolio",
		Short: "Show the simulated portfolio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := a.console()
			if err != nil {
				return err
			}
			port := a.services(log).port
			if err := port.Refresh(cmd.Context()); err != nil {
				return err
			}
			return printPortfolio(cmd, port)
		},
	}
}

func (a *app) traderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trader",
		Short: "Start or stop the trading bot of a symbol",
	}
	type action func(c *portfolio.Controller, cmd *cobra.Command, symbol string) error
	sub := func(use, short string, run action) *cobra.Command {
		return &cobra.Command{
			Use:   use + " SYMBOL",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				log, err := a.console()
				if err != nil {
					return err
				}
				port := a.services(log).port
				if err := run(port, cmd, model.NormalizeSymbol(args[0])); err != nil {
					return err
				}
				return printPortfolio(cmd, port)
			},
		}
	}
	cmd.AddCommand(
		sub("start", "Start the bot", func(c *portfolio.Controller, cmd *cobra.Command, symbol string) error {
			return c.Start(cmd.Context(), symbol)
		}),
		sub("stop", "Stop the bot", func(c *portfolio.Controller, cmd *cobra.Command, symbol string) error {
			return c.Stop(cmd.Context(), symbol)
		}),
		sub("toggle", "Stop the bot if it runs, start it otherwise", func(c *portfolio.Controller, cmd *cobra.Command, symbol string) error {
			if err := c.Refresh(cmd.Context()); err != nil {
				return err
			}
			done, err := c.Toggle(cmd.Context(), symbol)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", done, symbol)
			return err
		}),
	)
	return cmd
}

func (a *app) resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset [AMOUNT]",
		Short: "Reset the simulated portfolio to a cash balance",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := a.console()
			if err != nil {
				return err
			}
			amount := a.cfg.ResetAmount()
			if len(args) == 1 {
				if amount, err = decimal.NewFromString(args[0]); err != nil {
					return fmt.Errorf("amount %q: %w", args[0], err)
				}
			}
			port := a.services(log).port
			if err := port.Reset(cmd.Context(), amount); err != nil {
				return err
			}
			return printPortfolio(cmd, port)
		},
	}
}

func printPortfolio(cmd *cobra.Command, port *portfolio.Controller) error {
	snap := port.Snapshot()
	if snap == nil {
		if err := port.Err(); err != nil {
			return err
		}
		return portfolio.ErrNoSnapshot
	}
	_, err := fmt.Fprint(cmd.OutOrStdout(), report.FormatPortfolio(snap))
	return err
}
