// Command ytstui browses the YTS catalogue in the terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ytsbrowser/services"
	"ytsbrowser/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"
)

const (
	baseURLFlag = "base-url"
	startFlag   = "start"
	logFileFlag = "log-file"
)

var flags = []cli.Flag{
	&cli.StringFlag{
		Name:    baseURLFlag,
		Value:   services.DefaultYTSBaseURL,
		Usage:   "YTS API base URL",
		EnvVars: []string{"YTS_BASE_URL"},
	},
	&cli.StringFlag{
		Name:    startFlag,
		Aliases: []string{"s"},
		Value:   "/",
		Usage:   "Path to open first, e.g. /browse?q=alien or /movie/10",
	},
	&cli.StringFlag{
		Name:  logFileFlag,
		Usage: "Write debug logs to this file",
	},
}

func runAction(c *cli.Context) error {
	if path := c.String(logFileFlag); path != "" {
		f, err := tea.LogToFile(path, "ytstui")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "ytstui: close log file: %v\n", err)
			}
		}()
	} else {
		log.SetOutput(io.Discard)
	}

	return tui.Run(tui.Options{
		Context:   c.Context,
		Catalog:   services.NewYTSServiceWithBaseURL(c.String(baseURLFlag)),
		StartPath: c.String(startFlag),
	})
}

func main() {
	app := cli.NewApp()
	app.Name = "ytstui"
	app.Usage = "Browse, search and inspect YTS movies from the terminal."
	app.Flags = flags
	app.Action = runAction

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "ytstui: %v\n", err)
		cancel()
		os.Exit(1)
	}
}
