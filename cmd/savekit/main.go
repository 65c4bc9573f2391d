package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/savekit/internal/logger"
	"github.com/samcharles93/savekit/internal/version"
)

func main() {
	app := &cli.Command{
		Name:    "savekit",
		Usage:   "Inspect, verify and convert GTA III save files",
		Version: version.String(),
		Flags:   append(loggingFlags(), saveFlags()...),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			applyConfig(cmd, LoadConfig())
			level := logLevel
			if debug {
				level = "debug"
			}
			return logger.WithContext(ctx, logger.Build(os.Stderr, logFormat, level)), nil
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			detectCmd(),
			inspectCmd(),
			verifyCmd(),
			convertCmd(),
			serveCmd(),
			versionCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
