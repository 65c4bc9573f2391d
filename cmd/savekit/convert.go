package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/savekit/internal/logger"
	"github.com/samcharles93/savekit/pkg/gta3"
)

func convertCmd() *cli.Command {
	var (
		to  string
		out string
	)

	return &cli.Command{
		Name:      "convert",
		Usage:     "Re-save a file in another release's format",
		ArgsUsage: "<save>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "to",
				Usage:       "target format (" + knownFormats() + ")",
				Destination: &to,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output path (default: <save>.<format>.b next to the input)",
				Destination: &out,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if to == "" {
				to = defaultFormat
			}
			_, err := runConvert(ctx, cmd.Args().First(), to, out)
			return err
		},
	}
}

// runConvert loads path in its detected format and writes it as format to.
// It returns the path written.
func runConvert(ctx context.Context, path, to, out string) (string, error) {
	log := logger.FromContext(ctx)
	if path == "" {
		return "", fmt.Errorf("missing save file argument")
	}
	if to == "" {
		return "", fmt.Errorf("missing --to format (known: %s)", knownFormats())
	}
	target, err := parseFormat(to)
	if err != nil {
		return "", err
	}
	opts, err := saveOptions(log)
	if err != nil {
		return "", err
	}

	sf, err := gta3.Open(path, opts)
	if err != nil {
		return "", err
	}
	from := sf.Format()
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + "." + target.ID + ".b"
	}
	if err := sf.WriteFile(out, target); err != nil {
		return "", fmt.Errorf("write %s: %w", out, err)
	}
	log.Info("converted save", "from", from.ID, "to", target.ID, "path", out)
	return out, nil
}
