package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/savekit/internal/logger"
	"github.com/samcharles93/savekit/pkg/format"
	"github.com/samcharles93/savekit/pkg/gta3"
	"github.com/samcharles93/savekit/pkg/padding"
	"github.com/samcharles93/savekit/pkg/save"
)

var (
	logLevel       string
	logFormat      string
	debug          bool
	strict         bool
	strictChecksum bool
	paddingPolicy  string
	paddingPattern string
	defaultFormat  string
	jsonOutput     bool
)

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

func saveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "strict",
			Usage:       "fail when a block's declared size disagrees with the bytes it holds",
			Destination: &strict,
		},
		&cli.BoolFlag{
			Name:        "strict-checksum",
			Usage:       "fail on a bad trailing checksum instead of warning",
			Destination: &strictChecksum,
		},
		&cli.StringFlag{
			Name:        "padding",
			Usage:       "padding policy for saved files (echo, zero, pattern, random)",
			Value:       "echo",
			Destination: &paddingPolicy,
		},
		&cli.StringFlag{
			Name:        "padding-pattern",
			Usage:       "hex bytes repeated by the pattern padding policy",
			Destination: &paddingPattern,
		},
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:        "json",
		Usage:       "print JSON instead of a table",
		Destination: &jsonOutput,
	}
}

// saveOptions builds the engine options from the global flags.
func saveOptions(log logger.Logger) (save.Options, error) {
	policy, err := padding.Parse(paddingPolicy, paddingPattern)
	if err != nil {
		return save.Options{}, err
	}
	return save.Options{
		Strict:         strict,
		StrictChecksum: strictChecksum,
		Padding:        policy,
		Logger:         log,
	}, nil
}

func parseFormat(id string) (format.Format, error) {
	f, ok := gta3.Formats.ByID(id)
	if !ok {
		return format.Format{}, fmt.Errorf("unknown format %q (known: %s)", id, knownFormats())
	}
	return f, nil
}

func knownFormats() string {
	ids := make([]string, 0, len(gta3.Formats))
	for _, f := range gta3.Formats {
		ids = append(ids, f.ID)
	}
	return strings.Join(ids, ", ")
}
