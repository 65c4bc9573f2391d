package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/savekit/internal/logger"
	"github.com/samcharles93/savekit/pkg/gta3"
	"github.com/samcharles93/savekit/pkg/save"
)

func verifyCmd() *cli.Command {
	var decode bool

	return &cli.Command{
		Name:      "verify",
		Usage:     "Check the framing and checksum of one or more save files",
		ArgsUsage: "<save>...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "decode",
				Usage:       "also decode every block with strict size checks",
				Destination: &decode,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() == 0 {
				return fmt.Errorf("missing save file argument")
			}
			failed := 0
			for _, path := range cmd.Args().Slice() {
				if err := runVerify(ctx, os.Stdout, path, decode); err != nil {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed verification", failed, cmd.NArg())
			}
			return nil
		},
	}
}

func runVerify(ctx context.Context, w io.Writer, path string, decode bool) error {
	log := logger.FromContext(ctx)
	mf, err := readSave(path)
	if err != nil {
		fmt.Fprintf(w, "%s: FAIL %v\n", path, err)
		return err
	}
	defer mf.Close()

	opts, err := saveOptions(log)
	if err != nil {
		return err
	}
	v, err := save.New(gta3.Layout, opts).Verify(mf.Data)
	if err == nil && decode {
		opts.Strict = true
		opts.StrictChecksum = true
		_, err = gta3.Load(mf.Data, opts)
	}
	if err != nil {
		log.Debug("verification failed", "path", path, "phase", save.PhaseOf(err), "error", err)
		fmt.Fprintf(w, "%s: FAIL %v\n", path, err)
		return err
	}
	fmt.Fprintf(w, "%s: OK %s, %d blocks, checksum %#08x\n", path, v.Format.ID, len(v.Blocks), v.Stored)
	return nil
}
