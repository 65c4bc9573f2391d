package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/savekit/internal/logger"
	"github.com/samcharles93/savekit/pkg/block"
	"github.com/samcharles93/savekit/pkg/gta3"
	"github.com/samcharles93/savekit/pkg/save"
)

type inspectOutput struct {
	Path     string       `json:"path"`
	Size     int          `json:"size"`
	Digest   string       `json:"digest"`
	Method   string       `json:"method"`
	Summary  gta3.Summary `json:"summary"`
	Payload  int          `json:"payload"`
	Checksum struct {
		Stored   uint32 `json:"stored"`
		Computed uint32 `json:"computed"`
		OK       bool   `json:"ok"`
	} `json:"checksum"`
	Blocks []block.Info `json:"blocks"`
}

func inspectCmd() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Decode a save file and print its block layout and contents",
		ArgsUsage: "<save>",
		Flags:     []cli.Flag{jsonFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runInspect(ctx, os.Stdout, cmd.Args().First(), jsonOutput)
		},
	}
}

func runInspect(ctx context.Context, w io.Writer, path string, asJSON bool) error {
	log := logger.FromContext(ctx)
	opts, err := saveOptions(log)
	if err != nil {
		return err
	}
	mf, err := readSave(path)
	if err != nil {
		return err
	}
	defer mf.Close()

	sf, err := gta3.Load(mf.Data, opts)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	v, err := sf.Verify(mf.Data)
	if err != nil && !errors.Is(err, save.ErrChecksumMismatch) {
		return fmt.Errorf("verify %s: %w", path, err)
	}

	out := inspectOutput{
		Path:    path,
		Size:    len(mf.Data),
		Digest:  gta3.Digest(mf.Data),
		Method:  string(v.Method),
		Summary: sf.Summary(),
		Payload: v.Payload,
		Blocks:  v.Blocks,
	}
	out.Checksum.Stored = v.Stored
	out.Checksum.Computed = v.Computed
	out.Checksum.OK = v.OK()
	if asJSON {
		return printJSON(w, out)
	}

	printPairs(w, summaryPairs(out.Summary))
	fmt.Fprintln(w)
	printBlocks(w, out.Blocks)
	fmt.Fprintln(w)
	status := "ok"
	if !out.Checksum.OK {
		status = fmt.Sprintf("MISMATCH (computed %#08x)", out.Checksum.Computed)
	}
	printPairs(w, [][2]string{
		{"File size", fmt.Sprintf("%d bytes", out.Size)},
		{"Payload", fmt.Sprintf("%d bytes in %d blocks", out.Payload, len(out.Blocks))},
		{"Checksum", fmt.Sprintf("%#08x %s", out.Checksum.Stored, status)},
		{"Digest", out.Digest},
	})
	return nil
}
