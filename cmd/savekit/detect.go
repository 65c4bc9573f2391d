package main

import (
	"context"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/savekit/internal/logger"
	"github.com/samcharles93/savekit/pkg/gta3"
)

type detectOutput struct {
	Path        string   `json:"path"`
	Format      string   `json:"format"`
	Label       string   `json:"label"`
	Method      string   `json:"method"`
	SizeOffset  int      `json:"size_offset"`
	TagOffset   int      `json:"tag_offset"`
	ElementSize int      `json:"element_size,omitempty"`
	Candidates  []string `json:"candidates,omitempty"`
	Digest      string   `json:"digest"`
}

func detectCmd() *cli.Command {
	return &cli.Command{
		Name:      "detect",
		Usage:     "Identify the release a save file was written by",
		ArgsUsage: "<save>",
		Flags:     []cli.Flag{jsonFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runDetect(ctx, os.Stdout, cmd.Args().First(), jsonOutput)
		},
	}
}

func runDetect(ctx context.Context, w io.Writer, path string, asJSON bool) error {
	log := logger.FromContext(ctx)
	mf, err := readSave(path)
	if err != nil {
		return err
	}
	defer mf.Close()

	res, err := gta3.Detect(mf.Data)
	if err != nil {
		return err
	}
	log.Debug("detected", "path", path, "format", res.Format.ID, "method", res.Method)

	out := detectOutput{
		Path:        path,
		Format:      res.Format.ID,
		Label:       res.Format.Label,
		Method:      string(res.Method),
		SizeOffset:  res.SizeOffset,
		TagOffset:   res.TagOffset,
		ElementSize: res.ElementSize,
		Digest:      gta3.Digest(mf.Data),
	}
	for _, f := range res.Candidates {
		out.Candidates = append(out.Candidates, f.ID)
	}
	if asJSON {
		return printJSON(w, out)
	}

	pairs := [][2]string{
		{"Format", out.Label + " (" + out.Format + ")"},
		{"Method", out.Method},
		{"Size constant at", "0x" + strconv.FormatInt(int64(out.SizeOffset), 16)},
		{"Script tag at", "0x" + strconv.FormatInt(int64(out.TagOffset), 16)},
	}
	if out.ElementSize != 0 {
		pairs = append(pairs,
			[2]string{"Ped record size", strconv.Itoa(out.ElementSize)},
			[2]string{"Candidates", strings.Join(out.Candidates, ", ")},
		)
	}
	pairs = append(pairs, [2]string{"Digest", out.Digest})
	printPairs(w, pairs)
	return nil
}
