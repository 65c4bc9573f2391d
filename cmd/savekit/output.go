package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"

	"github.com/samcharles93/savekit/internal/mmapfile"
	"github.com/samcharles93/savekit/pkg/block"
	"github.com/samcharles93/savekit/pkg/gta3"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func newTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}

// printPairs writes a two-column key/value table.
func printPairs(w io.Writer, pairs [][2]string) {
	table := newTable(w)
	table.SetColumnSeparator(":")
	for _, p := range pairs {
		table.Append([]string{p[0], p[1]})
	}
	table.Render()
}

func printBlocks(w io.Writer, blocks []block.Info) {
	table := newTable(w)
	table.SetHeader([]string{"Block", "Offset", "Length", "End", "Tag"})
	for _, row := range blockRows(blocks) {
		table.Append(row)
	}
	table.Render()
}

func blockRows(blocks []block.Info) [][]string {
	rows := make([][]string, 0, len(blocks))
	for _, b := range blocks {
		tag := b.Tag
		if tag == "" {
			tag = "-"
		}
		rows = append(rows, []string{
			strconv.Itoa(b.Index),
			fmt.Sprintf("0x%04x", b.Offset),
			strconv.Itoa(b.Length),
			fmt.Sprintf("0x%04x", b.End()),
			tag,
		})
	}
	return rows
}

func summaryPairs(s gta3.Summary) [][2]string {
	pairs := [][2]string{
		{"Format", fmt.Sprintf("%s (%s)", s.FormatLabel, s.Format)},
	}
	if s.SaveName != "" {
		pairs = append(pairs, [2]string{"Save name", s.SaveName})
	}
	if !s.SavedAt.IsZero() {
		pairs = append(pairs, [2]string{"Saved at", s.SavedAt.Format("2006-01-02 15:04:05")})
	}
	pairs = append(pairs,
		[2]string{"Level", strconv.Itoa(int(s.Level))},
		[2]string{"Game time", s.GameTime},
		[2]string{"Money", "$" + strconv.Itoa(int(s.Money))},
		[2]string{"Packages", strconv.Itoa(int(s.Packages))},
		[2]string{"Missions passed", strconv.Itoa(int(s.MissionsPassed))},
	)
	if s.LastMission != "" {
		pairs = append(pairs, [2]string{"Last mission", s.LastMission})
	}
	pairs = append(pairs,
		[2]string{"Health", strconv.FormatFloat(float64(s.Health), 'f', 0, 32)},
		[2]string{"Armor", strconv.FormatFloat(float64(s.Armor), 'f', 0, 32)},
		[2]string{"Scripts", fmt.Sprintf("%d running, %d globals", s.RunningScripts, s.GlobalVars)},
		[2]string{"Vehicles", fmt.Sprintf("%d cars, %d boats", s.Cars, s.Boats)},
		[2]string{"Objects", strconv.Itoa(s.Objects)},
		[2]string{"Cheats used", strconv.FormatBool(s.CheatsUsed)},
	)
	return pairs
}

// readSave maps path read-only. The caller closes the returned file.
func readSave(path string) (*mmapfile.File, error) {
	if path == "" {
		return nil, fmt.Errorf("missing save file argument")
	}
	return mmapfile.Open(path, gta3.MaxFileSize)
}
