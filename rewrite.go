package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"cocodsk/retrodfrg"
	"cocodsk/rsdos"
)

func printListing(w io.Writer, title string, entries []rsdos.Entry) {
	fmt.Fprintln(w, title)
	tbl := table.New("SLOT", "FILENAME", "EXT", "FIRST").WithWriter(w)
	n := 0
	for i := range entries {
		e := &entries[i]
		if !e.Live() {
			continue
		}
		tbl.AddRow(n, e.Name(), e.Ext(), e.FirstGranule)
		n++
	}
	if n == 0 {
		fmt.Fprintln(w, "  (empty)")
		return
	}
	tbl.Print()
}

func newSortCmd() *cobra.Command {
	var (
		dst     target
		compact bool
	)
	cmd := &cobra.Command{
		Use:   "sort <disk.dsk>",
		Short: "Sort directory entries by name and extension",
		Long:  "Rewrite the directory with its files in name order. The allocation table and file data are not touched.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := dst.validate(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			img, err := loadImage(args[0], cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			res, err := rsdos.SortDirectory(img, rsdos.SortOptions{Compact: compact})
			if err != nil {
				return fmt.Errorf("sort %s: %w", args[0], err)
			}
			printListing(out, "Before:", res.Before)
			fmt.Fprintln(out)
			printListing(out, "After:", res.After)
			fmt.Fprintln(out)
			if !res.Changed {
				fmt.Fprintln(out, "Directory already sorted")
			}
			return dst.commit(out, args[0], img)
		},
	}
	dst.bind(cmd)
	cmd.Flags().BoolVar(&compact, "compact", false, "drop deleted entries instead of keeping them after the sorted files")
	return cmd
}

func newDefragCmd() *cobra.Command {
	var (
		dst   target
		useUI bool
	)
	cmd := &cobra.Command{
		Use:   "defrag <disk.dsk>",
		Short: "Make every file's granules contiguous",
		Long:  "Relocate every file to a contiguous run of granules from granule 0 upward. Files with broken chains are left where they are.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := dst.validate(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			img, err := loadImage(args[0], cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			var res *rsdos.DefragResult
			if useUI {
				res, err = defragWithUI(img, args[0])
			} else {
				res, err = rsdos.Defragment(img)
			}
			if err != nil {
				return fmt.Errorf("defragmentation aborted, image unchanged: %w", err)
			}

			for _, f := range res.Skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "WARNING: %s left in place: chain %s\n", f.Entry.FullName(), f.Chain)
			}
			printRelocations(out, res)
			return dst.commit(out, args[0], img)
		},
	}
	dst.bind(cmd)
	cmd.Flags().BoolVar(&useUI, "ui", false, "show a fullscreen granule map while defragmenting")
	return cmd
}

func printRelocations(w io.Writer, res *rsdos.DefragResult) {
	if len(res.Relocations) == 0 {
		fmt.Fprintln(w, "No files to relocate")
	} else {
		tbl := table.New("FILENAME", "SIZE", "FROM", "TO", "MOVED").WithWriter(w)
		moved := 0
		for i := range res.Relocations {
			r := &res.Relocations[i]
			mark := "no"
			if r.Moved() {
				mark = "yes"
				moved++
			}
			tbl.AddRow(r.Entry.FullName(), r.Size, joinInts(r.From), joinInts(r.To), mark)
		}
		tbl.Print()
		fmt.Fprintf(w, "%d of %d file(s) relocated\n", moved, len(res.Relocations))
	}
	fmt.Fprintf(w, "Free granules: %d before, %d after\n", res.FreeBefore, res.FreeAfter)
}

// defragWithUI runs Defragment behind the fullscreen granule map. Quitting
// before the commit leaves img untouched.
func defragWithUI(img *rsdos.Image, path string) (*rsdos.DefragResult, error) {
	ui, err := retrodfrg.NewUI()
	if err != nil {
		return nil, fmt.Errorf("ui init: %w", err)
	}
	defer ui.Close()

	// Setup Ctrl+C handler to stop the UI
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(sigChan)
		close(sigChan)
	}()
	go func() {
		if _, ok := <-sigChan; ok {
			ui.RequestStop()
		}
	}()

	before := rsdos.Audit(img)
	w, _ := ui.Size()
	ui.SetTitle(fmt.Sprintf(" DEFRAG – %s ", filepath.Base(path)))
	ui.SetSummaryLines([]string{
		fmt.Sprintf("Files: %-3d  Granules: %d x %d bytes", before.FilesFound(), rsdos.NumGranules, rsdos.GranuleSize),
		fmt.Sprintf("Used: %-3d  Free: %-3d  Lost: %-3d  Shared: %-3d",
			before.UsedGranules(), before.FreeGranules(), len(before.Orphaned), len(before.MultiplyUsed)),
	})
	ui.SetLegend([]string{mapLegend})
	ui.SetPhases([]string{"Read", "Plan", "Relocate", "Commit"})
	ui.SetMaps(retrodfrg.Map{Title: "Before", Rows: retrodfrg.GlyphRows(granuleGlyphs(before), w)})
	if err := retrodfrg.Step(ui, "Read", "Read "+img.String()); err != nil {
		return nil, err
	}

	res, err := rsdos.Defragment(img)
	if err != nil {
		ui.SetStatusLines([]string{"Aborted: " + err.Error()})
		ui.LayoutAndDraw()
		_ = retrodfrg.WaitWithStop(ui, 2*time.Second)
		return nil, err
	}
	after := rsdos.Audit(img)
	ui.SetMaps(
		retrodfrg.Map{Title: "Before", Rows: retrodfrg.GlyphRows(granuleGlyphs(before), w)},
		retrodfrg.Map{Title: "After", Rows: retrodfrg.GlyphRows(granuleGlyphs(after), w)},
	)
	ui.SetPhaseDone("Plan")
	ui.SetPhaseDone("Relocate")
	// The image is already committed in memory; quitting only skips the pause.
	_ = retrodfrg.Step(ui, "Commit",
		fmt.Sprintf("Relocated %d file(s), skipped %d", len(res.Relocations), len(res.Skipped)),
		fmt.Sprintf("Free granules: %d before, %d after", res.FreeBefore, res.FreeAfter),
	)
	_ = retrodfrg.WaitWithStop(ui, 2*time.Second)
	return res, nil
}
