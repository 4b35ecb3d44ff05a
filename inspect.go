package main

import (
	"fmt"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"cocodsk/rsdos"
)

func flagLetter(e *rsdos.Entry) string {
	if e.ASCII() {
		return "A"
	}
	return "B"
}

func newDirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dir <disk.dsk>",
		Short: "List the files in an RS-DOS image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			img, err := loadImage(args[0], cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			t := rsdos.ReadTable(img)
			entries := rsdos.LiveEntries(img)
			if len(entries) == 0 {
				fmt.Fprintln(out, "No files found in directory.")
				return nil
			}

			tbl := table.New("FILENAME", "EXT", "TYPE", "FLAG", "SIZE").WithWriter(out)
			total := 0
			for i := range entries {
				e := &entries[i]
				size := e.Size(&t)
				total += size
				tbl.AddRow(e.Name(), e.Ext(), e.Type, flagLetter(e), size)
			}
			tbl.Print()
			free := t.FreeCount()
			fmt.Fprintf(out, "%d file(s), %d bytes; %d granules free (%s)\n",
				len(entries), total, free, human(int64(free*rsdos.GranuleSize)))
			return nil
		},
	}
}

func newFatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fat <disk.dsk>",
		Short: "Dump the granule allocation table and the granule owners",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			img, err := loadImage(args[0], cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			r := rsdos.Audit(img)

			tbl := table.New("#", "FILENAME", "FIRST", "GRANULES").WithWriter(out)
			n := 0
			for _, f := range r.Findings {
				if f.Deleted() {
					continue
				}
				n++
				tbl.AddRow(n, f.Entry.FullName(), f.Entry.FirstGranule, f.Chain)
			}
			if n > 0 {
				tbl.Print()
				fmt.Fprintln(out)
			}

			fmt.Fprintln(out, "Allocation table (hex):")
			for _, row := range tableDump(&r.Table) {
				fmt.Fprintln(out, row)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Granule owners (file #, * = shared):")
			for _, row := range ownerDump(granuleOwners(r)) {
				fmt.Fprintln(out, row)
			}
			return nil
		},
	}
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <disk.dsk>",
		Short: "Check directory and allocation table consistency",
		Long:  "Walk every granule chain and report broken chains, shared granules and lost granules. Exits 1 when problems are found.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			img, err := loadImage(args[0], cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			r := rsdos.Audit(img)

			if len(r.Findings) > 0 {
				tbl := table.New("SLOT", "FILENAME", "FIRST", "LAST", "SIZE", "CHAIN", "STATUS").WithWriter(out)
				for i := range r.Findings {
					f := &r.Findings[i]
					if f.Deleted() {
						tbl.AddRow(f.Entry.Slot, f.Entry.FullName(), "-", "-", "-", "-", "deleted")
						continue
					}
					tbl.AddRow(f.Entry.Slot, f.Entry.FullName(), f.Entry.FirstGranule,
						f.Entry.LastSectorBytes, f.Size, f.Chain, f.Verdict())
				}
				tbl.Print()
				fmt.Fprintln(out)
			}

			fmt.Fprintf(out, "Shared granules:        %s\n", joinInts(r.MultiplyUsed))
			fmt.Fprintf(out, "Lost granules:          %s\n", joinInts(r.Orphaned))
			fmt.Fprintf(out, "In use but marked free: %s\n", joinInts(r.MarkedFree))
			fmt.Fprintf(out, "Files: %d  Used: %d  Free: %d  Total: %d granules\n",
				r.FilesFound(), r.UsedGranules(), r.FreeGranules(), r.TotalGranules())

			if n := r.Problems(); n > 0 {
				fmt.Fprintf(out, "%d problem(s) found\n", n)
				return errProblems
			}
			fmt.Fprintln(out, "No problems found")
			return nil
		},
	}
}
