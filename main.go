// cocodsk
// RS-DOS (TRS-80 Color Computer) disk image inspector and maintenance tool.
// Cobra CLI + tcell fullscreen granule map styled like old DOS defragmenters.
// One glyph per GRANULE.
//
// Build:
//
//	go build -o cocodsk .
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mit-pdos/go-journal/util"
	"github.com/spf13/cobra"

	"cocodsk/rsdos"
)

// errProblems is returned by check when the image has consistency problems.
var errProblems = errors.New("consistency problems found")

func must(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
}

func human(b int64) string {
	if b >= 1024*1024 {
		return fmt.Sprintf("%dM", b/(1024*1024))
	}
	if b >= 1024 {
		return fmt.Sprintf("%dK", b/1024)
	}
	return fmt.Sprintf("%dB", b)
}

/* ===================== write targets ===================== */

// target is where a rewritten image goes: a new file, the original file, or
// nowhere.
type target struct {
	output  string
	inplace bool
}

func (t *target) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&t.output, "output", "o", "", "write the result to a new image file")
	cmd.Flags().BoolVarP(&t.inplace, "inplace", "i", false, "modify the image in place (a .bak copy is kept)")
}

func (t *target) validate() error {
	if t.output != "" && t.inplace {
		return fmt.Errorf("choose at most one of --output or --inplace")
	}
	return nil
}

// commit persists img according to the chosen target.
func (t *target) commit(w io.Writer, diskPath string, img *rsdos.Image) error {
	switch {
	case t.inplace:
		bak, err := backupImage(diskPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Backup written to %s\n", bak)
		if err := writeInPlace(diskPath, img.Bytes()); err != nil {
			return err
		}
		fmt.Fprintf(w, "Image %s updated in place\n", diskPath)
	case t.output != "":
		if err := writeNew(t.output, img.Bytes()); err != nil {
			return err
		}
		fmt.Fprintf(w, "Image written to %s\n", t.output)
	default:
		fmt.Fprintln(w, "No action taken. Use --output <new.dsk> or --inplace to save the result.")
	}
	return nil
}

/* ===================== CLI ===================== */

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cocodsk",
		Short:         "RS-DOS disk image inspector and defragmenter",
		Long:          "Inspect, check, sort and defragment 35-track RS-DOS (Color Computer) .DSK images",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Uint64Var(&util.Debug, "debug", 0, "debug level (1 logs broken chains, 2 logs relocations)")

	root.AddCommand(newDirCmd(), newFatCmd(), newCheckCmd(), newSortCmd(), newDefragCmd(), newMountCmd())
	return root
}

func main() {
	err := newRootCmd().Execute()
	if errors.Is(err, errProblems) {
		os.Exit(1)
	}
	must(err)
}
