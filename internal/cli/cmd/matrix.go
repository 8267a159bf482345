package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"forge/pkg/pipeline"
)

func NewMatrixCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Print the built-in FreeBSD build matrix",
		RunE:  runMatrix,
	}

	cmd.Flags().Bool("diff", false, "Show the structural diff between the stable and nightly variant")

	return cmd
}

func runMatrix(cmd *cobra.Command, args []string) error {
	matrix := pipeline.BuildMatrix()

	showDiff, _ := cmd.Flags().GetBool("diff")
	if !showDiff {
		out, err := matrix.Marshal()
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	}

	diffs := pipeline.Diff(matrix.Tasks[0], matrix.Tasks[1])
	for _, d := range diffs {
		fmt.Printf("%s:\n  stable:  %s\n  nightly: %s\n", d.Field, d.A, d.B)

		if d.Field == "name" {
			continue
		}
		a := strings.ReplaceAll(d.A, pipeline.StableChannel, "CHANNEL")
		b := strings.ReplaceAll(d.B, pipeline.NightlyChannel, "CHANNEL")
		if a != b {
			return fmt.Errorf("variants diverge beyond the toolchain channel in %s", d.Field)
		}
	}
	return nil
}
