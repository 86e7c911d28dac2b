package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/skadidb/skadi/pkg/archive"
)

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump <archive> <handle>",
	Short: "Decode and print one record",
	Long: `Decode the payload of one record and print its metadata followed by
the values, or only summary statistics with --stats.

Example:
  skadi dump forecast.skd 3 --stats`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		handle, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid handle %q", args[1])
		}
		statsOnly, _ := cmd.Flags().GetBool("stats")

		session, err := archive.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer session.Close()

		meta, err := session.Describe(archive.Handle(handle))
		if err != nil {
			return err
		}

		values := make([]float32, meta.Elements())
		if err := session.Read(archive.Handle(handle), values); err != nil {
			return err
		}

		fmt.Printf("%s %s %s dateo=%d ip1=%d ip2=%d ip3=%d %dx%dx%d nbits=%d datyp=%d\n",
			meta.Name, meta.TypVar, meta.Etiket, meta.DateO,
			meta.IP1, meta.IP2, meta.IP3, meta.NI, meta.NJ, meta.NK,
			meta.NBits, meta.DataType)

		if statsOnly {
			min, max, mean := fieldStats(values)
			fmt.Printf("min=%g max=%g mean=%g\n", min, max, mean)
			return nil
		}

		for i, v := range values {
			fmt.Printf("%g", v)
			if (i+1)%int(meta.NI) == 0 {
				fmt.Println()
			} else {
				fmt.Print(" ")
			}
		}
		return nil
	},
}

func fieldStats(values []float32) (min, max, mean float32) {
	if len(values) == 0 {
		return 0, 0, 0
	}
	min, max = values[0], values[0]
	var sum float64
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += float64(v)
	}
	return min, max, float32(sum / float64(len(values)))
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().Bool("stats", false, "Print only min/max/mean")
}
