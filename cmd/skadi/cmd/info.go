package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/skadidb/skadi/pkg/archive"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <archive>",
	Short: "Show a summary of an archive",
	Long: `Show the record count of an archive and a per-variable breakdown
of its directory.

Example:
  skadi info forecast.skd`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := archive.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer session.Close()

		count, err := session.Count()
		if err != nil {
			return err
		}

		fmt.Printf("Archive: %s\n", session.Path())
		fmt.Printf("Records: %d\n", count)

		byName := map[string]int{}
		for h := 0; h < count; h++ {
			meta, err := session.Describe(archive.Handle(h))
			if err != nil {
				return err
			}
			if !meta.Deleted {
				byName[meta.Name]++
			}
		}

		names := make([]string, 0, len(byName))
		for name := range byName {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			fmt.Printf("  %-4s %d\n", name, byName[name])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
