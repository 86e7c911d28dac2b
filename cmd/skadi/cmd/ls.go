package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skadidb/skadi/pkg/archive"
	"github.com/skadidb/skadi/pkg/query"
)

// lsCmd represents the ls command
var lsCmd = &cobra.Command{
	Use:   "ls <archive>",
	Short: "List records in an archive",
	Long: `List the records of an archive, optionally narrowed by key fields.

Example:
  skadi ls forecast.skd --nomvar TT --ip1 500`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := archive.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer session.Close()

		q, err := queryFromFlags(cmd)
		if err != nil {
			return err
		}

		it, err := query.NewEngine(session).Execute(q)
		if err != nil {
			return err
		}
		defer it.Close()

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "HANDLE\tNOMVAR\tTYPVAR\tETIKET\tDATEO\tIP1\tIP2\tIP3\tNIxNJxNK\tNBITS\tDATYP")

		count := 0
		for it.Next() {
			m := it.Metadata()
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%dx%dx%d\t%d\t%d\n",
				it.Handle(), m.Name, m.TypVar, m.Etiket, m.DateO,
				m.IP1, m.IP2, m.IP3, m.NI, m.NJ, m.NK, m.NBits, m.DataType)
			count++
		}
		if err := it.Err(); err != nil {
			return err
		}
		w.Flush()

		fmt.Printf("%d record(s)\n", count)
		return nil
	},
}

// queryFromFlags assembles a search query from the shared key flags.
func queryFromFlags(cmd *cobra.Command) (*query.Query, error) {
	q := query.New()

	if v, _ := cmd.Flags().GetString("nomvar"); v != "" {
		q.WithName(v)
	}
	if v, _ := cmd.Flags().GetString("typvar"); v != "" {
		q.WithTypVar(v)
	}
	if v, _ := cmd.Flags().GetString("etiket"); v != "" {
		q.WithEtiket(v)
	}
	if v, _ := cmd.Flags().GetInt32("ip1"); v != archive.Wildcard {
		q.WithIP1(v)
	}
	if v, _ := cmd.Flags().GetInt32("ip2"); v != archive.Wildcard {
		q.WithIP2(v)
	}
	if v, _ := cmd.Flags().GetInt32("ip3"); v != archive.Wildcard {
		q.WithIP3(v)
	}
	if v, _ := cmd.Flags().GetInt32("dateo"); v != archive.Wildcard {
		q.WithDateO(v)
	}

	return q, nil
}

func addKeyFlags(cmd *cobra.Command) {
	cmd.Flags().String("nomvar", "", "Variable name filter")
	cmd.Flags().String("typvar", "", "Type-of-field filter")
	cmd.Flags().String("etiket", "", "Label filter")
	cmd.Flags().Int32("ip1", archive.Wildcard, "Level encoding filter")
	cmd.Flags().Int32("ip2", archive.Wildcard, "Time encoding filter")
	cmd.Flags().Int32("ip3", archive.Wildcard, "Member encoding filter")
	cmd.Flags().Int32("dateo", archive.Wildcard, "Origin date filter")
}

func init() {
	rootCmd.AddCommand(lsCmd)
	addKeyFlags(lsCmd)
}
