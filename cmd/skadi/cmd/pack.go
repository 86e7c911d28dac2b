package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skadidb/skadi/pkg/archive"
	"github.com/skadidb/skadi/pkg/codec"
)

// packRecord is one record of a pack manifest.
type packRecord struct {
	Nomvar string    `json:"nomvar"`
	Typvar string    `json:"typvar"`
	Etiket string    `json:"etiket"`
	DateO  int32     `json:"dateo"`
	Deet   int32     `json:"deet"`
	Npas   int32     `json:"npas"`
	NI     int32     `json:"ni"`
	NJ     int32     `json:"nj"`
	NK     int32     `json:"nk"`
	IP1    int32     `json:"ip1"`
	IP2    int32     `json:"ip2"`
	IP3    int32     `json:"ip3"`
	Grtyp  string    `json:"grtyp"`
	IG1    int32     `json:"ig1"`
	IG2    int32     `json:"ig2"`
	IG3    int32     `json:"ig3"`
	IG4    int32     `json:"ig4"`
	NBits  uint8     `json:"nbits"`
	Datyp  uint8     `json:"datyp"`
	Values []float32 `json:"values"`
}

// packCmd represents the pack command
var packCmd = &cobra.Command{
	Use:   "pack <archive> <manifest.json>",
	Short: "Build an archive from a JSON manifest",
	Long: `Build a new archive from a JSON manifest, a list of records each
carrying its key, grid descriptors, packing parameters and values.

Example:
  skadi pack forecast.skd records.json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read manifest: %w", err)
		}

		var records []packRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return fmt.Errorf("failed to parse manifest: %w", err)
		}
		if len(records) == 0 {
			return fmt.Errorf("manifest contains no records")
		}

		w, err := archive.Create(args[0])
		if err != nil {
			return fmt.Errorf("failed to create archive: %w", err)
		}

		for i, r := range records {
			params := archive.RecordParams{
				Name: r.Nomvar, TypVar: r.Typvar, Etiket: r.Etiket,
				DateO: r.DateO, Deet: r.Deet, Npas: r.Npas,
				NI: r.NI, NJ: r.NJ, NK: r.NK,
				IP1: r.IP1, IP2: r.IP2, IP3: r.IP3,
				GridType: r.Grtyp,
				IG1:      r.IG1, IG2: r.IG2, IG3: r.IG3, IG4: r.IG4,
				NBits: r.NBits, DataType: codec.DataType(r.Datyp),
			}
			if err := w.Append(params, r.Values); err != nil {
				w.Close()
				return fmt.Errorf("failed to append record %d: %w", i, err)
			}
		}

		if err := w.Close(); err != nil {
			return fmt.Errorf("failed to finalize archive: %w", err)
		}

		fmt.Printf("Wrote %d record(s) to %s\n", len(records), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(packCmd)
}
