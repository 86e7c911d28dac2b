// Command inspect walks an archive end to end: it prints the full metadata
// and a few sample values of the first record, then enumerates every record
// in the file. Useful as a smoke test against freshly packed archives.
package main

import (
	"fmt"
	"os"

	"github.com/skadidb/skadi/pkg/archive"
)

func run(path string) error {
	fmt.Println("Inspecting archive...")

	session, err := archive.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer session.Close()
	fmt.Printf("Opened %s\n", session.Path())

	h, cursor, err := session.FindFirst(archive.Template())
	if err != nil {
		return fmt.Errorf("no records found: %w", err)
	}

	meta, err := session.Describe(h)
	if err != nil {
		return fmt.Errorf("failed to describe first record: %w", err)
	}

	fmt.Println("\nFirst record info:")
	fmt.Printf("  nomvar: %s\n", meta.Name)
	fmt.Printf("  typvar: %s\n", meta.TypVar)
	fmt.Printf("  etiket: %s\n", meta.Etiket)
	fmt.Printf("  dimensions: %d x %d x %d\n", meta.NI, meta.NJ, meta.NK)
	fmt.Printf("  ip1/2/3: %d, %d, %d\n", meta.IP1, meta.IP2, meta.IP3)
	fmt.Printf("  grid type: %s\n", meta.GridType)
	fmt.Printf("  data type: %d\n", meta.DataType)
	fmt.Printf("  nbits: %d\n", meta.NBits)

	data := make([]float32, meta.Elements())
	if err := session.Read(h, data); err != nil {
		return fmt.Errorf("failed to read data: %w", err)
	}

	fmt.Println("\nSample values:")
	for i := int32(0); i < meta.NI && i < 3; i++ {
		for j := int32(0); j < meta.NJ && j < 3; j++ {
			fmt.Printf("  data[%d][%d] = %g\n", i, j, data[i*meta.NJ+j])
		}
	}

	fmt.Println("\nAll records in file:")
	for {
		m, err := session.Describe(h)
		if err != nil {
			return err
		}
		fmt.Printf("  Record: %s (%s) [%d x %d x %d] ip1=%d ip2=%d ip3=%d\n",
			m.Name, m.TypVar, m.NI, m.NJ, m.NK, m.IP1, m.IP2, m.IP3)

		h, err = session.FindNext(cursor)
		if err != nil {
			break
		}
	}

	if err := session.Close(); err != nil {
		return fmt.Errorf("failed to close archive: %w", err)
	}
	fmt.Println("\nClosed archive successfully")
	return nil
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <archive>\n", os.Args[0])
		os.Exit(1)
	}
	if err := run(os.Args[1]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
