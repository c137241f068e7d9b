package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spektr-org/supplylens/export"
)

// ============================================================================
// OUTPUT
// ============================================================================

// withOutput runs fn against stdout, or against --out when set.
func withOutput(fn func(w io.Writer) error) error {
	if outFile == "" {
		return fn(os.Stdout)
	}
	f, err := os.Create(outFile)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("📄 Written to %s", outFile)
	return nil
}

// render writes v as JSON, or table as CSV when the format is csv.
func render(v interface{}, table func() export.Table) error {
	return withOutput(func(w io.Writer) error {
		if cfg.OutputFormat == "csv" {
			if table == nil {
				return fmt.Errorf("csv output is not available for this command")
			}
			return export.WriteCSV(w, table())
		}
		return writeJSON(w, v, cfg.OutputFormat)
	})
}

func writeJSON(w io.Writer, v interface{}, format string) error {
	var out []byte
	var err error

	if format == "pretty" {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
