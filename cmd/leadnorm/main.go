// Command leadnorm normalizes a saved search-webhook response into the lead
// records the API serves, and writes them as JSON, CSV or XLSX.
//
// Usage:
//
//	leadnorm --in response.json --industry restaurant --location "Austin, TX" [--format csv] [--out leads.csv]
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/microtix/lead-platform/internal/leads"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "leadnorm:", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("leadnorm", flag.ContinueOnError)
	fs.SetOutput(stderr)
	in := fs.String("in", "-", "webhook response file (- for stdin)")
	out := fs.String("out", "-", "output file (- for stdout)")
	format := fs.String("format", "json", "output format: json, csv or xlsx")
	industry := fs.String("industry", "", "industry used as the category fallback")
	location := fs.String("location", "", `search location, "City, ST"`)
	batch := fs.String("batch-time", "", "RFC3339 batch time for generated ids (default now)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	now := time.Now()
	if *batch != "" {
		t, err := time.Parse(time.RFC3339, *batch)
		if err != nil {
			return fmt.Errorf("parse --batch-time: %w", err)
		}
		now = t
	}

	body, err := readInput(*in, stdin)
	if err != nil {
		return err
	}
	env, err := leads.Decode(body)
	if err != nil {
		return err
	}

	city, state := leads.ParseLocation(*location)
	batchLeads := env.Leads(leads.SearchContext{Industry: *industry, City: city, State: state}, now)
	fmt.Fprintf(stderr, "shape=%s leads=%d\n", env.Shape, len(batchLeads))

	w, closeOut, err := openOutput(*out, stdout)
	if err != nil {
		return err
	}
	defer closeOut()

	if *format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(batchLeads)
	}
	exportFormat, err := leads.ParseExportFormat(*format)
	if err != nil {
		return err
	}
	return leads.Export(w, exportFormat, batchLeads)
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return body, nil
}

func openOutput(path string, stdout io.Writer) (io.Writer, func(), error) {
	if path == "-" {
		return stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
