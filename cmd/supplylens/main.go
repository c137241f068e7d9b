package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/spektr-org/supplylens/config"
	"github.com/spektr-org/supplylens/engine"
	"github.com/spektr-org/supplylens/helpers"
	"github.com/spektr-org/supplylens/schema"
)

// ============================================================================
// SUPPLYLENS CLI — Supply-chain dashboard from a CSV file
// ============================================================================

const version = "0.3.0"

var (
	// Global flags (override config when set)
	cfgFile    string
	dataFile   string
	schemaFile string
	debug      bool
	format     string
	outFile    string

	// Dashboard selectors
	productType   string
	location      string
	transportMode string
	extraFilters  map[string]string

	// Loaded state
	cfg     *config.Config
	sch     schema.Config
	dataset *engine.Dataset
)

var rootCmd = &cobra.Command{
	Use:   "supplylens",
	Short: "Supply-chain analytics over a CSV dataset",
	Long: `Supplylens loads a supply-chain CSV once and answers filtered KPI,
aggregation and dashboard queries from it, on the command line or over HTTP.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ~/.supplylens/supplylens.yaml)")
	pf.StringVar(&dataFile, "data", "", "path to the supply-chain CSV (overrides config)")
	pf.StringVar(&schemaFile, "schema", "", "path to a schema JSON (default: built-in supply-chain schema)")
	pf.BoolVar(&debug, "debug", false, "log filter and widget progress")
	pf.StringVar(&format, "format", "", "output format: json, pretty, csv (overrides config)")
	pf.StringVar(&outFile, "out", "", "write output to file instead of stdout")

	pf.StringVar(&productType, "product-type", engine.All, "product type selector")
	pf.StringVar(&location, "location", engine.All, "location selector")
	pf.StringVar(&transportMode, "transport-mode", engine.All, "transport mode selector")
	pf.StringToStringVar(&extraFilters, "filter", nil, "additional column=value filters")

	rootCmd.AddCommand(summaryCmd, aggregateCmd, dashboardCmd, filtersCmd, exportCmd, serveCmd, versionCmd, configCmd)
}

// setup loads config, schema and dataset once for every data command.
func setup(cmd *cobra.Command, args []string) error {
	switch cmd.Name() {
	case "version", "help", "completion":
		return nil
	}
	if cmd == configCmd || cmd.Parent() == configCmd {
		return nil
	}

	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	if f.Changed("data") {
		c.DataFile = dataFile
	}
	if f.Changed("schema") {
		c.SchemaFile = schemaFile
	}
	if f.Changed("format") {
		switch format {
		case "json", "pretty", "csv":
			c.OutputFormat = format
		default:
			return fmt.Errorf("unsupported --format %q (use json|pretty|csv)", format)
		}
	}
	cfg = c

	sch, err = loadSchema(cfg.SchemaFile)
	if err != nil {
		return err
	}

	dataset, err = helpers.LoadFile(cfg.DataFile, sch)
	return err
}

func loadSchema(path string) (schema.Config, error) {
	if path == "" {
		return schema.SupplyChain(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return schema.Config{}, fmt.Errorf("read schema file: %w", err)
	}
	var s schema.Config
	if err := json.Unmarshal(b, &s); err != nil {
		return schema.Config{}, fmt.Errorf("parse schema JSON: %w", err)
	}
	if err := s.Validate(); err != nil {
		return schema.Config{}, err
	}
	log.Printf("📋 Loaded schema: %s (%d dimensions, %d measures)",
		s.Name, len(s.Dimensions), len(s.Measures))
	return s, nil
}

// filterSpec collects the selector flags. Unset selectors stay "All".
func filterSpec() engine.FilterSpec {
	spec := engine.FilterSpec{
		engine.ColProductType:   productType,
		engine.ColLocation:      location,
		engine.ColTransportMode: transportMode,
	}
	for k, v := range extraFilters {
		spec[k] = v
	}
	return spec
}

// engineOptions builds dashboard options from config and flags.
func engineOptions() ([]engine.Option, error) {
	widgets, err := engine.SelectWidgets(cfg.Widgets...)
	if err != nil {
		return nil, err
	}
	return []engine.Option{
		engine.WithWidgets(widgets...),
		engine.WithTopN(cfg.TopN),
		engine.WithVerbose(debug),
	}, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("supplylens %s\n", version)
	},
}
