package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spektr-org/supplylens/engine"
	"github.com/spektr-org/supplylens/export"
	"github.com/spektr-org/supplylens/server"
)

var (
	aggGroupBy     []string
	aggOp          string
	aggMeasure     string
	aggDenominator string
	aggOrder       string
	aggLimit       int

	dashWidget string
	exportKind string
	listenAddr string
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the KPI totals for the selected records",
	RunE: func(cmd *cobra.Command, args []string) error {
		filtered, err := engine.Apply(dataset, filterSpec())
		if err != nil {
			return err
		}
		s := engine.Summarize(filtered)
		return render(s, func() export.Table { return export.SummaryTable(s) })
	},
}

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Group the selected records and aggregate one measure",
	Example: `  supplylens aggregate --group-by product_type --measure revenue
  supplylens aggregate --group-by supplier_name --op ratio --measure revenue --denominator manufacturing_cost
  supplylens aggregate --group-by route --op count --format csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filtered, err := engine.Apply(dataset, filterSpec())
		if err != nil {
			return err
		}
		res, err := engine.Aggregate(filtered, engine.Query{
			GroupBy:     aggGroupBy,
			Op:          engine.Op(aggOp),
			Measure:     aggMeasure,
			Denominator: aggDenominator,
			Order:       engine.Order(aggOrder),
			Limit:       aggLimit,
		})
		if err != nil {
			return err
		}
		return render(res, func() export.Table { return export.ResultTable(res) })
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Compute the summary and every widget for the selected records",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := engineOptions()
		if err != nil {
			return err
		}
		d, err := engine.BuildDashboard(dataset, filterSpec(), opts...)
		if err != nil {
			return err
		}
		if dashWidget == "" {
			return render(d, func() export.Table { return export.SummaryTable(d.Summary) })
		}
		w, ok := d.Widget(dashWidget)
		if !ok {
			return fmt.Errorf("widget %q is not on the dashboard", dashWidget)
		}
		return render(w, func() export.Table { return export.WidgetTable(w) })
	},
}

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "List the selector options for each filterable column",
	RunE: func(cmd *cobra.Command, args []string) error {
		options, err := engine.FilterOptions(dataset, sch.FilterColumns())
		if err != nil {
			return err
		}
		return render(options, func() export.Table {
			t := export.Table{Header: []string{"Column", "Value"}}
			for _, o := range options {
				for _, v := range o.Values {
					t.Rows = append(t.Rows, []interface{}{o.Column, v})
				}
			}
			return t
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the dashboard as XLSX or the selected records as Arrow",
	RunE: func(cmd *cobra.Command, args []string) error {
		if outFile == "" {
			return fmt.Errorf("--out is required for export")
		}
		spec := filterSpec()
		switch exportKind {
		case "xlsx":
			opts, err := engineOptions()
			if err != nil {
				return err
			}
			d, err := engine.BuildDashboard(dataset, spec, opts...)
			if err != nil {
				return err
			}
			return withOutput(func(w io.Writer) error { return export.WriteXLSX(w, d) })
		case "arrow":
			filtered, err := engine.Apply(dataset, spec)
			if err != nil {
				return err
			}
			return withOutput(func(w io.Writer) error { return export.WriteArrow(w, filtered) })
		default:
			return fmt.Errorf("unsupported --kind %q (use xlsx|arrow)", exportKind)
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard as JSON over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.ListenAddr = listenAddr
		}
		opts, err := engineOptions()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.New(dataset, cfg, sch.FilterColumns(), opts...).Start(ctx)
	},
}

func init() {
	af := aggregateCmd.Flags()
	af.StringSliceVar(&aggGroupBy, "group-by", nil, "columns to group by (comma-separated)")
	af.StringVar(&aggOp, "op", string(engine.OpSum), "aggregation: sum, mean, count, ratio")
	af.StringVar(&aggMeasure, "measure", "", "numeric column to aggregate (ratio numerator)")
	af.StringVar(&aggDenominator, "denominator", "", "ratio denominator column")
	af.StringVar(&aggOrder, "order", string(engine.OrderDesc), "row order: desc, asc, key, none")
	af.IntVar(&aggLimit, "limit", 0, "keep the first n rows (0 = all)")

	dashboardCmd.Flags().StringVar(&dashWidget, "widget", "", "print a single widget by name")
	exportCmd.Flags().StringVar(&exportKind, "kind", "xlsx", "export kind: xlsx, arrow")
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "listen address (overrides config)")
}
