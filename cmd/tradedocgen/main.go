// Package main provides the tradedocgen CLI: config generation from
// quantity data, document export, mapping administration, and the HTTP
// service.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khaihoang/tradedoc_generation_sample/internal/bootstrap"
	"github.com/khaihoang/tradedoc_generation_sample/internal/logger"
	"github.com/khaihoang/tradedoc_generation_sample/pkg/docconfig"
	"github.com/khaihoang/tradedoc_generation_sample/pkg/docgen"
	"github.com/khaihoang/tradedoc_generation_sample/pkg/docwriter"
	"github.com/khaihoang/tradedoc_generation_sample/pkg/mapping"
	"github.com/khaihoang/tradedoc_generation_sample/pkg/quantity"
)

var (
	templatePath string
	outputPath   string
	mappingPath  string
	verbose      bool
	quiet        bool
	strict       bool
	validateOnly bool
	showInfo     bool

	workbookPath string
	invoiceNo    string
	invoiceDate  string
	reference    string

	mappingConfigPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tradedocgen",
		Short: "Generate trade document configs and workbooks from quantity data",
		Long: `tradedocgen merges extracted shipment quantity data with per-customer
template configurations to produce resolved document configs and populated
contract, invoice, and packing-list workbooks.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newGenerateCmd(), newExportCmd(), newMappingsCmd(), newServeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [quantity.json]",
		Short: "Generate a resolved document config from quantity data",
		Args:  cobra.ExactArgs(1),
		RunE:  runGenerate,
	}
	cmd.Flags().StringVarP(&templatePath, "template", "t", "sample_config.json", "Template config path (JSON or YAML)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "generated_config.json", "Output config path")
	cmd.Flags().StringVarP(&mappingPath, "mappings", "m", "mapping_config.json", "Mapping config path")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print every resolution attempt")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat unresolved mappings as fatal")
	cmd.Flags().BoolVar(&validateOnly, "validate-only", false, "Validate inputs and resolution without writing output")
	cmd.Flags().BoolVar(&showInfo, "show-info", false, "Print a summary of the quantity data and exit")
	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	data, err := quantity.Load(args[0])
	if err != nil {
		return err
	}

	if showInfo {
		printAnalysisInfo(data)
		return nil
	}

	result, err := runPipeline(data)
	if err != nil {
		return err
	}
	reportRun(result)

	if validateOnly {
		if !quiet {
			fmt.Println("Validation passed.")
		}
		return nil
	}

	if err := docconfig.Save(outputPath, result.Config); err != nil {
		return err
	}
	if !quiet {
		fmt.Printf("Generated config written to %s\n", outputPath)
	}

	if result.Unresolved() {
		reportPath := outputPath + ".mapping_report.txt"
		store, err := mapping.Open(mappingPath)
		if err != nil {
			return err
		}
		if err := store.WriteReport(reportPath, result.Report); err != nil {
			return err
		}
		if !quiet {
			fmt.Printf("Unresolved items found; mapping report written to %s\n", reportPath)
		}
	}
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [quantity.json]",
		Short: "Generate a populated workbook from quantity data",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}
	cmd.Flags().StringVarP(&templatePath, "template", "t", "sample_config.json", "Template config path (JSON or YAML)")
	cmd.Flags().StringVarP(&workbookPath, "workbook", "w", "", "Template workbook to fill (default: fresh workbook)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "generated_document.xlsx", "Output workbook path")
	cmd.Flags().StringVarP(&mappingPath, "mappings", "m", "mapping_config.json", "Mapping config path")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat unresolved mappings as fatal")
	cmd.Flags().StringVar(&invoiceNo, "invoice-no", "", "Invoice number substituted for the JFINV token")
	cmd.Flags().StringVar(&invoiceDate, "invoice-date", "", "Invoice date substituted for the JFTIME token")
	cmd.Flags().StringVar(&reference, "reference", "", "Reference substituted for the JFREF token")
	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	data, err := quantity.Load(args[0])
	if err != nil {
		return err
	}
	table, err := loadMappingSnapshot()
	if err != nil {
		return err
	}
	tpl, err := docconfig.Load(templatePath)
	if err != nil {
		return err
	}

	engine := docgen.New(table, docgen.Options{Strict: strict})
	plan, err := engine.Plan(tpl, data)
	if err != nil {
		return err
	}
	reportRun(plan.Result)

	var w *docwriter.Writer
	if workbookPath != "" {
		w, err = docwriter.Open(workbookPath)
		if err != nil {
			return err
		}
	} else {
		w = docwriter.New()
	}
	defer w.Close()

	if err := w.Apply(plan); err != nil {
		return err
	}
	vals := docgen.Values{InvoiceNo: invoiceNo, InvoiceDate: invoiceDate, Reference: reference}
	if err := w.ApplyReplacements(vals); err != nil {
		return err
	}
	if err := w.SaveAs(outputPath); err != nil {
		return err
	}
	if !quiet {
		fmt.Printf("Workbook written to %s (%d sheets)\n", outputPath, len(plan.Sheets))
	}
	return nil
}

func newMappingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mappings",
		Short: "Administer the mapping config",
	}
	cmd.PersistentFlags().StringVarP(&mappingConfigPath, "config", "c", "mapping_config.json", "Mapping config path")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List sheet and header mappings",
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := mapping.Open(mappingConfigPath)
				if err != nil {
					return err
				}
				table := store.Snapshot()
				fmt.Println("Sheet mappings:")
				printMappings(table.Sheets)
				fmt.Printf("\nHeader mappings (%d total):\n", len(table.Headers))
				printMappings(table.Headers)
				return nil
			},
		},
		&cobra.Command{
			Use:   "add-sheet [RAW:CANONICAL]",
			Short: "Add a sheet name mapping",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				raw, canonical, err := splitMappingArg(args[0])
				if err != nil {
					return err
				}
				store, err := mapping.Open(mappingConfigPath)
				if err != nil {
					return err
				}
				store.AddSheetMapping(raw, canonical)
				if err := store.Save(); err != nil {
					return err
				}
				fmt.Printf("Added sheet mapping '%s' -> '%s'\n", raw, canonical)
				return nil
			},
		},
		&cobra.Command{
			Use:   "add-header [RAW:CANONICAL]",
			Short: "Add a header text mapping",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				raw, canonical, err := splitMappingArg(args[0])
				if err != nil {
					return err
				}
				store, err := mapping.Open(mappingConfigPath)
				if err != nil {
					return err
				}
				store.AddHeaderMapping(raw, canonical)
				if err := store.Save(); err != nil {
					return err
				}
				fmt.Printf("Added header mapping '%s' -> '%s'\n", raw, canonical)
				return nil
			},
		},
		&cobra.Command{
			Use:   "report [file]",
			Short: "Write a plain-text mapping report",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := mapping.Open(mappingConfigPath)
				if err != nil {
					return err
				}
				if err := store.WriteReport(args[0], nil); err != nil {
					return err
				}
				fmt.Printf("Mapping report written to %s\n", args[0])
				return nil
			},
		},
	)
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP generation service",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			app := bootstrap.NewApp()
			if err := app.Initialize(ctx); err != nil {
				logger.ErrorLog(ctx, "Failed to initialize application: %v", err)
				return err
			}
			return app.Run()
		},
	}
}

func loadMappingSnapshot() (*mapping.Table, error) {
	store, err := mapping.Open(mappingPath)
	if err != nil {
		return nil, err
	}
	return store.Snapshot(), nil
}

func runPipeline(data *quantity.AnalysisData) (*docgen.Result, error) {
	table, err := loadMappingSnapshot()
	if err != nil {
		return nil, err
	}
	tpl, err := docconfig.Load(templatePath)
	if err != nil {
		return nil, err
	}
	engine := docgen.New(table, docgen.Options{Strict: strict})
	return engine.GenerateConfig(tpl, data)
}

func reportRun(result *docgen.Result) {
	if quiet {
		return
	}
	for _, outcome := range result.Sheets {
		if outcome.Resolved {
			fmt.Printf("Sheet %q -> %s (%d rows, %d/%d headers resolved)\n",
				outcome.RawName, outcome.Canonical, outcome.Rows,
				outcome.HeadersResolved, outcome.HeadersResolved+outcome.HeadersUnresolved)
		} else {
			fmt.Printf("Sheet %q unresolved, skipped\n", outcome.RawName)
		}
	}
	for _, w := range result.Warnings {
		fmt.Println("Warning:", w)
	}
	if verbose {
		for _, a := range result.Report.Attempts() {
			if a.OK {
				fmt.Printf("  %s %q -> %s (%s)\n", a.Kind, a.Raw, a.Resolved, a.Strategy)
			} else {
				fmt.Printf("  %s %q unresolved\n", a.Kind, a.Raw)
			}
		}
	}
}

func printAnalysisInfo(data *quantity.AnalysisData) {
	fmt.Printf("File: %s\n", data.FilePath)
	if data.Timestamp != "" {
		fmt.Printf("Extracted: %s\n", data.Timestamp)
	}
	fmt.Printf("Sheets: %d\n", len(data.Sheets))
	for i := range data.Sheets {
		s := &data.Sheets[i]
		fmt.Printf("  %s: start row %d, %d headers, %d rows, header font %s %g, data font %s %g\n",
			s.SheetName, s.StartRow, len(s.HeaderPositions), len(s.Rows),
			s.HeaderFont.Name, s.HeaderFont.Size, s.DataFont.Name, s.DataFont.Size)
	}
}

func printMappings(m map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  '%s' -> '%s'\n", k, m[k])
	}
}

func splitMappingArg(arg string) (string, string, error) {
	parts := strings.SplitN(arg, ":", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return "", "", fmt.Errorf("mapping must be RAW:CANONICAL, got %q", arg)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}
