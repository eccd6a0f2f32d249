package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mras0/mjs-sub001/internal/conformance"
	"github.com/spf13/cobra"
)

var (
	conformanceHelpers string
	conformanceHeap    int
)

var conformanceCmd = &cobra.Command{
	Use:   "conformance [records.json]",
	Short: "Run the ES5 conformance test suite",
	Long: `Load a JSON array of {id, description, prelude?, code} conformance
records and evaluate each as prelude + helpers + "(function(){" + code +
"})()", expecting a boolean true result. A whitelist of known limitations
is permitted to fail; any other failure makes the run exit non-zero.`,
	Args: cobra.ExactArgs(1),
	RunE: runConformance,
}

func init() {
	rootCmd.AddCommand(conformanceCmd)
	conformanceCmd.Flags().StringVar(&conformanceHelpers, "helpers", "", "path to a JS file defining fnExists/fnGlobalObject/compareValues/isSubsetOf")
	conformanceCmd.Flags().IntVar(&conformanceHeap, "heap", 0, "heap capacity in slots (0 selects the default)")
}

func runConformance(_ *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading records: %w", err)
	}
	records, err := conformance.LoadRecords(data)
	if err != nil {
		return err
	}

	var helpers string
	if conformanceHelpers != "" {
		h, err := os.ReadFile(conformanceHelpers)
		if err != nil {
			return fmt.Errorf("reading helpers: %w", err)
		}
		helpers = string(h) + ";"
	}

	driver := conformance.NewDriver(helpers, conformanceHeap)
	results := driver.Run(records)
	summary := conformance.Summarize(results)

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	for i, r := range results {
		switch {
		case r.Passed && !r.ExpectFailure:
			if verbose {
				fmt.Printf("%4d %s %s\n", i, green("PASS"), r.Record.ID)
			}
		case r.Passed && r.ExpectFailure:
			fmt.Printf("%4d %s %s %s -- EXPECTED FAILURE\n", i, yellow("PASS"), r.Record.ID, r.Record.Description)
		case !r.Passed && r.ExpectFailure:
			if verbose {
				fmt.Printf("%4d %s %s (known limitation)\n", i, yellow("FAIL"), r.Record.ID)
			}
		default:
			fmt.Printf("%4d %s %s %s\n", i, red("FAIL"), r.Record.ID, r.Record.Description)
			if r.Err != nil {
				fmt.Printf("     %v\n", r.Err)
			}
		}
	}

	fmt.Printf("\n%d/%d passed, %d unexpected result(s)\n", summary.Passed, summary.Total, summary.Unexpected)
	if summary.Unexpected > 0 {
		return fmt.Errorf("%d unexpected result(s)", summary.Unexpected)
	}
	return nil
}
