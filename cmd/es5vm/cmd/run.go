package cmd

import (
	"fmt"
	"os"

	"github.com/mras0/mjs-sub001/pkg/es5"
	"github.com/spf13/cobra"
)

var (
	evalExpr    string
	heapCapacity int
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run an ES5 script file or expression",
	Long: `Execute an ECMAScript 5 program from a file or inline expression.

Examples:
  # Run a script file
  es5vm run script.js

  # Evaluate an inline expression
  es5vm run -e "1 + 2"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	runCmd.Flags().IntVar(&heapCapacity, "heap", 0, "heap capacity in slots (0 selects the default)")
}

func runScript(_ *cobra.Command, args []string) error {
	input, filename, err := readSource(evalExpr, args)
	if err != nil {
		return err
	}

	prog, err := es5.Parse(filename, input, es5.Es5)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return fmt.Errorf("parsing failed")
	}

	h := es5.NewHeap(heapCapacity)
	it := es5.NewInterpreter(h, es5.Es5)

	result, err := it.Eval(prog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Uncaught %s\n", err)
		return fmt.Errorf("execution failed")
	}

	if verbose {
		s, _ := it.ToString(result)
		fmt.Println(s)
	}
	return nil
}

func readSource(evalExpr string, args []string) (input, filename string, err error) {
	if evalExpr != "" {
		return evalExpr, "<eval>", nil
	}
	if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(content), args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e flag for inline code")
}
