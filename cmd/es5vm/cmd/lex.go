package cmd

import (
	"fmt"
	"os"

	"github.com/mras0/mjs-sub001/internal/lexer"
	"github.com/mras0/mjs-sub001/internal/token"
	"github.com/spf13/cobra"
)

var lexExpr string

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize ES5 source and print the resulting tokens",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().StringVarP(&lexExpr, "eval", "e", "", "tokenize inline code instead of reading from file")
}

func runLex(_ *cobra.Command, args []string) error {
	input, _, err := readSource(lexExpr, args)
	if err != nil {
		return err
	}

	l := lexer.New(input)
	for {
		tok := l.Next()
		fmt.Println(tok.String())
		if tok.Type == token.EOF {
			break
		}
	}
	if errs := l.Errors(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "%v\n", e)
		}
		return fmt.Errorf("lexing failed with %d error(s)", len(errs))
	}
	return nil
}
