package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"ezquiz/internal/dto"
	"ezquiz/internal/logger"
	"ezquiz/internal/parser"
	"ezquiz/internal/service"

	"github.com/spf13/cobra"
)

var parseTokensFlag bool

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a document and print the quiz as JSON",
	Long: `Parse reads one exam document and prints the resulting quiz, with correct
answers, as JSON. Nothing is stored.

Rejected question blocks are listed in the "rejections" field.

Examples:
  # Print the quiz
  ezquiz parse de-thi.txt

  # Show the token stream the parser works from
  ezquiz parse --tokens de-thi.txt
`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().BoolVar(&parseTokensFlag, "tokens", false, "Print the token stream instead of the quiz")
}

type parseOutput struct {
	Quiz       *dto.QuizResponse       `json:"quiz"`
	Rejections []dto.RejectionResponse `json:"rejections"`
}

func runParse(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	p, err := parser.NewFromConfig(cfg.Parser, logger.Get())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if parseTokensFlag {
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "LINE\tKIND\tLABEL\tTEXT")
		for _, tok := range p.Tokenize(string(data)) {
			text := tok.Text
			if tok.Heading != "" {
				text = tok.Heading + ": " + text
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", tok.Line, tok.Kind, tok.Label, text)
		}
		return w.Flush()
	}

	res, err := p.ParseBytes(data, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(parseOutput{
		Quiz:       service.ToQuizResponse(res.Quiz, true),
		Rejections: service.ToImportResponse(res).Rejections,
	})
}
