package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ezquiz/internal/database"
	"ezquiz/internal/logger"
	"ezquiz/internal/parser"
	"ezquiz/internal/repository"
	"ezquiz/internal/service"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	importMigrateFlag bool
	importQuietFlag   bool
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import documents into the configured database",
	Long: `Import parses every file and stores the resulting quizzes in one
transaction. If any file yields no valid question, nothing is stored.

Examples:
  # Import two documents into the default SQLite database
  ezquiz import --migrate de-1.txt de-2.txt
`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().BoolVar(&importMigrateFlag, "migrate", false, "Apply pending migrations before importing")
	importCmd.Flags().BoolVarP(&importQuietFlag, "quiet", "q", false, "Suppress the progress bar")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	docs, err := readDocuments(cmd, args)
	if err != nil {
		return err
	}

	driver := database.Driver(cfg.DB.Driver)
	db, err := database.Open(ctx, driver, cfg.GetDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if importMigrateFlag {
		if err := database.RunMigrations(ctx, db, driver, logger.Get()); err != nil {
			return err
		}
	}

	p, err := parser.NewFromConfig(cfg.Parser, logger.Get())
	if err != nil {
		return err
	}
	svc := service.NewQuizService(repository.NewQuizDatabaseAdapter(db), p, nil, nil, cfg)

	results, err := svc.ImportDocuments(ctx, docs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, r := range results {
		fmt.Fprintf(out, "%s\t%s\t%q\t%d questions\n", r.Quiz.ID, r.Quiz.FileName, r.Quiz.Title, r.Quiz.QuestionCount)
		for _, rej := range r.Rejections {
			detail := ""
			if rej.Detail != "" {
				detail = ": " + rej.Detail
			}
			fmt.Fprintf(out, "  skipped block %d (line %d): %s%s\n", rej.Block, rej.Line, rej.Reason, detail)
		}
	}
	return nil
}

func readDocuments(cmd *cobra.Command, paths []string) ([]service.Document, error) {
	var bar *progressbar.ProgressBar
	if !importQuietFlag {
		bar = progressbar.NewOptions(len(paths),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("Reading documents"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(cmd.ErrOrStderr())
			}),
		)
	}

	docs := make([]service.Document, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		docs = append(docs, service.Document{FileName: filepath.Base(path), Content: data})
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	return docs, nil
}
