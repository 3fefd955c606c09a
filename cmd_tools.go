package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/pathakanu/mindwell/internal/chat"
	"github.com/pathakanu/mindwell/internal/config"
	"github.com/pathakanu/mindwell/internal/database"
	"github.com/pathakanu/mindwell/internal/reference"
	"github.com/pathakanu/mindwell/internal/sentiment"
	"github.com/spf13/cobra"
)

var (
	lexiconPath   string
	templatesPath string
	globalCSV     string
	regionalCSV   string
)

var scoreCmd = &cobra.Command{
	Use:   "score [text...]",
	Short: "Classify text with the local keyword scorer",
	Long:  "Scores the arguments, or each line of stdin when no arguments are given, and prints one JSON result per input.",
	RunE:  runScore,
}

var chatCmd = &cobra.Command{
	Use:   "chat [message...]",
	Short: "Reply to a message with the keyword routed chat responder",
	Long:  "Answers the arguments, or each line of stdin when no arguments are given.",
	RunE:  runChat,
}

var importReferenceCmd = &cobra.Command{
	Use:   "import-reference",
	Short: "Load global and regional reference datasets from CSV files",
	Args:  cobra.NoArgs,
	RunE:  runImportReference,
}

func init() {
	scoreCmd.Flags().StringVar(&lexiconPath, "lexicon", "", "YAML lexicon file (default: embedded lexicon)")
	chatCmd.Flags().StringVar(&templatesPath, "templates", "", "YAML chat templates (default: embedded templates)")
	importReferenceCmd.Flags().StringVar(&globalCSV, "global", "", "CSV with country,depression_rate,anxiety_rate,suicide_rate,year")
	importReferenceCmd.Flags().StringVar(&regionalCSV, "regional", "", "CSV with state_name,depression_rate,anxiety_rate,stress_rate")
}

func runScore(cmd *cobra.Command, args []string) error {
	lexicon, err := sentiment.LoadLexicon(lexiconPath)
	if err != nil {
		return err
	}
	scorer := sentiment.NewScorer(lexicon)

	return eachInput(cmd, args, func(text string) error {
		out, err := sonic.MarshalString(scorer.Score(text))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
		return err
	})
}

func runChat(cmd *cobra.Command, args []string) error {
	responder, err := chat.LoadResponder(templatesPath)
	if err != nil {
		return err
	}

	return eachInput(cmd, args, func(message string) error {
		reply := responder.Respond(message)
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", reply.Category, reply.Text)
		return err
	})
}

// eachInput calls fn with the joined arguments, or with every non-blank line
// of stdin when there are none.
func eachInput(cmd *cobra.Command, args []string, fn func(string) error) error {
	if len(args) > 0 {
		return fn(strings.Join(args, " "))
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func runImportReference(cmd *cobra.Command, _ []string) error {
	if globalCSV == "" && regionalCSV == "" {
		return fmt.Errorf("at least one of --global or --regional is required")
	}

	cfg, err := config.Parse()
	if err != nil {
		return err
	}
	db, err := database.New(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	store := reference.NewStore(db)
	ctx := cmd.Context()

	if globalCSV != "" {
		n, err := importFile(globalCSV, func(r io.Reader) (int, error) { return store.ImportGlobal(ctx, r) })
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d global rows\n", n)
	}
	if regionalCSV != "" {
		n, err := importFile(regionalCSV, func(r io.Reader) (int, error) { return store.ImportRegional(ctx, r) })
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d regional rows\n", n)
	}
	return nil
}

func importFile(path string, load func(io.Reader) (int, error)) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return load(f)
}
