// Command notetaker processes a doctor-patient transcript from a file or
// stdin and prints the structured note as JSON. It runs fully in-process:
// rule-based entity recognition and lexicon-only sentiment, no database.
//
// With -db it can also export or import clinician feedback stored in a
// local SQLite file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/physician-notetaker/internal/feedback"
	"github.com/physician-notetaker/internal/nlp"
	"github.com/physician-notetaker/internal/service"
)

func main() {
	var (
		transcriptPath = flag.String("f", "", "transcript file (default: stdin)")
		feedbackDB     = flag.String("db", "", "SQLite feedback database path")
		exportPath     = flag.String("export-feedback", "", "export feedback to JSON file (requires -db)")
		importPath     = flag.String("import-feedback", "", "import feedback from JSON file (requires -db)")
	)
	flag.Parse()

	if *exportPath != "" || *importPath != "" {
		if *feedbackDB == "" {
			log.Fatal("feedback export/import requires -db")
		}
		if err := runFeedback(*feedbackDB, *exportPath, *importPath); err != nil {
			log.Fatalf("Feedback operation failed: %v", err)
		}
		return
	}

	raw, err := readTranscript(*transcriptPath, flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to read transcript: %v", err)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)

	pipeline := service.NewPipeline(
		logger,
		nlp.NewRuleRecognizer(logger),
		service.NewSentimentService(logger, nil),
		nil,
		nil,
	)

	result, err := pipeline.ProcessTranscript(context.Background(), raw)
	if err != nil {
		log.Fatalf("Failed to process transcript: %v", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
}

// readTranscript reads from the -f flag, a positional argument, or stdin.
func readTranscript(flagPath, argPath string) (string, error) {
	path := flagPath
	if path == "" {
		path = argPath
	}
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func runFeedback(dbPath, exportPath, importPath string) error {
	store, err := feedback.NewSQLiteStore(dbPath)
	if err != nil {
		return fmt.Errorf("opening feedback store: %w", err)
	}
	defer store.Close()

	ctx := context.Background()

	if exportPath != "" {
		out, err := os.Create(exportPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", exportPath, err)
		}
		defer out.Close()

		if err := store.ExportJSON(ctx, out); err != nil {
			return fmt.Errorf("exporting feedback: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Exported feedback to %s\n", exportPath)
	}

	if importPath != "" {
		in, err := os.Open(importPath)
		if err != nil {
			return fmt.Errorf("opening %s: %w", importPath, err)
		}
		defer in.Close()

		imported, skipped, err := store.ImportJSON(ctx, in)
		if err != nil {
			return fmt.Errorf("importing feedback: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Imported %d entries, skipped %d existing\n", imported, skipped)
	}

	return nil
}
