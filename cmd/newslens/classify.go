package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/sravan-dsai/newslens/internal/batch"
	"github.com/sravan-dsai/newslens/internal/classify"
	"github.com/sravan-dsai/newslens/internal/config"
	"github.com/sravan-dsai/newslens/internal/labelmap"
	"github.com/sravan-dsai/newslens/internal/parser"
	"github.com/sravan-dsai/newslens/internal/results"
)

var (
	classifyProvider  string
	classifyModel     string
	classifyThreshold float64
	classifyMaxBatch  int
	classifyJSON      bool
	classifyOutput    string
)

var classifyCmd = &cobra.Command{
	Use:   "classify [text|file]",
	Short: "Classify a news article or a file of articles",
	Long: `Classify a single article given as an argument, or a batch from a
.txt file (one article per line) or a .csv file (requires a 'text' column).

Examples:
  newslens classify "NASA launches new satellite into orbit"
  newslens classify articles.txt
  newslens classify articles.csv --threshold 0.9 --output results.csv
  newslens classify articles.csv --provider openai --json`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().StringVarP(&classifyProvider, "provider", "p", "", "Model provider (huggingface, openai)")
	classifyCmd.Flags().StringVarP(&classifyModel, "model", "m", "", "Provider-specific model ID")
	classifyCmd.Flags().Float64VarP(&classifyThreshold, "threshold", "t", -1, "Confidence threshold for the results table (0.0-1.0)")
	classifyCmd.Flags().IntVar(&classifyMaxBatch, "max-batch", 0, "Maximum articles to process from a file")
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "Output results as JSON")
	classifyCmd.Flags().StringVarP(&classifyOutput, "output", "o", "", "Write results to a CSV file")
}

// loadConfig reads the config file, preferring --config and falling back to
// newslens.yaml in the working directory.
func loadConfig() (config.Config, error) {
	path := cfgFile
	if path == "" {
		path = "newslens.yaml"
	}
	return config.Load(path)
}

func runClassify(cmd *cobra.Command, args []string) error {
	target := args[0]
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if classifyProvider != "" {
		cfg.Provider = classifyProvider
	}
	if classifyModel != "" {
		cfg.Model = classifyModel
	}
	if classifyThreshold >= 0 {
		cfg.Threshold = classifyThreshold
	}
	if classifyMaxBatch > 0 {
		cfg.MaxBatchSize = classifyMaxBatch
	}

	labels, err := labelmap.Load(cfg.LabelMapPath)
	if err != nil {
		return err
	}

	classifier, err := classify.New(classify.Provider(cfg.Provider), labels, classify.Options{
		Model: cfg.Model,
	})
	if err != nil {
		return err
	}

	// A target naming an existing file is a batch run; anything else is
	// treated as the article text itself.
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		return classifyFile(ctx, cfg, classifier, target)
	}
	return classifySingle(ctx, cfg, classifier, target)
}

func classifySingle(ctx context.Context, cfg config.Config, classifier classify.Classifier, text string) error {
	stop := startSpinner("Classifying...")
	preds, err := classifier.Classify(ctx, []string{text})
	stop()
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	if classifyJSON {
		return outputJSON(preds[0])
	}
	if classifyOutput != "" {
		return writeCSVFile(classifyOutput, preds)
	}

	printPrediction(os.Stdout, preds[0])
	return nil
}

func classifyFile(ctx context.Context, cfg config.Config, classifier classify.Classifier, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	texts, err := parser.ParseUpload(filepath.Base(path), f)
	if err != nil {
		return err
	}
	if len(texts) == 0 {
		return fmt.Errorf("no articles found in %s", path)
	}
	if len(texts) > cfg.MaxBatchSize {
		fmt.Fprintf(os.Stderr, "Batch size limited to %d. Only processing the first %d articles.\n",
			cfg.MaxBatchSize, cfg.MaxBatchSize)
	}

	var emitter batch.ProgressEmitter
	if !classifyJSON {
		emitter = &batch.TextEmitter{W: os.Stderr}
	}

	start := time.Now()
	preds, err := batch.Run(ctx, batch.Params{
		Texts:        texts,
		MaxBatchSize: cfg.MaxBatchSize,
		Classifier:   classifier,
		Emitter:      emitter,
	})
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}
	if !classifyJSON {
		fmt.Fprintf(os.Stderr, "Done in %.1fs.\n\n", time.Since(start).Seconds())
	}

	if classifyJSON {
		return outputJSON(preds)
	}
	if classifyOutput != "" {
		if err := writeCSVFile(classifyOutput, preds); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Results written to %s\n", classifyOutput)
		return nil
	}

	printBatchResults(os.Stdout, preds, cfg.Threshold)
	return nil
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSVFile(path string, preds []classify.Prediction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	return results.WriteCSV(f, preds)
}

// printPrediction renders a single result with a confidence bar.
func printPrediction(w io.Writer, p classify.Prediction) {
	bold := color.New(color.Bold)

	_, _ = bold.Fprintf(w, "%s\n", p.Category)
	printConfidenceBar(w, p.Confidence)
	fmt.Fprintln(w)

	dim := color.New(color.FgHiBlack)
	for _, category := range sortedCategories(p.Probabilities) {
		_, _ = dim.Fprintf(w, "  %-10s %6.2f%%\n", category, p.Probabilities[category]*100)
	}
}

// printBatchResults renders the filtered results table and category counts.
func printBatchResults(w io.Writer, preds []classify.Prediction, threshold float64) {
	filtered := results.FilterByConfidence(preds, threshold)

	bold := color.New(color.Bold)
	dim := color.New(color.FgHiBlack)

	_, _ = bold.Fprintf(w, "Results (confidence >= %.2f): %d of %d articles\n\n", threshold, len(filtered), len(preds))

	for _, p := range filtered {
		text := p.Text
		if len(text) > 60 {
			text = text[:57] + "..."
		}
		fmt.Fprintf(w, "  %-12s %5.1f%%  ", p.Category, p.Confidence*100)
		_, _ = dim.Fprintln(w, text)
	}

	counts := results.CategoryCounts(filtered)
	if len(counts) > 0 {
		fmt.Fprintln(w)
		_, _ = bold.Fprintln(w, "Category distribution")
		for _, c := range counts {
			fmt.Fprintf(w, "  %-12s %d\n", c.Category, c.Count)
		}
	}
}

func printConfidenceBar(w io.Writer, confidence float64) {
	const barWidth = 24
	filled := int(confidence * barWidth)
	if filled > barWidth {
		filled = barWidth
	}

	var barColor *color.Color
	switch {
	case confidence >= 0.8:
		barColor = color.New(color.FgGreen)
	case confidence >= 0.5:
		barColor = color.New(color.FgYellow)
	default:
		barColor = color.New(color.FgRed)
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	fmt.Fprintf(w, "Confidence: %.1f%% ", confidence*100)
	_, _ = barColor.Fprintln(w, bar)
}

// sortedCategories orders categories by descending probability.
func sortedCategories(probs map[string]float64) []string {
	names := make([]string, 0, len(probs))
	for name := range probs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if probs[names[i]] != probs[names[j]] {
			return probs[names[i]] > probs[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

// startSpinner shows a spinner on stderr while a call is in flight. It is a
// no-op when stderr is not a terminal.
func startSpinner(message string) func() {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		fmt.Fprintln(os.Stderr, message)
		return func() {}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message
	s.Start()
	return s.Stop
}
