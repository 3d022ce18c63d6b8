// Package main provides a batch tool for measuring grading quality.
//
// The eval tool grades every row of a CSV dataset and, when rows carry a
// human score, compares predictions against it with mean absolute error and
// Pearson correlation.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/lueurxax/answer-grader/internal/app"
	"github.com/lueurxax/answer-grader/internal/grading"
	"github.com/lueurxax/answer-grader/internal/platform/config"
)

const (
	columnActual    = "actual_answer"
	columnStudent   = "student_answer"
	columnScore     = "score"
	columnPredicted = "predicted_score"
	columnFeedback  = "feedback"

	correlationDisabled = -2
	scoreFmt            = "%.3f"

	errFmt = "%v\n"
)

var (
	errMissingColumns          = errors.New("input must have actual_answer and student_answer columns")
	errMAEAboveThreshold       = errors.New("mean absolute error above threshold")
	errCorrelationBelowMinimum = errors.New("correlation below threshold")
)

type evalRecord struct {
	line      int
	actual    string
	student   string
	label     float64
	hasLabel  bool
	predicted float64
	feedback  string
}

type evalStats struct {
	total       int
	skipped     int
	labelled    int
	mae         float64
	correlation float64
}

type evalConfig struct {
	inputPath      string
	outputPath     string
	concurrency    int
	maxMAE         float64
	minCorrelation float64
}

type grader interface {
	Evaluate(ctx context.Context, reference, candidate string) (grading.Result, error)
}

func main() {
	cfg := parseFlags()

	appCfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, errFmt, err)
		os.Exit(1)
	}

	if cfg.concurrency <= 0 {
		cfg.concurrency = appCfg.EvalConcurrency
	}

	if err := run(cfg, appCfg); err != nil {
		fmt.Fprintf(os.Stderr, errFmt, err)
		os.Exit(1)
	}
}

func parseFlags() evalConfig {
	cfg := evalConfig{}

	flag.StringVar(&cfg.inputPath, "input", "docs/eval/sample.csv", "Path to CSV dataset")
	flag.StringVar(&cfg.outputPath, "output", "", "Write per-row predictions to this CSV file")
	flag.IntVar(&cfg.concurrency, "concurrency", 0, "Parallel evaluations (defaults to EVAL_CONCURRENCY)")
	flag.Float64Var(&cfg.maxMAE, "max-mae", -1, "Fail if mean absolute error is above this value (disabled if <0)")
	flag.Float64Var(&cfg.minCorrelation, "min-correlation", correlationDisabled,
		"Fail if Pearson correlation is below this value (disabled if < -1)")

	flag.Parse()

	return cfg
}

func run(cfg evalConfig, appCfg *config.Config) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(zerolog.WarnLevel).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	records, skipped, err := readInputFile(cfg.inputPath)
	if err != nil {
		return err
	}

	application, err := app.New(ctx, appCfg, &logger)
	if err != nil {
		return fmt.Errorf("load grader: %w", err)
	}
	defer application.Close()

	if err := gradeAll(ctx, application.Evaluator(), records, cfg.concurrency); err != nil {
		return err
	}

	stats := computeStats(records)
	stats.skipped = skipped

	printSummary(os.Stdout, stats)

	if cfg.outputPath != "" {
		if err := writeOutputFile(cfg.outputPath, records); err != nil {
			return err
		}
	}

	return checkThresholds(stats, cfg)
}

func readInputFile(path string) ([]*evalRecord, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	return readRecords(f)
}

// readRecords parses a CSV with a header row. Rows with an unparsable score
// are skipped; an empty score means the row is unlabelled.
func readRecords(r io.Reader) ([]*evalRecord, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read header: %w", err)
	}

	cols := columnIndex(header)

	actualIdx, okActual := cols[columnActual]
	studentIdx, okStudent := cols[columnStudent]

	if !okActual || !okStudent {
		return nil, 0, errMissingColumns
	}

	scoreIdx, hasScore := cols[columnScore]

	var (
		records []*evalRecord
		skipped int
	)

	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, 0, fmt.Errorf("failed to read input: %w", err)
		}

		rec := &evalRecord{
			line:    line,
			actual:  actualIdx.get(row),
			student: studentIdx.get(row),
		}

		if hasScore {
			if raw := strings.TrimSpace(scoreIdx.get(row)); raw != "" {
				label, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					skipped++
					continue
				}

				rec.label = label
				rec.hasLabel = true
			}
		}

		records = append(records, rec)
	}

	return records, skipped, nil
}

type column int

func (c column) get(row []string) string {
	if int(c) >= len(row) {
		return ""
	}

	return row[c]
}

func columnIndex(header []string) map[string]column {
	cols := make(map[string]column, len(header))

	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, seen := cols[key]; !seen {
			cols[key] = column(i)
		}
	}

	return cols
}

// gradeAll evaluates every record with at most limit evaluations in flight.
func gradeAll(ctx context.Context, g grader, records []*evalRecord, limit int) error {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(max(limit, 1))

	for _, rec := range records {
		eg.Go(func() error {
			result, err := g.Evaluate(egCtx, rec.actual, rec.student)
			if err != nil {
				return fmt.Errorf("line %d: %w", rec.line, err)
			}

			rec.predicted = result.Score
			rec.feedback = result.Feedback

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return fmt.Errorf("grading failed: %w", err)
	}

	return nil
}

func computeStats(records []*evalRecord) evalStats {
	stats := evalStats{total: len(records)}

	var predicted, labels []float64

	for _, rec := range records {
		if !rec.hasLabel {
			continue
		}

		predicted = append(predicted, rec.predicted)
		labels = append(labels, rec.label)
	}

	stats.labelled = len(labels)
	stats.mae = meanAbsoluteError(predicted, labels)
	stats.correlation = pearson(predicted, labels)

	return stats
}

func meanAbsoluteError(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	return floats.Distance(a, b, 1) / float64(len(a))
}

// pearson returns the correlation of a and b, or 0 when either has no variance.
func pearson(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	r := stat.Correlation(a, b, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}

	return r
}

func checkThresholds(stats evalStats, cfg evalConfig) error {
	if stats.labelled == 0 {
		return nil
	}

	if cfg.maxMAE >= 0 && stats.mae > cfg.maxMAE {
		return fmt.Errorf("%w: %.3f > %.3f", errMAEAboveThreshold, stats.mae, cfg.maxMAE)
	}

	if cfg.minCorrelation >= -1 && stats.correlation < cfg.minCorrelation {
		return fmt.Errorf("%w: %.3f < %.3f", errCorrelationBelowMinimum, stats.correlation, cfg.minCorrelation)
	}

	return nil
}

func printSummary(w io.Writer, stats evalStats) {
	fmt.Fprintf(w, "Evaluation Summary\n")
	fmt.Fprintf(w, "  Records: %d (skipped: %d)\n", stats.total, stats.skipped)
	fmt.Fprintf(w, "  Labelled: %d\n", stats.labelled)

	if stats.labelled == 0 {
		return
	}

	fmt.Fprintf(w, "  MAE: %.3f\n", stats.mae)
	fmt.Fprintf(w, "  Pearson: %.3f\n", stats.correlation)
}

func writeOutputFile(path string, records []*evalRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}

	if err := writeRecords(f, records); err != nil {
		_ = f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}

	return nil
}

func writeRecords(w io.Writer, records []*evalRecord) error {
	out := csv.NewWriter(w)

	if err := out.Write([]string{columnActual, columnStudent, columnScore, columnPredicted, columnFeedback}); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	for _, rec := range records {
		label := ""
		if rec.hasLabel {
			label = strconv.FormatFloat(rec.label, 'f', -1, 64)
		}

		row := []string{rec.actual, rec.student, label, fmt.Sprintf(scoreFmt, rec.predicted), rec.feedback}
		if err := out.Write(row); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	out.Flush()

	if err := out.Error(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}
