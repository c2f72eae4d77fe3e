package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/graphgate/internal/eval"
	"github.com/ppiankov/graphgate/internal/pipeline"
	"github.com/ppiankov/graphgate/internal/worker"
	"github.com/spf13/cobra"
)

var (
	evalTimeout     time.Duration
	evalWorkers     int
	evalThreshold   float64
	evalPredictions string
	evalMetricsJSON string
	evalMetricsCSV  string
)

// evalCmd represents the eval command
var evalCmd = &cobra.Command{
	Use:   "eval <dataset.jsonl>",
	Short: "Run a labeled question set and report metrics",
	Long: `Eval answers every question in a JSONL dataset concurrently and
aggregates accuracy, macro F1, retrieval quality (P@k, R@k, MRR, NDCG),
hallucination rate, abstain rate and risk calibration.

Each dataset line is a JSON object:
  {"id": "q1", "question": "...", "gold": "yes", "gold_ids": ["d042"]}

Example:
  graphgate eval pubmedqa.jsonl --predictions preds.jsonl --metrics metrics.json`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().DurationVar(&evalTimeout, "timeout", 30*time.Minute, "overall evaluation timeout")
	evalCmd.Flags().IntVar(&evalWorkers, "workers", 0, "concurrent questions (0 uses config)")
	evalCmd.Flags().Float64Var(&evalThreshold, "threshold", -1, "risk threshold tau in [0,1] (overrides config)")
	evalCmd.Flags().StringVar(&evalPredictions, "predictions", "", "write per-question predictions to this JSONL path")
	evalCmd.Flags().StringVar(&evalMetricsJSON, "metrics", "", "write the metrics snapshot to this JSON path")
	evalCmd.Flags().StringVar(&evalMetricsCSV, "metrics-csv", "", "write the metrics snapshot to this CSV path")
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if evalThreshold >= 0 {
		cfg.Risk.Threshold = evalThreshold
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if evalWorkers > 0 {
		cfg.Concurrency.Workers = evalWorkers
	}

	samples, err := eval.LoadDataset(args[0])
	if err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Loaded %d samples from %s\n", len(samples), args[0])
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	limiter := worker.NewLimiter(cfg.LLM.RequestsPerSec, cfg.LLM.Burst)
	runner := eval.NewRunner(p, limiter, cfg.LLM.Provider, cfg.Concurrency.Workers, cfg.Retrieval.TopK)

	ctx, cancel := context.WithTimeout(context.Background(), evalTimeout)
	defer cancel()

	started := time.Now()
	predictions, snap := runner.Run(ctx, samples)
	elapsed := time.Since(started)

	if evalPredictions != "" {
		if err := eval.WritePredictions(predictions, evalPredictions); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote predictions: %s\n", evalPredictions)
		}
	}
	if evalMetricsJSON != "" {
		if err := eval.WriteMetricsJSON(snap, evalMetricsJSON); err != nil {
			return err
		}
	}
	if evalMetricsCSV != "" {
		if err := eval.WriteMetricsCSV(snap, evalMetricsCSV); err != nil {
			return err
		}
	}

	failed := 0
	for _, p := range predictions {
		if p.Error != "" {
			failed++
		}
	}

	fmt.Printf("Samples:            %d (%d labeled, %d failed) in %v\n", snap.Samples, snap.Labeled, failed, elapsed.Round(time.Millisecond))
	if snap.Labeled > 0 {
		fmt.Printf("Accuracy:           %.4f\n", snap.Accuracy)
		fmt.Printf("Macro F1:           %.4f\n", snap.MacroF1)
	}
	fmt.Printf("Coverage:           %.4f\n", snap.Coverage)
	fmt.Printf("Abstain rate:       %.4f\n", snap.AbstainRate)
	if snap.RankedSamples > 0 {
		fmt.Printf("P@%d / R@%d:          %.4f / %.4f\n", snap.K, snap.K, snap.PrecisionAtK, snap.RecallAtK)
		fmt.Printf("MRR / NDCG:         %.4f / %.4f\n", snap.MRR, snap.NDCG)
	}
	if snap.TotalClaims > 0 {
		fmt.Printf("Factual precision:  %.4f (%d/%d claims supported)\n", snap.FactualPrecision, snap.Supported, snap.TotalClaims)
		fmt.Printf("Hallucination rate: %.4f\n", snap.HallucinationRate)
	}
	if snap.CalibrationBins > 0 {
		fmt.Printf("Calibration error:  %.4f over %d bins\n", snap.CalibrationError, snap.CalibrationBins)
	}
	return nil
}
