package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/graphgate/internal/model"
	"github.com/ppiankov/graphgate/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	askTimeout   time.Duration
	askPatientID string
	askContext   string
	askThreshold float64
	askJSON      bool
	askNoCache   bool
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a single question against the knowledge graph",
	Long: `Ask grounds a question in the local knowledge graph, generates an
answer from the retrieved evidence, verifies it claim by claim and
either emits the answer or abstains based on the risk threshold.

Example:
  graphgate ask "What treats type 2 diabetes?"
  graphgate ask "What is metformin?" --threshold 0.3 --json
  graphgate ask "Is this dose safe?" --patient p001`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().DurationVar(&askTimeout, "timeout", 2*time.Minute, "overall question timeout")
	askCmd.Flags().StringVar(&askPatientID, "patient", "", "patient id whose history enriches the question")
	askCmd.Flags().StringVar(&askContext, "context", "", "free-text context prepended to the question")
	askCmd.Flags().Float64Var(&askThreshold, "threshold", -1, "risk threshold tau in [0,1] (overrides config)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full result as JSON")
	askCmd.Flags().BoolVar(&askNoCache, "no-cache", false, "disable the retrieval cache")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if askThreshold >= 0 {
		cfg.Risk.Threshold = askThreshold
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if askNoCache {
		cfg.Cache.Enabled = false
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
	defer cancel()

	result, err := p.Ask(ctx, pipeline.Request{
		Question:  question,
		PatientID: askPatientID,
		Context:   askContext,
	})
	if err != nil && result == nil {
		return err
	}

	if askJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(result); encErr != nil {
			return fmt.Errorf("encode result: %w", encErr)
		}
		return err
	}

	printResult(result)
	return err
}

func printResult(r *pipeline.Result) {
	fmt.Println(r.Answer)
	fmt.Println()

	if len(r.Evidence) > 0 {
		fmt.Println("Evidence:")
		for _, ev := range r.Evidence {
			fmt.Printf("  [%d] %s (%s, score %.3f)\n", ev.Rank, ev.Title, ev.Origin, ev.Score)
		}
		fmt.Println()
	}

	if verbose && len(r.Verdicts) > 0 {
		fmt.Println("Claims:")
		for _, v := range r.Verdicts {
			fmt.Printf("  %-16s %s\n", v.Verdict, v.Claim.Text)
		}
		fmt.Println()
	}

	status := "emitted"
	if r.Abstained {
		status = "abstained"
		if r.Assessment.Forced != model.AbstainNone {
			status = "abstained (forced: " + string(r.Assessment.Forced) + ")"
		}
	}
	fmt.Printf("Risk: %.3f (threshold %.3f) %s\n", r.Assessment.Risk, r.Assessment.Threshold, status)
}
