// diplomat interprets captured LLM responses for a Diplomacy engine:
// extracting order and message payloads from raw text, validating orders
// against a legal-order set, and filtering the negotiation transcript.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"diplomat/internal/config"
	"diplomat/internal/logging"
	"diplomat/internal/orders"
	"diplomat/internal/perception"
	"diplomat/internal/press"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Command flags
	shape     string
	batchDir  string
	legalPath string
	power     string
	phase     string
	sender    string
	dbPath    string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "diplomat",
	Short: "diplomat - resilient LLM response interpretation for Diplomacy",
	Long: `diplomat recovers structured game artifacts from free-form LLM output.

It never trusts the model: order and message payloads are extracted through a
cascade of fallback strategies, validated against the engine's legal-order
set, and replaced with deterministic fallbacks when unusable.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level, cfg.Logging.Development)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract [response-file]",
	Short: "Extract a structured payload from a captured LLM response",
	Long: `Runs the extraction cascade over a captured raw response and prints the
recovered payload as JSON. With --dir, processes every .txt file in the
directory concurrently.`,
	RunE: runExtract,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [response-file]",
	Short: "Extract orders and validate them against a legal-order set",
	Long: `Extracts the proposed orders from a captured response and reconciles them
with the engine's legal-order set (a JSON object mapping location to legal
order strings). Always produces a submittable order set; uncovered locations
get deterministic fallbacks.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

var recordCmd = &cobra.Command{
	Use:   "record [response-file]",
	Short: "Extract, validate, and append negotiation messages to a transcript",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecord,
}

var visibleCmd = &cobra.Command{
	Use:   "visible [transcript-db]",
	Short: "Show the transcript subset one power may see",
	Args:  cobra.ExactArgs(1),
	RunE:  runVisible,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "diplomat.yaml", "config file path")

	extractCmd.Flags().StringVar(&shape, "shape", string(perception.ShapeOrders), "payload shape: orders or messages")
	extractCmd.Flags().StringVar(&batchDir, "dir", "", "process every .txt response in this directory")

	resolveCmd.Flags().StringVar(&legalPath, "legal", "", "JSON file with the legal-order set (required)")
	_ = resolveCmd.MarkFlagRequired("legal")

	recordCmd.Flags().StringVar(&sender, "sender", "", "sending power (required)")
	recordCmd.Flags().StringVar(&phase, "phase", "", "game phase (required)")
	recordCmd.Flags().StringVar(&dbPath, "db", "transcript.db", "transcript database path")
	_ = recordCmd.MarkFlagRequired("sender")
	_ = recordCmd.MarkFlagRequired("phase")

	visibleCmd.Flags().StringVar(&power, "power", "", "observing power (required)")
	visibleCmd.Flags().StringVar(&phase, "phase", "", "render a negotiation digest for this phase instead")
	_ = visibleCmd.MarkFlagRequired("power")

	rootCmd.AddCommand(extractCmd, resolveCmd, recordCmd, visibleCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if batchDir != "" {
		return extractDir(batchDir)
	}
	if len(args) != 1 {
		return fmt.Errorf("expected a response file or --dir")
	}
	out, err := extractFile(args[0])
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

// extractDir runs the extractor over every .txt file in dir concurrently.
// Extraction is pure per call, so the only coordination needed is around
// printing results.
func extractDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".txt") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	results := make([]string, len(files))
	var g errgroup.Group
	g.SetLimit(8)
	for i, f := range files {
		g.Go(func() error {
			out, err := extractFile(f)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, f := range files {
		fmt.Printf("%s:\t%s\n", f, results[i])
	}
	return nil
}

func extractFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read response %s: %w", path, err)
	}
	ex := perception.NewExtractor(logger)

	switch perception.Shape(shape) {
	case perception.ShapeOrders:
		proposed, ok := ex.Orders(string(raw))
		if !ok {
			return marshal(map[string]any{"orders": nil, "found": false})
		}
		return marshal(map[string]any{"orders": proposed, "found": true})
	case perception.ShapeMessages:
		cands := ex.Messages(string(raw))
		return marshal(map[string]any{"candidates": cands, "found": len(cands) > 0})
	default:
		return "", fmt.Errorf("unknown shape %q", shape)
	}
}

func runResolve(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read response %s: %w", args[0], err)
	}
	legalData, err := os.ReadFile(legalPath)
	if err != nil {
		return fmt.Errorf("read legal set %s: %w", legalPath, err)
	}
	var legal map[string][]string
	if err := json.Unmarshal(legalData, &legal); err != nil {
		return fmt.Errorf("parse legal set %s: %w", legalPath, err)
	}

	proposed, ok := perception.NewExtractor(logger).Orders(string(raw))
	if !ok {
		logger.Warn("no orders extracted; resolving to full fallback")
	}
	res, err := orders.Resolve(proposed, legal, logger)
	if err != nil {
		return err
	}
	out, err := marshal(map[string]any{
		"orders":      res.Orders,
		"rejected":    res.Rejected,
		"synthesized": res.Synthesized,
	})
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func runRecord(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read response %s: %w", args[0], err)
	}

	cands := perception.NewExtractor(logger).Messages(string(raw))
	msgs := press.ValidateCandidates(cands, sender, phase, logger)
	if len(msgs) == 0 {
		logger.Info("no valid messages in response",
			zap.Int("candidates", len(cands)))
		return nil
	}

	store, err := press.OpenTranscriptStore(dbPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, m := range msgs {
		stored, err := store.Append(m)
		if err != nil {
			return err
		}
		fmt.Printf("%s %s -> %s: %s\n", stored.ID, stored.Sender, stored.Recipient, stored.Content)
	}
	return nil
}

func runVisible(cmd *cobra.Command, args []string) error {
	store, err := press.OpenTranscriptStore(args[0], logger)
	if err != nil {
		return err
	}
	defer store.Close()

	transcript, err := store.Snapshot()
	if err != nil {
		return err
	}

	if phase != "" {
		fmt.Print(press.NegotiationDigest(transcript, power, phase))
		return nil
	}

	for _, m := range press.VisibleTo(transcript, power) {
		fmt.Printf("[%s] %s -> %s: %s\n", m.Phase, m.Sender, m.Recipient, m.Content)
	}
	return nil
}

func marshal(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return string(data), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
