// Command lstm-wikipedia trains and evaluates the two-stage revision model
// over a SQLite dataset of per-author edit histories.
package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/davbzh/lstm-wikipedia/config"
	"github.com/davbzh/lstm-wikipedia/learning"
	"github.com/davbzh/lstm-wikipedia/metrics"
	"github.com/davbzh/lstm-wikipedia/persist"
	"github.com/davbzh/lstm-wikipedia/store"
)

var (
	configPath string
	cfg        config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lstm-wikipedia",
	Short: "Train and evaluate the LSTM + feed-forward revision model",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath == "" {
			cfg = config.Default()
			return nil
		}
		var err error
		cfg, err = config.Load(configPath)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.AddCommand(trainCmd, evalCmd, baselineCmd)
}

func rng() *rand.Rand {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func loadItems() ([]learning.Item, error) {
	db, err := store.Open(cfg.DataPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return db.All()
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the encoder/predictor pair and persist the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := loadItems()
		if err != nil {
			return err
		}
		usage := cfg.Usage()
		settings := &learning.Settings{
			Iterations:       cfg.Iterations,
			Quality:          cfg.Quality(),
			WeightedLearning: cfg.Weighted,
			Rand:             rng(),
			Verbose:          true,
		}

		log.Printf("starting training: %d iterations, %s, weighted=%v, balanced=%v",
			cfg.Iterations, usage, cfg.Weighted, cfg.Balanced)
		start := time.Now()
		model, _, err := learning.TrainWithEncoder(items, usage, cfg.Balanced, settings)
		if err != nil {
			return err
		}
		log.Printf("training completed in %v", time.Since(start))

		pc := persist.Config{
			Dir:  cfg.ResultsDir,
			Base: persist.DefaultBase(cfg.Bits, cfg.Iterations, cfg.Weighted),
		}
		if err := persist.Save(pc, model); err != nil {
			return fmt.Errorf("persisting trained model: %w", err)
		}
		log.Printf("model written to %s", pc.SnapshotPath())
		return nil
	},
}

var evalCmd = &cobra.Command{
	Use:   "eval <snapshot>",
	Short: "Evaluate a persisted model over the dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := persist.Load(args[0])
		if err != nil {
			return err
		}
		items, err := loadItems()
		if err != nil {
			return err
		}
		ev, err := learning.Evaluate(items, model, cfg.Usage(), cfg.Quality())
		if err != nil {
			return err
		}
		res, err := ev.Score()
		if err != nil {
			return err
		}
		printResult(res)
		return nil
	},
}

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Score uniformly random predictions over the dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := loadItems()
		if err != nil {
			return err
		}
		res, err := learning.RandomBaseline(items, rng())
		if err != nil {
			return err
		}
		printResult(res)
		return nil
	},
}

func printResult(res metrics.Result) {
	for c := 0; c < 2; c++ {
		fmt.Printf("class %d: precision=%.4f recall=%.4f f1=%.4f support=%.0f\n",
			c, res.Precision[c], res.Recall[c], res.F1[c], res.Support[c])
	}
}
