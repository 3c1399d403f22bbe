package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/inference-sim/fastpass-sim/sim/sweep"
)

var (
	// CLI flags for sweeps
	sweepSpecPath     string    // YAML sweep spec
	sweepRates        []float64 // Arrival rates to sweep
	sweepFractions    []float64 // FastPass fractions to sweep
	sweepReplications int       // Replications per point
	sweepServiceRate  float64   // Service rate μ
	sweepHorizon      float64   // Simulated time per replication
	sweepWarmup       float64   // Warm-up per replication
	sweepSeed         int64     // Base seed; replication i uses seed+i
	sweepPolicy       string    // Dispatch policy
	thresholdFactor   float64   // Regular-class ceiling as a multiple of the M/M/1 residence
	csvPath           string    // Optional CSV output
	dbPath            string    // Optional SQLite output
	sweepLogLevel     string    // Log verbosity level
)

// loadSweepSpec starts from the YAML file (or the defaults) and applies every
// flag the user set explicitly.
func loadSweepSpec(flags *pflag.FlagSet) (*sweep.Spec, error) {
	spec := sweep.DefaultSpec()
	if sweepSpecPath != "" {
		var err error
		if spec, err = sweep.LoadSpec(sweepSpecPath); err != nil {
			return nil, err
		}
	}
	if flags.Changed("arrival-rates") {
		spec.ArrivalRates = sweepRates
	}
	if flags.Changed("fractions") {
		spec.Fractions = sweepFractions
		spec.FractionGrid = nil
	}
	if flags.Changed("replications") {
		spec.Replications = sweepReplications
	}
	if flags.Changed("service-rate") {
		spec.ServiceRate = sweepServiceRate
	}
	if flags.Changed("horizon") {
		spec.Horizon = sweepHorizon
	}
	if flags.Changed("warmup") {
		spec.Warmup = sweepWarmup
	}
	if flags.Changed("seed") {
		spec.Seed = sweepSeed
	}
	if flags.Changed("policy") {
		spec.Policy = sweepPolicy
	}
	if flags.Changed("threshold-factor") {
		spec.ThresholdFactor = thresholdFactor
	}
	return spec, nil
}

// runSweep executes spec and writes the table and recommendations to w,
// plus the optional CSV and SQLite outputs.
func runSweep(spec *sweep.Spec, w io.Writer, csvOut, dbOut string) error {
	table, err := sweep.Run(spec)
	if err != nil {
		return err
	}
	if err := sweep.WriteTable(w, table); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}
	sweep.WriteRecommendations(w, sweep.Recommend(table, spec.ThresholdFactor))

	if csvOut != "" {
		f, err := os.Create(csvOut)
		if err != nil {
			return fmt.Errorf("creating %s: %w", csvOut, err)
		}
		if err := sweep.WriteCSV(f, table); err != nil {
			f.Close()
			return fmt.Errorf("writing %s: %w", csvOut, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing %s: %w", csvOut, err)
		}
		logrus.Infof("Wrote %d rows to %s", len(table.Rows), csvOut)
	}

	if dbOut != "" {
		store, err := sweep.OpenStore(dbOut)
		if err != nil {
			return err
		}
		defer store.Close()
		runID, err := store.RecordSweep(table)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\nStored sweep %s in %s\n", runID, dbOut)
	}
	return nil
}

// sweepCmd runs the FastPass allocation study over a grid of arrival rates and fractions
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Sweep arrival rates and FastPass fractions and recommend an allocation",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel(sweepLogLevel)

		spec, err := loadSweepSpec(cmd.Flags())
		if err != nil {
			logrus.Fatalf("Failed to load sweep spec: %v", err)
		}
		logrus.Infof("Sweeping %d points × %d replications", spec.Points(), spec.Replications)

		startTime := time.Now()
		if err := runSweep(spec, os.Stdout, csvPath, dbPath); err != nil {
			logrus.Fatalf("Sweep failed: %v", err)
		}
		logrus.Infof("Sweep complete in %s.", time.Since(startTime))
	},
}

func init() {
	defaults := sweep.DefaultSpec()
	sweepCmd.Flags().StringVar(&sweepSpecPath, "spec", "", "YAML sweep spec; explicitly set flags override its fields")
	sweepCmd.Flags().Float64SliceVar(&sweepRates, "arrival-rates", defaults.ArrivalRates, "Comma-separated arrival rates")
	sweepCmd.Flags().Float64SliceVar(&sweepFractions, "fractions", nil, "Comma-separated FastPass fractions (default 20 points on [0, 0.95])")
	sweepCmd.Flags().IntVar(&sweepReplications, "replications", defaults.Replications, "Replications per point; replication i uses seed+i")
	sweepCmd.Flags().Float64Var(&sweepServiceRate, "service-rate", defaults.ServiceRate, "Service rate μ")
	sweepCmd.Flags().Float64Var(&sweepHorizon, "horizon", defaults.Horizon, "Simulated time per replication")
	sweepCmd.Flags().Float64Var(&sweepWarmup, "warmup", defaults.Warmup, "Departures at or before this time are not counted")
	sweepCmd.Flags().Int64Var(&sweepSeed, "seed", defaults.Seed, "Base seed")
	sweepCmd.Flags().StringVar(&sweepPolicy, "policy", "", "Dispatch policy (priority, fcfs)")
	sweepCmd.Flags().Float64Var(&thresholdFactor, "threshold-factor", defaults.ThresholdFactor, "Regular-class ceiling as a multiple of the M/M/1 residence 1/(μ−λ)")
	sweepCmd.Flags().StringVar(&csvPath, "csv", "", "Write the table as CSV to this file")
	sweepCmd.Flags().StringVar(&dbPath, "db", "", "Record the sweep in this SQLite database")
	sweepCmd.Flags().StringVar(&sweepLogLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	rootCmd.AddCommand(sweepCmd)
}
