// cmd/root.go
package cmd

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bulletproofpenguin/predictive-cache/internal/cachemgr"
	"github.com/bulletproofpenguin/predictive-cache/internal/callwindow"
	"github.com/bulletproofpenguin/predictive-cache/internal/graph"
	"github.com/bulletproofpenguin/predictive-cache/internal/router"
	"github.com/bulletproofpenguin/predictive-cache/internal/simclock"
	"github.com/bulletproofpenguin/predictive-cache/internal/simtrace"
)

var (
	logLevel   string
	configPath string
	traceFmt   string
)

var rootCmd = &cobra.Command{
	Use:   "predictive-cache",
	Short: "Trace-driven simulator for a predictive file-system cache",
}

var runCmd = &cobra.Command{
	Use:   "run TEST_TRACE CACHE_BYTES MIN_CHANCE LOOKAHEAD_US [TRAIN_TRACE] PREFETCH",
	Short: "Replay a trace through the cache manager",
	Args:  cobra.RangeArgs(5, 6),
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		testTrace, cacheBytes, minChance, lookaheadUS, trainTrace, prefetch, err := parseRunArgs(args)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		format, err := parseFormat(traceFmt)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		tunables, err := loadTunables(configPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		logrus.WithFields(logrus.Fields{
			"cache_bytes":  cacheBytes,
			"min_chance":   minChance,
			"lookahead_us": lookaheadUS,
			"prefetch":     prefetch,
			"train":        trainTrace,
			"test":         testTrace,
		}).Info("starting replay")

		trainArena, err := simtrace.Load(trainTrace, format)
		if err != nil {
			logrus.Fatalf("loading training trace: %v", err)
		}

		g := graph.New(lookaheadUS)
		g.CreateNodes(trainArena.Calls())
		g.LoadAssociations()
		logrus.WithField("nodes", len(g.Nodes)).Info("probability graph trained")

		window := callwindow.New(g, lookaheadUS)
		clock := simclock.New()

		totalPages := cacheBytes / tunables.BlockSize
		if totalPages < 1 {
			logrus.Fatalf("cache size %d bytes is smaller than one block (%d bytes)", cacheBytes, tunables.BlockSize)
		}

		manager := cachemgr.New(g, window, clock, totalPages, minChance, prefetch, tunables, logrus.StandardLogger())
		reporter := &router.StdoutReporter{Out: os.Stdout}
		rt := router.New(manager, reporter)

		testArena, err := simtrace.Load(testTrace, format)
		if err != nil {
			logrus.Fatalf("loading test trace: %v", err)
		}
		calls := testArena.Calls()
		sort.SliceStable(calls, func(i, j int) bool { return calls[i].Less(calls[j]) })

		for _, call := range calls {
			rt.Serve(call)
		}

		logrus.WithFields(logrus.Fields{
			"cache_hit_ratio":    manager.Cache.LastHitRatio,
			"prefetch_hit_ratio": manager.Prefetch.LastHitRatio,
			"minimum_chance":     manager.MinimumChance,
		}).Info("replay complete")
	},
}

// parseRunArgs unpacks the 5- or 6-positional-argument form: when
// TRAIN_TRACE is omitted, the test trace doubles as the training trace.
func parseRunArgs(args []string) (testTrace string, cacheBytes int64, minChance float64, lookaheadUS int64, trainTrace string, prefetch bool, err error) {
	testTrace = args[0]

	cacheBytes, err = strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return "", 0, 0, 0, "", false, fmt.Errorf("%w: CACHE_BYTES: %v", simtrace.ErrArgument, err)
	}
	minChance, err = strconv.ParseFloat(args[2], 64)
	if err != nil {
		return "", 0, 0, 0, "", false, fmt.Errorf("%w: MIN_CHANCE: %v", simtrace.ErrArgument, err)
	}
	lookaheadUS, err = strconv.ParseInt(args[3], 10, 64)
	if err != nil {
		return "", 0, 0, 0, "", false, fmt.Errorf("%w: LOOKAHEAD_US: %v", simtrace.ErrArgument, err)
	}

	var prefetchArg string
	if len(args) == 6 {
		trainTrace = args[4]
		prefetchArg = args[5]
	} else {
		trainTrace = testTrace
		prefetchArg = args[4]
	}

	prefetch, err = strconv.ParseBool(prefetchArg)
	if err != nil {
		return "", 0, 0, 0, "", false, fmt.Errorf("%w: PREFETCH: %v", simtrace.ErrArgument, err)
	}
	return testTrace, cacheBytes, minChance, lookaheadUS, trainTrace, prefetch, nil
}

func parseFormat(name string) (simtrace.Format, error) {
	switch name {
	case "strace", "":
		return simtrace.FormatStrace, nil
	case "seers":
		return simtrace.FormatSeers, nil
	default:
		return 0, fmt.Errorf("%w: unknown trace format %q (want strace or seers)", simtrace.ErrArgument, name)
	}
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a tunables YAML config (defaults to the built-in constants)")
	runCmd.Flags().StringVar(&traceFmt, "format", "strace", "Trace format: strace or seers")

	rootCmd.AddCommand(runCmd)
}
