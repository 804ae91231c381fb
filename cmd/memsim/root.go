package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/memsim/simulation"
)

var rootCmd = &cobra.Command{
	Use: "memsim",
	Short: "Memsim simulates OS-style memory management with four " +
		"concurrent actors.",
	Long: `Memsim partitions a simulated address space into uniform blocks ` +
		`and lets four independent actors race over them: an allocator ` +
		`servicing first-fit requests, a garbage collector reclaiming the ` +
		`longest-resident block, an aging clock, and a read-only inspector. ` +
		`The run can be observed live over HTTP and is recorded into SQLite.`,
	RunE: runSimulation,
}

func init() {
	// A .env file can override the built-in defaults; flags override both.
	_ = godotenv.Load()

	rootCmd.Flags().Int("blocks",
		envInt("MEMSIM_BLOCKS", 3),
		"number of initial blocks")
	rootCmd.Flags().Int64("block-size",
		envInt64("MEMSIM_BLOCK_SIZE", 1024),
		"uniform size of the initial blocks, in address units")
	rootCmd.Flags().Duration("tick",
		envDuration("MEMSIM_TICK", time.Second),
		"base tick interval; actors tick at 1:1:2:5 multiples of it")
	rootCmd.Flags().Int64("min-request", 10,
		"smallest allocation request, in address units")
	rootCmd.Flags().Int64("max-request", 50,
		"largest allocation request, in address units")
	rootCmd.Flags().Int64("seed", 0,
		"seed for the request distribution; 0 picks a random one")
	rootCmd.Flags().Duration("duration", 0,
		"stop after this long; 0 runs until interrupted")
	rootCmd.Flags().String("output", "",
		"output file name for the SQLite recording")
	rootCmd.Flags().Bool("no-recording", false,
		"disable the SQLite recording")
	rootCmd.Flags().Bool("no-monitor", false,
		"disable the monitoring web server")
	rootCmd.Flags().Int("monitor-port", 0,
		"port for the monitoring web server; 0 picks a random one")
	rootCmd.Flags().Bool("open-browser", false,
		"open the monitoring page in the default browser")
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	s, err := builderFromFlags(cmd).Build()
	if err != nil {
		return err
	}
	defer s.Terminate()

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	duration := mustDuration(cmd.Flags(), "duration")
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	s.Run(ctx)

	return nil
}

func builderFromFlags(cmd *cobra.Command) simulation.Builder {
	flags := cmd.Flags()

	b := simulation.MakeBuilder().
		WithNumBlocks(mustInt(flags, "blocks")).
		WithBlockSize(mustInt64(flags, "block-size")).
		WithBaseTick(mustDuration(flags, "tick")).
		WithRequestBounds(
			mustInt64(flags, "min-request"),
			mustInt64(flags, "max-request")).
		WithSeed(mustInt64(flags, "seed"))

	if mustBool(flags, "no-recording") {
		b = b.WithoutRecording()
	} else if output := mustString(flags, "output"); output != "" {
		b = b.WithOutputFileName(output)
	}

	if mustBool(flags, "no-monitor") {
		b = b.WithoutMonitoring()
	} else {
		if port := mustInt(flags, "monitor-port"); port > 0 {
			b = b.WithMonitorPort(port)
		}
		if mustBool(flags, "open-browser") {
			b = b.WithBrowserLaunch()
		}
	}

	return b
}

// The must* readers panic on a flag that was never registered, which is a
// programmer error, not a user one.

func mustInt(flags *pflag.FlagSet, name string) int {
	v, err := flags.GetInt(name)
	if err != nil {
		panic(err)
	}
	return v
}

func mustInt64(flags *pflag.FlagSet, name string) int64 {
	v, err := flags.GetInt64(name)
	if err != nil {
		panic(err)
	}
	return v
}

func mustBool(flags *pflag.FlagSet, name string) bool {
	v, err := flags.GetBool(name)
	if err != nil {
		panic(err)
	}
	return v
}

func mustString(flags *pflag.FlagSet, name string) string {
	v, err := flags.GetString(name)
	if err != nil {
		panic(err)
	}
	return v
}

func mustDuration(flags *pflag.FlagSet, name string) time.Duration {
	v, err := flags.GetDuration(name)
	if err != nil {
		panic(err)
	}
	return v
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Fatalf("memsim: %s", err)
	}
	atexit.Exit(0)
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func envInt64(key string, fallback int64) int64 {
	v, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
