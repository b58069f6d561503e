package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/joshuapare/slabkit/internal/logger"
	"github.com/joshuapare/slabkit/pool/alloc"
)

// defaultBlockSize is the block size used when --block-size is not given.
const defaultBlockSize = 5

var (
	// Global flags
	verbose   bool
	quiet     bool
	jsonOut   bool
	noColor   bool
	blockSize int
	backing   string
	maxBytes  int64
	logDir    string
	logDebug  bool
)

var rootCmd = &cobra.Command{
	Use:   "slabctl",
	Short: "Drive block-pool allocators and pooled linked lists",
	Long: `slabctl runs workloads against slabkit's block-pool allocator and the
linked lists built on it, replays the reference scenarios, and reports
allocator statistics.`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging()
	},
	SilenceUsage: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().
		IntVarP(&blockSize, "block-size", "b", defaultBlockSize, "Slots per allocator block")
	rootCmd.PersistentFlags().StringVar(&backing, "backing", "heap", "Block storage: heap or mapped")
	rootCmd.PersistentFlags().Int64Var(&maxBytes, "max-bytes", 0, "Cap on reserved bytes (0 = unlimited)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Write allocator logs to dated files in this directory")
	rootCmd.PersistentFlags().BoolVar(&logDebug, "log", false, "Log allocator activity to stderr")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initLogging() error {
	if !logDebug && logDir == "" {
		return nil
	}
	return logger.Init(logger.Options{
		Enabled: true,
		Writer:  os.Stderr,
		LogDir:  logDir,
		Level:   slog.LevelDebug,
	})
}

// allocConfig builds the allocator policy from the global flags.
func allocConfig() (alloc.Config, error) {
	b, err := alloc.ParseBacking(backing)
	if err != nil {
		return alloc.Config{}, err
	}
	return alloc.Config{
		BlockSize: blockSize,
		Backing:   b,
		MaxBytes:  maxBytes,
		Logger:    logger.L,
	}, nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

var (
	passStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")).Bold(true)
)

// styled renders text with style unless colors are disabled
func styled(style lipgloss.Style, text string) string {
	if noColor {
		return text
	}
	return style.Render(text)
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
