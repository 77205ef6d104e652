package main

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pfshell/internal/engine"
	"pfshell/internal/model"
	"pfshell/internal/parser"
	"pfshell/internal/report"
)

var (
	configFile string
	outDir     string
	dbDSN      string
	writeXLSX  bool
	noColor    bool
	workers    int
	logLevel   string
	logFile    string
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pfshell",
		Short: "Audit a pfSense configuration export for risky rules",
		Long: `pfshell reads an exported pfSense config.xml, classifies every firewall
	filter rule and the SNMP service against a catalog of risk heuristics,
	and reports the findings by severity.`,
		RunE: run,
	}

	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to the exported config.xml (required)")
	rootCmd.Flags().BoolVarP(&writeXLSX, "report", "r", false, "Also write xlsx workbooks per severity")
	rootCmd.Flags().StringVar(&outDir, "out-dir", ".", "Base directory for report output")
	rootCmd.Flags().StringVar(&dbDSN, "db", "", "MariaDB DSN to export findings to (optional)")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored console output")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", runtime.NumCPU(), "Number of concurrent classification workers")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "Log file path (default: stderr)")

	rootCmd.MarkFlagRequired("config")

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// --- 1. Setup Logging ---
	logger := setupLogger(logLevel, logFile)
	slog.SetDefault(logger)

	slog.Info("Starting pfshell audit", "config", configFile)
	startTime := time.Now()

	// --- 2. Load Config ---
	doc, err := parser.Load(configFile)
	if err != nil {
		switch {
		case errors.Is(err, parser.ErrNotFound):
			slog.Error("Config file not found", "path", configFile)
		case errors.Is(err, parser.ErrParse):
			slog.Error("Config file is not well-formed XML", "path", configFile, "error", err)
		case errors.Is(err, parser.ErrInvalidConfig):
			slog.Error("Config has no system hostname; it names the report output directory")
		default:
			slog.Error("Failed to load config", "error", err)
		}
		return err
	}
	slog.Info("Config loaded", "hostname", doc.Hostname, "rules", len(doc.Rules), "snmp", doc.Snmp != nil)

	// --- 3. Normalize ---
	rules := make([]model.Rule, len(doc.Rules))
	for i, raw := range doc.Rules {
		rules[i] = parser.NormalizeRule(raw, i)
	}
	snmp := parser.NormalizeSnmp(doc.Snmp)

	// --- 4. Recover Line Provenance ---
	lineMap, err := parser.MapLines(doc.RawText, doc.FilterXML)
	if err != nil {
		slog.Warn("Line provenance unavailable", "error", err)
	} else {
		for i := range rules {
			if line, ok := lineMap[i]; ok {
				rules[i].LineNumber = line
			}
		}
		if len(lineMap) < len(rules) {
			slog.Warn("Line provenance is partial", "mapped", len(lineMap), "rules", len(rules))
		}
	}

	// --- 5. Classify ---
	slog.Info("Classifying rules", "workers", workers)
	buckets := engine.NewClassifier(workers).Classify(rules, snmp)

	// --- 6. Report ---
	console := report.NewConsole(os.Stdout, !noColor)
	console.Render(doc.Hostname, buckets)
	console.Summary(buckets)

	if writeXLSX {
		wb := report.NewWorkbook(outDir, doc.Hostname)
		slog.Info("Writing xlsx workbooks", "dir", wb.Dir())
		if err := wb.Write(buckets); err != nil {
			slog.Warn("Some workbook groups were not written", "error", err)
		}
	}

	if dbDSN != "" {
		exporter, err := report.NewDBExporter(dbDSN)
		if err != nil {
			slog.Warn("Findings DB unreachable, skipping export", "error", err)
		} else {
			defer exporter.Close()
			if err := exporter.Export(doc.Hostname, buckets); err != nil {
				slog.Warn("Some finding groups were not exported", "error", err)
			}
		}
	}

	slog.Info("Audit complete", "duration", time.Since(startTime))
	return nil
}

func setupLogger(level, logFilePath string) *slog.Logger {
	var logWriter io.Writer = os.Stderr
	if logFilePath != "" {
		f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			logWriter = f
		}
		// We don't log an error here because the logger isn't set up yet.
		// It will just fall back to stderr.
	}

	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "INFO":
		lvl = slog.LevelInfo
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(logWriter, &slog.HandlerOptions{Level: lvl}))
}
