package main

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	tracing "github.com/jamesrr39/go-tracing"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/tmxkit/maptool"
	"github.com/pkg/profile"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	logger *logpkg.Logger
	fs     = gofs.NewOsFs()

	verbose       = kingpin.Flag("v", "verbose logging").Bool()
	configPath    = kingpin.Flag("config", "path to the YAML config file").Default(maptool.DefaultConfigPath).String()
	shouldProfile = kingpin.Flag("profile", "write a CPU profile of the run").Bool()
	traceFilePath = kingpin.Flag("trace-file", "file to write traces of the processed maps to. Overrides traceDir from the config file").String()
)

func main() {
	kingpin.CommandLine.PreAction(func(ctx *kingpin.ParseContext) error {
		logLevel := logpkg.LogLevelInfo
		if *verbose {
			logLevel = logpkg.LogLevelDebug
		}
		logger = logpkg.NewLogger(os.Stderr, logLevel)
		return nil
	})

	setupInfo()
	setupCheck()
	setupConvert()
	setupBatchCheck()

	kingpin.Parse()
}

// environment is what every command gets to work with.
type environment struct {
	config *maptool.Config
	tracer *tracing.Tracer
}

// runCommand loads the config, starts profiling and tracing as requested and runs fn.
// Errors are returned with their stack trace.
func runCommand(fn func(env *environment) errorsx.Error) kingpin.Action {
	return func(ctx *kingpin.ParseContext) error {
		run := func() errorsx.Error {
			config, err := maptool.LoadConfig(fs, *configPath)
			if err != nil {
				return errorsx.Wrap(err)
			}

			if *shouldProfile {
				profileDir, err := ioutil.TempDir("", "tmxtool-profile")
				if err != nil {
					return errorsx.Wrap(err)
				}
				logger.Info("writing CPU profile to %q", profileDir)
				defer profile.Start(profile.ProfilePath(profileDir), profile.CPUProfile, profile.Quiet).Stop()
			}

			traceWriter, closeTrace, err := openTraceWriter(config)
			if err != nil {
				return errorsx.Wrap(err)
			}
			defer closeTrace()

			return fn(&environment{config: config, tracer: tracing.NewTracer(traceWriter)})
		}

		err := run()
		if err != nil {
			return fmt.Errorf("error: %q\nStack trace:\n%s", err.Error(), err.Stack())
		}
		return nil
	}
}

func openTraceWriter(config *maptool.Config) (io.Writer, func(), errorsx.Error) {
	path := *traceFilePath
	if path == "" && config.TraceDir != "" {
		err := fs.MkdirAll(config.TraceDir, 0755)
		if err != nil {
			return nil, nil, errorsx.Wrap(err)
		}
		path = filepath.Join(config.TraceDir, fmt.Sprintf("trace_%s.pbf", time.Now().Format("2006-01-02__03_04_05")))
	}
	if path == "" {
		return ioutil.Discard, func() {}, nil
	}

	file, err := fs.Create(path)
	if err != nil {
		return nil, nil, errorsx.Wrap(err)
	}
	logger.Info("tracing at %q", path)
	return file, func() { file.Close() }, nil
}

func setupInfo() {
	cmd := kingpin.Command("info", "print a summary of a map")
	mapPath := cmd.Arg("map", "map file (.tmx, .json or .yaml)").Required().String()
	cmd.Action(runCommand(func(env *environment) errorsx.Error {
		docs := maptool.NewDocuments(fs, logger, env.config.SerializerOptions())
		m, err := docs.Open(*mapPath)
		if err != nil {
			return errorsx.Wrap(err)
		}

		summary, err := maptool.Summarize(m)
		if err != nil {
			return errorsx.Wrap(err)
		}
		fileInfo, statErr := fs.Stat(*mapPath)
		if statErr == nil {
			summary.FileSize = fileInfo.Size()
		}

		writeErr := summary.WriteText(os.Stdout)
		if writeErr != nil {
			return errorsx.Wrap(writeErr)
		}
		return nil
	}))
}

func printReport(report *maptool.Report) {
	fmt.Println(report.String())
	for _, violation := range report.Violations {
		fmt.Printf("  %s\n", violation.Error())
	}
	if report.Err != nil {
		logger.Debug("stack: %s", report.Err.Stack())
	}
}

func setupCheck() {
	cmd := kingpin.Command("check", "check a map for consistency problems")
	mapPath := cmd.Arg("map", "map file (.tmx, .json or .yaml)").Required().String()
	watch := cmd.Flag("watch", "check again every time the file changes, until interrupted").Bool()
	cmd.Action(runCommand(func(env *environment) errorsx.Error {
		docs := maptool.NewDocuments(fs, logger, env.config.SerializerOptions())
		checker := maptool.NewChecker(logger, docs, env.tracer, 1)

		if !*watch {
			report := checker.Check(*mapPath)
			printReport(report)
			if !report.OK() {
				return errorsx.Errorf("%s has problems", *mapPath)
			}
			return nil
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		logger.Info("watching %q. Press Ctrl+C to stop", *mapPath)
		return checker.Watch(ctx, *mapPath, printReport)
	}))
}

func setupConvert() {
	cmd := kingpin.Command("convert", "convert a map between the TMX, JSON and YAML formats, or rewrite it with other encodings")
	inPath := cmd.Arg("in", "map file to read").Required().String()
	outPath := cmd.Arg("out", "map file to write. The format is taken from the extension").Required().String()
	encoding := cmd.Flag("encoding", "tile layer data encoding for TMX output (xml, csv or base64)").Enum("xml", "csv", "base64")
	compression := cmd.Flag("compression", "compression of base64 tile layer data (none, zlib, gzip or zstd)").Enum("none", "zlib", "gzip", "zstd")
	embedTilesets := cmd.Flag("embed-tilesets", "write external tilesets into the map").Bool()
	cmd.Action(runCommand(func(env *environment) errorsx.Error {
		options := env.config.SerializerOptions()
		if *encoding != "" {
			options.Encoding = *encoding
		}
		if *compression != "" {
			options.Compression = *compression
		}
		if *embedTilesets {
			options.EmbedTilesets = true
		}

		docs := maptool.NewDocuments(fs, logger, options)
		m, err := docs.Open(*inPath)
		if err != nil {
			return errorsx.Wrap(err)
		}

		err = docs.Save(m, *outPath)
		if err != nil {
			return errorsx.Wrap(err)
		}
		logger.Info("converted %q to %q", *inPath, *outPath)
		return nil
	}))
}

func setupBatchCheck() {
	cmd := kingpin.Command("batch-check", "check many maps at once")
	mapPaths := cmd.Arg("maps", "map files (.tmx, .json or .yaml)").Required().Strings()
	concurrency := cmd.Flag("concurrency", "how many maps to check at once. Overrides concurrency from the config file").Uint()
	cmd.Action(runCommand(func(env *environment) errorsx.Error {
		if *concurrency > 0 {
			env.config.Concurrency = *concurrency
		}

		startTime := time.Now()
		docs := maptool.NewDocuments(fs, logger, env.config.SerializerOptions())
		checker := maptool.NewChecker(logger, docs, env.tracer, env.config.Concurrency)
		reports := checker.CheckAll(*mapPaths)

		failed := 0
		for _, report := range reports {
			printReport(report)
			if !report.OK() {
				failed++
			}
		}
		logger.Info("checked %d maps in %s", len(reports), time.Since(startTime))

		if failed > 0 {
			return errorsx.Errorf("%d of %d maps have problems", failed, len(reports))
		}
		return nil
	}))
}
