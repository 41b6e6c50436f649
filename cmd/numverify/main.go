// Command numverify reads numeric CAPTCHA images.
//
// Usage:
//
//	numverify [serve] [-config file]
//	numverify recognize [-config file] [-templates dir] [-dump dir] image...
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/20154530/NeusoftKQ/internal/config"
	"github.com/20154530/NeusoftKQ/internal/imaging"
	"github.com/20154530/NeusoftKQ/internal/recognize"
	"github.com/20154530/NeusoftKQ/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const usage = `numverify - numeric CAPTCHA recognition

Usage:
  numverify [serve] [-config file]
      Run the MCP server on stdin/stdout (default).
  numverify recognize [-config file] [-templates dir] [-dump dir] image...
      Print "<path>\t<digits>" for every image.

Options:
  --version, -v    Print version information
  --help, -h       Print this help message

Environment variables:
  NUMVERIFY_LOG_LEVEL=debug    Enable debug logging
  NUMVERIFY_THRESHOLD, NUMVERIFY_TEMPLATES_DIR, NUMVERIFY_OCR, ...
                               Override config file settings
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	} else if len(args) > 0 {
		switch args[0] {
		case "--version", "-v":
			cmd, args = "version", args[1:]
		case "--help", "-h":
			cmd, args = "help", args[1:]
		}
	}

	switch cmd {
	case "version":
		fmt.Fprintf(stdout, "numverify %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		return 0
	case "help":
		fmt.Fprint(stdout, usage)
		return 0
	case "serve":
		return serve(ctx, args, stdin, stdout, stderr)
	case "recognize":
		return recognizeFiles(ctx, args, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}
}

// setup loads the configuration and builds the stderr logger.
func setup(path string, stderr io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	return cfg, logger, nil
}

func serve(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML configuration file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, logger, err := setup(*configPath, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "numverify: %v\n", err)
		return 1
	}
	logger.Debug("starting server", "version", Version, "built", BuildTime, "commit", GitCommit)

	server.Version = Version
	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to start server", "error", err)
		return 1
	}
	if err := srv.Serve(ctx, stdin, stdout); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server error", "error", err)
		return 1
	}
	return 0
}

func recognizeFiles(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("recognize", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML configuration file")
	templates := fs.String("templates", "", "Directory of <symbol>.png reference templates")
	dump := fs.String("dump", "", "Write every normalized glyph as a PNG into this directory")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "numverify recognize: no images given")
		return 2
	}

	cfg, logger, err := setup(*configPath, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "numverify: %v\n", err)
		return 1
	}
	if *templates != "" {
		cfg.TemplatesDir = *templates
	}

	cache := imaging.NewImageCache()
	rec, err := recognize.FromConfig(cfg, cache, logger)
	if err != nil {
		logger.Error("failed to build recognizer", "error", err)
		return 1
	}
	if *dump != "" {
		if err := os.MkdirAll(*dump, 0o755); err != nil {
			logger.Error("failed to create dump directory", "error", err)
			return 1
		}
	}

	status := 0
	for _, path := range fs.Args() {
		text, err := recognizeFile(ctx, rec, cache, path, *dump)
		if err != nil {
			if ctx.Err() != nil {
				return 1
			}
			logger.Error("failed to recognize image", "path", path, "error", err)
			status = 1
			continue
		}
		fmt.Fprintf(stdout, "%s\t%s\n", path, text)
	}
	return status
}

func recognizeFile(ctx context.Context, rec *recognize.Recognizer, cache *imaging.ImageCache, path, dump string) (string, error) {
	buf, err := cache.LoadBuffer(path)
	if err != nil {
		return "", err
	}
	res, err := rec.Recognize(ctx, buf)
	if err != nil {
		return "", err
	}
	if dump != "" {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		for _, g := range res.Glyphs {
			symbol := "unknown"
			if g.Symbol != recognize.Unknown {
				symbol = g.Symbol
			}
			name := filepath.Join(dump, fmt.Sprintf("%s_%d_%s.png", base, g.Index, symbol))
			if err := imaging.SavePNG(g.Image, name); err != nil {
				return "", err
			}
		}
	}
	// Each image is read once.
	cache.Evict(path)
	return res.Text, nil
}
