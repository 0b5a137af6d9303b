package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/nukk-pain/wine-sub001/internal/cellar"
	"github.com/nukk-pain/wine-sub001/internal/classify"
	"github.com/nukk-pain/wine-sub001/internal/document"
	"github.com/nukk-pain/wine-sub001/internal/pipeline"
	"github.com/nukk-pain/wine-sub001/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

// imageScanner reads photos and can also structure label text
type imageScanner interface {
	scanning.Scanner
	pipeline.Refiner
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("wine-tracker")
	var (
		port        = fs.IntLong("port", 8080, "HTTP server port")
		dbPath      = fs.StringLong("db", "wine-tracker.db", "Database file path")
		storagePath = fs.StringLong("storage", "./uploads", "Storage directory path")
		scannerType = fs.StringLong("scanner", "gemini", "Scanner type: 'gemini', 'ollama' or 'none' (text uploads only)")
		geminiKey   = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		ollamaURL   = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel = fs.StringLong("ollama-model", "llava", "Ollama model name (e.g., llava, qwen2-vl)")
		refine      = fs.BoolLong("refine", "Ask the scanner to structure labels the parser could not name")
		floor       = fs.Float64Long("classify-floor", classify.DefaultConfig().Floor, "Minimum classifier score to accept a type")
		margin      = fs.Float64Long("classify-margin", classify.DefaultConfig().Margin, "Minimum lead of the best type over the runner-up")
		authUser    = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass    = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		logLevel    = fs.StringLong("log-level", "info", "Log level: debug, info, warn or error")
		process     = fs.StringLong("process", "", "Process one file ('-' for stdin) and print the result as JSON instead of serving")
		docType     = fs.StringLong("type", "", "Force the document type in --process mode: wine_label or receipt")
		_           = fs.StringLong("config", "", "Config file (flag=value per line)")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("WINE_TRACKER"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
		ff.WithConfigAllowMissingFile(),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	level, err := parseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// Initialize scanner based on type
	var images imageScanner
	switch *scannerType {
	case "gemini":
		// Get Gemini API key from flag or environment
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini scanner...", "model", *geminiModel)
		images, err = scanning.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	case "ollama":
		slog.Info("Initializing Ollama scanner...", "url", *ollamaURL, "model", *ollamaModel)
		images, err = scanning.NewOllama(*ollamaURL, *ollamaModel)
		if err != nil {
			slog.Error("Failed to initialize Ollama", "error", err)
			os.Exit(1)
		}
	case "none":
		slog.Info("No image scanner configured, only text uploads are accepted")
	default:
		slog.Error("Invalid scanner type", "type", *scannerType, "valid", "gemini, ollama or none")
		os.Exit(1)
	}

	var router *scanning.Router
	var refiner pipeline.Refiner
	if images != nil {
		router = scanning.NewRouter(images)
		if *refine {
			refiner = images
		}
	} else {
		router = scanning.NewRouter(nil)
		if *refine {
			slog.Warn("Refinement needs a scanner, ignoring --refine")
		}
	}
	defer router.Close()

	cfg := classify.DefaultConfig()
	cfg.Floor = *floor
	cfg.Margin = *margin
	p := pipeline.New(classify.New(cfg), refiner)

	if *process != "" {
		if err := processOnce(*process, *docType, router, p); err != nil {
			slog.Error("Processing failed", "input", *process, "error", err)
			os.Exit(1)
		}
		return
	}

	// Initialize database
	slog.Info("Initializing database...")
	db, err := cellar.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize storage
	slog.Info("Initializing storage...")
	store, err := cellar.NewLocalStorage(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	service := cellar.NewService(db, router, store, p)

	basicAuth := cellar.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := cellar.NewServer(service, basicAuth)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "version", version)
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}

// processOnce reads one file, runs it through the pipeline and prints the result
func processOnce(path, typeName string, scanner scanning.Scanner, p *pipeline.Pipeline) error {
	var override document.Type
	if typeName != "" {
		t, ok := document.ParseType(typeName)
		if !ok {
			return fmt.Errorf("unknown document type %q", typeName)
		}
		override = t
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	text, err := scanner.ScanText(data, detectContentType(path, data))
	if err != nil {
		return fmt.Errorf("scanning input: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(p.Run(text, override))
}

// detectContentType guesses from the extension, then from the content
func detectContentType(path string, data []byte) string {
	if ext := filepath.Ext(path); ext != "" {
		if ct := mime.TypeByExtension(strings.ToLower(ext)); ct != "" {
			return ct
		}
		switch strings.ToLower(ext) {
		case ".heic":
			return "image/heic"
		case ".heif":
			return "image/heif"
		}
	}
	return http.DetectContentType(data)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
