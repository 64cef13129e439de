package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pagesift/pagesift/document"
	"github.com/pagesift/pagesift/internal/config"
	"github.com/pagesift/pagesift/internal/logger"
	"github.com/pagesift/pagesift/ocr"
	"github.com/pagesift/pagesift/ocr/tesseract"
	"github.com/pagesift/pagesift/raster"
)

var (
	cfgPath   string
	logLevel  string
	logPretty bool
)

var rootCmd = &cobra.Command{
	Use:          "pagesift",
	Short:        "Extract text and structure from images and PDFs",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to TOML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logPretty, "pretty", false, "human-readable log output")
}

// loadConfig layers defaults, the optional config file, and PAGESIFT_*
// environment variables. A local .env file is read first if present.
func loadConfig() (config.Config, error) {
	_ = godotenv.Load()
	return config.Load(cfgPath)
}

func newLogger() zerolog.Logger {
	return logger.New(logger.Config{
		Level:  logLevel,
		Pretty: logPretty,
		Output: os.Stderr,
	})
}

func buildProcessor(cfg config.Config, zlog zerolog.Logger) *document.Processor {
	engine := tesseract.NewEngine()
	rasterizer := raster.NewPoppler(
		raster.WithBinary(cfg.Raster.Binary),
		raster.WithDPI(cfg.Raster.DPI),
	)

	inputOpts := []ocr.InputOption{ocr.WithLanguages(cfg.OCR.Languages...)}
	if cfg.OCR.DPI > 0 {
		inputOpts = append(inputOpts, ocr.WithDPI(cfg.OCR.DPI))
	}

	return document.New(engine, rasterizer,
		document.WithLogger(logger.NewBridge(zlog)),
		document.WithInputOptions(inputOpts...),
		document.WithTempDir(cfg.TempDir),
	)
}
