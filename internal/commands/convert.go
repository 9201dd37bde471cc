package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/FACorreiaa/bank-statement-converter/internal/domain/convert"
	"github.com/FACorreiaa/bank-statement-converter/internal/domain/export"
	"github.com/FACorreiaa/bank-statement-converter/internal/domain/extraction"
	"github.com/FACorreiaa/bank-statement-converter/internal/domain/extraction/ocr"
	"github.com/FACorreiaa/bank-statement-converter/internal/domain/structuring"
	"github.com/FACorreiaa/bank-statement-converter/internal/domain/validation"
	"github.com/FACorreiaa/bank-statement-converter/pkg/config"
	"github.com/FACorreiaa/bank-statement-converter/pkg/llm"
)

func newConvertCommand() *cobra.Command {
	var (
		output    string
		format    string
		scale     float64
		minText   int
		langs     string
		tolerance float64
		quiet     bool
	)

	cmd := &cobra.Command{
		Use:   "convert <statement.pdf>",
		Short: "Convert a statement PDF into a typed spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0], output, format, scale, minText, langs, tolerance, quiet)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: input name with new extension)")
	cmd.Flags().StringVar(&format, "format", "xlsx", "output format: xlsx or csv")
	cmd.Flags().Float64Var(&scale, "scale", 0, "rasterization scale for the OCR fallback")
	cmd.Flags().IntVar(&minText, "min-text", 0, "direct-extraction character threshold before OCR kicks in")
	cmd.Flags().StringVar(&langs, "lang", "", "comma-separated OCR languages, e.g. eng,deu")
	cmd.Flags().Float64Var(&tolerance, "tolerance", 0, "absolute tolerance for footer-total reconciliation (default 0.01)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")

	return cmd
}

func runConvert(cmd *cobra.Command, input, output, format string, scale float64, minText int, langs string, tolerance float64, quiet bool) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Logging)

	buf, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	model, err := llm.New(ctx, llm.Config{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("create model client: %w", err)
	}
	structurer := structuring.NewClient(model, cfg.LLM.MaxTokens, logger)

	recognizer, err := newRecognizer(cmd, cfg, langs, logger)
	if err != nil {
		return err
	}

	var progress extraction.ProgressFunc
	if !quiet {
		progress = func(_ extraction.Phase, message string) {
			fmt.Fprintln(cmd.ErrOrStderr(), message)
		}
	}

	if minText <= 0 {
		minText = cfg.Pipeline.MinDirectTextLength
	}
	if scale <= 0 {
		scale = cfg.Pipeline.Scale
	}
	extractor := extraction.NewController(extraction.Options{
		MinDirectTextLength: minText,
		Scale:               scale,
		Recognizer:          recognizer,
		Progress:            progress,
	}, logger)

	var valOpts validation.Options
	if tolerance > 0 {
		valOpts.Tolerance = decimal.NewFromFloat(tolerance)
	}

	svc := convert.NewService(extractor, structurer, valOpts, progress, logger)
	res, err := svc.Convert(ctx, buf)
	if err != nil {
		if convert.ClassifyError(err) == convert.FailureCancelled {
			fmt.Fprintln(cmd.ErrOrStderr(), "cancelled")
			return nil
		}
		return err
	}

	for _, issue := range res.Validation.Issues {
		fmt.Fprintln(cmd.ErrOrStderr(), "issue:", issue)
	}
	for _, warning := range res.Validation.AccuracyWarnings {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", warning)
	}

	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
	}
	if err := writeOutput(res, output, format); err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d transactions)\n", output, len(res.Document.Transactions))
	}
	return nil
}

func newRecognizer(cmd *cobra.Command, cfg *config.Config, langs string, logger *slog.Logger) (ocr.Recognizer, error) {
	switch cfg.OCR.Engine {
	case "vision":
		model, err := llm.New(cmd.Context(), llm.Config{
			Provider: cfg.OCR.VisionProvider,
			Model:    cfg.OCR.VisionModel,
			APIKey:   cfg.OCR.VisionAPIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("create vision OCR client: %w", err)
		}
		return ocr.NewVisionRecognizer(model, ocr.VisionConfig{Provider: cfg.OCR.VisionProvider}, logger), nil
	default:
		if langs == "" {
			langs = cfg.OCR.Languages
		}
		var languages []string
		for _, l := range strings.Split(langs, ",") {
			if l = strings.TrimSpace(l); l != "" {
				languages = append(languages, l)
			}
		}
		return ocr.NewTesseractRecognizer(ocr.TesseractConfig{
			Languages: languages,
			DPI:       cfg.OCR.DPI,
		}), nil
	}
}

func writeOutput(res *convert.Result, output, format string) error {
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	defer f.Close()

	switch format {
	case "xlsx":
		err = export.WriteXLSX(res.Sheet, f)
	case "csv":
		err = export.WriteCSV(res.Document.Transactions, f)
	default:
		err = fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return err
	}
	return f.Close()
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.JSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
