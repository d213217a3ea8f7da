package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/MeKo-Tech/fieldex/internal/confidence"
	"github.com/MeKo-Tech/fieldex/internal/config"
	"github.com/MeKo-Tech/fieldex/internal/engine"
	"github.com/MeKo-Tech/fieldex/internal/pipeline"
	"github.com/MeKo-Tech/fieldex/internal/region"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const (
	outputFormatJSON = "json"
	outputFormatCSV  = "csv"
	outputFormatText = "text"
)

// extractCmd represents the extract command.
var extractCmd = &cobra.Command{
	Use:   "extract [files...]",
	Short: "Extract structured fields from documents or recognition output",
	Long: `Extract key-value fields from identity documents.

Inputs can be images (JPEG, PNG, BMP, TIFF), PDFs, or JSON files with
pre-recognized text regions via --regions.

Examples:
  fieldex extract scan.jpg
  fieldex extract document.pdf --pages 1-3 --format json
  fieldex extract --regions regions.json --output result.json
  fieldex extract scan.png --language hi`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		regionsFile, _ := cmd.Flags().GetString("regions")
		if len(args) == 0 && regionsFile == "" {
			return errors.New("no input files provided")
		}

		cfg := GetConfig()

		format := cfg.Output.Format
		if cmd.Flags().Changed("format") {
			format, _ = cmd.Flags().GetString("format")
		}
		switch format {
		case outputFormatText, outputFormatJSON, outputFormatCSV:
		default:
			return fmt.Errorf("invalid output format: %q (must be text, json or csv)", format)
		}

		outputFile := cfg.Output.File
		if cmd.Flags().Changed("output") {
			outputFile, _ = cmd.Flags().GetString("output")
		}
		pages, _ := cmd.Flags().GetString("pages")
		summary, _ := cmd.Flags().GetBool("summary")

		pl, err := pipeline.NewBuilder().
			WithLanguage(cfg.Pipeline.Language).
			WithSchemaFile(cfg.Pipeline.SchemaFile).
			WithIoUThreshold(cfg.Pipeline.IoUThreshold).
			WithSuggestions(cfg.Pipeline.Suggestions).
			WithEngineTimeout(cfg.Pipeline.EngineTimeout).
			WithEngines(configuredEngines(cfg)...).
			Build()
		if err != nil {
			return fmt.Errorf("failed to build pipeline: %w", err)
		}

		var results []*pipeline.DocumentResult
		if regionsFile != "" {
			res, err := extractFromRegionsFile(pl, regionsFile)
			if err != nil {
				return err
			}
			results = append(results, res)
		}
		for _, arg := range args {
			res, err := extractFromFile(cmd, pl, arg, pages)
			if err != nil {
				return err
			}
			results = append(results, res)
		}

		for _, res := range results {
			out, err := formatResult(res, format)
			if err != nil {
				return err
			}
			if err := writeOutput(out, outputFile); err != nil {
				return err
			}
			if summary && outputFile != "" {
				printSummary(cmd, res)
			}
		}
		return nil
	},
}

// configuredEngines materializes the replay engines named in the config.
func configuredEngines(cfg *config.Config) []engine.Engine {
	engines := make([]engine.Engine, 0, len(cfg.Pipeline.Engines))
	for _, ec := range cfg.Pipeline.Engines {
		engines = append(engines, engine.NewFileEngine(ec.Name, ec.RegionsFile))
	}
	return engines
}

func extractFromRegionsFile(pl *pipeline.Pipeline, path string) (*pipeline.DocumentResult, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: user-provided input path
	if err != nil {
		return nil, fmt.Errorf("failed to read regions file: %w", err)
	}
	regions, err := region.UnmarshalRegions(data)
	if err != nil {
		return nil, fmt.Errorf("invalid regions file %s: %w", path, err)
	}
	return pl.ProcessRegions(regions), nil
}

func extractFromFile(cmd *cobra.Command, pl *pipeline.Pipeline, path, pages string) (*pipeline.DocumentResult, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return pl.ProcessPDF(cmd.Context(), path, pages)
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: user-provided input path
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	img, err := pipeline.DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return pl.ProcessImage(cmd.Context(), img)
}

func formatResult(res *pipeline.DocumentResult, format string) (string, error) {
	switch format {
	case outputFormatJSON:
		return pipeline.ToJSON(res)
	case outputFormatCSV:
		return pipeline.ToCSV(res)
	default:
		return pipeline.ToPlainText(res)
	}
}

func writeOutput(out, file string) error {
	if file == "" {
		fmt.Println(out)
		return nil
	}
	if err := os.WriteFile(file, []byte(out), 0o600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// printSummary renders a short colored per-field overview on stdout.
func printSummary(cmd *cobra.Command, res *pipeline.DocumentResult) {
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan, color.Bold)

	_, _ = cyan.Fprintf(cmd.OutOrStdout(), "Session %s (%d fields, confidence %.2f)\n",
		res.SessionID, len(res.Fields), res.Confidence)

	keys := make([]string, 0, len(res.Fields))
	for k := range res.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		meta := res.Metadata[k]
		line := fmt.Sprintf("  %-20s %s (%.2f, %s)\n", k+":", res.Fields[k], meta.Confidence, meta.Source)
		if meta.Confidence >= confidence.SuggestionThreshold {
			_, _ = green.Fprint(cmd.OutOrStdout(), line)
		} else {
			_, _ = yellow.Fprint(cmd.OutOrStdout(), line)
		}
	}
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().String("regions", "", "JSON file with pre-recognized text regions")
	extractCmd.Flags().StringP("format", "f", "json", "output format (text, json, csv)")
	extractCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	extractCmd.Flags().String("pages", "", "page range for PDFs, e.g. 1-3 or 1,4")
	extractCmd.Flags().Bool("summary", true, "print a colored field summary when writing to a file")
}
