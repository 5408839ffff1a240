package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mimitechai/mcp-pdf-autofill/internal/config"
	"github.com/mimitechai/mcp-pdf-autofill/internal/fallback"
	"github.com/mimitechai/mcp-pdf-autofill/internal/intelligence"
	"github.com/mimitechai/mcp-pdf-autofill/internal/logging"
	"github.com/mimitechai/mcp-pdf-autofill/internal/pdf"
	"github.com/mimitechai/mcp-pdf-autofill/internal/pdf/fill"
)

// cliOptions holds the flags shared by every subcommand
type cliOptions struct {
	verbose         bool
	maxFileSize     int64
	concurrency     int
	fallbackURL     string
	fallbackTimeout time.Duration
	rulesFile       string

	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:   "pdf_autofill",
		Short: "Read, map and fill PDF AcroForms from a user profile",
		Long: `pdf_autofill inspects PDF forms, maps their fields to a user profile
(JSON or YAML, German or English keys) and writes the filled result.

Examples:
  pdf_autofill fields antrag.pdf
  pdf_autofill map antrag.pdf --profile anna.yaml
  pdf_autofill fill antrag.pdf --profile anna.json --flatten --watermark MUSTER
  pdf_autofill batch *.pdf --profile anna.json --out-dir filled/`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			logger, err := logging.New(logging.Options{Level: level, Stdio: true, Console: true})
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to stderr")
	flags.Int64Var(&opts.maxFileSize, "max-file-size", config.DefaultMaxFileSize, "Maximum PDF file size in bytes")
	flags.StringVar(&opts.rulesFile, "rules", "", "Additional classifier rules (JSON or YAML)")

	root.AddCommand(
		newValidateCmd(opts),
		newFieldsCmd(opts),
		newMapCmd(opts),
		newFillCmd(opts),
		newBatchCmd(opts),
		newSuggestCmd(opts),
	)
	return root
}

// service builds a service for byte-level operations; no directory
// confinement applies to paths given on the command line
func (o *cliOptions) service() (*pdf.Service, error) {
	var matcher fallback.Matcher
	if o.fallbackURL != "" {
		matcher = fallback.NewHTTPMatcher(o.fallbackURL)
	}
	classifier := intelligence.NewClassifier()
	if o.rulesFile != "" {
		if err := classifier.LoadCustomRules(o.rulesFile); err != nil {
			return nil, err
		}
	}
	return pdf.NewService(pdf.Options{
		MaxFileSize: o.maxFileSize,
		Directory:   ".",
		Concurrency: o.concurrency,
		Classifier:  classifier,
		Escalator:   fallback.NewEscalator(matcher, o.fallbackTimeout, o.logger),
		Logger:      o.logger,
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func loadProfile(path string) (intelligence.Profile, error) {
	if path == "" {
		return nil, fmt.Errorf("--profile is required")
	}
	return intelligence.LoadProfile(path)
}

func newValidateCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <pdf>...",
		Short: "Check that files are readable PDFs and whether they carry a form",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := opts.service()
			if err != nil {
				return err
			}

			results := make([]pdf.ValidationResult, 0, len(args))
			invalid := 0
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					results = append(results, pdf.ValidationResult{Path: path, Error: err.Error()})
					invalid++
					continue
				}
				result := service.ValidateBytes(data)
				result.Path = path
				if !result.Valid {
					invalid++
				}
				results = append(results, result)
			}

			if err := printJSON(cmd.OutOrStdout(), results); err != nil {
				return err
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d file(s) failed validation", invalid, len(args))
			}
			return nil
		},
	}
}

func newFieldsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fields <pdf>",
		Short: "List the form fields of a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := opts.service()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			catalog, err := service.ExtractFields(data)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), catalog)
		},
	}
}

func newMapCmd(opts *cliOptions) *cobra.Command {
	var profilePath string

	cmd := &cobra.Command{
		Use:   "map <pdf>",
		Short: "Preview which profile values land in which fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := loadProfile(profilePath)
			if err != nil {
				return err
			}
			service, err := opts.service()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			mapping, err := service.MapProfile(data, profile)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), mapping)
		},
	}
	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "Profile file (.json, .yaml)")
	return cmd
}

// fillOutput is what the fill command prints: the report, plus the
// suggestions when --suggest was given
type fillOutput struct {
	*fill.Report
	Suggestions *pdf.FillSuggestions `json:"suggestions,omitempty"`
}

func newFillCmd(opts *cliOptions) *cobra.Command {
	var (
		profilePath string
		outPath     string
		suggest     bool
		fillOpts    fill.Options
	)

	cmd := &cobra.Command{
		Use:   "fill <pdf>",
		Short: "Fill a form from a profile and write the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := loadProfile(profilePath)
			if err != nil {
				return err
			}
			service, err := opts.service()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var (
				result *fill.Result
				output fillOutput
			)
			if suggest {
				result, output.Suggestions, err = service.AutofillAndSuggest(cmd.Context(), data, profile, fillOpts)
			} else {
				result, err = service.Autofill(data, profile, fillOpts)
			}
			if err != nil {
				return err
			}

			out := outPath
			if out == "" {
				out = filepath.Join(filepath.Dir(args[0]), pdf.FilledName(args[0]))
			}
			if err := os.WriteFile(out, result.Bytes, 0o644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}

			output.Report = result.Report
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s): %d of %d fields filled, %d error(s)\n",
				out, pdf.FormatSize(int64(len(result.Bytes))), output.FilledCount, output.TotalFields, output.ErrorCount)
			return printJSON(cmd.OutOrStdout(), output)
		},
	}
	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "Profile file (.json, .yaml)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output path (default: <name>_filled.pdf beside the input)")
	cmd.Flags().BoolVar(&fillOpts.Flatten, "flatten", false, "Bake values into the page content")
	cmd.Flags().StringVar(&fillOpts.WatermarkText, "watermark", "", "Watermark text stamped on every page")
	cmd.Flags().BoolVar(&suggest, "suggest", false, "Ask the semantic matching service about unmapped fields while filling")
	fallbackFlags(cmd, opts)
	return cmd
}

func fallbackFlags(cmd *cobra.Command, opts *cliOptions) {
	cmd.Flags().StringVar(&opts.fallbackURL, "fallback-url", "", "Endpoint of the semantic matching service")
	cmd.Flags().DurationVar(&opts.fallbackTimeout, "fallback-timeout", config.DefaultFallbackTimeout, "Timeout for the matching request")
}

// batchSummary is what the batch command prints per document
type batchSummary struct {
	Name   string       `json:"name"`
	Output string       `json:"output,omitempty"`
	Error  string       `json:"error,omitempty"`
	Report *fill.Report `json:"report,omitempty"`
}

func newBatchCmd(opts *cliOptions) *cobra.Command {
	var (
		profilePath string
		outDir      string
		fillOpts    fill.Options
	)

	cmd := &cobra.Command{
		Use:   "batch <pdf>...",
		Short: "Fill many forms from one profile in parallel",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := loadProfile(profilePath)
			if err != nil {
				return err
			}
			service, err := opts.service()
			if err != nil {
				return err
			}
			if outDir != "" {
				if err := os.MkdirAll(outDir, config.DefaultDirPerm); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}

			items := make([]pdf.BatchItem, len(args))
			summaries := make([]batchSummary, len(args))
			for i, path := range args {
				summaries[i].Name = path
				items[i] = pdf.BatchItem{Name: path, Profile: profile}
				if data, err := os.ReadFile(path); err == nil {
					items[i].Data = data
				} else {
					summaries[i].Error = err.Error()
				}
			}

			result := service.AutofillBatch(cmd.Context(), items, fillOpts)

			failed := 0
			for i, item := range result.Items {
				s := &summaries[i]
				switch {
				case s.Error != "":
				case item.Err != nil:
					s.Error = item.Err.Error()
				default:
					dir := outDir
					if dir == "" {
						dir = filepath.Dir(item.Name)
					}
					s.Output = filepath.Join(dir, pdf.FilledName(item.Name))
					s.Report = item.Result.Report
					if err := os.WriteFile(s.Output, item.Result.Bytes, 0o644); err != nil {
						s.Error = fmt.Sprintf("failed to write output: %v", err)
						s.Output = ""
					}
				}
				if s.Error != "" {
					failed++
				}
			}

			opts.logger.Info("batch written", zap.String("batch_id", result.ID), zap.Int("failed", failed))
			if err := printJSON(cmd.OutOrStdout(), summaries); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d document(s) failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "Profile file (.json, .yaml)")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for filled output (default: beside each input)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", config.DefaultConcurrency, "Documents processed in parallel")
	cmd.Flags().BoolVar(&fillOpts.Flatten, "flatten", false, "Bake values into the page content")
	cmd.Flags().StringVar(&fillOpts.WatermarkText, "watermark", "", "Watermark text stamped on every page")
	return cmd
}

func newSuggestCmd(opts *cliOptions) *cobra.Command {
	var profilePath string

	cmd := &cobra.Command{
		Use:   "suggest <pdf>",
		Short: "Ask the semantic matching service about unmapped fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := loadProfile(profilePath)
			if err != nil {
				return err
			}
			service, err := opts.service()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			result, err := service.Suggest(cmd.Context(), data, profile)
			if err != nil {
				return err
			}
			result.Path = args[0]
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "Profile file (.json, .yaml)")
	fallbackFlags(cmd, opts)
	return cmd
}
