package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mimitechai/mcp-pdf-autofill/internal/fallback"
	"github.com/mimitechai/mcp-pdf-autofill/internal/intelligence"
	"github.com/mimitechai/mcp-pdf-autofill/internal/logging"
	"github.com/mimitechai/mcp-pdf-autofill/internal/pdf/acroform"
	pdferrors "github.com/mimitechai/mcp-pdf-autofill/internal/pdf/errors"
	"github.com/mimitechai/mcp-pdf-autofill/internal/pdf/fill"
	"github.com/mimitechai/mcp-pdf-autofill/internal/pdf/security"
)

const (
	defaultConcurrency = 4
	maxServiceFileSize = 1024 * 1024 * 1024 // 1GB
	outputFilePerm     = 0o644
)

// Options configures a Service
type Options struct {
	MaxFileSize int64
	Directory   string
	Concurrency int
	Defaults    fill.Options
	Classifier  *intelligence.Classifier
	Escalator   *fallback.Escalator
	Logger      *zap.Logger
}

// Service runs the read, map and fill pipeline. Every call works on its own
// Document, so a Service is safe for concurrent use.
type Service struct {
	maxFileSize   int64
	concurrency   int
	defaults      fill.Options
	validator     *Validator
	search        *Search
	classifier    *intelligence.Classifier
	mapper        *intelligence.Mapper
	writer        *fill.Writer
	escalator     *fallback.Escalator
	pathValidator *security.PathValidator
	logger        *zap.Logger
}

// NewService creates a new PDF service with all components
func NewService(opts Options) (*Service, error) {
	pathValidator, err := security.NewPathValidator(opts.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	logger := logging.OrNop(opts.Logger)
	classifier := opts.Classifier
	if classifier == nil {
		classifier = intelligence.NewClassifier()
	}
	escalator := opts.Escalator
	if escalator == nil {
		escalator = fallback.NewEscalator(nil, 0, logger)
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	s := &Service{
		maxFileSize:   opts.MaxFileSize,
		concurrency:   concurrency,
		defaults:      opts.Defaults,
		validator:     NewValidator(opts.MaxFileSize),
		search:        NewSearch(opts.MaxFileSize),
		classifier:    classifier,
		mapper:        intelligence.NewMapper(classifier, intelligence.NewResolver(), logger),
		writer:        fill.NewWriter(logger),
		escalator:     escalator,
		pathValidator: pathValidator,
		logger:        logger,
	}
	if err := s.ValidateConfiguration(); err != nil {
		return nil, err
	}
	return s, nil
}

// ValidateConfiguration validates the service configuration
func (s *Service) ValidateConfiguration() error {
	if s.maxFileSize <= 0 {
		return fmt.Errorf("maxFileSize must be greater than 0")
	}

	if s.maxFileSize > maxServiceFileSize {
		return fmt.Errorf("maxFileSize cannot exceed 1GB")
	}

	return nil
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// Defaults returns the fill options applied when a request leaves them unset
func (s *Service) Defaults() fill.Options {
	return s.defaults
}

// Byte-level operations

// ValidateBytes runs the cheap pre-flight check
func (s *Service) ValidateBytes(data []byte) ValidationResult {
	return s.validator.ValidateBytes(data)
}

// ExtractFields reads the field catalog of data
func (s *Service) ExtractFields(data []byte) (*acroform.Catalog, error) {
	if err := s.checkSize(data); err != nil {
		return nil, err
	}
	return acroform.ReadCatalog(data)
}

// MapProfile classifies the fields of data and resolves them against profile
func (s *Service) MapProfile(data []byte, profile intelligence.Profile) (*intelligence.MappingResult, error) {
	catalog, err := s.ExtractFields(data)
	if err != nil {
		return nil, err
	}
	return s.mapper.Map(catalog.Fields, profile), nil
}

// Autofill maps profile onto data and writes the mapped values
func (s *Service) Autofill(data []byte, profile intelligence.Profile, opts fill.Options) (*fill.Result, error) {
	doc, mapping, err := s.prepare(data, profile)
	if err != nil {
		return nil, err
	}
	return s.writer.Fill(doc, mapping, opts)
}

// AutofillAndSuggest fills data like Autofill while the matching service is
// asked about the unmapped fields in the background. Suggestions are never
// written; they come back once they arrive or ctx is done, whichever is first.
func (s *Service) AutofillAndSuggest(ctx context.Context, data []byte, profile intelligence.Profile, opts fill.Options) (*fill.Result, *FillSuggestions, error) {
	doc, mapping, err := s.prepare(data, profile)
	if err != nil {
		return nil, nil, err
	}

	pending := s.escalator.EscalateAsync(ctx, mapping.Unmapped, profile)
	filled, err := s.writer.Fill(doc, mapping, opts)
	if err != nil {
		return nil, nil, err
	}
	return filled, s.awaitSuggestions(ctx, pending), nil
}

func (s *Service) prepare(data []byte, profile intelligence.Profile) (*acroform.Document, *intelligence.MappingResult, error) {
	if err := s.checkSize(data); err != nil {
		return nil, nil, err
	}
	doc, err := acroform.Open(data)
	if err != nil {
		return nil, nil, err
	}
	return doc, s.mapper.Map(doc.Catalog().Fields, profile), nil
}

func (s *Service) awaitSuggestions(ctx context.Context, pending <-chan fallback.Outcome) *FillSuggestions {
	result := &FillSuggestions{Suggestions: []fallback.Suggestion{}}

	var outcome fallback.Outcome
	select {
	case outcome = <-pending:
	case <-ctx.Done():
		outcome.Err = ctx.Err()
	}

	if outcome.Err != nil {
		s.logger.Debug("fill finished without suggestions", zap.Error(outcome.Err))
		result.Error = outcome.Err.Error()
		return result
	}
	result.Available = true
	if outcome.Suggestions != nil {
		result.Suggestions = outcome.Suggestions
	}
	return result
}

// Suggest asks the matching service about the fields profile leaves unmapped.
// Only a document that cannot be loaded is an error; an unavailable service
// is reported in the result.
func (s *Service) Suggest(ctx context.Context, data []byte, profile intelligence.Profile) (*FormSuggestResult, error) {
	mapping, err := s.MapProfile(data, profile)
	if err != nil {
		return nil, err
	}

	result := &FormSuggestResult{
		Unmapped:    mapping.Unmapped,
		Suggestions: []fallback.Suggestion{},
	}

	suggestions, err := s.escalator.Escalate(ctx, mapping.Unmapped, profile)
	if err != nil {
		result.Error = err.Error()
		return result, nil
	}
	result.Available = true
	result.Suggestions = suggestions
	return result, nil
}

// AutofillBatch fills every item independently with at most the configured
// number in flight. It never fails fast: each item carries its own result or
// error, and items not started before ctx is done get the context error.
func (s *Service) AutofillBatch(ctx context.Context, items []BatchItem, opts fill.Options) *BatchResult {
	result := &BatchResult{
		ID:    uuid.NewString(),
		Items: make([]BatchItemResult, len(items)),
	}

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i, item := range items {
		result.Items[i] = BatchItemResult{Index: i, Name: item.Name}
		if err := ctx.Err(); err != nil {
			result.Items[i].Err = err
			continue
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				result.Items[i].Err = err
				return nil
			}
			var res *fill.Result
			err := pdferrors.CapturePanic(pdferrors.ErrorTypeUnknown, func() error {
				var err error
				res, err = s.Autofill(item.Data, item.Profile, opts)
				return err
			})
			result.Items[i].Result = res
			result.Items[i].Err = err
			return nil
		})
	}
	_ = g.Wait()

	for _, item := range result.Items {
		if item.Err != nil {
			result.Failed++
		} else {
			result.Succeeded++
		}
	}

	s.logger.Info("batch finished",
		zap.String("batch_id", result.ID),
		zap.Int("items", len(items)),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed))
	return result
}

// File-level operations

// FormValidate runs the pre-flight check on a file
func (s *Service) FormValidate(req FormValidateRequest) (*ValidationResult, error) {
	path, err := s.resolvePath(req.Path)
	if err != nil {
		return nil, err
	}
	result := s.validator.ValidateFile(path)
	return &result, nil
}

// FormFields reads the field catalog of a file
func (s *Service) FormFields(req FormFieldsRequest) (*FormFieldsResult, error) {
	path, data, err := s.readPDF(req.Path)
	if err != nil {
		return nil, err
	}
	catalog, err := s.ExtractFields(data)
	if err != nil {
		return nil, err
	}
	return &FormFieldsResult{Path: path, Catalog: catalog}, nil
}

// FormMap previews the mapping of a file
func (s *Service) FormMap(req FormMapRequest) (*FormMapResult, error) {
	path, data, err := s.readPDF(req.Path)
	if err != nil {
		return nil, err
	}
	mapping, err := s.MapProfile(data, req.Profile)
	if err != nil {
		return nil, err
	}
	return &FormMapResult{Path: path, MappingResult: mapping}, nil
}

// FormFill fills a file and writes the output next to it, or to OutputPath.
// With Suggest set the matching service runs alongside the write.
func (s *Service) FormFill(ctx context.Context, req FormFillRequest) (*FormFillResult, error) {
	path, data, err := s.readPDF(req.Path)
	if err != nil {
		return nil, err
	}

	outputPath := req.OutputPath
	if outputPath == "" {
		outputPath = filepath.Join(filepath.Dir(path), FilledName(path))
	}
	outputPath, err = s.resolvePath(outputPath)
	if err != nil {
		return nil, err
	}
	if outputPath == path {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeInvalidInput, "output path must differ from the input path")
	}

	opts := s.defaults
	if req.Flatten != nil {
		opts.Flatten = *req.Flatten
	}
	if req.WatermarkText != nil {
		opts.WatermarkText = *req.WatermarkText
	}

	var (
		filled      *fill.Result
		suggestions *FillSuggestions
	)
	if req.Suggest {
		filled, suggestions, err = s.AutofillAndSuggest(ctx, data, req.Profile, opts)
	} else {
		filled, err = s.Autofill(data, req.Profile, opts)
	}
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(outputPath, filled.Bytes, outputFilePerm); err != nil {
		return nil, fmt.Errorf("failed to write output: %w", err)
	}

	download := NewDownload(path, filled.Bytes)
	download.Filename = filepath.Base(outputPath)
	download.Data = nil

	return &FormFillResult{
		Path:        path,
		OutputPath:  outputPath,
		Download:    download,
		Report:      filled.Report,
		Suggestions: suggestions,
	}, nil
}

// FormSuggest asks for suggestions for the unmapped fields of a file
func (s *Service) FormSuggest(ctx context.Context, req FormSuggestRequest) (*FormSuggestResult, error) {
	path, data, err := s.readPDF(req.Path)
	if err != nil {
		return nil, err
	}
	result, err := s.Suggest(ctx, data, req.Profile)
	if err != nil {
		return nil, err
	}
	result.Path = path
	return result, nil
}

// resolvePath makes path absolute, relative paths being taken from the
// configured directory, and checks it stays inside that directory
func (s *Service) resolvePath(path string) (string, error) {
	resolved, err := s.pathValidator.SanitizePath(path)
	if err != nil {
		return "", fmt.Errorf("security validation failed: %w", err)
	}
	return resolved, nil
}

// readPDF resolves path, checks the file and reads it
func (s *Service) readPDF(path string) (string, []byte, error) {
	resolved, err := s.resolvePath(path)
	if err != nil {
		return "", nil, err
	}
	if err := s.validator.checkFile(resolved); err != nil {
		return "", nil, pdferrors.WrapError(pdferrors.ErrorTypeInvalidInput, "cannot use file", err)
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}
	return resolved, data, nil
}

func (s *Service) checkSize(data []byte) error {
	if int64(len(data)) > s.maxFileSize {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeInvalidInput,
			fmt.Sprintf("document too large: %d bytes (max: %d bytes)", len(data), s.maxFileSize))
	}
	return nil
}
