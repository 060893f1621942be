package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/parity-cli/internal/aligner"
	"github.com/custodia-labs/parity-cli/internal/core/domain"
	"github.com/custodia-labs/parity-cli/internal/core/ports/driven"
	"github.com/custodia-labs/parity-cli/internal/core/ports/driving"
	"github.com/custodia-labs/parity-cli/internal/logger"
	"github.com/custodia-labs/parity-cli/internal/scoring"
	"github.com/custodia-labs/parity-cli/internal/severity"
	"github.com/custodia-labs/parity-cli/internal/tables"
)

// Ensure ComparisonService implements the interface.
var _ driving.ComparisonService = (*ComparisonService)(nil)

// ComparisonService runs the alignment and scoring pipeline.
type ComparisonService struct {
	extractors driven.ExtractorRegistry
	metrics    driven.MetricFactory
	runStore   driven.RunStore
	settings   driving.SettingsService
	now        func() time.Time
}

// NewComparisonService creates a new comparison service.
// The run store and settings service may be nil: runs are then never saved
// and requests without settings use the defaults.
func NewComparisonService(
	extractors driven.ExtractorRegistry,
	metrics driven.MetricFactory,
	runStore driven.RunStore,
	settings driving.SettingsService,
) *ComparisonService {
	return &ComparisonService{
		extractors: extractors,
		metrics:    metrics,
		runStore:   runStore,
		settings:   settings,
		now:        time.Now,
	}
}

// CompareFiles extracts both documents and compares them.
func (s *ComparisonService) CompareFiles(ctx context.Context, req driving.CompareRequest) (*domain.ComparisonRun, error) {
	if req.SourcePath == "" || req.TargetPath == "" {
		return nil, fmt.Errorf("%w: source and target paths are required", domain.ErrInvalidInput)
	}
	if s.extractors == nil {
		return nil, fmt.Errorf("%w: no extractors configured", domain.ErrUnsupportedType)
	}

	// Settings are checked before the documents are read.
	settings, err := s.resolveSettings(req.Settings)
	if err != nil {
		return nil, err
	}

	var src, tgt []domain.Block
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		src, err = s.extractors.Extract(gctx, req.SourcePath, req.SourceFormat, domain.SideSource)
		return err
	})
	g.Go(func() error {
		var err error
		tgt, err = s.extractors.Extract(gctx, req.TargetPath, req.TargetFormat, domain.SideTarget)
		return err
	})
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrAborted, ctx.Err())
		}
		return nil, err
	}

	return s.run(ctx, driving.CompareInput{
		SourceURI: req.SourcePath,
		TargetURI: req.TargetPath,
		Source:    src,
		Target:    tgt,
		Save:      req.Save,
	}, settings)
}

// Compare aligns and scores two block sequences.
// When saving fails the finished run is returned together with the error.
func (s *ComparisonService) Compare(ctx context.Context, in driving.CompareInput) (*domain.ComparisonRun, error) {
	settings, err := s.resolveSettings(in.Settings)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, in, settings)
}

// resolveSettings returns a validated private copy of the run settings.
func (s *ComparisonService) resolveSettings(override *domain.CompareSettings) (domain.CompareSettings, error) {
	var settings domain.CompareSettings
	switch {
	case override != nil:
		settings = override.Clone()
	case s.settings != nil:
		stored, err := s.settings.Get()
		if err != nil {
			return settings, fmt.Errorf("load settings: %w", err)
		}
		settings = stored.Clone()
	default:
		settings = domain.DefaultCompareSettings()
	}

	if err := settings.Validate(); err != nil {
		return settings, err
	}
	return settings, nil
}

func (s *ComparisonService) run(ctx context.Context, in driving.CompareInput, settings domain.CompareSettings) (*domain.ComparisonRun, error) {
	metrics, err := s.metrics.BuildEnabled(&settings)
	if err != nil {
		return nil, err
	}

	if settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, settings.Timeout)
		defer cancel()
	}

	logger.Section("Comparison")
	logger.Info("comparing %d source blocks with %d target blocks", len(in.Source), len(in.Target))

	done := logger.Timed("alignment")
	engine := aligner.New(aligner.FromSettings(settings)...)
	res, err := engine.Align(ctx, in.Source, in.Target)
	done()
	if err != nil {
		return nil, err
	}

	corrs, unattached := aligner.Detect(res)

	tableAligner := tables.New(settings.ReviewThreshold, settings.TableTolerance)
	for i := range corrs {
		src, tgt := res.Index.Pair(&corrs[i])
		tableAligner.Apply(&corrs[i], src, tgt)
	}

	done = logger.Timed("scoring")
	err = scoring.NewScorer(metrics, settings.Workers).Score(ctx, corrs, res.Index)
	done()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAborted, err)
	}

	classifier := severity.New(settings.RiskKeywords)
	for i := range corrs {
		src, tgt := res.Index.Pair(&corrs[i])
		corrs[i].Severity = classifier.Classify(&corrs[i], src, tgt)
	}

	summary := scoring.Aggregate(corrs, res.Index, &settings)
	summary.MalformedBlocks = len(res.MalformedSource) + len(res.MalformedTarget)
	summary.Issues = unattached

	run := &domain.ComparisonRun{
		ID:              uuid.New().String(),
		SourceURI:       in.SourceURI,
		TargetURI:       in.TargetURI,
		CreatedAt:       s.now(),
		Settings:        settings,
		Correspondences: corrs,
		Summary:         summary,
	}

	logger.Info("quality index %.3f (coverage %.3f, %s)",
		summary.QualityIndex, summary.Coverage, severity.String(severity.Count(corrs)))
	if summary.MalformedBlocks > 0 {
		logger.Warn("%d malformed blocks were excluded", summary.MalformedBlocks)
	}

	if in.Save {
		if s.runStore == nil {
			logger.Warn("run %s not saved: no run store configured", run.ID)
		} else if err := s.runStore.Save(ctx, run); err != nil {
			saveErr := fmt.Errorf("save run: %w", err)
			run.Summary.Issues = append(run.Summary.Issues, saveErr.Error())
			return run, saveErr
		}
	}
	return run, nil
}
