package service

import (
	"context"
	"errors"
	"image"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/CliffortMC08/pearlite-analyser/internal/config"
	apperrors "github.com/CliffortMC08/pearlite-analyser/internal/errors"
	"github.com/CliffortMC08/pearlite-analyser/internal/mask"
	"github.com/CliffortMC08/pearlite-analyser/internal/observer"
	"github.com/CliffortMC08/pearlite-analyser/internal/phase"
	"github.com/CliffortMC08/pearlite-analyser/internal/report"
	"github.com/CliffortMC08/pearlite-analyser/internal/repository"
	"github.com/CliffortMC08/pearlite-analyser/pkg/models"
)

// AnalysisInput is one request-scoped pair of base micrograph and overlay
// mask. When Mask is nil the mask is built from Strokes; both empty means an
// unmarked mask (0.00% pearlite).
type AnalysisInput struct {
	SourceName string
	Base       image.Image
	Mask       *image.NRGBA
	Strokes    []models.Stroke
	Options    phase.Options
}

// PhaseAnalysisService orchestrates decoding, classification and reporting.
type PhaseAnalysisService interface {
	// Analyze classifies the mask against the base image grid.
	Analyze(ctx context.Context, input AnalysisInput) (*models.AnalysisResult, error)

	// AnalyzeURL fetches the base micrograph through the repository and
	// builds the mask from the request's strokes.
	AnalyzeURL(ctx context.Context, req models.AnalyzeURLRequest, options phase.Options) (*models.AnalysisResult, error)

	// GenerateReport runs an analysis and writes a PDF report.
	GenerateReport(ctx context.Context, input AnalysisInput, w io.Writer) (*models.AnalysisResult, error)

	// DefaultOptions returns the configured classification options.
	DefaultOptions() phase.Options
}

type phaseAnalysisService struct {
	cfg     *config.Config
	repo    repository.MicrographRepository
	reports *report.Generator
	events  observer.Subject
}

// NewPhaseAnalysisService creates the analysis service.
func NewPhaseAnalysisService(
	cfg *config.Config,
	repo repository.MicrographRepository,
	reports *report.Generator,
	events observer.Subject,
) PhaseAnalysisService {
	return &phaseAnalysisService{
		cfg:     cfg,
		repo:    repo,
		reports: reports,
		events:  events,
	}
}

func (s *phaseAnalysisService) DefaultOptions() phase.Options {
	return phase.DefaultOptions().
		WithPaintColor(s.cfg.PaintColor).
		WithAlphaThreshold(s.cfg.AlphaThreshold).
		WithColorTolerance(s.cfg.ColorTolerance)
}

func (s *phaseAnalysisService) Analyze(ctx context.Context, input AnalysisInput) (*models.AnalysisResult, error) {
	result, _, err := s.analyze(ctx, input)
	return result, err
}

func (s *phaseAnalysisService) AnalyzeURL(ctx context.Context, req models.AnalyzeURLRequest, options phase.Options) (*models.AnalysisResult, error) {
	if err := s.repo.ValidateImageURL(req.URL); err != nil {
		return nil, apperrors.NewValidationError("invalid image URL", err)
	}

	img, err := s.repo.FetchImage(ctx, req.URL)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewTimeoutError("image fetch timeout", err)
		}
		return nil, apperrors.NewNetworkError("failed to fetch image", err)
	}

	return s.Analyze(ctx, AnalysisInput{
		SourceName: req.URL,
		Base:       img,
		Strokes:    req.Strokes,
		Options:    options,
	})
}

func (s *phaseAnalysisService) GenerateReport(ctx context.Context, input AnalysisInput, w io.Writer) (*models.AnalysisResult, error) {
	result, overlayMask, err := s.analyze(ctx, input)
	if err != nil {
		return nil, err
	}

	highlight := s.cfg.PaintColor
	highlight.A = 150
	composite, err := phase.RenderOverlay(input.Base, overlayMask, input.Options.Predicate(), highlight)
	if err != nil {
		return nil, apperrors.NewProcessingError("failed to render overlay", err)
	}

	data := report.Data{
		Result:    *result,
		Thumbnail: report.FitThumbnail(input.Base, s.cfg.ThumbnailMaxWidth, s.cfg.ThumbnailMaxHeight),
		Overlay:   report.FitThumbnail(composite, s.cfg.ThumbnailMaxWidth, s.cfg.ThumbnailMaxHeight),
	}
	if err := s.reports.Generate(w, data); err != nil {
		return nil, err
	}

	s.events.NotifyObservers(ctx, observer.AnalysisEvent{
		EventType:  observer.ReportGenerated,
		Timestamp:  time.Now(),
		AnalysisID: result.ID,
		SourceName: result.SourceName,
		Success:    true,
		Metadata: map[string]interface{}{
			"percentage": result.Classification.Percentage,
		},
	})
	return result, nil
}

// analyze runs the classification and returns the result together with the
// mask it classified, so callers can render overlays without re-deriving it.
func (s *phaseAnalysisService) analyze(ctx context.Context, input AnalysisInput) (*models.AnalysisResult, *image.NRGBA, error) {
	start := time.Now()
	id := uuid.NewString()

	s.events.NotifyObservers(ctx, observer.AnalysisEvent{
		EventType:  observer.AnalysisStarted,
		Timestamp:  start,
		AnalysisID: id,
		SourceName: input.SourceName,
		Success:    true,
	})

	result, overlayMask, err := s.classify(input, id, start)
	if err != nil {
		s.events.NotifyObservers(ctx, observer.AnalysisEvent{
			EventType:      observer.AnalysisFailed,
			Timestamp:      time.Now(),
			AnalysisID:     id,
			SourceName:     input.SourceName,
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
		})
		return nil, nil, err
	}

	s.events.NotifyObservers(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisCompleted,
		Timestamp:      time.Now(),
		AnalysisID:     id,
		SourceName:     input.SourceName,
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata: map[string]interface{}{
			"marked_count": result.Classification.MarkedCount,
			"total_count":  result.Classification.TotalCount,
			"percentage":   result.Classification.Percentage,
		},
	})
	return result, overlayMask, nil
}

func (s *phaseAnalysisService) classify(input AnalysisInput, id string, start time.Time) (*models.AnalysisResult, *image.NRGBA, error) {
	if input.Base == nil {
		return nil, nil, apperrors.NewValidationError("no base image supplied", nil)
	}
	bounds := input.Base.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	overlayMask := input.Mask
	if overlayMask == nil {
		buf, err := s.buildMask(width, height, input.Strokes)
		if err != nil {
			return nil, nil, err
		}
		overlayMask = buf
	}

	cls, err := phase.Classify(width, height, overlayMask, input.Options.Predicate())
	if err != nil {
		switch {
		case errors.Is(err, phase.ErrDimensionMismatch):
			return nil, nil, apperrors.NewValidationError("mask does not align with base image", err)
		case errors.Is(err, phase.ErrEmptyImage):
			return nil, nil, apperrors.NewValidationError("base image has no pixels", err)
		default:
			return nil, nil, apperrors.NewProcessingError("classification failed", err)
		}
	}

	return &models.AnalysisResult{
		ID:                id,
		SourceName:        input.SourceName,
		Timestamp:         start,
		ProcessingTimeSec: time.Since(start).Seconds(),
		Width:             width,
		Height:            height,
		Classification:    cls,
		Luminance:         phase.LuminanceStats(input.Base),
	}, overlayMask, nil
}

func (s *phaseAnalysisService) buildMask(width, height int, strokes []models.Stroke) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, apperrors.NewValidationError("base image has no pixels", phase.ErrEmptyImage)
	}
	paint := s.cfg.PaintColor
	// The drawing surface paints at 70% opacity; reproduce that here so the
	// default predicate sees the same alpha the canvas export would carry.
	paint.A = 178
	buf, err := mask.NewBuffer(width, height, paint, s.cfg.MinBrushRadius, s.cfg.MaxBrushRadius)
	if err != nil {
		return nil, apperrors.NewValidationError("cannot create mask", err)
	}
	for _, stroke := range strokes {
		if err := buf.Apply(stroke); err != nil {
			return nil, apperrors.NewValidationError("invalid stroke", err)
		}
	}
	return buf.Image(), nil
}
