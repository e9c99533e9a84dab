package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/CliffortMC08/pearlite-analyser/internal/config"
	apperrors "github.com/CliffortMC08/pearlite-analyser/internal/errors"
	"github.com/CliffortMC08/pearlite-analyser/internal/logger"
	"github.com/CliffortMC08/pearlite-analyser/internal/phase"
	"github.com/CliffortMC08/pearlite-analyser/internal/service"
	"github.com/CliffortMC08/pearlite-analyser/internal/storage"
	"github.com/CliffortMC08/pearlite-analyser/pkg/models"
	"github.com/CliffortMC08/pearlite-analyser/pkg/validation"
)

// NewHandler builds the gin router for the analyser service.
func NewHandler(svc service.PhaseAnalysisService, cfg *config.Config) http.Handler {
	r := gin.Default()

	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	uploads := validation.NewUploadValidator(cfg.MaxRequestBodySize)

	r.GET("/health", healthCheck)
	r.POST("/analyze", analyzeUpload(svc, uploads, cfg))
	r.POST("/analyze/url", analyzeURL(svc, cfg))
	r.POST("/report", generateReport(svc, uploads, cfg))

	return r
}

// analyzeUpload handles multipart analyses: an "image" file plus either a
// "mask" file (PNG with alpha) or a "strokes" JSON field.
func analyzeUpload(svc service.PhaseAnalysisService, uploads *validation.UploadValidator, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.AnalysisTimeout)
		defer cancel()

		logRequest(c, "Processing phase analysis request")

		input, err := parseAnalysisInput(c, svc, uploads)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "invalid analysis request", err)
			return
		}

		result, err := svc.Analyze(ctx, *input)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "analysis failed", err)
			return
		}

		logCompleted(c, result, startTime)
		c.JSON(http.StatusOK, result)
	}
}

// analyzeURL handles JSON analyses of a micrograph fetched by URL, with the
// mask built from the request's strokes.
func analyzeURL(svc service.PhaseAnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logRequest(c, "Processing phase analysis by URL")

		var req models.AnalyzeURLRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"ip": c.ClientIP(),
			}).Error("Invalid request format")
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		result, err := svc.AnalyzeURL(ctx, req, svc.DefaultOptions())
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				err = apperrors.NewTimeoutError("analysis timeout", err)
			}
			respondError(c, apperrors.GetStatusCode(err), "analysis failed", err)
			return
		}

		logCompleted(c, result, startTime)
		c.JSON(http.StatusOK, result)
	}
}

// generateReport runs an analysis and streams the PDF report.
func generateReport(svc service.PhaseAnalysisService, uploads *validation.UploadValidator, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logRequest(c, "Processing report request")

		input, err := parseAnalysisInput(c, svc, uploads)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "invalid report request", err)
			return
		}

		var pdf bytes.Buffer
		result, err := svc.GenerateReport(ctx, *input, &pdf)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "report generation failed", err)
			return
		}

		logCompleted(c, result, startTime)
		c.Header("Content-Disposition", `attachment; filename="pearlite-analysis.pdf"`)
		c.Data(http.StatusOK, "application/pdf", pdf.Bytes())
	}
}

// parseAnalysisInput extracts base image, mask and options from a multipart
// request.
func parseAnalysisInput(c *gin.Context, svc service.PhaseAnalysisService, uploads *validation.UploadValidator) (*service.AnalysisInput, error) {
	imageHeader, err := c.FormFile("image")
	if err != nil {
		return nil, apperrors.NewValidationError("missing image file", err)
	}
	if err := uploads.ValidateUpload(imageHeader.Filename, imageHeader.Size); err != nil {
		return nil, err
	}

	imageFile, err := imageHeader.Open()
	if err != nil {
		return nil, apperrors.NewValidationError("cannot read image file", err)
	}
	defer imageFile.Close()

	base, _, err := storage.DecodeImage(imageFile)
	if err != nil {
		return nil, err
	}

	input := &service.AnalysisInput{
		SourceName: imageHeader.Filename,
		Base:       base,
		Options:    parseOptions(c, svc.DefaultOptions()),
	}

	if maskHeader, err := c.FormFile("mask"); err == nil {
		if err := uploads.ValidateUpload(maskHeader.Filename, maskHeader.Size); err != nil {
			return nil, err
		}
		maskFile, err := maskHeader.Open()
		if err != nil {
			return nil, apperrors.NewValidationError("cannot read mask file", err)
		}
		defer maskFile.Close()

		overlayMask, err := storage.DecodeMask(maskFile)
		if err != nil {
			return nil, err
		}
		input.Mask = overlayMask
	} else if strokesJSON := c.PostForm("strokes"); strokesJSON != "" {
		var strokes []models.Stroke
		if err := json.Unmarshal([]byte(strokesJSON), &strokes); err != nil {
			return nil, apperrors.NewValidationError("malformed strokes JSON", err)
		}
		input.Strokes = strokes
	}

	return input, nil
}

// parseOptions overrides classification defaults from optional form fields.
func parseOptions(c *gin.Context, defaults phase.Options) phase.Options {
	opts := defaults
	if v := c.PostForm("alpha_threshold"); v != "" {
		if threshold, err := strconv.ParseUint(v, 10, 8); err == nil {
			opts = opts.WithAlphaThreshold(uint8(threshold))
		}
	}
	if v := c.PostForm("color_tolerance"); v != "" {
		if tolerance, err := strconv.ParseFloat(v, 64); err == nil && tolerance >= 0 {
			opts = opts.WithColorTolerance(tolerance)
		}
	}
	return opts
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func logRequest(c *gin.Context, msg string) {
	logger.WithFields(logrus.Fields{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"user_agent": c.Request.UserAgent(),
		"ip":         c.ClientIP(),
	}).Info(msg)
}

func logCompleted(c *gin.Context, result *models.AnalysisResult, startTime time.Time) {
	logger.WithFields(logrus.Fields{
		"path":               c.Request.URL.Path,
		"analysis_id":        result.ID,
		"marked_count":       result.Classification.MarkedCount,
		"total_count":        result.Classification.TotalCount,
		"percentage":         result.Classification.Percentage,
		"processing_time_ms": time.Since(startTime).Milliseconds(),
	}).Info("Request completed successfully")
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
