package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"ai-nutricare/internal/config"
	"ai-nutricare/internal/intake"
	"ai-nutricare/internal/nutrition"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	documentPath = "/plan-diet"
	manualPath   = "/plan-diet-manual"

	// ReportField is the multipart part name the service reads the PDF from.
	ReportField = "report"

	requestIDHeader = "X-Request-ID"
)

// Analyzer submits patient data to the analysis service.
type Analyzer interface {
	AnalyzeDocument(ctx context.Context, doc intake.Document, prefs nutrition.DietaryPreferences) (*nutrition.PlanDietResponse, error)
	AnalyzeManual(ctx context.Context, entry nutrition.ManualEntry) (*nutrition.PlanDietResponse, error)
}

// client is the HTTP implementation of Analyzer.
type client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates an analysis client for the configured service. Requests
// are bounded only by the caller's context.
func NewClient(cfg *config.Config, logger *zap.Logger) Analyzer {
	return &client{
		baseURL:    strings.TrimRight(cfg.APIBaseURL, "/"),
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// AnalyzeDocument uploads a lab report as multipart form data with the
// preferences in the query string.
func (c *client) AnalyzeDocument(ctx context.Context, doc intake.Document, prefs nutrition.DietaryPreferences) (*nutrition.PlanDietResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, ReportField, doc.Filename))
	h.Set("Content-Type", intake.PDFContentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create report part: %w", err)
	}
	if _, err := part.Write(doc.Data); err != nil {
		return nil, fmt.Errorf("failed to write report part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	endpoint := c.baseURL + documentPath + "?" + QueryString(prefs)
	return c.post(ctx, endpoint, mw.FormDataContentType(), &body)
}

// AnalyzeManual posts the biomarker values as JSON.
func (c *client) AnalyzeManual(ctx context.Context, entry nutrition.ManualEntry) (*nutrition.PlanDietResponse, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.post(ctx, c.baseURL+manualPath, "application/json", bytes.NewReader(payload))
}

// QueryString encodes preferences for the document endpoint. The region is
// left out when unset.
func QueryString(prefs nutrition.DietaryPreferences) string {
	q := url.Values{}
	dietType := prefs.DietType
	if dietType == "" {
		dietType = nutrition.DietBoth
	}
	q.Set("diet_type", string(dietType))
	if prefs.Region != nutrition.RegionAll {
		q.Set("region", string(prefs.Region))
	}
	return q.Encode()
}

func (c *client) post(ctx context.Context, endpoint, contentType string, body io.Reader) (*nutrition.PlanDietResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)

	log := c.logger.With(zap.String("request_id", requestID), zap.String("endpoint", endpoint))
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("analysis request failed", zap.Error(err))
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	log.Info("analysis response",
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, &ServiceError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	var out nutrition.PlanDietResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode analysis response: %w", err)
	}
	return &out, nil
}
