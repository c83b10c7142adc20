package backendclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Amund211/riftrewind/internal/config"
	"github.com/Amund211/riftrewind/internal/constants"
	"github.com/Amund211/riftrewind/internal/domain"
	"github.com/Amund211/riftrewind/internal/logging"
	"github.com/Amund211/riftrewind/internal/reporting"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type BackendClient interface {
	GetMatchData(ctx context.Context, player domain.PlayerID) (domain.Recap, error)
	GetComparison(ctx context.Context, query domain.ComparisonQuery) (domain.Comparison, error)
	SendChat(ctx context.Context, stats json.RawMessage, conversation []domain.ChatTurn) ([]byte, error)
	GetSummonerIcon(ctx context.Context, player domain.PlayerID) (string, error)
}

type backendMetricsCollection struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
}

func setupBackendMetrics(meter metric.Meter) (backendMetricsCollection, error) {
	requestCount, err := meter.Int64Counter("backendclient/request_count")
	if err != nil {
		return backendMetricsCollection{}, fmt.Errorf("failed to create request count metric: %w", err)
	}

	requestDuration, err := meter.Float64Histogram(
		"backendclient/request_duration",
		metric.WithUnit("s"),
	)
	if err != nil {
		return backendMetricsCollection{}, fmt.Errorf("failed to create request duration metric: %w", err)
	}

	return backendMetricsCollection{
		requestCount:    requestCount,
		requestDuration: requestDuration,
	}, nil
}

type backendClient struct {
	httpClient HttpClient
	baseURL    string

	metrics backendMetricsCollection
	tracer  trace.Tracer
}

func NewBackendClient(httpClient HttpClient, baseURL string) (*backendClient, error) {
	const name = "riftrewind/adapters/backendclient"

	meter := otel.Meter(name)
	tracer := otel.Tracer(name)

	metrics, err := setupBackendMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to set up metrics: %w", err)
	}

	return &backendClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),

		metrics: metrics,
		tracer:  tracer,
	}, nil
}

// NewBackendClientOrMock returns an in-process fake backend when running in development without a backend URL
func NewBackendClientOrMock(config config.Config, httpClient HttpClient) (BackendClient, error) {
	if config.BackendURL() != "" {
		return NewBackendClient(httpClient, config.BackendURL())
	}
	if config.IsDevelopment() {
		return NewMockedBackend(), nil
	}
	return nil, fmt.Errorf("Missing backend URL in non-development environment")
}

// do sends the request and returns the status code and body.
// Transport failures are reported; non-2xx statuses are left to the caller.
// reportTransportError reports err unless the caller gave up on the request
func reportTransportError(ctx context.Context, err error, endpoint string) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		logging.FromContext(ctx).InfoContext(
			ctx, "Backend request abandoned",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
		)
		return
	}
	reporting.Report(ctx, err, map[string]string{"endpoint": endpoint})
}

func (c *backendClient) do(ctx context.Context, endpoint string, req *http.Request) (int, []byte, error) {
	ctx, span := c.tracer.Start(ctx, "Backend.httpdo", trace.WithAttributes(attribute.String("endpoint", endpoint)))
	defer span.End()

	req = req.WithContext(ctx)
	req.Header.Set("User-Agent", constants.USER_AGENT)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		err := fmt.Errorf("failed to send request: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send request")
		reportTransportError(ctx, err, endpoint)
		return -1, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		err := fmt.Errorf("failed to read response body: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read response body")
		reportTransportError(ctx, err, endpoint)
		return -1, nil, err
	}

	duration := time.Since(start)
	attributes := metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("status_code", strconv.Itoa(resp.StatusCode)),
	)
	c.metrics.requestCount.Add(ctx, 1, attributes)
	c.metrics.requestDuration.Record(ctx, duration.Seconds(), attributes)

	span.SetAttributes(attribute.Int("status_code", resp.StatusCode))

	logging.FromContext(ctx).InfoContext(
		ctx,
		"backend request completed",
		slog.String("endpoint", endpoint),
		slog.Int("status", resp.StatusCode),
		slog.String("duration", duration.String()),
	)

	return resp.StatusCode, data, nil
}

func isSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

func (c *backendClient) GetMatchData(ctx context.Context, player domain.PlayerID) (domain.Recap, error) {
	ctx, span := c.tracer.Start(ctx, "Backend.GetMatchData")
	defer span.End()

	params := url.Values{}
	params.Set("name", player.Name)
	params.Set("tag", player.Tag)
	params.Set("region", player.Region)

	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/api/matchData?%s", c.baseURL, params.Encode()), nil)
	if err != nil {
		err := fmt.Errorf("failed to create request: %w", err)
		reporting.Report(ctx, err)
		return domain.Recap{}, err
	}

	statusCode, data, err := c.do(ctx, "matchData", req)
	if err != nil {
		return domain.Recap{}, err
	}

	recap, err := recapFromMatchDataResponse(player, statusCode, data)
	if err != nil {
		span.RecordError(err)
		return domain.Recap{}, err
	}
	return recap, nil
}

func (c *backendClient) GetComparison(ctx context.Context, query domain.ComparisonQuery) (domain.Comparison, error) {
	ctx, span := c.tracer.Start(ctx, "Backend.GetComparison")
	defer span.End()

	params := url.Values{}
	params.Set("name1", query.Player1.Name)
	params.Set("tag1", query.Player1.Tag)
	params.Set("region1", query.Player1.Region)
	params.Set("name2", query.Player2.Name)
	params.Set("tag2", query.Player2.Tag)
	params.Set("region2", query.Player2.Region)
	params.Set("test_mode", strconv.FormatBool(query.TestMode))

	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/api/compareData?%s", c.baseURL, params.Encode()), nil)
	if err != nil {
		err := fmt.Errorf("failed to create request: %w", err)
		reporting.Report(ctx, err)
		return domain.Comparison{}, err
	}

	statusCode, data, err := c.do(ctx, "compareData", req)
	if err != nil {
		return domain.Comparison{}, err
	}

	comparison, err := comparisonFromResponse(query, statusCode, data)
	if err != nil {
		span.RecordError(err)
		return domain.Comparison{}, err
	}
	return comparison, nil
}

type chatContent struct {
	Text string `json:"text"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []chatContent `json:"content"`
}

type chatRequest struct {
	Stats        json.RawMessage `json:"stats"`
	Conversation []chatMessage   `json:"conversation"`
}

func (c *backendClient) SendChat(ctx context.Context, stats json.RawMessage, conversation []domain.ChatTurn) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "Backend.SendChat", trace.WithAttributes(attribute.Int("turns", len(conversation))))
	defer span.End()

	body, err := json.Marshal(newChatRequest(stats, conversation))
	if err != nil {
		err := fmt.Errorf("failed to marshal chat request: %w", err)
		reporting.Report(ctx, err)
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/api/chatbot/sendMessage", c.baseURL), bytes.NewReader(body))
	if err != nil {
		err := fmt.Errorf("failed to create request: %w", err)
		reporting.Report(ctx, err)
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	statusCode, data, err := c.do(ctx, "chatbot/sendMessage", req)
	if err != nil {
		return nil, err
	}

	if !isSuccess(statusCode) {
		return nil, &domain.BackendError{StatusCode: statusCode, Body: string(data)}
	}

	return data, nil
}

func newChatRequest(stats json.RawMessage, conversation []domain.ChatTurn) chatRequest {
	if len(stats) == 0 {
		stats = json.RawMessage("null")
	}

	messages := make([]chatMessage, 0, len(conversation))
	for _, turn := range conversation {
		messages = append(messages, chatMessage{
			Role:    string(turn.Role),
			Content: []chatContent{{Text: turn.Text}},
		})
	}

	return chatRequest{
		// The chat endpoint expects the recap under `message`, as returned by matchData
		Stats:        json.RawMessage(fmt.Sprintf(`{"message":%s}`, stats)),
		Conversation: messages,
	}
}

func (c *backendClient) GetSummonerIcon(ctx context.Context, player domain.PlayerID) (string, error) {
	ctx, span := c.tracer.Start(ctx, "Backend.GetSummonerIcon")
	defer span.End()

	params := url.Values{}
	params.Set("name", player.Name)
	params.Set("tag", player.Tag)
	params.Set("region", player.Region)

	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/api/summonerIcon?%s", c.baseURL, params.Encode()), nil)
	if err != nil {
		err := fmt.Errorf("failed to create request: %w", err)
		reporting.Report(ctx, err)
		return "", err
	}

	statusCode, data, err := c.do(ctx, "summonerIcon", req)
	if err != nil {
		return "", err
	}

	return iconURLFromResponse(statusCode, data)
}
