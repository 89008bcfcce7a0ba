// WHOOP developer API implementation of [MetricsService]
//
// Response types based on https://developer.whoop.com/api/#tag/Recovery
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/desertthunder/healthart/internal/models"
	"github.com/desertthunder/healthart/internal/shared"
	"golang.org/x/oauth2"
)

const (
	whoopBaseURL      = "https://api.prod.whoop.com/developer"
	whoopRecoveryPath = "/v1/recovery"
	maxResponseBytes  = 1 << 20
)

// WhoopRecoveryPage is one page of the recovery collection.
type WhoopRecoveryPage struct {
	Records   []WhoopRecovery `json:"records"`
	NextToken string          `json:"next_token"`
}

// WhoopRecovery is a single recovery record.
type WhoopRecovery struct {
	CycleID    int64         `json:"cycle_id"`
	SleepID    string        `json:"sleep_id"`
	ScoreState string        `json:"score_state"` // SCORED, PENDING_SCORE, UNSCORABLE
	Score      *WhoopScore   `json:"score"`
	Metrics    *WhoopMetrics `json:"metrics"`
	CreatedAt  time.Time     `json:"created_at"`
}

// WhoopScore holds the scored fields of a recovery record.
type WhoopScore struct {
	RecoveryScore    *float64 `json:"recovery_score"`
	RestingHeartRate float64  `json:"resting_heart_rate"`
	HRVRmssdMilli    float64  `json:"hrv_rmssd_milli"`
}

// WhoopMetrics are the optional extra metrics used by the prompt builder.
type WhoopMetrics struct {
	SleepQuality *float64 `json:"sleep_quality"`
	Strain       *float64 `json:"strain"`
	HRV          *float64 `json:"hrv"`
}

// WhoopService implements [MetricsService] for the WHOOP developer API.
type WhoopService struct {
	baseURL    string
	httpClient *http.Client
}

// NewWhoopService creates a WHOOP client. Empty baseURL and nil client fall back to defaults.
func NewWhoopService(baseURL string, client *http.Client) *WhoopService {
	if baseURL == "" {
		baseURL = whoopBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &WhoopService{baseURL: baseURL, httpClient: client}
}

func (s *WhoopService) Name() string {
	return "WHOOP"
}

// FetchSnapshot reads the most recent recovery record.
func (s *WhoopService) FetchSnapshot(ctx context.Context, token *oauth2.Token) (*models.MetricSnapshot, error) {
	if token == nil || token.AccessToken == "" {
		return nil, fmt.Errorf("%w: missing access token", shared.ErrUnauthorized)
	}

	var page WhoopRecoveryPage
	if err := s.doRequest(ctx, token, whoopRecoveryPath+"?limit=1", &page); err != nil {
		return nil, err
	}

	if len(page.Records) == 0 {
		return nil, shared.ErrNoData
	}

	return page.Records[0].Snapshot()
}

// Snapshot converts the record into a [models.MetricSnapshot].
func (r WhoopRecovery) Snapshot() (*models.MetricSnapshot, error) {
	if r.Score == nil || r.Score.RecoveryScore == nil {
		state := r.ScoreState
		if state == "" {
			state = "missing score"
		}
		return nil, fmt.Errorf("%w: latest record is %s", shared.ErrNoData, state)
	}

	snap := &models.MetricSnapshot{RecoveryScore: *r.Score.RecoveryScore}
	if r.Metrics != nil {
		snap.SleepQuality = r.Metrics.SleepQuality
		snap.Strain = r.Metrics.Strain
		snap.HRV = r.Metrics.HRV
	}

	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}
	return snap, nil
}

// doRequest performs an authenticated GET against the WHOOP API and decodes the JSON body into result.
func (s *WhoopService) doRequest(ctx context.Context, token *oauth2.Token, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", shared.ErrTransport, err)
	}

	token.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", shared.ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: whoop API status %d", shared.ErrTransport, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(result); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", shared.ErrTransport, err)
	}
	return nil
}
