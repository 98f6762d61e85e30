package airkorea

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/wibaek/soma-hands-on-2/internal/domain"
	"github.com/wibaek/soma-hands-on-2/internal/observability"
)

// DefaultBaseURL is the public data portal root of the AirKorea services.
const DefaultBaseURL = "https://apis.data.go.kr/B552584"

const (
	realtimeByRegionPath  = "/ArpltnInforInqireSvc/getCtprvnRltmMesureDnsty"
	realtimeByStationPath = "/ArpltnInforInqireSvc/getMsrstnAcctoRltmMesureDnsty"
	stationListPath       = "/MsrstnInfoInqireSvc/getMsrstnList"

	resultCodeOK = "00"
)

// ErrStationNotFound is returned by FetchStation when the station reported nothing.
var ErrStationNotFound = errors.New("station not found")

// Station is a measuring station from the station list service.
type Station struct {
	Name string          `json:"stationName"`
	Addr domain.RawValue `json:"addr"`
	DmX  domain.RawValue `json:"dmX"`
	DmY  domain.RawValue `json:"dmY"`
}

// Client talks to the AirKorea open API.
type Client struct {
	serviceKey string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an AirKorea client. An empty baseURL selects DefaultBaseURL.
func NewClient(serviceKey, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		serviceKey: serviceKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// FetchRegion returns the real-time readings of every station in a sido.
func (c *Client) FetchRegion(ctx context.Context, region string) ([]domain.RawStationRecord, error) {
	params := url.Values{
		"numOfRows": {"100"},
		"pageNo":    {"1"},
		"sidoName":  {region},
		"ver":       {"1.0"},
	}

	var records []domain.RawStationRecord
	if err := c.get(ctx, realtimeByRegionPath, params, "realtime", &records); err != nil {
		return nil, fmt.Errorf("region %s: %w", region, err)
	}
	for i := range records {
		records[i].Region = region
	}
	return records, nil
}

// FetchStation returns the latest reading of a single station.
func (c *Client) FetchStation(ctx context.Context, stationName string) (domain.RawStationRecord, error) {
	params := url.Values{
		"numOfRows":   {"1"},
		"pageNo":      {"1"},
		"stationName": {stationName},
		"dataTerm":    {"DAILY"},
		"ver":         {"1.0"},
	}

	var records []domain.RawStationRecord
	if err := c.get(ctx, realtimeByStationPath, params, "station", &records); err != nil {
		return domain.RawStationRecord{}, fmt.Errorf("station %s: %w", stationName, err)
	}
	if len(records) == 0 {
		return domain.RawStationRecord{}, fmt.Errorf("station %s: %w", stationName, ErrStationNotFound)
	}
	rec := records[0]
	// The per-station endpoint omits the name.
	if !rec.StationName.Valid {
		rec.StationName = domain.Raw(stationName)
	}
	return rec, nil
}

// FetchStations returns the measuring stations whose address contains addr.
func (c *Client) FetchStations(ctx context.Context, addr string) ([]Station, error) {
	params := url.Values{
		"numOfRows": {"1000"},
		"pageNo":    {"1"},
		"addr":      {addr},
	}

	var stations []Station
	if err := c.get(ctx, stationListPath, params, "stations", &stations); err != nil {
		return nil, fmt.Errorf("station list %s: %w", addr, err)
	}
	return stations, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, endpoint string, items any) error {
	params.Set("serviceKey", c.serviceKey)
	params.Set("returnType", "json")
	fullURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.AirKoreaAPIDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.AirKoreaRequests.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.AirKoreaRequests.WithLabelValues(endpoint, "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("airkorea API error: status %d: %s", resp.StatusCode, body)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		c.metrics.AirKoreaRequests.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("decode response: %w", err)
	}

	h := env.Response.Header
	if h.ResultCode != resultCodeOK {
		c.metrics.AirKoreaRequests.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("airkorea API error: code %s: %s", h.ResultCode, h.ResultMsg)
	}

	c.metrics.AirKoreaRequests.WithLabelValues(endpoint, "success").Inc()
	if len(env.Response.Body.Items) == 0 || string(env.Response.Body.Items) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Response.Body.Items, items); err != nil {
		return fmt.Errorf("decode items: %w", err)
	}

	c.logger.Debug("airkorea response",
		"endpoint", endpoint,
		"total_count", env.Response.Body.TotalCount,
	)
	return nil
}

// AirKorea API response types.

type envelope struct {
	Response struct {
		Header header `json:"header"`
		Body   body   `json:"body"`
	} `json:"response"`
}

type header struct {
	ResultCode string `json:"resultCode"`
	ResultMsg  string `json:"resultMsg"`
}

type body struct {
	TotalCount int             `json:"totalCount"`
	Items      json.RawMessage `json:"items"`
}
