package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"o365sync/internal/metrics"
	"o365sync/internal/structs"
)

var ErrBadStatus = errors.New("unexpected status from endpoint web service")

// Client talks to the provider's endpoint web service.
type Client struct {
	BaseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// LatestVersion returns the latest version published for endpointSet. An
// empty string without error means the document had no matching instance.
func (c *Client) LatestVersion(ctx context.Context, endpointSet, clientID string) (string, error) {
	timer := prometheus.NewTimer(metrics.FeedRequestDuration.WithLabelValues(versionPath))
	defer timer.ObserveDuration()

	resp, err := c.get(ctx, c.buildURL(clientID, versionPath))
	if err != nil {
		return "", errors.Wrap(err, "There was an error requesting the VERSION document")
	}
	defer drain(resp.Body)

	var records []structs.VersionRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return "", errors.Wrap(err, "There was an error decoding the VERSION document")
	}

	for _, record := range records {
		if record.Instance == endpointSet && record.Latest != "" {
			return strings.TrimSpace(record.Latest), nil
		}
	}

	logrus.Debug("VERSION document has no record for instance ", endpointSet)
	return "", nil
}

// Endpoints returns the full endpoint catalog of endpointSet.
func (c *Client) Endpoints(ctx context.Context, endpointSet, clientID string) ([]structs.EndpointRecord, error) {
	timer := prometheus.NewTimer(metrics.FeedRequestDuration.WithLabelValues(endpointsPath))
	defer timer.ObserveDuration()

	resp, err := c.get(ctx, c.buildURL(clientID, endpointsPath, endpointSet))
	if err != nil {
		return nil, errors.Wrap(err, "There was an error requesting the ENDPOINTS document")
	}
	defer drain(resp.Body)

	var records []structs.EndpointRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, errors.Wrap(err, "There was an error decoding the ENDPOINTS document")
	}

	return records, nil
}

func (c *Client) buildURL(clientID string, segments ...string) string {
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	query := url.Values{}
	query.Set(clientIDParam, clientID)
	return fmt.Sprintf("%s/%s?%s", c.BaseURL, strings.Join(escaped, "/"), query.Encode())
}

// get returns the response only for a 200 status. Any other status closes the body
// and yields ErrBadStatus.
func (c *Client) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	// Handle response code.
	if resp.StatusCode != http.StatusOK {
		drain(resp.Body)
		return nil, errors.Wrapf(ErrBadStatus, "Status Code: %d", resp.StatusCode)
	}

	return resp, nil
}

func drain(body io.ReadCloser) {
	_, _ = io.Copy(ioutil.Discard, body)
	_ = body.Close()
}
