package mapprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fieldops/coursenav/pkg/grid"
)

const DefaultEndpoint = "http://localhost:8321/static_map"

// Client fetches the occupancy grid from the map service. One request is made
// per planning call, the planner decides whether to rebuild or refresh its
// collision grid from the result.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) FetchMap(ctx context.Context) (*grid.OccupancyGrid, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build map service request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("map service lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("map service returned status %d", resp.StatusCode)
	}

	var occ grid.OccupancyGrid
	if err := json.NewDecoder(resp.Body).Decode(&occ); err != nil {
		return nil, fmt.Errorf("decode occupancy grid: %w", err)
	}
	if occ.Width*occ.Height != len(occ.Data) {
		return nil, fmt.Errorf("occupancy grid dimensions %dx%d do not match %d cells",
			occ.Width, occ.Height, len(occ.Data))
	}
	return &occ, nil
}
