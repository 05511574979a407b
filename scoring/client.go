// Package scoring submits customer journeys to the external IHC
// attribution-scoring API in bounded-size chunks.
package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"attribution-pipeline/config"
	"attribution-pipeline/models"

	"github.com/apex/log"
)

// Client handles communication with the scoring API
type Client struct {
	endpoint   string
	convTypeID string
	apiKey     string
	chunkSize  int
	httpClient *http.Client
}

// NewClient creates a new scoring client
func NewClient(cfg *config.Config) *Client {
	return &Client{
		endpoint:   cfg.ScoringAPIURL,
		convTypeID: cfg.ConvTypeID,
		apiKey:     cfg.ScoringAPIKey,
		chunkSize:  cfg.ChunkSize,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ChunkOutcome records how one submitted chunk fared. A nil Err means the
// chunk's results made it into the aggregate output.
type ChunkOutcome struct {
	Index int
	Size  int
	Err   error
}

type scoringRequest struct {
	CustomerJourneys        map[string][]models.JourneyEntry `json:"customer_journeys"`
	RedistributionParameter map[string]interface{}           `json:"redistribution_parameter"`
}

type scoringResponse struct {
	Value []models.AttributionResult `json:"value"`
}

// Chunk partitions journeys into ordered chunks of at most size entries.
// The partition is exhaustive and non-overlapping; only the last chunk may
// be smaller.
func Chunk(journeys []models.Journey, size int) [][]models.Journey {
	if size <= 0 {
		size = 1
	}
	var chunks [][]models.Journey
	for start := 0; start < len(journeys); start += size {
		end := start + size
		if end > len(journeys) {
			end = len(journeys)
		}
		chunks = append(chunks, journeys[start:end])
	}
	return chunks
}

// SubmitJourneys sends the journeys to the scoring API one chunk at a
// time and returns the concatenation of all successfully returned
// results, in chunk order, along with a per-chunk outcome record.
//
// A failed chunk (transport error or non-2xx status) is logged, dropped
// and never blocks the remaining chunks. Empty journeys are skipped
// before chunking.
func (c *Client) SubmitJourneys(journeys []models.Journey) ([]models.AttributionResult, []ChunkOutcome) {
	nonEmpty := make([]models.Journey, 0, len(journeys))
	for _, j := range journeys {
		if len(j.Entries) > 0 {
			nonEmpty = append(nonEmpty, j)
		}
	}
	if skipped := len(journeys) - len(nonEmpty); skipped > 0 {
		log.Infof("Skipping %d empty journeys before submission", skipped)
	}

	chunks := Chunk(nonEmpty, c.chunkSize)
	log.Infof("Submitting %d journeys in %d chunks of up to %d", len(nonEmpty), len(chunks), c.chunkSize)

	var results []models.AttributionResult
	outcomes := make([]ChunkOutcome, 0, len(chunks))

	for idx, chunk := range chunks {
		outcome := ChunkOutcome{Index: idx + 1, Size: len(chunk)}
		chunkResults, err := c.submitChunk(chunk)
		if err != nil {
			outcome.Err = err
			log.Errorf("Failed to process chunk %d/%d: %v", idx+1, len(chunks), err)
		} else {
			results = append(results, chunkResults...)
		}
		outcomes = append(outcomes, outcome)
	}

	return results, outcomes
}

// submitChunk sends one chunk of journeys to the scoring API
func (c *Client) submitChunk(chunk []models.Journey) ([]models.AttributionResult, error) {
	body := scoringRequest{
		CustomerJourneys:        make(map[string][]models.JourneyEntry, len(chunk)),
		RedistributionParameter: map[string]interface{}{},
	}
	for _, j := range chunk {
		body.CustomerJourneys[j.ConvID] = j.Entries
	}

	requestBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	requestURL := fmt.Sprintf("%s?conv_type_id=%s", c.endpoint, url.QueryEscape(c.convTypeID))
	req, err := http.NewRequest("POST", requestURL, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("scoring API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var response scoringResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return response.Value, nil
}
