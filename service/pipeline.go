// Package service orchestrates the attribution pipeline stages.
package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"attribution-pipeline/config"
	"attribution-pipeline/database"
	"attribution-pipeline/journey"
	"attribution-pipeline/report"
	"attribution-pipeline/scoring"

	"github.com/apex/log"
)

// ErrRunInProgress is returned when a run is requested while another run
// is still executing.
var ErrRunInProgress = errors.New("a pipeline run is already in progress")

// Pipeline runs the attribution stages in order:
// load → build journeys → submit → persist → aggregate.
type Pipeline struct {
	config        *config.Config
	db            *database.Database
	scoringClient *scoring.Client

	runMu    sync.Mutex
	stateMu  sync.Mutex
	stopChan chan struct{}
	running  bool

	lastRunAt    time.Time
	lastErr      error
	lastOutcomes []scoring.ChunkOutcome
}

// NewPipeline creates a new pipeline service
func NewPipeline(cfg *config.Config, db *database.Database) *Pipeline {
	return &Pipeline{
		config:        cfg,
		db:            db,
		scoringClient: scoring.NewClient(cfg),
		stopChan:      make(chan struct{}),
	}
}

// RunOnce executes one full pipeline run. Storage failures abort the run;
// chunk-level scoring failures are tolerated and reported via the chunk
// outcomes. Only one run may be in flight at a time.
func (p *Pipeline) RunOnce() error {
	if !p.runMu.TryLock() {
		return ErrRunInProgress
	}
	defer p.runMu.Unlock()

	err := p.run()

	p.stateMu.Lock()
	p.lastRunAt = time.Now()
	p.lastErr = err
	p.stateMu.Unlock()

	return err
}

func (p *Pipeline) run() error {
	started := time.Now()
	log.Info("Starting attribution pipeline run")

	watermark, err := p.db.Watermark()
	if err != nil {
		return fmt.Errorf("loading watermark: %w", err)
	}
	cutoffDate := watermark
	if len(cutoffDate) > 10 {
		cutoffDate = cutoffDate[:10]
	}
	log.Infof("Watermark %q, loading sessions after %s", watermark, cutoffDate)

	sessions, err := p.db.SessionsAfter(cutoffDate)
	if err != nil {
		return fmt.Errorf("loading sessions: %w", err)
	}
	conversions, err := p.db.Conversions()
	if err != nil {
		return fmt.Errorf("loading conversions: %w", err)
	}

	journeys := journey.Build(sessions, conversions)
	log.Infof("Built %d journeys from %d sessions and %d conversions",
		len(journeys), len(sessions), len(conversions))

	results, outcomes := p.scoringClient.SubmitJourneys(journeys)
	p.stateMu.Lock()
	p.lastOutcomes = outcomes
	p.stateMu.Unlock()

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		log.Warnf("%d of %d chunks failed, their results are missing from this run", failed, len(outcomes))
	}

	if _, err := p.db.StoreResults(results); err != nil {
		return fmt.Errorf("storing attribution results: %w", err)
	}

	if err := p.buildChannelReport(); err != nil {
		return err
	}

	log.Infof("Attribution pipeline run finished in %v", time.Since(started))
	return nil
}

// buildChannelReport recomputes the channel report from full history and
// replaces the table and the CSV file wholesale.
func (p *Pipeline) buildChannelReport() error {
	sessions, err := p.db.Sessions()
	if err != nil {
		return fmt.Errorf("loading sessions for reporting: %w", err)
	}
	costs, err := p.db.SessionCosts()
	if err != nil {
		return fmt.Errorf("loading session costs: %w", err)
	}
	conversions, err := p.db.Conversions()
	if err != nil {
		return fmt.Errorf("loading conversions for reporting: %w", err)
	}
	history, err := p.db.AttributionResults()
	if err != nil {
		return fmt.Errorf("loading attribution history: %w", err)
	}

	rows := report.Aggregate(sessions, costs, conversions, history, p.config.NonPaidChannels)

	if err := p.db.ReplaceChannelReport(rows); err != nil {
		return fmt.Errorf("replacing channel report: %w", err)
	}
	if err := report.WriteCSV(p.config.ReportFilePath, rows); err != nil {
		return fmt.Errorf("writing channel report file: %w", err)
	}
	return nil
}

// Start starts the periodic pipeline loop, if a poll interval is
// configured. With no interval the pipeline only runs via HTTP trigger.
func (p *Pipeline) Start() {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	if p.running {
		log.Info("Pipeline service is already running")
		return
	}
	p.running = true

	if p.config.RunOnStart {
		go func() {
			if err := p.RunOnce(); err != nil && err != ErrRunInProgress {
				log.Errorf("Initial pipeline run failed: %v", err)
			}
		}()
	}

	if p.config.PollInterval <= 0 {
		log.Info("No poll interval configured, pipeline runs on HTTP trigger only")
		return
	}

	log.Infof("Starting pipeline loop with poll interval %v", p.config.PollInterval)
	go p.loop()
}

// Stop stops the periodic pipeline loop
func (p *Pipeline) Stop() {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	if !p.running {
		return
	}
	log.Info("Stopping pipeline service...")
	p.running = false
	close(p.stopChan)
}

func (p *Pipeline) loop() {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			log.Info("Pipeline service stopped")
			return
		case <-ticker.C:
			if err := p.RunOnce(); err != nil && err != ErrRunInProgress {
				log.Errorf("Scheduled pipeline run failed: %v", err)
			}
		}
	}
}

// GetStats returns current pipeline statistics for the status endpoint
func (p *Pipeline) GetStats() map[string]interface{} {
	watermark, err := p.db.Watermark()
	if err != nil {
		log.Errorf("Failed to read watermark for stats: %v", err)
		watermark = ""
	}

	p.stateMu.Lock()
	defer p.stateMu.Unlock()

	failedChunks := 0
	for _, o := range p.lastOutcomes {
		if o.Err != nil {
			failedChunks++
		}
	}

	lastError := ""
	if p.lastErr != nil {
		lastError = p.lastErr.Error()
	}
	lastRunAt := ""
	if !p.lastRunAt.IsZero() {
		lastRunAt = p.lastRunAt.Format(time.RFC3339)
	}

	return map[string]interface{}{
		"running":           p.running,
		"poll_interval":     p.config.PollInterval.String(),
		"chunk_size":        p.config.ChunkSize,
		"watermark":         watermark,
		"last_run_at":       lastRunAt,
		"last_error":        lastError,
		"last_chunk_count":  len(p.lastOutcomes),
		"last_chunk_failed": failedChunks,
	}
}
