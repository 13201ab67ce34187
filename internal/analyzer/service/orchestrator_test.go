package service

import (
	"context"
	"testing"
	"time"

	"golang-stock-analyzer/internal/analyzer/cache"
	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/internal/analyzer/hub"
	"golang-stock-analyzer/internal/analyzer/pool"
	"golang-stock-analyzer/internal/analyzer/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orchestratorFixture struct {
	orchestrator *Orchestrator
	registry     *registry.TaskRegistry
	hub          *hub.EventHub
	pool         *pool.WorkerPool
}

func newOrchestratorFixture(t *testing.T, md *fakeMarketData) *orchestratorFixture {
	t.Helper()
	cfg := testConfig()
	log := testLogger(t)

	taskRegistry := registry.New()
	workerPool := pool.New(cfg.Analyzer.MaxConcurrentJobs, log)
	eventHub := hub.New(cfg.Analyzer.QueueSize, log)
	resultCache := cache.New(cfg.Analyzer.PriceCacheTTL, cfg.Analyzer.FundamentalCacheTTL, cfg.Analyzer.NewsCacheTTL)

	analyzer := NewStreamingAnalyzer(cfg, log, resultCache, eventHub,
		md, &fakeNews{}, &fakeAI{narrative: "Narrative."})
	orchestrator := NewOrchestrator(context.Background(), cfg, log,
		taskRegistry, workerPool, eventHub, analyzer, nil, nil, nil)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = workerPool.Shutdown(ctx)
	})
	return &orchestratorFixture{
		orchestrator: orchestrator,
		registry:     taskRegistry,
		hub:          eventHub,
		pool:         workerPool,
	}
}

// waitForEvent reads from the subscriber until the wanted event type
// arrives, skipping synthesized heartbeats.
func waitForEvent(t *testing.T, sub *hub.Subscriber, want dto.EventType, timeout time.Duration) dto.Event {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		ev, ok := sub.Receive(20 * time.Millisecond)
		require.True(t, ok, "subscriber disconnected while waiting for %s", want)
		if ev.Type == want {
			return ev
		}
	}
	t.Fatalf("timed out waiting for %s event", want)
	return dto.Event{}
}

func TestOrchestratorAnalyzeInvalidSubject(t *testing.T) {
	fix := newOrchestratorFixture(t, &fakeMarketData{series: healthySeries(), fundamentals: richFundamentals()})

	_, err := fix.orchestrator.Analyze(dto.AnalyzeRequest{StockCode: "not a code!"})
	assert.ErrorIs(t, err, dto.ErrInvalidSubject)
	assert.Zero(t, fix.registry.Count())
}

func TestOrchestratorAnalyzeRejectsBusySubject(t *testing.T) {
	fix := newOrchestratorFixture(t, &fakeMarketData{series: healthySeries(), fundamentals: richFundamentals()})

	subject, err := dto.ParseSubject("AAPL")
	require.NoError(t, err)
	require.True(t, fix.registry.TryAcquire(subject, "someone-else"))

	_, err = fix.orchestrator.Analyze(dto.AnalyzeRequest{StockCode: "AAPL"})
	assert.ErrorIs(t, err, registry.ErrBusy)
}

func TestOrchestratorAnalyzeRunsToCompletion(t *testing.T) {
	fix := newOrchestratorFixture(t, &fakeMarketData{series: healthySeries(), fundamentals: richFundamentals()})
	sub := fix.hub.Connect()

	subject, err := fix.orchestrator.Analyze(dto.AnalyzeRequest{
		StockCode:    "AAPL",
		SubscriberID: sub.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "us_stock:AAPL", subject.String())

	waitForEvent(t, sub, dto.EventFinalResult, 3*time.Second)
	waitForEvent(t, sub, dto.EventComplete, 3*time.Second)

	// The slot is released once the job finishes.
	assert.Eventually(t, func() bool {
		return fix.registry.Count() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestOrchestratorBatchRejectsEmptyAndOversized(t *testing.T) {
	fix := newOrchestratorFixture(t, &fakeMarketData{series: healthySeries(), fundamentals: richFundamentals()})

	err := fix.orchestrator.AnalyzeBatch(dto.BatchAnalyzeRequest{})
	assert.ErrorIs(t, err, dto.ErrInvalidSubject)

	codes := make([]string, fix.orchestrator.cfg.Analyzer.MaxBatchSize+1)
	for i := range codes {
		codes[i] = "AAPL"
	}
	err = fix.orchestrator.AnalyzeBatch(dto.BatchAnalyzeRequest{StockCodes: codes})
	assert.ErrorIs(t, err, ErrBatchTooLarge)
}

func TestOrchestratorBatchPartialSuccess(t *testing.T) {
	fix := newOrchestratorFixture(t, &fakeMarketData{series: healthySeries(), fundamentals: richFundamentals()})
	sub := fix.hub.Connect()

	// MSFT is already held by another owner and must land on the
	// failed roster instead of blocking the batch.
	busy, err := dto.ParseSubject("MSFT")
	require.NoError(t, err)
	require.True(t, fix.registry.TryAcquire(busy, "someone-else"))

	err = fix.orchestrator.AnalyzeBatch(dto.BatchAnalyzeRequest{
		StockCodes:   []string{"AAPL", "600519", "TSLA", "bad code!", "MSFT"},
		SubscriberID: sub.ID,
	})
	require.NoError(t, err)

	ev := waitForEvent(t, sub, dto.EventBatchResult, 5*time.Second)
	result, ok := ev.Payload.(dto.BatchResult)
	require.True(t, ok)

	assert.Equal(t, 5, result.TotalRequested)
	assert.Len(t, result.Reports, 3)
	require.Len(t, result.FailedSubjects, 2)

	failedCodes := map[string]string{}
	for _, failed := range result.FailedSubjects {
		failedCodes[failed.StockCode] = failed.Reason
	}
	assert.Contains(t, failedCodes, "bad code!")
	assert.Contains(t, failedCodes, "MSFT")
	assert.Equal(t, registry.ErrBusy.Error(), failedCodes["MSFT"])

	waitForEvent(t, sub, dto.EventComplete, time.Second)
}

func TestOrchestratorBatchToleratesMarketDataFailures(t *testing.T) {
	fix := newOrchestratorFixture(t, &fakeMarketData{
		series:       healthySeries(),
		fundamentals: richFundamentals(),
		failFor:      map[string]bool{"TSLA": true, "NVDA": true},
	})
	sub := fix.hub.Connect()

	err := fix.orchestrator.AnalyzeBatch(dto.BatchAnalyzeRequest{
		StockCodes:   []string{"AAPL", "MSFT", "TSLA", "GOOG", "NVDA"},
		SubscriberID: sub.ID,
	})
	require.NoError(t, err)

	ev := waitForEvent(t, sub, dto.EventBatchResult, 5*time.Second)
	result, ok := ev.Payload.(dto.BatchResult)
	require.True(t, ok)

	assert.Len(t, result.Reports, 3)
	require.Len(t, result.FailedSubjects, 2)
	failed := map[string]bool{}
	for _, f := range result.FailedSubjects {
		failed[f.StockCode] = true
	}
	assert.True(t, failed["TSLA"])
	assert.True(t, failed["NVDA"])

	waitForEvent(t, sub, dto.EventComplete, time.Second)
}

func TestOrchestratorBatchDeduplicatesSubjects(t *testing.T) {
	fix := newOrchestratorFixture(t, &fakeMarketData{series: healthySeries(), fundamentals: richFundamentals()})
	sub := fix.hub.Connect()

	err := fix.orchestrator.AnalyzeBatch(dto.BatchAnalyzeRequest{
		StockCodes:   []string{"AAPL", "aapl", " AAPL "},
		SubscriberID: sub.ID,
	})
	require.NoError(t, err)

	ev := waitForEvent(t, sub, dto.EventBatchResult, 5*time.Second)
	result, ok := ev.Payload.(dto.BatchResult)
	require.True(t, ok)

	assert.Len(t, result.Reports, 1, "duplicate codes collapse to one job")
	assert.Empty(t, result.FailedSubjects)
}

func TestOrchestratorSystemInfo(t *testing.T) {
	fix := newOrchestratorFixture(t, &fakeMarketData{series: healthySeries(), fundamentals: richFundamentals()})
	fix.hub.Connect()

	info := fix.orchestrator.SystemInfo()
	assert.Zero(t, info.ActiveTasks)
	assert.Equal(t, 1, info.Subscribers)
	assert.Equal(t, fix.orchestrator.cfg.Analyzer.MaxConcurrentJobs, info.MaxWorkers)
	assert.Equal(t, "gemini", info.AIProvider)
	assert.True(t, info.StreamingEvents)
}

func TestOrchestratorTaskLookup(t *testing.T) {
	fix := newOrchestratorFixture(t, &fakeMarketData{series: healthySeries(), fundamentals: richFundamentals()})

	_, ok, err := fix.orchestrator.Task("AAPL")
	require.NoError(t, err)
	assert.False(t, ok)

	subject, err := dto.ParseSubject("AAPL")
	require.NoError(t, err)
	require.True(t, fix.registry.TryAcquire(subject, "owner-1"))

	task, ok, err := fix.orchestrator.Task("aapl")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "us_stock:AAPL", task.Subject)
	assert.Equal(t, "owner-1", task.OwnerID)
	assert.Equal(t, "running", task.Status)

	_, _, err = fix.orchestrator.Task("!!")
	assert.ErrorIs(t, err, dto.ErrInvalidSubject)
}

func TestOrchestratorLatestReportWithoutStorage(t *testing.T) {
	fix := newOrchestratorFixture(t, &fakeMarketData{series: healthySeries(), fundamentals: richFundamentals()})

	_, err := fix.orchestrator.LatestReport(context.Background(), "AAPL")
	assert.Error(t, err)

	_, err = fix.orchestrator.LatestReport(context.Background(), "!!")
	assert.ErrorIs(t, err, dto.ErrInvalidSubject)
}
