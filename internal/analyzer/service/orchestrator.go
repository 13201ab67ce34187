package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang-stock-analyzer/internal/analyzer/config"
	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/internal/analyzer/hub"
	"golang-stock-analyzer/internal/analyzer/pool"
	"golang-stock-analyzer/internal/analyzer/registry"
	"golang-stock-analyzer/internal/analyzer/repository"
	"golang-stock-analyzer/internal/entity"
	"golang-stock-analyzer/pkg/logger"
	redisPkg "golang-stock-analyzer/pkg/redis"
	"golang-stock-analyzer/pkg/telegram"
	"golang-stock-analyzer/pkg/utils"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
)

// ErrBatchTooLarge is returned when a batch request exceeds the
// configured ceiling.
var ErrBatchTooLarge = errors.New("batch size exceeds the configured maximum")

const resultStreamKey = "analyzer:results"

// Orchestrator owns the admission path: it validates subjects, claims
// the per-subject slot, hands jobs to the worker pool and runs the
// post-completion side effects. Persistence, the Redis stream and
// Telegram alerts are best effort and never fail a job.
type Orchestrator struct {
	cfg      *config.Config
	logger   *logger.Logger
	registry *registry.TaskRegistry
	pool     *pool.WorkerPool
	hub      *hub.EventHub
	analyzer *StreamingAnalyzer

	reportRepo  repository.AnalysisReportRepository
	redisClient *redisPkg.Client
	notifier    telegram.Notifier

	baseCtx context.Context
}

// NewOrchestrator creates an Orchestrator. reportRepo, redisClient and
// notifier may be nil; the corresponding side effect is skipped.
func NewOrchestrator(
	ctx context.Context,
	cfg *config.Config,
	log *logger.Logger,
	taskRegistry *registry.TaskRegistry,
	workerPool *pool.WorkerPool,
	eventHub *hub.EventHub,
	analyzer *StreamingAnalyzer,
	reportRepo repository.AnalysisReportRepository,
	redisClient *redisPkg.Client,
	notifier telegram.Notifier,
) *Orchestrator {
	return &Orchestrator{
		cfg:         cfg,
		logger:      log,
		registry:    taskRegistry,
		pool:        workerPool,
		hub:         eventHub,
		analyzer:    analyzer,
		reportRepo:  reportRepo,
		redisClient: redisClient,
		notifier:    notifier,
		baseCtx:     ctx,
	}
}

// Analyze admits one subject. It returns the normalized subject key on
// success; registry.ErrBusy when a job for the subject is already in
// flight, dto.ErrInvalidSubject for unparseable codes.
func (o *Orchestrator) Analyze(req dto.AnalyzeRequest) (dto.SubjectKey, error) {
	subject, err := dto.ParseSubject(req.StockCode)
	if err != nil {
		return dto.SubjectKey{}, err
	}

	if !o.registry.TryAcquire(subject, req.SubscriberID) {
		return subject, fmt.Errorf("%w: %s", registry.ErrBusy, subject)
	}

	o.pool.Submit(subject.String(), func(ctx context.Context) {
		defer o.registry.Release(subject)

		jobCtx, cancel := context.WithTimeout(ctx, o.cfg.Analyzer.SubjectTimeout)
		defer cancel()

		report, err := o.analyzer.Analyze(jobCtx, subject, req.SubscriberID, req.EnableStreaming)
		if err != nil {
			o.notifyError(subject, err)
			return
		}
		o.finishReport(subject, report)
	})

	o.logger.Info("Analysis job admitted",
		logger.StringField("subject", subject.String()),
		logger.StringField("subscriber_id", req.SubscriberID),
	)
	return subject, nil
}

// AnalyzeBatch admits up to MaxBatchSize subjects. Parse failures and
// busy subjects join the failed roster instead of rejecting the batch;
// only an oversized request is refused outright.
func (o *Orchestrator) AnalyzeBatch(req dto.BatchAnalyzeRequest) error {
	if len(req.StockCodes) == 0 {
		return fmt.Errorf("%w: empty batch", dto.ErrInvalidSubject)
	}
	if len(req.StockCodes) > o.cfg.Analyzer.MaxBatchSize {
		return fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(req.StockCodes), o.cfg.Analyzer.MaxBatchSize)
	}

	// The coordinator is a plain goroutine, not a pool job, so a full
	// pool cannot deadlock a batch against its own members.
	utils.GoSafe(func() {
		o.runBatch(req)
	})
	return nil
}

func (o *Orchestrator) runBatch(req dto.BatchAnalyzeRequest) {
	var (
		result = dto.BatchResult{
			Reports:        []*dto.Report{},
			FailedSubjects: []dto.FailedSubject{},
			TotalRequested: len(req.StockCodes),
		}
		handles  []*pool.Handle
		reportCh = make(chan *dto.Report, len(req.StockCodes))
		failCh   = make(chan dto.FailedSubject, len(req.StockCodes))
		seen     = map[string]bool{}
	)

	for _, code := range req.StockCodes {
		subject, err := dto.ParseSubject(code)
		if err != nil {
			failCh <- dto.FailedSubject{StockCode: code, Reason: err.Error()}
			continue
		}
		if seen[subject.String()] {
			continue
		}
		seen[subject.String()] = true

		if !o.registry.TryAcquire(subject, req.SubscriberID) {
			failCh <- dto.FailedSubject{StockCode: subject.Symbol, Reason: registry.ErrBusy.Error()}
			continue
		}

		handle := o.pool.Submit(subject.String(), func(ctx context.Context) {
			defer o.registry.Release(subject)

			jobCtx, cancel := context.WithTimeout(ctx, o.cfg.Analyzer.SubjectTimeout)
			defer cancel()

			report, err := o.analyzer.Analyze(jobCtx, subject, req.SubscriberID, false)
			if err != nil {
				failCh <- dto.FailedSubject{StockCode: subject.Symbol, Reason: err.Error()}
				return
			}
			o.finishReport(subject, report)
			reportCh <- report
		})
		handles = append(handles, handle)
	}

	for _, handle := range handles {
		if err := handle.Wait(o.baseCtx); err != nil {
			o.logger.Warn("Batch wait interrupted", logger.ErrorField(err))
			break
		}
	}
	close(reportCh)
	close(failCh)

	for report := range reportCh {
		result.Reports = append(result.Reports, report)
	}
	for failed := range failCh {
		result.FailedSubjects = append(result.FailedSubjects, failed)
	}

	if avg, ok := averageScores(result.Reports); ok {
		o.emit(req.SubscriberID, dto.NewEvent(dto.EventScoresUpdate, "", dto.ScoresPayload{Scores: avg, Animate: true}))
	}
	o.emit(req.SubscriberID, dto.NewEvent(dto.EventBatchResult, "", result))
	o.emit(req.SubscriberID, dto.NewEvent(dto.EventComplete, "", dto.CompletePayload{
		Message: fmt.Sprintf("Batch analysis complete: %d succeeded, %d failed", len(result.Reports), len(result.FailedSubjects)),
	}))
}

// Tasks snapshots the in-flight jobs.
func (o *Orchestrator) Tasks() []dto.TaskStatus {
	records := o.registry.Snapshot()
	tasks := make([]dto.TaskStatus, 0, len(records))
	for _, record := range records {
		tasks = append(tasks, dto.TaskStatus{
			Subject:   record.Subject.String(),
			OwnerID:   record.OwnerID,
			StartedAt: record.StartedAt,
			Status:    "running",
		})
	}
	return tasks
}

// Task looks up the in-flight job for one code. The bool is false
// when no job is running for the subject.
func (o *Orchestrator) Task(code string) (dto.TaskStatus, bool, error) {
	subject, err := dto.ParseSubject(code)
	if err != nil {
		return dto.TaskStatus{}, false, err
	}
	record, ok := o.registry.Get(subject)
	if !ok {
		return dto.TaskStatus{}, false, nil
	}
	return dto.TaskStatus{
		Subject:   record.Subject.String(),
		OwnerID:   record.OwnerID,
		StartedAt: record.StartedAt,
		Status:    "running",
	}, true, nil
}

// SystemInfo reports the live orchestrator state.
func (o *Orchestrator) SystemInfo() dto.SystemInfo {
	return dto.SystemInfo{
		ActiveTasks:     o.registry.Count(),
		Subscribers:     o.hub.Count(),
		MaxWorkers:      o.pool.Workers(),
		PendingJobs:     o.pool.Pending(),
		AIProvider:      o.cfg.AI.Provider,
		StreamingEvents: o.cfg.AI.EnableStreaming,
	}
}

// LatestReport loads the most recent persisted report for a code.
func (o *Orchestrator) LatestReport(ctx context.Context, code string) (*entity.AnalysisReport, error) {
	subject, err := dto.ParseSubject(code)
	if err != nil {
		return nil, err
	}
	if o.reportRepo == nil {
		return nil, fmt.Errorf("report storage is not configured")
	}
	return o.reportRepo.GetLatest(ctx, subject)
}

// finishReport runs the best-effort side effects after a successful
// job.
func (o *Orchestrator) finishReport(subject dto.SubjectKey, report *dto.Report) {
	payload, err := json.Marshal(report)
	if err != nil {
		o.logger.Error("Failed to marshal report", logger.ErrorField(err), logger.StringField("subject", subject.String()))
		return
	}

	if o.reportRepo != nil {
		record := &entity.AnalysisReport{
			Market:             string(report.Market),
			Symbol:             report.StockCode,
			Name:               report.StockName,
			Recommendation:     report.Recommendation,
			TechnicalScore:     report.Scores.Technical,
			FundamentalScore:   report.Scores.Fundamental,
			SentimentScore:     report.Scores.Sentiment,
			ComprehensiveScore: report.Scores.Comprehensive,
			Narrative:          report.Narrative,
			Data:               datatypes.JSON(payload),
		}
		if err := o.reportRepo.Create(o.baseCtx, record); err != nil {
			o.logger.Error("Failed to persist report", logger.ErrorField(err), logger.StringField("subject", subject.String()))
		}
	}

	if o.redisClient != nil {
		err := o.redisClient.XAdd(o.baseCtx, &redis.XAddArgs{
			Stream: resultStreamKey,
			Values: map[string]interface{}{
				"subject": subject.String(),
				"report":  string(payload),
			},
		}).Err()
		if err != nil {
			o.logger.Error("Failed to publish report to stream", logger.ErrorField(err), logger.StringField("subject", subject.String()))
		}
	}

	if o.notifier != nil {
		message := telegram.FormatAnalysisCompleteMessage(time.Now(), report.StockCode, report.Recommendation, report.Scores.Comprehensive)
		if err := o.notifier.SendMessage(message); err != nil {
			o.logger.Error("Failed to send completion notification", logger.ErrorField(err))
		}
	}
}

func (o *Orchestrator) notifyError(subject dto.SubjectKey, jobErr error) {
	if o.notifier == nil {
		return
	}
	message := telegram.FormatErrorAlertMessage(time.Now(), fmt.Sprintf("%s: %v", subject, jobErr))
	if err := o.notifier.SendMessage(message); err != nil {
		o.logger.Error("Failed to send error notification", logger.ErrorField(err))
	}
}

func (o *Orchestrator) emit(subscriberID string, ev dto.Event) {
	if subscriberID == "" {
		o.hub.Broadcast(ev)
		return
	}
	o.hub.SendTo(subscriberID, ev)
}

func averageScores(reports []*dto.Report) (dto.ScoreSet, bool) {
	if len(reports) == 0 {
		return dto.ScoreSet{}, false
	}
	var avg dto.ScoreSet
	for _, report := range reports {
		avg.Technical += report.Scores.Technical
		avg.Fundamental += report.Scores.Fundamental
		avg.Sentiment += report.Scores.Sentiment
		avg.Comprehensive += report.Scores.Comprehensive
	}
	n := float64(len(reports))
	avg.Technical /= n
	avg.Fundamental /= n
	avg.Sentiment /= n
	avg.Comprehensive /= n
	return avg, true
}
