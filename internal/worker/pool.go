package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/zxiaoiegw/pill-reminder/internal/models"
	"github.com/zxiaoiegw/pill-reminder/internal/repository"
	"github.com/zxiaoiegw/pill-reminder/internal/services"
)

// Pool consumes schedule-suggestion jobs from the redis queue. Jobs are
// locked with SetNX so multiple instances never process the same one, and
// progress is published to the user's pub/sub channel for the websocket
// hub to deliver.
type Pool struct {
	redis       *redis.Client
	gemini      *services.GeminiService
	jobRepo     *repository.JobRepo
	medRepo     *repository.MedicationRepo
	logRepo     *repository.IntakeLogRepo
	workerCount int
	stopChan    chan struct{}
}

func NewPool(
	redisClient *redis.Client,
	gemini *services.GeminiService,
	jobRepo *repository.JobRepo,
	medRepo *repository.MedicationRepo,
	logRepo *repository.IntakeLogRepo,
	workerCount int,
) *Pool {
	return &Pool{
		redis:       redisClient,
		gemini:      gemini,
		jobRepo:     jobRepo,
		medRepo:     medRepo,
		logRepo:     logRepo,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	queues := []string{"queue:schedule-suggestion"}

	for i := 0; i < p.workerCount; i++ {
		go p.worker(i, queues)
	}

	log.Printf("Started %d worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int, queues []string) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 30s timeout
		result, err := p.redis.BLPop(ctx, 30*time.Second, queues...).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		var job models.Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse job: %v", id, err)
			continue
		}

		// Try to acquire lock
		lockKey := fmt.Sprintf("job_lock:%s", job.ID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 10*time.Minute).Result()
		if err != nil || !locked {
			continue // Another worker has this job
		}

		log.Printf("Worker %d: processing job %s (type: %s)", id, job.ID, job.Type)

		p.jobRepo.UpdateStatus(ctx, job.ID, "processing")
		p.publishStatus(ctx, job.UserID, job.ID, "processing", "Analyzing intake history")

		var processErr error
		switch job.Type {
		case "schedule-suggestion":
			processErr = p.processScheduleSuggestion(ctx, &job)
		default:
			processErr = fmt.Errorf("unknown job type %q", job.Type)
		}

		if processErr != nil {
			log.Printf("Worker %d: job %s failed: %v", id, job.ID, processErr)
			p.jobRepo.Fail(ctx, job.ID, processErr.Error())
			p.publishStatus(ctx, job.UserID, job.ID, "failed", "Suggestion failed")
		} else {
			p.publishCompleted(ctx, job.UserID, job.ID)
		}

		p.redis.Del(ctx, lockKey)
	}
}

func (p *Pool) processScheduleSuggestion(ctx context.Context, job *models.Job) error {
	med, err := p.medRepo.GetByID(ctx, job.ReferenceID)
	if err != nil {
		return fmt.Errorf("failed to load medication: %w", err)
	}

	entries, err := p.logRepo.ListByMedication(ctx, med.ID, time.Now().AddDate(0, 0, -30))
	if err != nil {
		return fmt.Errorf("failed to load intake history: %w", err)
	}

	prompt := services.BuildSchedulePrompt(med, entries)

	raw, err := p.gemini.SuggestSchedule(ctx, prompt)
	if err != nil {
		return err
	}

	suggestion, err := services.ParseScheduleSuggestion(raw)
	if err != nil {
		return err
	}

	result, _ := json.Marshal(suggestion)
	return p.jobRepo.Complete(ctx, job.ID, result)
}

func (p *Pool) publishStatus(ctx context.Context, userID, jobID uuid.UUID, status, stepName string) {
	msg := models.WSMessage{
		Type: "status_update",
		Payload: models.JobStatusUpdate{
			JobID:    jobID,
			Status:   status,
			StepName: stepName,
		},
	}
	data, _ := json.Marshal(msg)
	p.redis.Publish(ctx, fmt.Sprintf("user_updates:%s", userID.String()), string(data))
}

func (p *Pool) publishCompleted(ctx context.Context, userID, jobID uuid.UUID) {
	msg := models.WSMessage{
		Type: "completed",
		Payload: models.JobCompletedEvent{
			JobID:      jobID,
			ResultType: "schedule-suggestion",
		},
	}
	data, _ := json.Marshal(msg)
	p.redis.Publish(ctx, fmt.Sprintf("user_updates:%s", userID.String()), string(data))
}
