package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zxiaoiegw/pill-reminder/internal/models"
	"github.com/zxiaoiegw/pill-reminder/internal/repository"
)

const reminderPollInterval = 1 * time.Minute

// ReminderScheduler publishes a dose_reminder event for every active
// medication dose scheduled at the current minute. Events go through redis
// pub/sub so the websocket hub delivers them to whichever instance holds
// the user's connection.
type ReminderScheduler struct {
	medRepo  *repository.MedicationRepo
	redis    *redis.Client
	stopChan chan struct{}
}

func NewReminderScheduler(medRepo *repository.MedicationRepo, redisClient *redis.Client) *ReminderScheduler {
	return &ReminderScheduler{
		medRepo:  medRepo,
		redis:    redisClient,
		stopChan: make(chan struct{}),
	}
}

func (s *ReminderScheduler) Start() {
	go s.loop()
	log.Printf("Reminder scheduler started")
}

func (s *ReminderScheduler) Stop() {
	select {
	case <-s.stopChan:
		return
	default:
		close(s.stopChan)
	}
}

func (s *ReminderScheduler) loop() {
	ticker := time.NewTicker(reminderPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case now := <-ticker.C:
			s.publishDueReminders(context.Background(), now)
		}
	}
}

func (s *ReminderScheduler) publishDueReminders(ctx context.Context, now time.Time) {
	hhmm := now.Format("15:04")

	meds, err := s.medRepo.ListActiveScheduledAt(ctx, hhmm)
	if err != nil {
		log.Printf("reminders: failed to list due medications: %v", err)
		return
	}

	for _, med := range meds {
		msg := models.WSMessage{
			Type: "dose_reminder",
			Payload: models.DoseReminderEvent{
				MedicationID:   med.ID,
				MedicationName: med.Name,
				Dosage:         med.Dosage,
				ScheduledTime:  hhmm,
			},
		}
		data, _ := json.Marshal(msg)
		channel := fmt.Sprintf("user_updates:%s", med.UserID.String())
		if err := s.redis.Publish(ctx, channel, string(data)).Err(); err != nil {
			log.Printf("reminders: failed to publish for user %s: %v", med.UserID, err)
		}
	}
}
