package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"fleet-maintenance-backend/internal/followup"
	"fleet-maintenance-backend/internal/metrics"
	"fleet-maintenance-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Job is the set of alerts of one equipment.
type Job struct {
	Matricule string
	Alerts    []followup.Alert
}

// Payload is the JSON body pushed to subscribers.
type Payload struct {
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	Matricule string           `json:"matricule"`
	Alerts    []followup.Alert `json:"alerts"`
}

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan Job
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Job, size),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// WithSender replaces the web push sender.
func (wp *WorkerPool) WithSender(sender NotificationSender) *WorkerPool {
	wp.sender = sender
	return wp
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case job := <-wp.jobs:
			log.Printf("Worker %d processing %d alerts of %s", id, len(job.Alerts), job.Matricule)
			wp.sendAlerts(ctx, job)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues the alerts of one equipment. It blocks while every
// worker is busy and the queue is full.
func (wp *WorkerPool) Dispatch(matricule string, alerts []followup.Alert) {
	wp.jobs <- Job{Matricule: matricule, Alerts: alerts}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Job {
	return wp.jobs
}

// NewPayload summarizes the alerts of one equipment.
func NewPayload(matricule string, alerts []followup.Alert) Payload {
	urgent := 0
	for _, a := range alerts {
		if a.Urgency == followup.UrgencyUrgent {
			urgent++
		}
	}
	body := fmt.Sprintf("%d intervention(s) à prévoir", len(alerts))
	if urgent > 0 {
		body += fmt.Sprintf(", dont %d en retard", urgent)
	}
	return Payload{
		Title:     fmt.Sprintf("Entretien %s", matricule),
		Body:      body,
		Matricule: matricule,
		Alerts:    alerts,
	}
}

// sendAlerts notifies every subscription following the job's equipment.
func (wp *WorkerPool) sendAlerts(ctx context.Context, job Job) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_equipment se ON se.push_subscription_endpoint = push_subscriptions.endpoint").
		Joins("JOIN equipment e ON e.id = se.equipment_id").
		Where("e.matricule = ?", job.Matricule).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("Error fetching subscriptions for %s: %v", job.Matricule, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(NewPayload(job.Matricule, job.Alerts))
	if err != nil {
		log.Printf("Error encoding alerts of %s: %v", job.Matricule, err)
		return
	}

	log.Printf("Sending %d notifications for %s", len(subscriptions), job.Matricule)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		metrics.IncAlertPush(metrics.PushResultFailed)
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		metrics.IncAlertPush(metrics.PushResultExpired)
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		err := wp.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec("DELETE FROM subscription_equipment WHERE push_subscription_endpoint = ?", sub.Endpoint).Error; err != nil {
				return err
			}
			return tx.Delete(&sub).Error
		})
		if err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
		return
	}
	if resp.StatusCode >= http.StatusBadRequest {
		metrics.IncAlertPush(metrics.PushResultFailed)
		log.Printf("Push service rejected notification to %s: %s", sub.Endpoint, resp.Status)
		return
	}
	metrics.IncAlertPush(metrics.PushResultSent)
}
