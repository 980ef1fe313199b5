// Package worker drains the delivery queue and pushes notifications
// out over email and SMS. One job is one notification on one resolved
// channel; the worker never retries a failed job.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"khakiestate/internal/domain"
	"khakiestate/internal/models"
	"khakiestate/internal/notify"
	"khakiestate/internal/queue"
	"khakiestate/internal/repository"
	"khakiestate/pkg/sms"

	"gorm.io/gorm"
)

// EmailSender is the slice of the mailer the worker needs.
type EmailSender interface {
	Send(to, subject, body string) error
}

type Deliverer struct {
	notifications *repository.NotificationRepository
	users         *repository.UserRepository
	residents     *repository.ResidentRepository
	staff         *repository.StaffRepository
	email         EmailSender
	sms           sms.Sender
}

func NewDeliverer(
	notifications *repository.NotificationRepository,
	users *repository.UserRepository,
	residents *repository.ResidentRepository,
	staff *repository.StaffRepository,
	email EmailSender,
	smsSender sms.Sender,
) *Deliverer {
	return &Deliverer{
		notifications: notifications,
		users:         users,
		residents:     residents,
		staff:         staff,
		email:         email,
		sms:           smsSender,
	}
}

// Deliver processes one job. A channel with no contact info on file is
// skipped and counts as success; a transport error or an SMS template
// that cannot be rendered marks the notification failed. All channels
// succeeding moves the notification to delivered and stamps sent_at.
func (d *Deliverer) Deliver(notificationID uint, channel string) error {
	n, err := d.notifications.GetByID(notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[delivery] notification %d vanished before delivery", notificationID)
			return nil
		}
		return err
	}

	ch := notify.Channel(channel)
	allOK := true

	if ch.HasEmail() {
		ok, sent := d.deliverEmail(n)
		n.EmailSent = sent
		allOK = allOK && ok
	}
	if ch.HasSMS() {
		ok, sent := d.deliverSMS(n)
		n.SMSSent = sent
		allOK = allOK && ok
	}

	if allOK {
		now := time.Now()
		n.Status = domain.NotificationDelivered
		n.SentAt = &now
	} else {
		n.Status = domain.NotificationFailed
	}
	return d.notifications.UpdateDelivery(n)
}

// deliverEmail returns (success, actually sent). Missing address or a
// disabled mailer is success without a send.
func (d *Deliverer) deliverEmail(n *models.Notification) (bool, bool) {
	if d.email == nil {
		return true, false
	}
	u, err := d.users.GetByID(n.RecipientID)
	if err != nil {
		log.Printf("[delivery] recipient %d lookup failed: %v", n.RecipientID, err)
		return false, false
	}
	if u.Email == "" {
		return true, false
	}
	if err := d.email.Send(u.Email, n.Title, n.Message); err != nil {
		log.Printf("[delivery] email for notification %d failed: %v", n.ID, err)
		return false, false
	}
	return true, true
}

// deliverSMS renders the type's template against the notification data
// and sends it. No phone on file is success without a send; a template
// with unfilled placeholders is a failure.
func (d *Deliverer) deliverSMS(n *models.Notification) (bool, bool) {
	if d.sms == nil {
		return true, false
	}
	phone := d.phoneFor(n.RecipientID)
	if phone == "" {
		return true, false
	}
	message := n.Message
	if n.Type.SMSTemplate != "" {
		var err error
		message, err = sms.FormatTemplate(n.Type.SMSTemplate, d.templateValues(n))
		if err != nil {
			log.Printf("[delivery] sms template for notification %d failed: %v", n.ID, err)
			return false, false
		}
	}
	if err := d.sms.Send(phone, message); err != nil {
		log.Printf("[delivery] sms for notification %d failed: %v", n.ID, err)
		return false, false
	}
	return true, true
}

func (d *Deliverer) phoneFor(userID uint) string {
	if res, err := d.residents.GetByUserID(userID); err == nil {
		return res.PhoneNumber
	}
	if st, err := d.staff.GetByUserID(userID); err == nil {
		return st.PhoneNumber
	}
	return ""
}

// templateValues flattens the stored JSON payload plus the title and
// message into template substitution values.
func (d *Deliverer) templateValues(n *models.Notification) map[string]string {
	values := map[string]string{
		"title":   n.Title,
		"message": n.Message,
	}
	if n.Data == "" {
		return values
	}
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(n.Data), &payload); err != nil {
		return values
	}
	for k, v := range payload {
		values[k] = fmt.Sprint(v)
	}
	return values
}

// Run consumes the queue with a pool of goroutines until the context is
// cancelled or the queue closes.
func (d *Deliverer) Run(ctx context.Context, q queue.Queue, workers int) {
	if workers < 1 {
		workers = 1
	}
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				job, err := q.Dequeue(ctx)
				if err != nil {
					if errors.Is(err, queue.ErrClosed) || errors.Is(err, context.Canceled) {
						return
					}
					log.Printf("[delivery] worker %d dequeue error: %v", id, err)
					continue
				}
				if err := d.Deliver(job.NotificationID, job.Channel); err != nil {
					log.Printf("[delivery] worker %d job %s failed: %v", id, job.ID, err)
				}
			}
		}(i)
	}
	wg.Wait()
}
