package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"log"
	"time"

	"khakiestate/internal/domain"
	"khakiestate/internal/models"
	"khakiestate/internal/notify"
	"khakiestate/internal/queue"
	"khakiestate/internal/repository"
	"khakiestate/internal/ws"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// ErrUnknownNotificationType is returned when a service asks for a
// notification type that was never seeded. Types are validated at
// startup, so hitting this means a deploy shipped a new type name
// without its seed row.
var ErrUnknownNotificationType = errors.New("unknown notification type")

// NotificationService is the dispatcher: it persists the notification,
// resolves the delivery channel from recipient preferences, hands
// external delivery to the queue, and pushes the in-app event.
type NotificationService struct {
	repo      *repository.NotificationRepository
	typeRepo  *repository.NotificationTypeRepository
	userRepo  *repository.UserRepository
	residents *repository.ResidentRepository
	staff     *repository.StaffRepository
	q         queue.Queue
	hub       *ws.Hub
	fcm       *FCMService
}

func NewNotificationService(
	repo *repository.NotificationRepository,
	typeRepo *repository.NotificationTypeRepository,
	userRepo *repository.UserRepository,
	residents *repository.ResidentRepository,
	staff *repository.StaffRepository,
	q queue.Queue,
	hub *ws.Hub,
	fcm *FCMService,
) *NotificationService {
	return &NotificationService{
		repo:      repo,
		typeRepo:  typeRepo,
		userRepo:  userRepo,
		residents: residents,
		staff:     staff,
		q:         q,
		hub:       hub,
		fcm:       fcm,
	}
}

// Notify creates one notification for one recipient and schedules
// delivery. related may be zero-valued for notifications about nothing
// in particular; forceChannel, when set, bypasses preference resolution.
func (s *NotificationService) Notify(recipientID uint, typeName, title, message string, related domain.RelatedRef, data map[string]interface{}, forceChannel notify.Channel) (*models.Notification, error) {
	nt, err := s.typeRepo.GetByName(typeName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[notify] unknown notification type %q; seed data out of date", typeName)
			return nil, ErrUnknownNotificationType
		}
		return nil, err
	}

	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	n := &models.Notification{
		Reference:   ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String(),
		RecipientID: recipientID,
		TypeID:      nt.ID,
		Title:       title,
		Message:     message,
		Data:        dataJSON,
		Status:      domain.NotificationSent,
		RelatedKind: related.Kind,
	}
	if related.Kind != "" {
		id := related.ID
		n.RelatedID = &id
	}
	if err := s.repo.Create(n); err != nil {
		return nil, err
	}

	channel := notify.Resolve(s.prefsFor(recipientID), notify.Channel(nt.DefaultDelivery), nt.IsUrgent, forceChannel)
	if channel != notify.ChannelInApp {
		job := queue.NewJob(n.ID, string(channel))
		if err := s.q.Enqueue(context.Background(), job); err != nil {
			// Delivery is best-effort; the stored notification stands.
			log.Printf("[notify] enqueue %s for notification %d failed: %v", channel, n.ID, err)
		}
	}

	s.pushInApp(recipientID, typeName, n, data)
	return n, nil
}

// NotifyMany fans a notification out to each recipient independently.
// A failure for one recipient does not roll back the others.
func (s *NotificationService) NotifyMany(recipientIDs []uint, typeName, title, message string, related domain.RelatedRef, data map[string]interface{}) []*models.Notification {
	out := make([]*models.Notification, 0, len(recipientIDs))
	for _, id := range recipientIDs {
		n, err := s.Notify(id, typeName, title, message, related, data, "")
		if err != nil {
			log.Printf("[notify] notify recipient %d failed: %v", id, err)
			continue
		}
		out = append(out, n)
	}
	return out
}

// NotifyAllResidents targets every active resident except the excluded
// user ids (typically the author of the triggering change).
func (s *NotificationService) NotifyAllResidents(typeName, title, message string, related domain.RelatedRef, data map[string]interface{}, exclude ...uint) []*models.Notification {
	residents, err := s.residents.ListActive()
	if err != nil {
		log.Printf("[notify] list residents failed: %v", err)
		return nil
	}
	skip := make(map[uint]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}
	ids := make([]uint, 0, len(residents))
	for _, r := range residents {
		if !skip[r.UserID] {
			ids = append(ids, r.UserID)
		}
	}
	return s.NotifyMany(ids, typeName, title, message, related, data)
}

// prefsFor resolves stored notification preferences from the recipient's
// resident or staff profile. A user with no profile gets in-app only.
func (s *NotificationService) prefsFor(userID uint) notify.Prefs {
	if r, err := s.residents.GetByUserID(userID); err == nil {
		return notify.Prefs{Email: r.EmailNotifications, SMS: r.SMSNotifications, UrgentOnly: r.UrgentOnly}
	}
	if st, err := s.staff.GetByUserID(userID); err == nil {
		return notify.Prefs{Email: st.EmailNotifications, SMS: st.SMSNotifications, UrgentOnly: st.UrgentOnly}
	}
	return notify.Prefs{}
}

// pushInApp fans the event to live websocket clients and, when the
// recipient registered a device token, to FCM. Both are best-effort.
func (s *NotificationService) pushInApp(recipientID uint, typeName string, n *models.Notification, data map[string]interface{}) {
	if s.hub != nil {
		s.hub.PushToUser(recipientID, map[string]interface{}{
			"type":         "notification",
			"id":           n.ID,
			"reference":    n.Reference,
			"notification": typeName,
			"title":        n.Title,
			"message":      n.Message,
			"created_at":   n.CreatedAt,
		})
	}
	if s.fcm != nil {
		u, err := s.userRepo.GetByID(recipientID)
		if err != nil || u.FCMToken == "" {
			return
		}
		_ = s.fcm.Send(context.Background(), u.FCMToken, typeName, n.Title, n.Message, data)
	}
}
