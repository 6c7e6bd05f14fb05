package services

import (
	"fmt"
	"time"

	"rental-backend/internal/domain"
	"rental-backend/internal/domain/models"
	"rental-backend/internal/repositories"
	"rental-backend/internal/utils"
)

// EmailChannel delivers a notification body to an email address.
type EmailChannel interface {
	Send(recipient, subject, message string) error
}

// SMSChannel delivers a notification body to a phone number.
type SMSChannel interface {
	Send(phone, message string) error
}

const (
	dispatchAttempts = 3
	dispatchBackoff  = 500 * time.Millisecond
)

// NotificationService fans a stored notification out to its channels with
// per-channel retry. Delivery failures are recorded, never propagated.
type NotificationService struct {
	Notifications repositories.NotificationRepository
	Users         repositories.UserRepository
	Email         EmailChannel
	SMS           SMSChannel
	Sleep         func(time.Duration)
	RequestID     string
}

type DispatchOptions struct {
	Force    bool
	Channels []string
}

type DispatchResult struct {
	Skipped bool                             `json:"skipped"`
	Results map[string]models.DeliveryResult `json:"results,omitempty"`
}

// Dispatch sends notification id over its channels. A processed
// notification is a no-op unless forced.
func (s NotificationService) Dispatch(id int64, opts DispatchOptions) (DispatchResult, error) {
	n, err := s.Notifications.GetByID(id)
	if err != nil {
		return DispatchResult{}, err
	}
	if n.Processed && !opts.Force {
		return DispatchResult{Skipped: true}, nil
	}

	email, phone := s.resolveContact(n)
	channels := s.resolveChannels(n, opts, email, phone)

	results := make(map[string]models.DeliveryResult, len(channels))
	for _, ch := range channels {
		results[ch] = s.deliver(ch, n, email, phone)
	}

	if err := s.Notifications.MarkProcessed(id, results, utils.NowUTC()); err != nil {
		return DispatchResult{}, domain.InternalError{Err: err}
	}

	utils.LogEvent(s.RequestID, "notify", "dispatch",
		fmt.Sprintf("notification_id=%d channels=%d force=%v", id, len(channels), opts.Force))
	return DispatchResult{Results: results}, nil
}

// resolveContact prefers contact info stored on the notification itself
// and falls back to the user record.
func (s NotificationService) resolveContact(n models.Notification) (email, phone string) {
	email = n.Email
	phone = utils.NormalizePhone(n.Phone)
	if email != "" && phone != "" {
		return email, phone
	}
	if u, err := s.Users.GetByID(n.UserID); err == nil {
		if email == "" {
			email = u.Email
		}
		if phone == "" {
			phone = utils.NormalizePhone(u.Phone)
		}
	}
	return email, phone
}

// resolveChannels: explicit override beats the notification's own channel,
// which beats auto-detection from available contact info. in_app always
// rides along.
func (s NotificationService) resolveChannels(n models.Notification, opts DispatchOptions, email, phone string) []string {
	if len(opts.Channels) > 0 {
		return opts.Channels
	}
	if n.Channel != "" && n.Channel != domain.ChannelInApp {
		return []string{domain.ChannelInApp, n.Channel}
	}

	channels := []string{domain.ChannelInApp}
	if email != "" {
		channels = append(channels, domain.ChannelEmail)
	}
	if phone != "" {
		channels = append(channels, domain.ChannelSMS)
	}
	return channels
}

func (s NotificationService) deliver(channel string, n models.Notification, email, phone string) models.DeliveryResult {
	send := func() error {
		switch channel {
		case domain.ChannelInApp:
			// The stored row is the in-app delivery.
			return nil
		case domain.ChannelEmail:
			if email == "" {
				return fmt.Errorf("no email address for user %d", n.UserID)
			}
			if s.Email == nil {
				return fmt.Errorf("email channel not configured")
			}
			return s.Email.Send(email, n.Title, n.Message)
		case domain.ChannelSMS:
			if phone == "" {
				return fmt.Errorf("no phone number for user %d", n.UserID)
			}
			if s.SMS == nil {
				return fmt.Errorf("sms channel not configured")
			}
			return s.SMS.Send(phone, n.Title+": "+n.Message)
		default:
			return fmt.Errorf("unknown channel %q", channel)
		}
	}

	sleep := s.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var lastErr error
	for attempt := 1; attempt <= dispatchAttempts; attempt++ {
		lastErr = send()
		if lastErr == nil {
			return models.DeliveryResult{Success: true, Attempts: attempt}
		}
		if attempt < dispatchAttempts {
			sleep(dispatchBackoff * time.Duration(attempt))
		}
	}
	return models.DeliveryResult{Success: false, Attempts: dispatchAttempts, Details: lastErr.Error()}
}
