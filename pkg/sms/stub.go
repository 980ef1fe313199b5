package sms

import "log"

// StubSender logs instead of sending; swap in a real gateway provider
// (Twilio, MSG91) behind the same interface for production.
type StubSender struct{}

func (StubSender) Send(phone, message string) error {
	log.Printf("[sms] would send to %s: %s", phone, message)
	return nil
}
