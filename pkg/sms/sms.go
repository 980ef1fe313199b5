// Package sms defines the outbound SMS transport and the notification
// template formatting rules.
package sms

// Sender delivers one SMS to a phone number.
type Sender interface {
	Send(phone, message string) error
}
