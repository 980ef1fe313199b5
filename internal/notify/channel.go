// Package notify holds the delivery-channel resolution rules shared by the
// dispatcher and the delivery worker.
package notify

// Channel is a delivery medium for a notification.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelBoth  Channel = "both"
	ChannelInApp Channel = "in_app"
)

func (c Channel) Valid() bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelBoth, ChannelInApp:
		return true
	}
	return false
}

// HasEmail reports whether the channel includes an email leg.
func (c Channel) HasEmail() bool { return c == ChannelEmail || c == ChannelBoth }

// HasSMS reports whether the channel includes an SMS leg.
func (c Channel) HasSMS() bool { return c == ChannelSMS || c == ChannelBoth }

// Prefs are a recipient's stored notification preferences.
type Prefs struct {
	Email      bool
	SMS        bool
	UrgentOnly bool
}

// Resolve determines the delivery channel for one recipient and category.
//
// The category default seeds the channel set, disabled preferences remove
// members, and a recipient who opted into urgent-only traffic gets in-app
// delivery for anything non-urgent. An empty result degrades to in-app.
// A non-empty force channel bypasses every rule.
func Resolve(p Prefs, categoryDefault Channel, categoryUrgent bool, force Channel) Channel {
	if force != "" {
		return force
	}
	email := categoryDefault.HasEmail() && p.Email
	sms := categoryDefault.HasSMS() && p.SMS
	if p.UrgentOnly && !categoryUrgent {
		return ChannelInApp
	}
	switch {
	case email && sms:
		return ChannelBoth
	case email:
		return ChannelEmail
	case sms:
		return ChannelSMS
	default:
		return ChannelInApp
	}
}
