package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveFollowsPreferences(t *testing.T) {
	tests := []struct {
		name            string
		prefs           Prefs
		categoryDefault Channel
		categoryUrgent  bool
		force           Channel
		want            Channel
	}{
		{
			name:            "both default with both prefs enabled",
			prefs:           Prefs{Email: true, SMS: true},
			categoryDefault: ChannelBoth,
			want:            ChannelBoth,
		},
		{
			name:            "both default but sms disabled",
			prefs:           Prefs{Email: true},
			categoryDefault: ChannelBoth,
			want:            ChannelEmail,
		},
		{
			name:            "both default but email disabled",
			prefs:           Prefs{SMS: true},
			categoryDefault: ChannelBoth,
			want:            ChannelSMS,
		},
		{
			name:            "email default with email enabled",
			prefs:           Prefs{Email: true},
			categoryDefault: ChannelEmail,
			want:            ChannelEmail,
		},
		{
			name:            "email default with email disabled degrades to in-app",
			prefs:           Prefs{SMS: true},
			categoryDefault: ChannelEmail,
			want:            ChannelInApp,
		},
		{
			name:            "sms default never gains an email leg",
			prefs:           Prefs{Email: true, SMS: true},
			categoryDefault: ChannelSMS,
			want:            ChannelSMS,
		},
		{
			name:            "all prefs off degrades to in-app",
			prefs:           Prefs{},
			categoryDefault: ChannelBoth,
			want:            ChannelInApp,
		},
		{
			name:            "in-app default stays in-app",
			prefs:           Prefs{Email: true, SMS: true},
			categoryDefault: ChannelInApp,
			want:            ChannelInApp,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.prefs, tt.categoryDefault, tt.categoryUrgent, tt.force)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveUrgentOnly(t *testing.T) {
	prefs := Prefs{Email: true, SMS: true, UrgentOnly: true}

	// Non-urgent traffic is suppressed to in-app regardless of defaults.
	assert.Equal(t, ChannelInApp, Resolve(prefs, ChannelBoth, false, ""))
	assert.Equal(t, ChannelInApp, Resolve(prefs, ChannelEmail, false, ""))

	// Urgent categories flow through normally.
	assert.Equal(t, ChannelBoth, Resolve(prefs, ChannelBoth, true, ""))
	assert.Equal(t, ChannelEmail, Resolve(prefs, ChannelEmail, true, ""))
}

func TestResolveForceWins(t *testing.T) {
	// Force bypasses preferences, urgency filtering, and the default.
	prefs := Prefs{UrgentOnly: true}
	assert.Equal(t, ChannelSMS, Resolve(prefs, ChannelEmail, false, ChannelSMS))
	assert.Equal(t, ChannelBoth, Resolve(Prefs{}, ChannelInApp, false, ChannelBoth))
}

func TestChannelLegs(t *testing.T) {
	assert.True(t, ChannelEmail.HasEmail())
	assert.False(t, ChannelEmail.HasSMS())
	assert.True(t, ChannelSMS.HasSMS())
	assert.False(t, ChannelSMS.HasEmail())
	assert.True(t, ChannelBoth.HasEmail())
	assert.True(t, ChannelBoth.HasSMS())
	assert.False(t, ChannelInApp.HasEmail())
	assert.False(t, ChannelInApp.HasSMS())
}

func TestChannelValid(t *testing.T) {
	for _, c := range []Channel{ChannelEmail, ChannelSMS, ChannelBoth, ChannelInApp} {
		assert.True(t, c.Valid(), string(c))
	}
	assert.False(t, Channel("push").Valid())
	assert.False(t, Channel("").Valid())
}
