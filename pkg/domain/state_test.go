package domain_test

import (
	"testing"
	"time"

	"github.com/aretw0/courier/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversation_TrackingNumber(t *testing.T) {
	tn, ok := domain.NewConversation().TrackingNumber()
	assert.False(t, ok)
	assert.Empty(t, tn)

	tn, ok = domain.AwaitingConfirmation("CD555666777").TrackingNumber()
	require.True(t, ok)
	assert.Equal(t, "CD555666777", tn)

	_, ok = domain.AwaitingEmail(nil).TrackingNumber()
	assert.False(t, ok, "missing payload must be detectable")

	_, ok = (&domain.Conversation{Step: domain.StepAwaitingClaimEmail, Pending: &domain.PendingClaim{}}).TrackingNumber()
	assert.False(t, ok, "empty tracking number counts as missing")
}

func TestConversation_CloneIsDeep(t *testing.T) {
	exp := time.Now()
	orig := domain.AwaitingConfirmation("CD555666777")
	orig.ExpiresAt = &exp

	cp := orig.Clone()
	cp.Pending.TrackingNumber = "changed"
	*cp.ExpiresAt = exp.Add(time.Hour)

	assert.Equal(t, "CD555666777", orig.Pending.TrackingNumber)
	assert.Equal(t, exp, *orig.ExpiresAt)
}

func TestEntry_Expiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	forever := domain.NewEntry("v", now, 0)
	assert.Nil(t, forever.ExpiresAt)
	assert.False(t, forever.Expired(now.Add(100*365*24*time.Hour)))

	e := domain.NewEntry("v", now, time.Hour)
	assert.False(t, e.Expired(now.Add(time.Hour)), "expiry instant itself is still live")
	assert.True(t, e.Expired(now.Add(time.Hour+time.Second)))
	assert.Equal(t, 30*time.Minute, e.TTL(now.Add(30*time.Minute)))
}

func TestParsePackageStatus(t *testing.T) {
	st, err := domain.ParsePackageStatus("lost")
	require.NoError(t, err)
	assert.True(t, st.Claimable())

	_, err = domain.ParsePackageStatus("exploded")
	assert.Error(t, err)

	seed := domain.SeedPackages()
	assert.Len(t, seed, 8)
	for tn := range seed {
		assert.True(t, domain.ValidTrackingNumber(tn), tn)
	}
}
