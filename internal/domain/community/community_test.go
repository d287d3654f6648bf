package community

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCommunityBuildsUnassignedSlots(t *testing.T) {
	c := NewCommunity("Security Council", 15, []string{"France", "Spain"})

	require.Len(t, c.Slots, 2)
	for _, slot := range c.Slots {
		assert.Equal(t, c.ID, slot.CommunityID)
		assert.Empty(t, slot.AssigneeID)
	}
	assert.Equal(t, 0, c.OccupiedSeats)
	assert.Equal(t, 15, c.SeatCapacity)
}

func TestHasCapacity(t *testing.T) {
	c := NewCommunity("Test", 2, []string{"France", "Spain", "Japan"})
	assert.True(t, c.HasCapacity())

	c.OccupiedSeats = 2
	assert.False(t, c.HasCapacity())

	// More members than seats can exist; capacity stays exhausted.
	c.OccupiedSeats = 3
	assert.False(t, c.HasCapacity())
}

func TestSlotFor(t *testing.T) {
	c := NewCommunity("Test", 5, []string{"France", "Spain"})

	slot, ok := c.SlotFor("France")
	require.True(t, ok)
	assert.Equal(t, "France", slot.Country)

	_, ok = c.SlotFor("Atlantis")
	assert.False(t, ok)
}

func TestAvailableCountriesSortedAndFiltered(t *testing.T) {
	c := NewCommunity("Test", 5, []string{"Spain", "France", "Japan"})
	c.Slots[2].AssigneeID = "someone"

	assert.Equal(t, []string{"France", "Spain"}, c.AvailableCountries())
}

func TestCountriesMap(t *testing.T) {
	c := NewCommunity("Test", 5, []string{"France", "Spain"})
	c.Slots[0].AssigneeID = "delegate-1"

	m := c.CountriesMap()
	assert.Equal(t, "delegate-1", m["France"])
	assert.Equal(t, "", m["Spain"])
}

func TestValidate(t *testing.T) {
	valid := NewCommunity("Test", 5, []string{"France", "Spain"})
	assert.NoError(t, valid.Validate())

	noName := NewCommunity("", 5, []string{"France"})
	assert.Error(t, noName.Validate())

	zeroCapacity := NewCommunity("Test", 0, []string{"France"})
	assert.Error(t, zeroCapacity.Validate())

	duplicate := NewCommunity("Test", 5, []string{"France", "France"})
	assert.Error(t, duplicate.Validate())
}
