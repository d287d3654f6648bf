package community

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Community is a delegation group with a seat cap and a set of country slots
type Community struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Name    string    `json:"name" gorm:"uniqueIndex;not null"`
	LogoURL string    `json:"logo_url"`

	// OccupiedSeats counts members whose verification reconciliation has
	// completed. It trails signups: a seat is counted only after the
	// member verifies their email.
	OccupiedSeats int `json:"occupied_seats" gorm:"not null;default:0"`
	SeatCapacity  int `json:"seat_capacity" gorm:"not null"`

	Slots []CountrySlot `json:"countries" gorm:"foreignKey:CommunityID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// CountrySlot is one assignable seat within a community, identified by
// country name. AssigneeID is empty while the slot is unassigned.
type CountrySlot struct {
	CommunityID uuid.UUID `json:"-" gorm:"type:uuid;primaryKey"`
	Country     string    `json:"country" gorm:"primaryKey"`
	AssigneeID  string    `json:"assignee_id" gorm:"not null;default:''"`
}

// TableName overrides the table name used by GORM
func (Community) TableName() string {
	return "communities"
}

// TableName overrides the table name used by GORM
func (CountrySlot) TableName() string {
	return "country_slots"
}

// BeforeCreate sets a UUID before creating the record
func (c *Community) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// NewCommunity creates a community with unassigned slots for each country
func NewCommunity(name string, seatCapacity int, countries []string) *Community {
	c := &Community{
		ID:           uuid.New(),
		Name:         name,
		SeatCapacity: seatCapacity,
		CreatedAt:    time.Now(),
	}
	for _, country := range countries {
		c.Slots = append(c.Slots, CountrySlot{
			CommunityID: c.ID,
			Country:     country,
		})
	}
	return c
}

// HasCapacity reports whether the community can still count another member
func (c *Community) HasCapacity() bool {
	return c.OccupiedSeats < c.SeatCapacity
}

// SlotFor returns the slot for the given country, if it exists
func (c *Community) SlotFor(country string) (CountrySlot, bool) {
	for _, slot := range c.Slots {
		if slot.Country == country {
			return slot, true
		}
	}
	return CountrySlot{}, false
}

// AvailableCountries returns the sorted names of unassigned slots
func (c *Community) AvailableCountries() []string {
	var available []string
	for _, slot := range c.Slots {
		if slot.AssigneeID == "" {
			available = append(available, slot.Country)
		}
	}
	sort.Strings(available)
	return available
}

// CountriesMap returns the slots as a country -> assignee-id mapping,
// the shape the signup form consumes.
func (c *Community) CountriesMap() map[string]string {
	countries := make(map[string]string, len(c.Slots))
	for _, slot := range c.Slots {
		countries[slot.Country] = slot.AssigneeID
	}
	return countries
}

// Validate checks if the community data is valid
func (c *Community) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.SeatCapacity <= 0 {
		return fmt.Errorf("seat_capacity must be greater than zero")
	}
	if c.OccupiedSeats < 0 {
		return fmt.Errorf("occupied_seats cannot be negative")
	}
	seen := make(map[string]struct{}, len(c.Slots))
	for _, slot := range c.Slots {
		if slot.Country == "" {
			return fmt.Errorf("country name cannot be empty")
		}
		if _, dup := seen[slot.Country]; dup {
			return fmt.Errorf("duplicate country: %s", slot.Country)
		}
		seen[slot.Country] = struct{}{}
	}
	return nil
}
