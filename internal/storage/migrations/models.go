package migrations

import (
	"github.com/openmun/delegation-api/internal/domain/account"
	"github.com/openmun/delegation-api/internal/domain/community"
	"github.com/openmun/delegation-api/internal/domain/event"
	"github.com/openmun/delegation-api/internal/domain/person"
	"github.com/openmun/delegation-api/internal/domain/profile"
)

// AllModels returns a slice of all models for migration. Order matters:
// referenced tables come before the tables that point at them.
func AllModels() []any {
	return []any{
		&account.Account{},
		&account.Token{},
		&community.Community{},
		&community.CountrySlot{},
		&person.Person{},
		&profile.Profile{},
		&event.Event{},
	}
}
