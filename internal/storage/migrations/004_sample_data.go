package migrations

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// seedAdminPassword is the local-development admin login; change it after
// the first sign-in.
const seedAdminPassword = "changeme-admin"

func seedAdminHash() (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(seedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// migration004Up inserts sample data for local development
func migration004Up(db *gorm.DB) error {
	passwordHash, err := seedAdminHash()
	if err != nil {
		return err
	}

	accountsSQL := `
        INSERT INTO accounts (id, email, password_hash, email_verified) VALUES
            ('550e8400-e29b-41d4-a716-446655440000',
             'admin@openmun.org',
             ?,
             true)
        ON CONFLICT (email) DO NOTHING
    `

	if err := db.Exec(accountsSQL, passwordHash).Error; err != nil {
		return err
	}

	peopleSQL := `
        INSERT INTO people (id, name, email, role, verified, member_count_applied, country) VALUES
            ('550e8400-e29b-41d4-a716-446655440000',
             'Conference Administrator', 'admin@openmun.org', 'admin', true, false, '')
        ON CONFLICT (id) DO NOTHING
    `

	if err := db.Exec(peopleSQL).Error; err != nil {
		return err
	}

	communitySQL := `
        INSERT INTO communities (id, name, occupied_seats, seat_capacity) VALUES
            ('660e8400-e29b-41d4-a716-446655440000', 'Security Council', 0, 15)
        ON CONFLICT (id) DO NOTHING
    `

	if err := db.Exec(communitySQL).Error; err != nil {
		return err
	}

	slotsSQL := `
        INSERT INTO country_slots (community_id, country, assignee_id) VALUES
            ('660e8400-e29b-41d4-a716-446655440000', 'France', ''),
            ('660e8400-e29b-41d4-a716-446655440000', 'Spain', ''),
            ('660e8400-e29b-41d4-a716-446655440000', 'Japan', ''),
            ('660e8400-e29b-41d4-a716-446655440000', 'Brazil', ''),
            ('660e8400-e29b-41d4-a716-446655440000', 'Kenya', '')
        ON CONFLICT (community_id, country) DO NOTHING
    `

	return db.Exec(slotsSQL).Error
}

// migration004Down removes the sample data
func migration004Down(db *gorm.DB) error {
	statements := []string{
		"DELETE FROM country_slots WHERE community_id = '660e8400-e29b-41d4-a716-446655440000'",
		"DELETE FROM communities WHERE id = '660e8400-e29b-41d4-a716-446655440000'",
		"DELETE FROM people WHERE id = '550e8400-e29b-41d4-a716-446655440000'",
		"DELETE FROM accounts WHERE id = '550e8400-e29b-41d4-a716-446655440000'",
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}
