package migrations

import "gorm.io/gorm"

// migration003Up creates performance indexes
func migration003Up(db *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_accounts_email ON accounts(email)",

		"CREATE INDEX IF NOT EXISTS idx_tokens_account ON tokens(account_id)",
		"CREATE INDEX IF NOT EXISTS idx_tokens_kind ON tokens(kind)",

		"CREATE INDEX IF NOT EXISTS idx_people_email ON people(email)",
		"CREATE INDEX IF NOT EXISTS idx_people_community ON people(community_id)",
		"CREATE INDEX IF NOT EXISTS idx_people_community_applied ON people(community_id, member_count_applied)",

		"CREATE INDEX IF NOT EXISTS idx_country_slots_assignee ON country_slots(assignee_id)",

		"CREATE INDEX IF NOT EXISTS idx_profiles_community ON profiles(community_id)",

		"CREATE INDEX IF NOT EXISTS idx_events_date ON events(date ASC)",
	}

	for _, indexSQL := range indexes {
		if err := db.Exec(indexSQL).Error; err != nil {
			return err
		}
	}

	return nil
}

// migration003Down drops performance indexes
func migration003Down(db *gorm.DB) error {
	indexes := []string{
		"idx_accounts_email",
		"idx_tokens_account",
		"idx_tokens_kind",
		"idx_people_email",
		"idx_people_community",
		"idx_people_community_applied",
		"idx_country_slots_assignee",
		"idx_profiles_community",
		"idx_events_date",
	}

	for _, index := range indexes {
		if err := db.Exec("DROP INDEX IF EXISTS " + index).Error; err != nil {
			return err
		}
	}

	return nil
}
