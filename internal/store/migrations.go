package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Bindings table - classifier label to maze direction
		`CREATE TABLE IF NOT EXISTS bindings (
			label TEXT PRIMARY KEY,
			direction TEXT NOT NULL CHECK(direction IN ('none', 'up', 'down', 'left', 'right')),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Events table - one row per pipeline outcome
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			gesture_name TEXT NOT NULL DEFAULT '',
			label TEXT NOT NULL DEFAULT '',
			confidence REAL NOT NULL DEFAULT 0,
			direction TEXT NOT NULL DEFAULT 'none',
			reason TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Samples table - labelled feature vectors for retraining
		`CREATE TABLE IF NOT EXISTS samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			label TEXT NOT NULL,
			features TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_events_created_at ON events(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_samples_label ON samples(label)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
