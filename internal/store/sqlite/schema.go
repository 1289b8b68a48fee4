package sqlite

import "database/sql"

// schema mirrors the layout of the original chat_app.db. Applied on open so
// a fresh database is usable without a separate migration step.
const schema = `
CREATE TABLE IF NOT EXISTS chat_rooms (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS users (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	username   TEXT NOT NULL UNIQUE,
	password   TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS push_tokens (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    INTEGER NOT NULL,
	token      TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS messages (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	room_id     INTEGER NOT NULL,
	sender_id   INTEGER NOT NULL,
	sender_name TEXT NOT NULL,
	message     TEXT NOT NULL,
	timestamp   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (room_id) REFERENCES chat_rooms(id),
	FOREIGN KEY (sender_id) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_messages_room ON messages(room_id, timestamp ASC);
`

// seedRooms keeps the fixed room directory of the reference deployment.
const seedRooms = `
INSERT OR IGNORE INTO chat_rooms (id, name) VALUES
	(1, 'General'),
	(2, 'Technology'),
	(3, 'Random');
`

func ensureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return err
	}
	_, err := db.Exec(seedRooms)
	return err
}
