package store

// Schema history. Version 1 is the original table set; later versions are
// applied by the ordered migration steps in migrate.go.

const schemaV1 = `
CREATE TABLE olm_sessions (
	id           TEXT PRIMARY KEY,
	sender_key   TEXT NOT NULL,
	session_id   TEXT NOT NULL,
	created_at   INTEGER NOT NULL,
	last_used_at INTEGER NOT NULL,
	pickled      TEXT NOT NULL,
	initiated    BOOLEAN NOT NULL
);

CREATE TABLE inbound_megolm_sessions (
	id                   TEXT PRIMARY KEY,
	sender_key           TEXT NOT NULL,
	sender_signing_key   TEXT NOT NULL,
	session_id           TEXT NOT NULL,
	room_id              TEXT NOT NULL,
	first_known_index    INTEGER NOT NULL,
	is_trusted           BOOLEAN NOT NULL,
	forwarding_key_chain TEXT NOT NULL,
	pickled              TEXT NOT NULL
);
CREATE INDEX idx_inbound_megolm_room_session
	ON inbound_megolm_sessions (room_id, session_id);

CREATE TABLE outbound_megolm_sessions (
	id                      TEXT PRIMARY KEY,
	room_id                 TEXT NOT NULL,
	created_at              INTEGER NOT NULL,
	encrypted_message_count INTEGER NOT NULL,
	new_devices             TEXT NOT NULL,
	pickled                 TEXT NOT NULL
);

CREATE TABLE megolm_message_indices (
	id               TEXT PRIMARY KEY,
	room_id          TEXT NOT NULL,
	session_id       TEXT NOT NULL,
	message_index    INTEGER NOT NULL,
	event_id         TEXT NOT NULL,
	origin_timestamp INTEGER NOT NULL,
	UNIQUE (room_id, session_id, message_index)
);

CREATE TABLE key_chain_links (
	id              TEXT PRIMARY KEY,
	signing_user_id TEXT NOT NULL,
	signing_key     TEXT NOT NULL,
	signed_user_id  TEXT NOT NULL,
	signed_key      TEXT NOT NULL
);
CREATE INDEX idx_key_chain_signed
	ON key_chain_links (signed_user_id, signed_key);

CREATE TABLE device_keys (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL,
	key_label      TEXT NOT NULL,
	signed_payload TEXT NOT NULL,
	trust_level    TEXT NOT NULL
);

CREATE TABLE outdated_keys (
	user_id TEXT PRIMARY KEY
);
`

// schemaV2InboundShadow rebuilds inbound_megolm_sessions with the
// has_been_backed_up column. SQLite cannot add a NOT NULL column with a
// rewrite-free ALTER on older versions, so the shadow-table pattern is used:
// the old table survives until the copy has fully committed.
const schemaV2InboundShadow = `
CREATE TABLE inbound_megolm_sessions_new (
	id                   TEXT PRIMARY KEY,
	sender_key           TEXT NOT NULL,
	sender_signing_key   TEXT NOT NULL,
	session_id           TEXT NOT NULL,
	room_id              TEXT NOT NULL,
	first_known_index    INTEGER NOT NULL,
	has_been_backed_up   BOOLEAN NOT NULL DEFAULT 0,
	is_trusted           BOOLEAN NOT NULL,
	forwarding_key_chain TEXT NOT NULL,
	pickled              TEXT NOT NULL
);
`

const schemaV2InboundCopy = `
INSERT INTO inbound_megolm_sessions_new
	(id, sender_key, sender_signing_key, session_id, room_id,
	 first_known_index, has_been_backed_up, is_trusted,
	 forwarding_key_chain, pickled)
SELECT id, sender_key, sender_signing_key, session_id, room_id,
	 first_known_index, 0, is_trusted, forwarding_key_chain, pickled
FROM inbound_megolm_sessions;
`
