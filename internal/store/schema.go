package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS trips (
    id                   TEXT PRIMARY KEY,
    name                 TEXT NOT NULL,
    lodging_mode         TEXT NOT NULL DEFAULT 'global',
    flight_cost          TEXT NOT NULL DEFAULT '0',
    accommodation_cost   TEXT NOT NULL DEFAULT '0',
    additional_expenses  TEXT NOT NULL DEFAULT '0',
    passengers           INTEGER NOT NULL DEFAULT 1,
    start_date           TEXT,
    end_date             TEXT,
    target_date          TEXT,
    monthly_per_person   TEXT,
    monthly_total        TEXT,
    funding_months       INTEGER,
    funding_date         TEXT,
    created_at           TEXT NOT NULL,
    updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS trip_destinations (
    id                   TEXT PRIMARY KEY,
    trip_id              TEXT NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
    order_index          INTEGER NOT NULL,
    country              TEXT NOT NULL,
    city                 TEXT NOT NULL,
    has_lodging          INTEGER NOT NULL DEFAULT 1,
    nights               INTEGER,
    price_per_night      TEXT,
    latitude             REAL,
    longitude            REAL,
    place_id             TEXT,
    formatted_address    TEXT
);

CREATE TABLE IF NOT EXISTS import_tracker (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trips_created ON trips(created_at);
CREATE INDEX IF NOT EXISTS idx_destinations_trip ON trip_destinations(trip_id, order_index);
`
