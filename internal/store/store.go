// Package store provides SQLite-backed persistence for trips.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/palmvoyage/tripfund/internal/model"
	"github.com/shopspring/decimal"

	_ "modernc.org/sqlite" // register sqlite driver
)

const (
	dateLayout      = "2006-01-02"
	// fixed width so timestamps sort as text
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

var (
	// ErrNotFound is returned when no trip matches an ID or prefix.
	ErrNotFound = errors.New("trip not found")
	// ErrAmbiguous is returned when an ID prefix matches several trips.
	ErrAmbiguous = errors.New("trip id prefix is ambiguous")
)

// Store is the trip database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the trip database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening trip db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveTrip inserts or replaces a trip and its destinations. A nil ID is
// assigned a fresh one and CreatedAt is set on first save.
func (s *Store) SaveTrip(t *model.Trip) error {
	now := s.now().UTC()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`INSERT OR REPLACE INTO trips
		(id, name, lodging_mode, flight_cost, accommodation_cost, additional_expenses,
		 passengers, start_date, end_date, target_date,
		 monthly_per_person, monthly_total, funding_months, funding_date,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.Name, string(t.LodgingMode),
		t.FlightCost.String(), t.AccommodationCost.String(), t.AdditionalExpenses.String(),
		t.Passengers, dateValue(t.StartDate), dateValue(t.EndDate), dateValue(t.TargetDate),
		decimalValue(t.Funding.MonthlyPerPerson), decimalValue(t.Funding.MonthlyTotal),
		intValue(t.Funding.Months), dateValue(t.Funding.Date),
		t.CreatedAt.Format(timestampLayout), t.UpdatedAt.Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("saving trip: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM trip_destinations WHERE trip_id = ?", t.ID.String()); err != nil {
		return err
	}

	for i := range t.Destinations {
		d := &t.Destinations[i]
		if d.ID == uuid.Nil {
			d.ID = uuid.New()
		}
		var nights any
		var price any
		if d.HasLodging {
			nights = d.Nights
			price = d.PricePerNight.String()
		}
		_, err = tx.Exec(`INSERT INTO trip_destinations
			(id, trip_id, order_index, country, city, has_lodging, nights, price_per_night,
			 latitude, longitude, place_id, formatted_address)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.ID.String(), t.ID.String(), i, d.Country, d.City, boolInt(d.HasLodging), nights, price,
			floatValue(d.Latitude), floatValue(d.Longitude), stringValue(d.PlaceID), stringValue(d.FormattedAddress),
		)
		if err != nil {
			return fmt.Errorf("saving destination %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}

const tripColumns = `id, name, lodging_mode, flight_cost, accommodation_cost, additional_expenses,
	passengers, start_date, end_date, target_date,
	monthly_per_person, monthly_total, funding_months, funding_date,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (model.Trip, error) {
	var (
		t                               model.Trip
		id, mode, created, updated      string
		start, end, target, fundingDate sql.NullString
		monthlyPerPerson, monthlyTotal  decimal.NullDecimal
		fundingMonths                   sql.NullInt64
	)
	err := row.Scan(&id, &t.Name, &mode, &t.FlightCost, &t.AccommodationCost, &t.AdditionalExpenses,
		&t.Passengers, &start, &end, &target,
		&monthlyPerPerson, &monthlyTotal, &fundingMonths, &fundingDate,
		&created, &updated)
	if err != nil {
		return t, err
	}

	t.ID, err = uuid.Parse(id)
	if err != nil {
		return t, fmt.Errorf("trip id %q: %w", id, err)
	}
	t.LodgingMode = model.LodgingMode(mode)
	t.StartDate = parseDate(start)
	t.EndDate = parseDate(end)
	t.TargetDate = parseDate(target)
	t.Funding.Date = parseDate(fundingDate)
	if monthlyPerPerson.Valid {
		t.Funding.MonthlyPerPerson = &monthlyPerPerson.Decimal
	}
	if monthlyTotal.Valid {
		t.Funding.MonthlyTotal = &monthlyTotal.Decimal
	}
	if fundingMonths.Valid {
		m := int(fundingMonths.Int64)
		t.Funding.Months = &m
	}
	t.CreatedAt, _ = time.Parse(timestampLayout, created)
	t.UpdatedAt, _ = time.Parse(timestampLayout, updated)
	return t, nil
}

// GetTrip loads one trip with its destinations.
func (s *Store) GetTrip(id uuid.UUID) (model.Trip, error) {
	row := s.db.QueryRow("SELECT "+tripColumns+" FROM trips WHERE id = ?", id.String())
	t, err := scanTrip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Trip{}, ErrNotFound
	}
	if err != nil {
		return model.Trip{}, err
	}

	byTrip, err := s.loadDestinations("WHERE trip_id = ?", id.String())
	if err != nil {
		return model.Trip{}, err
	}
	t.Destinations = byTrip[t.ID]
	return t, nil
}

// FindTrip resolves a full trip ID or a unique ID prefix.
func (s *Store) FindTrip(ref string) (model.Trip, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if id, err := uuid.Parse(ref); err == nil {
		return s.GetTrip(id)
	}
	if ref == "" {
		return model.Trip{}, ErrNotFound
	}

	rows, err := s.db.Query("SELECT id FROM trips WHERE id LIKE ? LIMIT 2", ref+"%")
	if err != nil {
		return model.Trip{}, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return model.Trip{}, err
		}
		ids = append(ids, id)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return model.Trip{}, err
	}

	switch len(ids) {
	case 0:
		return model.Trip{}, ErrNotFound
	case 1:
		return s.GetTrip(uuid.MustParse(ids[0]))
	default:
		return model.Trip{}, fmt.Errorf("%w: %s", ErrAmbiguous, ref)
	}
}

// ListTrips returns every trip, newest first.
func (s *Store) ListTrips() ([]model.Trip, error) {
	rows, err := s.db.Query("SELECT " + tripColumns + " FROM trips ORDER BY created_at DESC, id")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var trips []model.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	byTrip, err := s.loadDestinations("")
	if err != nil {
		return nil, err
	}
	for i := range trips {
		trips[i].Destinations = byTrip[trips[i].ID]
	}
	return trips, nil
}

func (s *Store) loadDestinations(where string, args ...any) (map[uuid.UUID][]model.Destination, error) {
	rows, err := s.db.Query(`SELECT
		id, trip_id, country, city, has_lodging, nights, price_per_night,
		latitude, longitude, place_id, formatted_address
		FROM trip_destinations `+where+` ORDER BY trip_id, order_index`, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make(map[uuid.UUID][]model.Destination)
	for rows.Next() {
		var (
			d                  model.Destination
			id, tripID         string
			hasLodging         int
			nights             sql.NullInt64
			price              decimal.NullDecimal
			lat, lng           sql.NullFloat64
			placeID, formatted sql.NullString
		)
		if err := rows.Scan(&id, &tripID, &d.Country, &d.City, &hasLodging, &nights, &price,
			&lat, &lng, &placeID, &formatted); err != nil {
			return nil, err
		}
		d.ID, _ = uuid.Parse(id)
		d.HasLodging = hasLodging != 0
		d.Nights = int(nights.Int64)
		if price.Valid {
			d.PricePerNight = price.Decimal
		}
		if lat.Valid && lng.Valid {
			d.Latitude, d.Longitude = &lat.Float64, &lng.Float64
		}
		d.PlaceID = placeID.String
		d.FormattedAddress = formatted.String

		key, err := uuid.Parse(tripID)
		if err != nil {
			continue
		}
		out[key] = append(out[key], d)
	}
	return out, rows.Err()
}

// DeleteTrip removes a trip and its destinations.
func (s *Store) DeleteTrip(id uuid.UUID) error {
	res, err := s.db.Exec("DELETE FROM trips WHERE id = ?", id.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// TripCount returns the number of saved trips.
func (s *Store) TripCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM trips").Scan(&count)
	return count, err
}

// Fingerprint changes whenever a trip is added, updated or removed.
type Fingerprint struct {
	Count       int
	LastUpdated string
}

// Fingerprint returns the current change marker of the trips table.
func (s *Store) Fingerprint() (Fingerprint, error) {
	var fp Fingerprint
	err := s.db.QueryRow("SELECT COUNT(*), COALESCE(MAX(updated_at), '') FROM trips").
		Scan(&fp.Count, &fp.LastUpdated)
	return fp, err
}

// FileInfo holds the tracked mtime and size of an imported file.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// GetTrackedFiles returns file_path -> FileInfo for every imported file.
func (s *Store) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := s.db.Query("SELECT file_path, mtime_ns, size_bytes FROM import_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// TrackFile records the state of an imported file.
func (s *Store) TrackFile(path string, fi FileInfo) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO import_tracker (file_path, mtime_ns, size_bytes)
		VALUES (?, ?, ?)`, path, fi.MtimeNs, fi.SizeBytes)
	return err
}

// DeleteFileTracker forgets an imported file.
func (s *Store) DeleteFileTracker(path string) error {
	_, err := s.db.Exec("DELETE FROM import_tracker WHERE file_path = ?", path)
	return err
}

func dateValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}

func parseDate(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, ns.String)
	if err != nil {
		return nil
	}
	return &t
}

func decimalValue(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func intValue(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

func floatValue(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func stringValue(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
