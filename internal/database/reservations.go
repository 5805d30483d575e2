package database

import (
	"context"
	"database/sql"
	"fmt"

	"fomeninja/internal/models"
)

// LoadAll returns every stored reservation in id order, for seeding the
// in-memory store at startup.
func (d *DB) LoadAll(ctx context.Context) ([]models.Reservation, error) {
	query := `SELECT id, name, phone, COALESCE(email, ''), date, time, party_size,
                COALESCE(table_id, ''), COALESCE(notes, ''), status, created_at
              FROM reservations ORDER BY id`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load reservations: %w", err)
	}
	defer rows.Close()

	var reservations []models.Reservation
	for rows.Next() {
		var r models.Reservation
		if err := rows.Scan(&r.ID, &r.Name, &r.Phone, &r.Email, &r.Date, &r.Time,
			&r.PartySize, &r.TableID, &r.Notes, &r.Status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, r)
	}

	return reservations, rows.Err()
}

// UpsertReservation writes the full record, inserting or replacing by id.
func (d *DB) UpsertReservation(ctx context.Context, r *models.Reservation) error {
	query := `INSERT INTO reservations (
                id, name, phone, email, date, time, party_size, table_id, notes, status, created_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
            ON CONFLICT(id) DO UPDATE SET
                name = excluded.name,
                phone = excluded.phone,
                email = excluded.email,
                date = excluded.date,
                time = excluded.time,
                party_size = excluded.party_size,
                table_id = excluded.table_id,
                notes = excluded.notes,
                status = excluded.status`

	_, err := d.db.ExecContext(ctx, query,
		r.ID, r.Name, r.Phone, r.Email, r.Date, r.Time,
		r.PartySize, r.TableID, r.Notes, r.Status, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert reservation: %w", err)
	}
	return nil
}

// UpdateReservationStatus updates the status column only.
func (d *DB) UpdateReservationStatus(ctx context.Context, id int64, status string) error {
	result, err := d.db.ExecContext(ctx,
		`UPDATE reservations SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByStatus returns reservation counts grouped by status, for reporting.
func (d *DB) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM reservations GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count reservations: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
