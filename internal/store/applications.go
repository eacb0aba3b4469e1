package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/smartbill/internal/model"
)

const applicationColumns = `id, name, email, company, message, status, created_at, updated_at`

// stampLayout keeps nanoseconds at a fixed width so stamps sort lexically.
const stampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func scanApplication(r rowScanner) (model.Application, error) {
	var a model.Application
	var createdAt, updatedAt string
	if err := r.Scan(&a.ID, &a.Name, &a.Email, &a.Company, &a.Message, &a.Status, &createdAt, &updatedAt); err != nil {
		return a, err
	}
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	a.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return a, nil
}

// CreateApplication files a new partner application as pending.
func (s *Store) CreateApplication(name, email, company, message string) (*model.Application, error) {
	if name == "" || email == "" {
		return nil, fmt.Errorf("insert application: name and email are required")
	}
	id := uuid.NewString()
	now := time.Now().UTC().Format(stampLayout)
	_, err := s.db.Exec(
		`INSERT INTO partner_applications (id, name, email, company, message, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, name, email, company, message, model.ApplicationPending, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert application: %w", err)
	}
	return s.GetApplication(id)
}

func (s *Store) GetApplication(id string) (*model.Application, error) {
	a, err := scanApplication(s.db.QueryRow(`SELECT `+applicationColumns+` FROM partner_applications WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get application %q: %w", id, notFound(err))
	}
	return &a, nil
}

// ListApplications returns applications, oldest first, in submission order
// when stamps tie. An empty status returns all of them.
func (s *Store) ListApplications(status string) ([]model.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM partner_applications`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at, rowid`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var apps []model.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func (s *Store) SetApplicationStatus(id, status string) error {
	if !model.ValidApplicationStatus(status) {
		return fmt.Errorf("set application status %q: %w", status, ErrInvalidStatus)
	}
	now := time.Now().UTC().Format(stampLayout)
	res, err := s.db.Exec(
		`UPDATE partner_applications SET status = ?, updated_at = ? WHERE id = ?`, status, now, id,
	)
	if err != nil {
		return fmt.Errorf("set application status: %w", err)
	}
	return affected(res, "set application status", id)
}

func (s *Store) countApplications(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM partner_applications GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count applications: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{
		model.ApplicationPending:  0,
		model.ApplicationApproved: 0,
		model.ApplicationRejected: 0,
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
