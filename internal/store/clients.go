package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/smartbill/internal/model"
)

// ClientInput carries the editable fields of a client.
type ClientInput struct {
	Name       string
	HourlyRate float64
	Color      string
	Email      string
	Phone      string
	Company    string
}

func (in ClientInput) validate() error {
	if in.Name == "" {
		return fmt.Errorf("client name is required")
	}
	if in.HourlyRate < 0 {
		return ErrInvalidRate
	}
	return nil
}

func (in ClientInput) color() string {
	if in.Color == "" {
		return "#6C63FF"
	}
	return in.Color
}

const clientColumns = `id, name, hourly_rate, color, email, phone, company, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(r rowScanner) (model.Client, error) {
	var c model.Client
	var createdAt, updatedAt string
	if err := r.Scan(&c.ID, &c.Name, &c.HourlyRate, &c.Color, &c.Email, &c.Phone, &c.Company, &createdAt, &updatedAt); err != nil {
		return c, err
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return c, nil
}

func (s *Store) CreateClient(in ClientInput) (*model.Client, error) {
	if err := in.validate(); err != nil {
		return nil, fmt.Errorf("insert client: %w", err)
	}
	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO clients (id, name, hourly_rate, color, email, phone, company, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, in.Name, in.HourlyRate, in.color(), in.Email, in.Phone, in.Company, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert client: %w", err)
	}
	return s.GetClient(id)
}

func (s *Store) GetClient(id string) (*model.Client, error) {
	c, err := scanClient(s.db.QueryRow(`SELECT `+clientColumns+` FROM clients WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get client %q: %w", id, notFound(err))
	}
	return &c, nil
}

// ListClients returns all clients ordered by name.
func (s *Store) ListClients() ([]model.Client, error) {
	return s.listClients(context.Background())
}

func (s *Store) listClients(ctx context.Context) ([]model.Client, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []model.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (s *Store) UpdateClient(id string, in ClientInput) error {
	if err := in.validate(); err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`UPDATE clients SET name = ?, hourly_rate = ?, color = ?, email = ?, phone = ?, company = ?, updated_at = ?
		 WHERE id = ?`,
		in.Name, in.HourlyRate, in.color(), in.Email, in.Phone, in.Company, now, id,
	)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	return affected(res, "update client", id)
}

// DeleteClient removes a client. Entries that referenced it keep the
// dangling id.
func (s *Store) DeleteClient(id string) error {
	res, err := s.db.Exec(`DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return affected(res, "delete client", id)
}

type execResult interface {
	RowsAffected() (int64, error)
}

func affected(res execResult, op, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", op, id, ErrNotFound)
	}
	return nil
}
