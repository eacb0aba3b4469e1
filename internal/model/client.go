package model

import "time"

// Client is a billable counterparty.
type Client struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	HourlyRate float64   `json:"hourly_rate"`
	Color      string    `json:"color,omitempty"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Company    string    `json:"company,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ClientIndex maps client ids to clients.
func ClientIndex(clients []Client) map[string]*Client {
	idx := make(map[string]*Client, len(clients))
	for i := range clients {
		idx[clients[i].ID] = &clients[i]
	}
	return idx
}
