package realtimedb

import (
	"context"

	"firebase.google.com/go/db"
)

// RealtimeDB is a Realtime DB abstraction layer interface
type RealtimeDB interface {
	Get(ctx context.Context, path string, v interface{}) error
	RunTransaction(ctx context.Context, path string, f db.UpdateFn) error
	Delete(ctx context.Context, path string) error
}

// Client to interact with Realtime DB
type Client struct {
	db *db.Client
}

// NewClient wraps an opened Realtime DB client.
func NewClient(client *db.Client) *Client {
	return &Client{db: client}
}

// Get reads the value at path into v
func (c *Client) Get(ctx context.Context, path string, v interface{}) error {
	return c.db.NewRef(path).Get(ctx, v)
}

// RunTransaction runs f in a transaction at given path in Realtime DB
func (c *Client) RunTransaction(ctx context.Context, path string, f db.UpdateFn) error {
	return c.db.NewRef(path).Transaction(ctx, f)
}

// Delete removes the value at path
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.db.NewRef(path).Delete(ctx)
}
