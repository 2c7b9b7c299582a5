// Package sheets is the Google Sheets record-store backend. One sheet, one
// row per registration, keyed by the processor id in column A.
package sheets

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

type Client struct {
	srv           *sheetsv4.Service
	spreadsheetID string
	sheet         string
}

func New(serviceAccountJSONPath, spreadsheetID, sheet string) (*Client, error) {
	if _, err := os.Stat(serviceAccountJSONPath); err != nil {
		return nil, fmt.Errorf("service account json: %w", err)
	}
	srv, err := sheetsv4.NewService(context.Background(),
		option.WithCredentialsFile(serviceAccountJSONPath),
		option.WithScopes(sheetsv4.SpreadsheetsScope),
	)
	if err != nil {
		return nil, err
	}
	return &Client{srv: srv, spreadsheetID: spreadsheetID, sheet: sheet}, nil
}

func (c *Client) Name() string { return "sheets" }

func (c *Client) SpreadsheetID() string { return c.spreadsheetID }
