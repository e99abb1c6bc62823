// Package sheets wraps the Google Sheets v4 API behind a narrow read-only
// client and the row predicates used to decide whether a worksheet tab has
// been filled in.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

const Scope = "https://www.googleapis.com/auth/spreadsheets.readonly"

// ErrAccessDenied reports that the external store rejected a read for a
// spreadsheet - typically because the sheet has not been shared with the
// service account. It is deliberately distinct from "tab has no data".
var ErrAccessDenied = errors.New("access denied")

// Client is a read-only Google Sheets client authenticated as a service
// account.
type Client struct {
	google *gsheets.Service
}

// NewClient builds a Sheets client from a service account credentials blob
// (the JSON key file contents).
func NewClient(ctx context.Context, credentials []byte) (*Client, error) {
	config, err := google.JWTConfigFromJSON(credentials, Scope)
	if err != nil {
		return nil, fmt.Errorf("invalid service account credentials (%v)", err)
	}

	service, err := gsheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets client (%v)", err)
	}

	return &Client{google: service}, nil
}

// Read fetches a cell range (e.g. "Unit Test!A2:Z1000") from a spreadsheet and
// returns the rows as strings. A missing tab or unparseable range is treated
// as an empty result rather than an error so that a single misnamed tab
// degrades to 'not filled' instead of failing the whole spreadsheet. A 403
// from the API is returned as ErrAccessDenied.
func (c *Client) Read(ctx context.Context, spreadsheetID, area string) ([][]string, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, fmt.Errorf("missing spreadsheet ID")
	}

	if strings.TrimSpace(area) == "" {
		return nil, fmt.Errorf("missing spreadsheet range")
	}

	response, err := c.google.Spreadsheets.Values.Get(spreadsheetID, area).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error

		switch {
		case errors.As(err, &gerr) && gerr.Code == http.StatusForbidden:
			return nil, fmt.Errorf("%w for spreadsheet %s", ErrAccessDenied, spreadsheetID)

		case errors.As(err, &gerr) && (gerr.Code == http.StatusBadRequest || gerr.Code == http.StatusNotFound):
			// tab/range does not exist
			return [][]string{}, nil

		default:
			return nil, fmt.Errorf("unable to retrieve data from spreadsheet %s (%v)", spreadsheetID, err)
		}
	}

	rows := make([][]string, 0, len(response.Values))
	for _, record := range response.Values {
		row := make([]string, 0, len(record))
		for _, cell := range record {
			row = append(row, fmt.Sprintf("%v", cell))
		}

		rows = append(rows, row)
	}

	return rows, nil
}
