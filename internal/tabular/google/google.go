// Package google reads statement exports that were uploaded to Google Sheets.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"reikningar/internal/core"
	"reikningar/internal/tabular"
)

// Credentials selects how the Sheets service authenticates. JSON wins over
// File; when both are empty GOOGLE_APPLICATION_CREDENTIALS is consulted.
type Credentials struct {
	JSON string
	File string
}

// Source reads one sheet of a spreadsheet.
type Source struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	headerRow     int
	dateColumn    string
}

var _ tabular.Source = (*Source)(nil)

// New creates a Sheets-backed source using service account credentials.
func New(ctx context.Context, spreadsheetID, sheetName string, creds Credentials) (*Source, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, spreadsheetID, sheetName), nil
}

// NewWithService wraps an existing service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetName string) *Source {
	return &Source{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     strings.TrimSpace(sheetName),
		headerRow:     tabular.DefaultHeaderRow,
		dateColumn:    tabular.HeaderDate,
	}
}

// WithHeaderRow overrides the 0-based header row index.
func (s *Source) WithHeaderRow(row int) *Source {
	s.headerRow = row
	return s
}

func newSheetsService(ctx context.Context, creds Credentials) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(creds.JSON)
	serviceAccountFile := strings.TrimSpace(creds.File)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.DebugContext(ctx, "Creating Google Sheets service", "credentials_size", len(credentialsJSON))
	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Read implements tabular.Source. Values are requested unformatted so dates
// arrive as serial numbers and amounts as plain numbers.
func (s *Source) Read(ctx context.Context) (*tabular.Sheet, error) {
	if s.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := s.sheetName
	if rng == "" {
		rng = "A:Z"
	}
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", core.ErrExternalService, rng, err)
	}

	out, err := tabular.FromMatrix(s.name(), resp.Values, s.headerRow)
	if err != nil {
		return nil, err
	}
	out.ConvertSerialDates(s.dateColumn)
	return out, nil
}

func (s *Source) name() string {
	if s.sheetName == "" {
		return s.spreadsheetID
	}
	return s.spreadsheetID + "/" + s.sheetName
}
