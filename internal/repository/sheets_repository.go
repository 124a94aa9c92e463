package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/pradiptars/clan-storage-bot/internal/models"
	"github.com/pradiptars/clan-storage-bot/pkg/config"
	appErrors "github.com/pradiptars/clan-storage-bot/pkg/errors"
)

// SheetsStore persists items in a Google Sheets worksheet, one row per item
// in the fixed Header column order.
type SheetsStore struct {
	svc           *sheets.Service
	spreadsheetID string
	worksheet     string
	loc           *time.Location
	logger        *zap.Logger
	connected     bool
}

// NewSheetsStore connects to the spreadsheet and ensures the header row. A
// connection failure is returned, not fatal; the caller may still fall back
// to secondary storage.
func NewSheetsStore(ctx context.Context, cfg config.SheetsConfig, loc *time.Location, logger *zap.Logger) (*SheetsStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsPath),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, "connect google sheets")
	}

	s := &SheetsStore{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		worksheet:     cfg.WorksheetName,
		loc:           loc,
		logger:        logger,
	}

	if err := s.ensureHeader(ctx); err != nil {
		return nil, err
	}
	s.connected = true
	logger.Info("connected to google sheets", zap.String("spreadsheet_id", cfg.SpreadsheetID))

	return s, nil
}

func (s *SheetsStore) ensureHeader(ctx context.Context) error {
	headerRange := fmt.Sprintf("%s!A1:G1", s.worksheet)

	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, headerRange).Context(ctx).Do()
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, "read sheet header")
	}

	if len(resp.Values) > 0 && headerMatches(resp.Values[0]) {
		return nil
	}

	row := make([]interface{}, len(Header))
	for i, h := range Header {
		row[i] = h
	}
	vr := &sheets.ValueRange{Values: [][]interface{}{row}}
	if _, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, headerRange, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, "write sheet header")
	}
	s.logger.Info("sheet header written")

	return nil
}

func headerMatches(row []interface{}) bool {
	if len(row) != len(Header) {
		return false
	}
	for i, h := range Header {
		if cellString(row[i]) != h {
			return false
		}
	}
	return true
}

// AddItem appends the item as a new row.
func (s *SheetsStore) AddItem(ctx context.Context, item models.Item) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{itemToRow(item)}}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.dataRange(), vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, "append sheet row")
	}
	return nil
}

// ListItems reads every data row, skipping rows that fail to parse.
func (s *SheetsStore) ListItems(ctx context.Context) ([]models.Item, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.dataRange()).Context(ctx).Do()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, "read sheet rows")
	}

	items := make([]models.Item, 0, len(resp.Values))
	for i, row := range resp.Values {
		item, err := rowToItem(row, s.loc)
		if err != nil {
			s.logger.Warn("skipping malformed sheet row", zap.Int("row", i+2), zap.Error(err))
			continue
		}
		items = append(items, item)
	}

	return items, nil
}

// ListExpiring filters the full row set by expiry deadline.
func (s *SheetsStore) ListExpiring(ctx context.Context, deadline time.Time) ([]models.Item, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	var expiring []models.Item
	for _, item := range items {
		if !item.ExpireAt.After(deadline) {
			expiring = append(expiring, item)
		}
	}
	return expiring, nil
}

// NextSeq scans the sequence column for the current maximum.
func (s *SheetsStore) NextSeq(ctx context.Context) (int, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return 0, err
	}

	max := 0
	for _, item := range items {
		if item.Seq > max {
			max = item.Seq
		}
	}
	return max + 1, nil
}

// Connected reports whether the initial connection succeeded.
func (s *SheetsStore) Connected() bool {
	return s.connected
}

func (s *SheetsStore) dataRange() string {
	return fmt.Sprintf("%s!A2:G", s.worksheet)
}
