package google

import (
	"context"
	"errors"
	"fmt"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var ErrNoSheets = errors.New("spreadsheet has no sheets")

// Metadata is the part of the spreadsheet metadata the commands use.
type Metadata struct {
	Title       string
	SheetTitles []string
}

// sheetFetcher is the remote side of SheetsClient.
type sheetFetcher interface {
	Metadata(ctx context.Context, spreadsheetID string) (*Metadata, error)
	Values(ctx context.Context, spreadsheetID, rangeName string) ([][]string, error)
}

// SheetCache memoizes sheet values and metadata for the lifetime of the cache.
// Entries never expire; Clear drops them.
type SheetCache struct {
	values *cache.Cache
	meta   *cache.Cache
}

// NewSheetCache creates an empty cache.
func NewSheetCache() *SheetCache {
	return &SheetCache{
		values: cache.New(cache.NoExpiration, 0),
		meta:   cache.New(cache.NoExpiration, 0),
	}
}

// Clear invalidates every cached entry.
func (c *SheetCache) Clear() {
	c.values.Flush()
	c.meta.Flush()
}

// Len returns the number of cached entries.
func (c *SheetCache) Len() int {
	return c.values.ItemCount() + c.meta.ItemCount()
}

// SheetsClient reads spreadsheets through the Sheets API.
type SheetsClient struct {
	api    sheetFetcher
	cache  *SheetCache
	logger *zap.Logger
}

// NewSheetsClient creates a SheetsClient. A nil cache gets a fresh one.
func NewSheetsClient(ctx context.Context, cache *SheetCache, logger *zap.Logger, opts ...option.ClientOption) (*SheetsClient, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return newSheetsClient(&sheetsAPI{svc: svc}, cache, logger), nil
}

func newSheetsClient(api sheetFetcher, c *SheetCache, logger *zap.Logger) *SheetsClient {
	if c == nil {
		c = NewSheetCache()
	}
	return &SheetsClient{api: api, cache: c, logger: logger}
}

// Values returns the cell values of rangeName as strings.
func (c *SheetsClient) Values(ctx context.Context, spreadsheetID, rangeName string) ([][]string, error) {
	key := spreadsheetID + "|" + rangeName
	if v, ok := c.cache.values.Get(key); ok {
		return v.([][]string), nil
	}
	c.logger.Debug("fetching sheet values", zap.String("range", rangeName))
	values, err := c.api.Values(ctx, spreadsheetID, rangeName)
	if err != nil {
		return nil, fmt.Errorf("get sheet values: %w", err)
	}
	c.cache.values.SetDefault(key, values)
	return values, nil
}

// Metadata returns the title and sheet names of a spreadsheet.
func (c *SheetsClient) Metadata(ctx context.Context, spreadsheetID string) (*Metadata, error) {
	if v, ok := c.cache.meta.Get(spreadsheetID); ok {
		return v.(*Metadata), nil
	}
	md, err := c.api.Metadata(ctx, spreadsheetID)
	if err != nil {
		return nil, fmt.Errorf("get sheet metadata: %w", err)
	}
	c.cache.meta.SetDefault(spreadsheetID, md)
	return md, nil
}

// Title returns the spreadsheet title.
func (c *SheetsClient) Title(ctx context.Context, spreadsheetID string) (string, error) {
	md, err := c.Metadata(ctx, spreadsheetID)
	if err != nil {
		return "", err
	}
	return md.Title, nil
}

// SheetTitles returns the names of the sheets in tab order.
func (c *SheetsClient) SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error) {
	md, err := c.Metadata(ctx, spreadsheetID)
	if err != nil {
		return nil, err
	}
	return md.SheetTitles, nil
}

// FirstSheetValues returns all values of the first sheet.
func (c *SheetsClient) FirstSheetValues(ctx context.Context, spreadsheetID string) ([][]string, error) {
	titles, err := c.SheetTitles(ctx, spreadsheetID)
	if err != nil {
		return nil, err
	}
	if len(titles) == 0 {
		return nil, ErrNoSheets
	}
	return c.Values(ctx, spreadsheetID, titles[0])
}

// ── Sheets API adapter ──

type sheetsAPI struct {
	svc *sheets.Service
}

func (a *sheetsAPI) Metadata(ctx context.Context, spreadsheetID string) (*Metadata, error) {
	resp, err := a.svc.Spreadsheets.Get(spreadsheetID).
		Fields("properties.title", "sheets.properties.title").
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	md := &Metadata{}
	if resp.Properties != nil {
		md.Title = resp.Properties.Title
	}
	for _, s := range resp.Sheets {
		if s.Properties != nil {
			md.SheetTitles = append(md.SheetTitles, s.Properties.Title)
		}
	}
	return md, nil
}

func (a *sheetsAPI) Values(ctx context.Context, spreadsheetID, rangeName string) ([][]string, error) {
	resp, err := a.svc.Spreadsheets.Values.Get(spreadsheetID, rangeName).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		out[i] = make([]string, len(row))
		for j, v := range row {
			out[i][j] = fmt.Sprint(v)
		}
	}
	return out, nil
}
