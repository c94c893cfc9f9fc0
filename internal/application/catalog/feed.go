package catalog

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/keyvault/backend/internal/infrastructure/csvfeed"
	"github.com/shopspring/decimal"
)

// ErrFeedMissingNameColumn is returned when the CSV header has no product name column
var ErrFeedMissingNameColumn = errors.New("catalog feed: header has no name column")

// FeedProduct is one row of the legacy catalog CSV feed
type FeedProduct struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Platform    string          `json:"platform,omitempty"`
	Price       decimal.Decimal `json:"price" swaggertype:"string" example:"49.90"`
	ImageURL    string          `json:"image_url"`
	Stock       *int            `json:"stock,omitempty"`
}

type column int

const (
	colID column = iota
	colName
	colDescription
	colCategory
	colPlatform
	colPrice
	colImage
	colStock
)

// headerAliases maps accepted header names, lower-cased, to columns.
// The feed has been exported by hand in both English and Portuguese.
var headerAliases = map[string]column{
	"id":          colID,
	"sku":         colID,
	"name":        colName,
	"nome":        colName,
	"title":       colName,
	"produto":     colName,
	"description": colDescription,
	"descricao":   colDescription,
	"descrição":   colDescription,
	"category":    colCategory,
	"categoria":   colCategory,
	"platform":    colPlatform,
	"plataforma":  colPlatform,
	"price":       colPrice,
	"preco":       colPrice,
	"preço":       colPrice,
	"valor":       colPrice,
	"image":       colImage,
	"image_url":   colImage,
	"imagem":      colImage,
	"stock":       colStock,
	"estoque":     colStock,
}

// ParseFeed reads a header-driven CSV. Unknown columns are ignored, rows
// without a name are skipped and unparseable prices become zero.
func ParseFeed(r io.Reader) ([]FeedProduct, error) {
	reader, err := csvfeed.NewReader(r, csvfeed.WithHeaderNormalizer(strings.ToLower))
	if err != nil {
		if errors.Is(err, csvfeed.ErrEmptyFile) {
			return []FeedProduct{}, nil
		}
		return nil, fmt.Errorf("catalog feed: %w", err)
	}
	if err := reader.ParseHeader(); err != nil {
		if errors.Is(err, csvfeed.ErrMissingHeader) {
			return []FeedProduct{}, nil
		}
		return nil, fmt.Errorf("catalog feed: %w", err)
	}

	headerOf := map[column]string{}
	for _, h := range reader.Headers() {
		if c, ok := headerAliases[h]; ok {
			if _, seen := headerOf[c]; !seen {
				headerOf[c] = h
			}
		}
	}
	if _, ok := headerOf[colName]; !ok {
		return nil, ErrFeedMissingNameColumn
	}

	products := make([]FeedProduct, 0)
	for {
		row, err := reader.ReadRow()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("catalog feed: %w", err)
		}

		field := func(c column) string {
			h, ok := headerOf[c]
			if !ok {
				return ""
			}
			return row.Get(h)
		}

		name := field(colName)
		if name == "" {
			continue
		}
		p := FeedProduct{
			ID:          row.GetOrDefault(headerOf[colID], strconv.Itoa(row.LineNumber-1)),
			Name:        name,
			Description: field(colDescription),
			Category:    field(colCategory),
			Platform:    field(colPlatform),
			Price:       parsePrice(field(colPrice)),
			ImageURL:    field(colImage),
		}
		if raw := field(colStock); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil {
				p.Stock = &n
			}
		}
		products = append(products, p)
	}
	return products, nil
}

// parsePrice accepts "49.90", "49,90", "R$ 1.049,90" and "1,049.90"
func parsePrice(raw string) decimal.Decimal {
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "R$"))
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma > lastDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case lastDot > lastComma:
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
