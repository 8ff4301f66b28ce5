// Package gauge fetches and parses the NOAA river-gauge forecast page.
// The page carries its prediction table as the third HTML table, with two
// header rows, a "M/D HH:MM" timestamp column, and a height column of the
// form "4.69ft". Parsing is strict: a malformed table aborts the refresh
// cycle before any stored state is touched.
package gauge

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/k-devoe/riverWatch/internal/types"
)

// gaugeTimeLayout parses the table's bare month/day timestamps. The layout
// accepts both zero-padded and bare month/day digits.
const gaugeTimeLayout = "1/2 15:04"

// yearRollbackWindow governs year assignment for bare month/day timestamps.
// The parsed date first gets the current UTC year; if that lands it more than
// this far in the past, the date is assumed to belong to the next calendar
// year (a January table row parsed in late December). Forecast tables only
// look days ahead, so anything half a year stale is a rollover, not data.
const yearRollbackWindow = 180 * 24 * time.Hour

// predictionTableIndex is the position of the forecast table on the gauge
// page; the first two tables are layout chrome.
const predictionTableIndex = 2

// headerRows is the number of leading rows to skip in the prediction table.
const headerRows = 2

// ParseGaugeTime resolves a bare "M/D HH:MM" string to a UTC instant, using
// now to pick the year per the rollover policy above.
func ParseGaugeTime(s string, now time.Time) (time.Time, error) {
	parsed, err := time.Parse(gaugeTimeLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, types.NewAppError(types.ErrCodeUpstreamGaugeParse,
			fmt.Sprintf("invalid gauge timestamp %q", s), err)
	}

	resolved := time.Date(now.UTC().Year(), parsed.Month(), parsed.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, time.UTC)

	if now.Sub(resolved) > yearRollbackWindow {
		resolved = resolved.AddDate(1, 0, 0)
	}

	return resolved, nil
}

// parseHeight converts a height cell of the form "4.69ft" to feet.
func parseHeight(s string) (float64, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(s), "ft")
	height, err := strconv.ParseFloat(strings.TrimSpace(trimmed), 64)
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeUpstreamGaugeParse,
			fmt.Sprintf("invalid gauge height %q", s), err)
	}
	return height, nil
}

// ParseForecastTable extracts the forecast points from a gauge page. now
// anchors the year-rollover policy for the table's bare month/day timestamps.
func ParseForecastTable(r io.Reader, now time.Time) ([]types.ForecastPoint, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamGaugeParse,
			"gauge page is not parseable HTML", err)
	}

	tables := doc.Find("table")
	if tables.Length() <= predictionTableIndex {
		return nil, types.NewAppError(types.ErrCodeUpstreamGaugeParse,
			fmt.Sprintf("gauge page has %d tables, want at least %d", tables.Length(), predictionTableIndex+1),
			nil)
	}

	rows := tables.Eq(predictionTableIndex).Find("tr")
	if rows.Length() <= headerRows {
		return nil, types.NewAppError(types.ErrCodeUpstreamGaugeParse,
			"prediction table has no data rows", nil)
	}

	var points []types.ForecastPoint
	var rowErr error

	rows.Slice(headerRows, rows.Length()).EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() < 2 {
			rowErr = types.NewAppError(types.ErrCodeUpstreamGaugeParse,
				fmt.Sprintf("prediction row %d has %d cells, want 2", i, cells.Length()), nil)
			return false
		}

		timestamp, err := ParseGaugeTime(cells.Eq(0).Text(), now)
		if err != nil {
			rowErr = err
			return false
		}
		height, err := parseHeight(cells.Eq(1).Text())
		if err != nil {
			rowErr = err
			return false
		}

		points = append(points, types.ForecastPoint{Timestamp: timestamp, Height: height})
		return true
	})

	if rowErr != nil {
		return nil, rowErr
	}
	return points, nil
}
