package gauge

import (
	"strings"
	"testing"
	"time"
)

// samplePage mirrors the NOAA gauge page shape: two chrome tables followed
// by the prediction table with two header rows.
const samplePage = `<html><body>
<table><tr><td>nav</td></tr></table>
<table><tr><td>banner</td></tr></table>
<table>
  <tr><th colspan="2">North Fork Stillaguamish</th></tr>
  <tr><th>Time</th><th>Stage</th></tr>
  <tr><td>12/18 16:00</td><td>2.48ft</td></tr>
  <tr><td>12/19 04:00</td><td>3.5ft</td></tr>
  <tr><td>12/20 16:00</td><td>4.69ft</td></tr>
</table>
</body></html>`

func TestParseForecastTable(t *testing.T) {
	now := time.Date(2022, 12, 18, 12, 0, 0, 0, time.UTC)

	points, err := ParseForecastTable(strings.NewReader(samplePage), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("parsed %d points, want 3", len(points))
	}

	wantFirst := time.Date(2022, 12, 18, 16, 0, 0, 0, time.UTC)
	if !points[0].Timestamp.Equal(wantFirst) {
		t.Errorf("first timestamp = %v, want %v", points[0].Timestamp, wantFirst)
	}
	if points[0].Height != 2.48 {
		t.Errorf("first height = %v, want 2.48", points[0].Height)
	}
	if points[2].Height != 4.69 {
		t.Errorf("last height = %v, want 4.69", points[2].Height)
	}
}

func TestParseGaugeTime_YearAssignment(t *testing.T) {
	tests := []struct {
		name  string
		input string
		now   time.Time
		want  time.Time
	}{
		{
			name:  "same year",
			input: "12/20 16:00",
			now:   time.Date(2022, 12, 18, 12, 0, 0, 0, time.UTC),
			want:  time.Date(2022, 12, 20, 16, 0, 0, 0, time.UTC),
		},
		{
			name:  "january row parsed in late december rolls forward",
			input: "1/2 08:00",
			now:   time.Date(2022, 12, 30, 12, 0, 0, 0, time.UTC),
			want:  time.Date(2023, 1, 2, 8, 0, 0, 0, time.UTC),
		},
		{
			name:  "slightly past row stays in current year",
			input: "12/17 23:00",
			now:   time.Date(2022, 12, 18, 12, 0, 0, 0, time.UTC),
			want:  time.Date(2022, 12, 17, 23, 0, 0, 0, time.UTC),
		},
		{
			name:  "zero padded month and day",
			input: "01/02 08:00",
			now:   time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
			want:  time.Date(2023, 1, 2, 8, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGaugeTime(tt.input, tt.now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseGaugeTime(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseGaugeTime_Invalid(t *testing.T) {
	now := time.Date(2022, 12, 18, 12, 0, 0, 0, time.UTC)
	if _, err := ParseGaugeTime("not a time", now); err == nil {
		t.Fatal("want error for malformed timestamp")
	}
}

func TestParseForecastTable_Malformed(t *testing.T) {
	now := time.Date(2022, 12, 18, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		page string
	}{
		{
			name: "too few tables",
			page: `<html><body><table><tr><td>only one</td></tr></table></body></html>`,
		},
		{
			name: "no data rows",
			page: `<html><body>
<table></table><table></table>
<table><tr><th>a</th></tr><tr><th>b</th></tr></table>
</body></html>`,
		},
		{
			name: "bad height cell",
			page: `<html><body>
<table></table><table></table>
<table><tr><th>a</th></tr><tr><th>b</th></tr>
<tr><td>12/18 16:00</td><td>n/a</td></tr></table>
</body></html>`,
		},
		{
			name: "missing height column",
			page: `<html><body>
<table></table><table></table>
<table><tr><th>a</th></tr><tr><th>b</th></tr>
<tr><td>12/18 16:00</td></tr></table>
</body></html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseForecastTable(strings.NewReader(tt.page), now); err == nil {
				t.Fatal("want parse error")
			}
		})
	}
}
