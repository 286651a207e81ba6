package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Artifact kinds produced by the service.
const (
	ArtifactDatasetOverlay = "dataset_overlay"
	ArtifactTableOverlay   = "table_overlay"
	ArtifactGeoJSON        = "geojson"
	ArtifactCSV            = "csv"
)

// Date is a calendar date used only to template output filenames.
type Date struct {
	Year  int
	Month int
	Day   int
}

// ParseDate parses "YYYY/MM/DD" (single-digit month and day allowed).
func ParseDate(s string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("invalid date %q: want YYYY/MM/DD", s)
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
		}
		nums[i] = n
	}
	d := Date{Year: nums[0], Month: nums[1], Day: nums[2]}
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
	if t.Year() != d.Year || int(t.Month()) != d.Month || t.Day() != d.Day {
		return Date{}, fmt.Errorf("invalid date %q: out of range", s)
	}
	return d, nil
}

// Today returns the current UTC date from the package clock.
func Today() Date {
	now := clock.Now().UTC()
	return Date{Year: now.Year(), Month: int(now.Month()), Day: now.Day()}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// ArtifactName builds "<prefix>_YYYY_MM_DD.<ext>", e.g.
// predicted_sst_2025_07_01.png.
func ArtifactName(prefix string, d Date, ext string) string {
	return fmt.Sprintf("%s_%04d_%02d_%02d.%s", prefix, d.Year, d.Month, d.Day, strings.TrimPrefix(ext, "."))
}

// ArtifactEvent announces a freshly written artifact.
type ArtifactEvent struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Path        string    `json:"path"`
	Variable    string    `json:"variable,omitempty"`
	Count       int       `json:"count,omitempty"` // rows or features written
	GeneratedAt time.Time `json:"generated_at"`
}

// NewArtifactEvent stamps an event with a random ID and the package clock.
func NewArtifactEvent(kind, path, variable string, count int) ArtifactEvent {
	return ArtifactEvent{
		ID:          uuid.NewString(),
		Kind:        kind,
		Path:        path,
		Variable:    variable,
		Count:       count,
		GeneratedAt: clock.Now().UTC(),
	}
}

// DatasetInfo summarizes one variable of a gridded dataset.
type DatasetInfo struct {
	Variable    string   `json:"variable_name"`
	LongName    string   `json:"long_name,omitempty"`
	Units       string   `json:"units,omitempty"`
	Source      string   `json:"source,omitempty"`
	Institution string   `json:"institution,omitempty"`
	Dimensions  []string `json:"dimensions"`
	Shape       []int    `json:"shape"`
}
