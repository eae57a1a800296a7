package models

import (
	"fmt"
	"strings"
	"time"

	dbgen "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db/generated"
)

const (
	maxBuildingNameLength = 200
	maxBuildingPhotos     = 20
)

// OpenHours are local hours in the building's timezone. Nil hours mean the
// building is open around the clock.
type OpenHours struct {
	Open  *int `json:"openHour"`
	Close *int `json:"closeHour"`
}

func (h OpenHours) AlwaysOpen() bool {
	return h.Open == nil && h.Close == nil
}

func (h OpenHours) Validate() error {
	if h.AlwaysOpen() {
		return nil
	}
	if h.Open == nil || h.Close == nil {
		return fmt.Errorf("openHour and closeHour must both be set or both be null")
	}
	if *h.Open < 0 || *h.Open > 23 {
		return fmt.Errorf("openHour must be between 0 and 23")
	}
	if *h.Close < 1 || *h.Close > 24 {
		return fmt.Errorf("closeHour must be between 1 and 24")
	}
	if *h.Open >= *h.Close {
		return fmt.Errorf("openHour must be before closeHour")
	}
	return nil
}

// Contains reports whether [start,end) falls inside the open hours of the
// local day start begins on.
func (h OpenHours) Contains(start, end time.Time, loc *time.Location) bool {
	if h.AlwaysOpen() {
		return true
	}
	if h.Open == nil || h.Close == nil {
		return false
	}
	if loc == nil {
		loc = time.UTC
	}
	localStart := start.In(loc)
	y, m, d := localStart.Date()
	opens := time.Date(y, m, d, *h.Open, 0, 0, 0, loc)
	closes := time.Date(y, m, d, *h.Close, 0, 0, 0, loc)
	return !localStart.Before(opens) && !end.After(closes)
}

// DailyHours is how many hours a day the building is open.
func (h OpenHours) DailyHours() float64 {
	if h.Open == nil || h.Close == nil || *h.Close <= *h.Open {
		return 24
	}
	return float64(*h.Close - *h.Open)
}

type Building struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Photos      []string `json:"photos"`
	PhotoURLs   []string `json:"photoUrls"`
	OpenHours
	Timezone string  `json:"timezone"`
	Floors   []Floor `json:"floors,omitempty"`
}

func (b Building) Validate() error {
	if b.ID <= 0 {
		return fmt.Errorf("building id must be positive")
	}
	if b.Name == "" {
		return fmt.Errorf("building name is required")
	}
	return b.OpenHours.Validate()
}

// Location loads the building timezone, falling back to UTC.
func (b Building) Location() *time.Location {
	return LoadLocation(b.Timezone)
}

func BuildingFromDB(row dbgen.Building, photos []string, fileURL func(string) string) Building {
	b := Building{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Address:     row.Address,
		Latitude:    row.Latitude,
		Longitude:   row.Longitude,
		Photos:      photos,
		PhotoURLs:   make([]string, 0, len(photos)),
		Timezone:    row.Timezone,
	}
	if b.Photos == nil {
		b.Photos = []string{}
	}
	if row.OpenHour.Valid && row.CloseHour.Valid {
		open, closeHour := int(row.OpenHour.Int64), int(row.CloseHour.Int64)
		b.Open, b.Close = &open, &closeHour
	}
	for _, id := range b.Photos {
		if fileURL != nil {
			b.PhotoURLs = append(b.PhotoURLs, fileURL(id))
		}
	}
	return b
}

// BuildingInput is the body of create requests and the merged state of
// partial updates.
type BuildingInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Photos      []string `json:"photos"`
	OpenHour    *int     `json:"openHour"`
	CloseHour   *int     `json:"closeHour"`
	Timezone    string   `json:"timezone"`
}

func (in BuildingInput) Normalize() (BuildingInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Address = strings.TrimSpace(in.Address)
	in.Timezone = strings.TrimSpace(in.Timezone)

	if in.Name == "" {
		return in, fmt.Errorf("name is required")
	}
	if len(in.Name) > maxBuildingNameLength {
		return in, fmt.Errorf("name must be %d characters or fewer", maxBuildingNameLength)
	}
	if in.Latitude < -90 || in.Latitude > 90 {
		return in, fmt.Errorf("latitude must be between -90 and 90")
	}
	if in.Longitude < -180 || in.Longitude > 180 {
		return in, fmt.Errorf("longitude must be between -180 and 180")
	}
	if err := (OpenHours{Open: in.OpenHour, Close: in.CloseHour}).Validate(); err != nil {
		return in, err
	}
	if in.Timezone == "" {
		in.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(in.Timezone); err != nil {
		return in, fmt.Errorf("timezone is invalid")
	}
	photos, err := normalizeFileIDs(in.Photos, maxBuildingPhotos)
	if err != nil {
		return in, fmt.Errorf("photos: %w", err)
	}
	in.Photos = photos
	return in, nil
}

// BuildingPatch is a partial update. Optional hours accept null to mark the
// building as open around the clock.
type BuildingPatch struct {
	Name        *string       `json:"name,omitempty"`
	Description *string       `json:"description,omitempty"`
	Address     *string       `json:"address,omitempty"`
	Latitude    *float64      `json:"latitude,omitempty"`
	Longitude   *float64      `json:"longitude,omitempty"`
	Photos      *[]string     `json:"photos,omitempty"`
	OpenHour    Optional[int] `json:"openHour,omitzero"`
	CloseHour   Optional[int] `json:"closeHour,omitzero"`
	Timezone    *string       `json:"timezone,omitempty"`
}

// Apply merges p into the current building state.
func (p BuildingPatch) Apply(current Building) BuildingInput {
	in := BuildingInput{
		Name:        current.Name,
		Description: current.Description,
		Address:     current.Address,
		Latitude:    current.Latitude,
		Longitude:   current.Longitude,
		Photos:      current.Photos,
		OpenHour:    current.Open,
		CloseHour:   current.Close,
		Timezone:    current.Timezone,
	}
	if p.Name != nil {
		in.Name = *p.Name
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.Address != nil {
		in.Address = *p.Address
	}
	if p.Latitude != nil {
		in.Latitude = *p.Latitude
	}
	if p.Longitude != nil {
		in.Longitude = *p.Longitude
	}
	if p.Photos != nil {
		in.Photos = *p.Photos
	}
	if p.OpenHour.Set {
		in.OpenHour = p.OpenHour.Value
	}
	if p.CloseHour.Set {
		in.CloseHour = p.CloseHour.Value
	}
	if p.Timezone != nil {
		in.Timezone = *p.Timezone
	}
	return in
}

// LoadLocation returns the named zone or UTC when it is empty or unknown.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func normalizeFileIDs(ids []string, limit int) ([]string, error) {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	if len(result) > limit {
		return nil, fmt.Errorf("at most %d files are allowed", limit)
	}
	return result, nil
}
