package email

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// VisitDetails describes one booking for notification purposes.
type VisitDetails struct {
	OrganizationName string
	AccentColor      string
	UserName         string
	BuildingName     string
	PlaceName        string
	Start            time.Time
	End              time.Time
	Location         *time.Location
	Pending          bool
}

func FormatDateTimeRange(start, end time.Time) (string, string) {
	date := start.Format("Monday, Jan 2, 2006")
	timeRange := fmt.Sprintf("%s - %s %s", start.Format("15:04"), end.Format("15:04"), start.Format("MST"))
	return date, timeRange
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

const defaultAccent = "#2563EB"

type detailRow struct {
	Label string
	Value string
}

// visitView is the data rendered by the visitBody template.
type visitView struct {
	Organization string
	Accent       string
	UserName     string
	Intro        string
	Rows         []detailRow
}

func BuildVisitConfirmation(details VisitDetails) (Message, error) {
	if details.Pending {
		return buildVisitEmail(details, "Booking received", "Your booking was received and is waiting for confirmation by an administrator.")
	}
	return buildVisitEmail(details, "Booking confirmed", "Your booking is confirmed.")
}

func BuildVisitReminder(details VisitDetails) (Message, error) {
	return buildVisitEmail(details, "Upcoming booking", "Reminder: your booking is coming up. Show the QR code from the app at the front desk to check in.")
}

func BuildVisitCancellation(details VisitDetails) (Message, error) {
	return buildVisitEmail(details, "Booking cancelled", "Your booking has been cancelled.")
}

func buildVisitEmail(details VisitDetails, subjectPrefix, intro string) (Message, error) {
	view := newVisitView(details, intro)

	lines := []string{intro, ""}
	for _, row := range view.Rows {
		lines = append(lines, fmt.Sprintf("%s: %s", row.Label, row.Value))
	}
	lines = append(lines, "", view.Organization)

	var html bytes.Buffer
	if err := visitBody(view).Render(context.Background(), &html); err != nil {
		return Message{}, fmt.Errorf("render visit email: %w", err)
	}

	return Message{
		Subject: fmt.Sprintf("%s - %s", subjectPrefix, view.Rows[0].Value),
		Text:    strings.Join(lines, "\n"),
		HTML:    html.String(),
	}, nil
}

func newVisitView(details VisitDetails, intro string) visitView {
	org := strings.TrimSpace(details.OrganizationName)
	if org == "" {
		org = "Coworking"
	}
	accent := details.AccentColor
	if !hexColor.MatchString(accent) {
		accent = defaultAccent
	}
	building := strings.TrimSpace(details.BuildingName)
	if building == "" {
		building = "your coworking"
	}
	place := strings.TrimSpace(details.PlaceName)
	if place == "" {
		place = "TBD"
	}
	loc := details.Location
	if loc == nil {
		loc = time.UTC
	}
	date, timeRange := FormatDateTimeRange(details.Start.In(loc), details.End.In(loc))

	return visitView{
		Organization: org,
		Accent:       accent,
		UserName:     strings.TrimSpace(details.UserName),
		Intro:        intro,
		Rows: []detailRow{
			{"Coworking", building},
			{"Place", place},
			{"Date", date},
			{"Time", timeRange},
		},
	}
}
