package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/client"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/models"
)

const timeLayout = "2006-01-02 15:04"

func newFlagSet(name string, e *env) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.out)
	return fs
}

func cmdLogin(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("login", e)
	email := fs.String("email", "", "Account email")
	password := fs.String("password", os.Getenv("COWORK_PASSWORD"), "Password (or COWORK_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("login requires -email and -password")
	}
	resp, err := e.api.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Signed in as %s (%s)\n", resp.User.Name, resp.User.Role)
	return nil
}

func cmdLogout(_ context.Context, e *env, _ []string) error {
	if err := e.api.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(e.out, "Signed out")
	return nil
}

func cmdMe(ctx context.Context, e *env, _ []string) error {
	user, err := e.api.Me(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\t%d\n", user.ID)
	fmt.Fprintf(w, "Name\t%s\n", user.Name)
	fmt.Fprintf(w, "Email\t%s\n", user.Email)
	if user.Phone != "" {
		fmt.Fprintf(w, "Phone\t%s\n", user.Phone)
	}
	fmt.Fprintf(w, "Role\t%s\n", user.Role)
	return w.Flush()
}

func cmdBuildings(ctx context.Context, e *env, _ []string) error {
	buildings, err := e.api.Buildings(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tADDRESS\tHOURS\tLOCATION")
	for _, b := range buildings {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.5f,%.5f\n", b.ID, b.Name, b.Address, formatHours(b.OpenHours, b.Timezone), b.Latitude, b.Longitude)
	}
	return w.Flush()
}

func cmdFloors(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("floors", e)
	buildingID := fs.Int64("building", 0, "Coworking id")
	from := fs.String("from", "", "Window start ("+timeLayout+", default now)")
	to := fs.String("to", "", "Window end ("+timeLayout+")")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *buildingID <= 0 {
		return errors.New("floors requires -building")
	}
	window, err := parseWindow(*from, *to)
	if err != nil {
		return err
	}
	floors, err := e.api.Floors(ctx, *buildingID, window)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FLOOR\tPLACE\tNAME\tSTATUS\tFEATURES")
	for _, f := range floors {
		for _, p := range f.Places {
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n", f.Level, p.ID, p.Name, p.Status, strings.Join(p.Features, ","))
		}
	}
	return w.Flush()
}

func cmdBook(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("book", e)
	buildingID := fs.Int64("building", 0, "Coworking id")
	placeID := fs.Int64("place", 0, "Place id")
	startRaw := fs.String("start", "", "Start ("+timeLayout+" or RFC 3339)")
	endRaw := fs.String("end", "", "End; defaults to start plus -duration")
	duration := fs.Duration("duration", time.Hour, "Length when -end is not set")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *buildingID <= 0 || *placeID <= 0 || *startRaw == "" {
		return errors.New("book requires -building, -place and -start")
	}
	start, err := parseTime(*startRaw)
	if err != nil {
		return err
	}
	end := start.Add(*duration)
	if *endRaw != "" {
		if end, err = parseTime(*endRaw); err != nil {
			return err
		}
	}
	visit, err := e.api.Book(ctx, *buildingID, *placeID, start, end)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Booked visit %d: %s - %s (%s)\n", visit.ID,
		visit.Start.Local().Format(timeLayout), visit.End.Local().Format(timeLayout), visit.Status)
	return nil
}

func cmdCancel(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("cancel", e)
	buildingID := fs.Int64("building", 0, "Coworking id")
	placeID := fs.Int64("place", 0, "Place id")
	visitID := fs.Int64("visit", 0, "Visit id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *buildingID <= 0 || *placeID <= 0 || *visitID <= 0 {
		return errors.New("cancel requires -building, -place and -visit")
	}
	if err := e.api.CancelVisit(ctx, *buildingID, *placeID, *visitID); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Cancelled visit %d\n", *visitID)
	return nil
}

func cmdBookings(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("bookings", e)
	upcoming := fs.Bool("upcoming", false, "Only visits that have not ended")
	status := fs.String("status", "", "Filter by status (confirmed, pending, cancelled)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	visits, err := e.api.MyVisits(ctx, client.MyVisitsFilter{Status: models.VisitStatus(*status), UpcomingOnly: *upcoming})
	if err != nil {
		return err
	}
	return printVisits(e.out, visits)
}

func printVisits(out io.Writer, visits []models.VisitDetails) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOWORKING\tFLOOR\tPLACE\tSTART\tEND\tSTATUS\tVISITED")
	for _, v := range visits {
		loc := time.Local
		if tz, err := time.LoadLocation(v.Timezone); err == nil && v.Timezone != "" {
			loc = tz
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%s\t%s\t%t\n", v.ID, v.BuildingName, v.FloorLevel, v.PlaceName,
			v.Start.In(loc).Format(timeLayout), v.End.In(loc).Format(timeLayout), v.Status, v.Visited)
	}
	return w.Flush()
}

func cmdQR(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("qr", e)
	buildingID := fs.Int64("building", 0, "Coworking id")
	placeID := fs.Int64("place", 0, "Place id")
	visitID := fs.Int64("visit", 0, "Visit id")
	size := fs.Int("size", 0, "Image size in pixels (64-1024)")
	output := fs.String("o", "", "Output PNG path (default visit-<id>.png)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *buildingID <= 0 || *placeID <= 0 || *visitID <= 0 {
		return errors.New("qr requires -building, -place and -visit")
	}
	png, err := e.api.VisitQR(ctx, *buildingID, *placeID, *visitID, *size)
	if err != nil {
		return err
	}
	path := *output
	if path == "" {
		path = fmt.Sprintf("visit-%d.png", *visitID)
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return fmt.Errorf("write qr: %w", err)
	}
	fmt.Fprintf(e.out, "Saved %s\n", path)
	return nil
}

func cmdCheckin(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("checkin", e)
	buildingID := fs.Int64("building", 0, "Coworking id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *buildingID <= 0 || fs.NArg() != 1 {
		return errors.New("checkin requires -building and the scanned payload")
	}
	visit, err := e.api.Checkin(ctx, *buildingID, fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Checked in visit %d (place %d)\n", visit.ID, visit.PlaceID)
	return nil
}

func cmdSettings(ctx context.Context, e *env, _ []string) error {
	org := e.api.Branding(ctx)
	w := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Organization\t%s\n", org.Name)
	fmt.Fprintf(w, "Accent\t%s\n", org.AccentColor)
	if org.LogoURL != "" {
		fmt.Fprintf(w, "Logo\t%s\n", org.LogoURL)
	}
	return w.Flush()
}

func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	for _, layout := range []string{timeLayout, "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (use %q or RFC 3339)", raw, timeLayout)
}

func parseWindow(from, to string) (client.Window, error) {
	var window client.Window
	var err error
	if from != "" {
		if window.From, err = parseTime(from); err != nil {
			return window, err
		}
	}
	if to != "" {
		if window.To, err = parseTime(to); err != nil {
			return window, err
		}
	}
	return window, nil
}

func formatHours(h models.OpenHours, tz string) string {
	if h.Open == nil || h.Close == nil {
		return "24/7"
	}
	return fmt.Sprintf("%02d:00-%02d:00 %s", *h.Open, *h.Close, tz)
}
