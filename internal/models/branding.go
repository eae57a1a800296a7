// internal/models/branding.go
package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"image/color"
	"math"
	"regexp"
	"strconv"
	"strings"

	dbgen "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db/generated"
)

// Accent colors back buttons and markers, not body text, so we use the AA large-text threshold.
const wcagAAMinContrastRatio = 3.0
const wcagAAContrastNote = "WCAG AA for large text/UI components"
const maxOrganizationNameLength = 100
const darkTextColor = "#000000"
const lightTextColor = "#FFFFFF"
const DefaultOrganizationName = "Coworking"
const DefaultAccentColor = "#2563EB"

var hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func IsHexColor(value string) bool {
	return hexColorRegex.MatchString(strings.TrimSpace(value))
}

// Organization is the branding shown by clients: name, logo and accent color.
type Organization struct {
	Name        string  `json:"name"`
	LogoFileID  *string `json:"logoFileId,omitempty"`
	LogoURL     string  `json:"logoUrl,omitempty"`
	AccentColor string  `json:"accentColor"`
}

// DefaultOrganization is used when no branding has been saved or it cannot be loaded.
func DefaultOrganization() Organization {
	return Organization{
		Name:        DefaultOrganizationName,
		AccentColor: DefaultAccentColor,
	}
}

func (o Organization) Validate() error {
	trimmedName := strings.TrimSpace(o.Name)
	if trimmedName == "" {
		return fmt.Errorf("name is required")
	}
	if trimmedName != o.Name {
		return fmt.Errorf("name must not have leading or trailing whitespace")
	}
	if len(trimmedName) > maxOrganizationNameLength {
		return fmt.Errorf("name must be %d characters or fewer", maxOrganizationNameLength)
	}
	if !hexColorRegex.MatchString(o.AccentColor) {
		return fmt.Errorf("accent_color must be a 6-digit hex color like #AABBCC")
	}
	return validateTextContrast("accent_color", o.AccentColor)
}

// OrganizationFromDB converts stored settings. fileURL builds public file URLs.
func OrganizationFromDB(row dbgen.SystemSetting, fileURL func(string) string) Organization {
	org := Organization{
		Name:        row.OrganizationName,
		AccentColor: row.AccentColor,
	}
	if row.LogoFileID.Valid {
		id := row.LogoFileID.String
		org.LogoFileID = &id
		if fileURL != nil {
			org.LogoURL = fileURL(id)
		}
	}
	return org
}

// LoadOrganization reads the saved branding, falling back to the defaults
// when nothing has been saved yet.
func LoadOrganization(ctx context.Context, q interface {
	GetSystemSettings(ctx context.Context) (dbgen.SystemSetting, error)
}, fileURL func(string) string) (Organization, error) {
	row, err := q.GetSystemSettings(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DefaultOrganization(), nil
		}
		return DefaultOrganization(), err
	}
	return OrganizationFromDB(row, fileURL), nil
}

// ParseHexColor converts #RRGGBB into an opaque color.
func ParseHexColor(hexColor string) (color.RGBA, error) {
	r, g, b, err := parseHexColor(strings.TrimSpace(hexColor))
	if err != nil {
		return color.RGBA{}, err
	}
	return color.RGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: 0xff}, nil
}

func validateTextContrast(colorName, backgroundColor string) error {
	textColors := []string{darkTextColor, lightTextColor}
	bestRatio := 0.0
	bestText := ""
	for _, textColor := range textColors {
		ratio, err := contrastRatio(textColor, backgroundColor)
		if err != nil {
			return err
		}
		if ratio > bestRatio {
			bestRatio = ratio
			bestText = textColor
		}
	}
	if bestRatio < wcagAAMinContrastRatio {
		return fmt.Errorf(
			"%s must have contrast ratio >= %.1f with #000000 or #FFFFFF text (%s); best is %s at %.2f",
			colorName,
			wcagAAMinContrastRatio,
			wcagAAContrastNote,
			bestText,
			bestRatio,
		)
	}
	return nil
}

func contrastRatio(textColor, backgroundColor string) (float64, error) {
	textL, err := relativeLuminance(textColor)
	if err != nil {
		return 0, err
	}
	backgroundL, err := relativeLuminance(backgroundColor)
	if err != nil {
		return 0, err
	}
	lightest := math.Max(textL, backgroundL)
	darkest := math.Min(textL, backgroundL)
	return (lightest + 0.05) / (darkest + 0.05), nil
}

func relativeLuminance(hexColor string) (float64, error) {
	r, g, b, err := parseHexColor(hexColor)
	if err != nil {
		return 0, err
	}
	return 0.2126*srgbToLinear(r) + 0.7152*srgbToLinear(g) + 0.0722*srgbToLinear(b), nil
}

func parseHexColor(hexColor string) (float64, float64, float64, error) {
	if !hexColorRegex.MatchString(hexColor) {
		return 0, 0, 0, fmt.Errorf("invalid hex color: %s", hexColor)
	}

	value, err := strconv.ParseUint(strings.TrimPrefix(hexColor, "#"), 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid hex color: %s", hexColor)
	}

	r := float64((value >> 16) & 0xFF)
	g := float64((value >> 8) & 0xFF)
	b := float64(value & 0xFF)

	return r / 255, g / 255, b / 255, nil
}

func srgbToLinear(value float64) float64 {
	if value <= 0.03928 {
		return value / 12.92
	}
	return math.Pow((value+0.055)/1.055, 2.4)
}
