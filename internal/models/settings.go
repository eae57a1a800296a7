package models

// Settings is the public system configuration clients load on start.
type Settings struct {
	Organization Organization `json:"organization"`
	MapProvider  string       `json:"mapProvider,omitempty"`
	MapAPIKey    string       `json:"mapApiKey,omitempty"`
}

func (s Settings) Validate() error {
	return s.Organization.Validate()
}

// DefaultSettings carries the fallback brand.
func DefaultSettings() Settings {
	return Settings{Organization: DefaultOrganization()}
}

type SettingsPatch struct {
	OrganizationName *string          `json:"organizationName,omitempty"`
	LogoFileID       Optional[string] `json:"logoFileId,omitzero"`
	AccentColor      *string          `json:"accentColor,omitempty"`
}

// Apply merges p onto the current organization.
func (p SettingsPatch) Apply(current Organization) Organization {
	next := current
	if p.OrganizationName != nil {
		next.Name = *p.OrganizationName
	}
	if p.LogoFileID.Set {
		next.LogoFileID = p.LogoFileID.Value
		next.LogoURL = ""
	}
	if p.AccentColor != nil {
		next.AccentColor = *p.AccentColor
	}
	return next
}
