package dataset

// WorldConfig is the top-level structure of world.json: a flat list of zones.
// The upstream file carries more fields per zone; only the ones we use are mapped.
type WorldConfig []ZoneProps

// ZoneProps contains the zone properties of a world.json entry
type ZoneProps struct {
	Index      string `yaml:"Index"`
	UniqueName string `yaml:"UniqueName"`
}

// HideoutsConfig represents the top-level structure of hideouts.json
type HideoutsConfig struct {
	Hideouts []HideoutProps `yaml:"hideouts"`
}

// HideoutProps contains the properties of a reported hideout
type HideoutProps struct {
	ID           string `yaml:"id"`
	ZoneName     string `yaml:"zoneName"`
	GuildName    string `yaml:"guildName"`
	Server       string `yaml:"server"`
	ReportedDate string `yaml:"reportedDate"`
	Notes        string `yaml:"notes,omitempty"`
}
