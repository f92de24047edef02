package domain

import (
	"fmt"
	"strings"
)

// Server is one of the three game-world regions.
type Server string

const (
	ServerAmerica Server = "America"
	ServerEurope  Server = "Europe"
	ServerAsia    Server = "Asia"
)

// Servers lists every server in canonical order.
var Servers = []Server{ServerAmerica, ServerEurope, ServerAsia}

// ParseServer returns the Server named exactly s.
func ParseServer(s string) (Server, bool) {
	for _, srv := range Servers {
		if string(srv) == s {
			return srv, true
		}
	}
	return "", false
}

// ServerChoices renders the servers for user facing messages.
// Example: "America, Europe, Asia"
func ServerChoices() string {
	names := make([]string, len(Servers))
	for i, s := range Servers {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// InvalidServerMessage is the message returned for any unknown server value.
var InvalidServerMessage = fmt.Sprintf("Server must be one of: %s", ServerChoices())

// Hideout is a previously reported hideout from the read-side dataset.
type Hideout struct {
	ID           string `json:"id"`
	ZoneName     string `json:"zoneName"`
	GuildName    string `json:"guildName"`
	Server       Server `json:"server"`
	ReportedDate string `json:"reportedDate"`
	Notes        string `json:"notes,omitempty"`
}

// GuildHideouts groups the hideouts of a single guild.
type GuildHideouts struct {
	Guild    string     `json:"guild"`
	Count    int        `json:"count"`
	Hideouts []*Hideout `json:"hideouts"`
}
