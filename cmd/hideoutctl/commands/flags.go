package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/psykzz/avalon-hideout-mapper/internal/app"
	"github.com/psykzz/avalon-hideout-mapper/internal/domain"
	"github.com/psykzz/avalon-hideout-mapper/internal/index"
	"github.com/psykzz/avalon-hideout-mapper/internal/logger"
)

// DatasetFlags locates the datasets read by the offline commands.
type DatasetFlags struct {
	ZoneFile     string
	HideoutFile  string
	ZonePrefixes []string
	Verbose      bool
}

func addDatasetFlags(cmd *cobra.Command, flags *DatasetFlags) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.ZoneFile, "zone-file", "", "Path to world.json (defaults to the bundled dataset)")
	pf.StringVar(&flags.HideoutFile, "hideout-file", "", "Path to hideouts.json (defaults to the bundled dataset)")
	pf.StringSliceVar(&flags.ZonePrefixes, "zone-prefixes", []string{"AVALON", "TNL"}, "Tracked zone prefixes (AVALON zones are shown by index, others by name)")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "Log dataset loading to stderr")
}

// load reads the datasets named by the flags.
func (f *DatasetFlags) load() (*index.Snapshot, error) {
	log := logger.NewNop()
	if f.Verbose {
		log = logger.New("debug", true)
	}
	return app.LoadSnapshot(app.DatasetOptions{
		ZoneFile:     f.ZoneFile,
		HideoutFile:  f.HideoutFile,
		ZonePrefixes: f.ZonePrefixes,
	}, log, time.Now())
}

// parseServerFlag returns nil for an empty value.
func parseServerFlag(raw string) (*domain.Server, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	s, ok := domain.ParseServer(raw)
	if !ok {
		return nil, fmt.Errorf("%s, got %q", domain.InvalidServerMessage, raw)
	}
	return &s, nil
}
