package conventions

import (
	"path/filepath"
	"strings"
)

const (
	// DefaultDataDir is the default zonectl data directory name (relative to home).
	DefaultDataDir = ".zonectl"
	// TemplatesDir is the subdirectory for zone configuration templates.
	TemplatesDir = "templates"
	// ConsolesDir is the subdirectory for zone console session bookkeeping.
	ConsolesDir = "consoles"

	// DBFile is the filename of the sqlite state database.
	DBFile = "zonectl.db"

	// ZoneLinkSeparator joins a zone name and a link suffix into the
	// conventional VNIC name (`web01_net0`). Links named this way are swept
	// with their zone.
	ZoneLinkSeparator = "_"
)

// DBPath returns the full path to the state database.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DBFile)
}

// TemplatePath returns the full path to a named zone template.
func TemplatePath(dataDir, name string) string {
	return filepath.Join(dataDir, TemplatesDir, name+".yaml")
}

// ConsolePIDPath returns the path of the PID file for a zone console session.
func ConsolePIDPath(dataDir, zoneName string) string {
	return filepath.Join(dataDir, ConsolesDir, zoneName+".pid")
}

// ZoneLinkPrefix returns the naming prefix of the links owned by a zone.
func ZoneLinkPrefix(zoneName string) string {
	return zoneName + ZoneLinkSeparator
}

// LinkBelongsToZone reports whether a link follows the zone's naming
// convention.
func LinkBelongsToZone(link, zoneName string) bool {
	return strings.HasPrefix(link, ZoneLinkPrefix(zoneName))
}
