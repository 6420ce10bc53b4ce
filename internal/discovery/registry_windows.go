//go:build windows

package discovery

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/windows/registry"
)

// Region classifies a discovered install by which game_info.xml it reads.
type Region string

const (
	RegionGlobal  Region = "Global"
	RegionCN      Region = "CN"
	RegionPT      Region = "PT"
	RegionUnknown Region = "Unknown"
)

// Install is one game installation found through the registry.
type Install struct {
	Path   string
	Region Region
}

var wellKnownPublishers = map[string]bool{
	"Wargaming.net":       true,
	"Lesta Studio":        true,
	"Wargaming Group Ltd": true,
}

type gameInfo struct {
	XMLName xml.Name `xml:"protocol"`
	ID      string   `xml:"game>id"`
}

// DiscoverInstalls enumerates the per-user uninstall hive, keeping entries
// from well-known publishers, and reads each one's game_info.xml to
// classify it (§6, "Platform entrypoint").
func DiscoverInstalls() ([]Install, error) {
	const uninstallKey = `SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall`

	root, err := registry.OpenKey(registry.CURRENT_USER, uninstallKey, registry.ENUMERATE_SUB_KEYS)
	if err != nil {
		return nil, fmt.Errorf("opening uninstall hive: %w", err)
	}
	defer root.Close()

	names, err := root.ReadSubKeyNames(-1)
	if err != nil {
		return nil, fmt.Errorf("enumerating uninstall hive: %w", err)
	}

	var installs []Install
	for _, name := range names {
		sub, err := registry.OpenKey(registry.CURRENT_USER, uninstallKey+`\`+name, registry.QUERY_VALUE)
		if err != nil {
			continue
		}

		publisher, _, err := sub.GetStringValue("Publisher")
		if err != nil || !wellKnownPublishers[publisher] {
			sub.Close()
			continue
		}

		installLocation, _, err := sub.GetStringValue("InstallLocation")
		sub.Close()
		if err != nil || installLocation == "" {
			continue
		}

		installs = append(installs, Install{
			Path:   installLocation,
			Region: classifyInstall(installLocation),
		})
	}

	return installs, nil
}

func classifyInstall(installLocation string) Region {
	data, err := os.ReadFile(filepath.Join(installLocation, "game_info.xml"))
	if err != nil {
		return RegionUnknown
	}

	var info gameInfo
	if err := xml.Unmarshal(data, &info); err != nil {
		return RegionUnknown
	}

	switch info.ID {
	case "WOWS.WW.PRODUCTION", "WOWS.WW.PT":
		if info.ID == "WOWS.WW.PT" {
			return RegionPT
		}
		return RegionGlobal
	case "WOWS.CN.PRODUCTION":
		return RegionCN
	default:
		return RegionUnknown
	}
}
