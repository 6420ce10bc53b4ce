//go:build !windows

package discovery

import "errors"

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

// ErrUnsupportedPlatform is returned by DiscoverInstalls outside Windows —
// the registry-backed uninstall-hive scan has no equivalent here. Callers
// are expected to fall back to a user-supplied install path and use Find
// directly.
var ErrUnsupportedPlatform = errors.New("registry-based game discovery is only available on windows")

// DiscoverInstalls is a documented no-op outside Windows (§6).
func DiscoverInstalls() ([]Install, error) {
	return nil, ErrUnsupportedPlatform
}
