// internal/app/system/timezones/timezones.go
package timezones

import (
	"embed"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

//go:embed timezonedata/timezones.json
var FS embed.FS

// Zone is one selectable display time zone.
type Zone struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Region string `json:"region,omitempty"`
}

// ZoneGroup is the zones of one region, for an <optgroup>.
type ZoneGroup struct {
	Region string
	Zones  []Zone
}

var (
	loadOnce sync.Once
	zones    []Zone
	byID     map[string]Zone
	loadErr  error

	groupsOnce sync.Once
	groups     []ZoneGroup
	groupsErr  error
)

func load() {
	loadOnce.Do(func() {
		data, err := FS.ReadFile("timezonedata/timezones.json")
		if err != nil {
			loadErr = err
			return
		}
		var list []Zone
		if err := json.Unmarshal(data, &list); err != nil {
			loadErr = err
			return
		}
		zones = list
		byID = make(map[string]Zone, len(list))
		for _, z := range list {
			byID[z.ID] = z
		}
	})
}

// Load reads the embedded list. Startup calls it to fail fast; every other
// function loads lazily.
func Load() error {
	load()
	return loadErr
}

// All returns the curated zones in file order.
func All() ([]Zone, error) {
	if err := Load(); err != nil {
		return nil, err
	}
	return zones, nil
}

// Label returns the display label for id, or id when it is not curated.
func Label(id string) string {
	if Load() != nil {
		return id
	}
	if z, ok := byID[id]; ok && z.Label != "" {
		return z.Label
	}
	return id
}

// Valid reports whether id is in the curated list.
func Valid(id string) bool {
	if Load() != nil {
		return false
	}
	_, ok := byID[id]
	return ok
}

// Location resolves a curated zone. Empty or unknown ids fall back to UTC,
// which is the zone the ERP stores schedule times in.
func Location(id string) *time.Location {
	if id == "" || !Valid(id) {
		return time.UTC
	}
	loc, err := time.LoadLocation(id)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Groups returns the zones grouped by region, regions and labels sorted.
func Groups() ([]ZoneGroup, error) {
	groupsOnce.Do(func() {
		if err := Load(); err != nil {
			groupsErr = err
			return
		}
		byRegion := make(map[string][]Zone)
		for _, z := range zones {
			region := z.Region
			if region == "" {
				region = "Other"
			}
			byRegion[region] = append(byRegion[region], z)
		}
		out := make([]ZoneGroup, 0, len(byRegion))
		for region, zs := range byRegion {
			sort.SliceStable(zs, func(i, j int) bool { return zs[i].Label < zs[j].Label })
			out = append(out, ZoneGroup{Region: region, Zones: zs})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Region < out[j].Region })
		groups = out
	})
	if groupsErr != nil {
		return nil, groupsErr
	}
	return groups, nil
}
