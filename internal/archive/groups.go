package archive

import (
	"regexp"
	"sort"
)

// UngroupedKey collects folders whose names carry no recognizable year.
const UngroupedKey = "other"

var yearPattern = regexp.MustCompile(`(19[5-9]\d|20\d\d)`)

// GroupByYear buckets folder names by the first 4-digit year found in the
// name (1950-2099). Folders without a year go into the "other" bucket.
// Pure derivation over the name strings; it never touches the filesystem.
func GroupByYear(folders []string) map[string][]string {
	groups := make(map[string][]string)
	for _, name := range folders {
		key := UngroupedKey
		if match := yearPattern.FindString(name); match != "" {
			key = match
		}
		groups[key] = append(groups[key], name)
	}
	for _, names := range groups {
		sort.Strings(names)
	}
	return groups
}

// SortedYears returns the group keys in descending year order, with the
// "other" bucket last.
func SortedYears(groups map[string][]string) []string {
	years := make([]string, 0, len(groups))
	hasOther := false
	for key := range groups {
		if key == UngroupedKey {
			hasOther = true
			continue
		}
		years = append(years, key)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))
	if hasOther {
		years = append(years, UngroupedKey)
	}
	return years
}
