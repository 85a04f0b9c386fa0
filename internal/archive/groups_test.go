package archive

import (
	"reflect"
	"testing"
)

func TestGroupByYear(t *testing.T) {
	tests := []struct {
		name    string
		folders []string
		want    map[string][]string
	}{
		{
			name:    "empty input",
			folders: nil,
			want:    map[string][]string{},
		},
		{
			name:    "plain years",
			folders: []string{"2003", "2001", "2003-06"},
			want: map[string][]string{
				"2001": {"2001"},
				"2003": {"2003", "2003-06"},
			},
		},
		{
			name:    "year embedded in name",
			folders: []string{"News 1999 (autumn)", "Sport 1999", "Weather 2010"},
			want: map[string][]string{
				"1999": {"News 1999 (autumn)", "Sport 1999"},
				"2010": {"Weather 2010"},
			},
		},
		{
			name:    "no year goes to other",
			folders: []string{"Misc", "12 pages", "1899 antique"},
			want: map[string][]string{
				"other": {"12 pages", "1899 antique", "Misc"},
			},
		},
		{
			name:    "first year wins",
			folders: []string{"1998-1999 season"},
			want: map[string][]string{
				"1998": {"1998-1999 season"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GroupByYear(tt.folders)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("GroupByYear(%v) = %v, want %v", tt.folders, got, tt.want)
			}
		})
	}
}

func TestSortedYears(t *testing.T) {
	groups := map[string][]string{
		"1999":  {"a"},
		"2010":  {"b"},
		"2003":  {"c"},
		"other": {"d"},
	}
	want := []string{"2010", "2003", "1999", "other"}
	if got := SortedYears(groups); !reflect.DeepEqual(got, want) {
		t.Errorf("SortedYears = %v, want %v", got, want)
	}
}

func TestSortedYearsNoOther(t *testing.T) {
	groups := map[string][]string{"2001": {"a"}, "2002": {"b"}}
	want := []string{"2002", "2001"}
	if got := SortedYears(groups); !reflect.DeepEqual(got, want) {
		t.Errorf("SortedYears = %v, want %v", got, want)
	}
}
