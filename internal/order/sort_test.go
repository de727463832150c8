package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestSortItems(t *testing.T) {
	defaultOrder := []Item{
		{ID: "a.md"},
		{ID: "b.md"},
		{ID: "dir", IsFolder: true},
		{ID: "z.md"},
	}

	tests := []struct {
		name         string
		sequence     []string
		foldersFirst bool
		want         []string
	}{
		{
			name:     "NoSequence",
			sequence: nil,
			want:     []string{"a.md", "b.md", "dir", "z.md"},
		},
		{
			name:         "NoSequenceFoldersFirst",
			sequence:     nil,
			foldersFirst: true,
			want:         []string{"dir", "a.md", "b.md", "z.md"},
		},
		{
			name:     "SequenceOrder",
			sequence: []string{"z.md", "dir", "a.md", "b.md"},
			want:     []string{"z.md", "dir", "a.md", "b.md"},
		},
		{
			name:         "FoldersFirstBeatsSequence",
			sequence:     []string{"z.md", "dir", "a.md", "b.md"},
			foldersFirst: true,
			want:         []string{"dir", "z.md", "a.md", "b.md"},
		},
		{
			name:     "UnknownItemsLastInDefaultOrder",
			sequence: []string{"z.md", "a.md"},
			want:     []string{"z.md", "a.md", "b.md", "dir"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SortItems(defaultOrder, tt.sequence, tt.foldersFirst)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestSortItemsDoesNotMutateInput(t *testing.T) {
	in := []Item{{ID: "a"}, {ID: "b"}}
	SortItems(in, []string{"b", "a"}, false)
	assert.Equal(t, []string{"a", "b"}, ids(in))
}

func TestCompare(t *testing.T) {
	index := map[string]int{"a": 0, "b": 1}
	assert.Negative(t, Compare(Item{ID: "a"}, Item{ID: "b"}, index, 2, false))
	assert.Positive(t, Compare(Item{ID: "x"}, Item{ID: "b"}, index, 2, false))
	assert.Zero(t, Compare(Item{ID: "x"}, Item{ID: "y"}, index, 2, false))
	assert.Negative(t, Compare(Item{ID: "x", IsFolder: true}, Item{ID: "a"}, index, 2, true))
}
