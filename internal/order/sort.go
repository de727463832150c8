package order

import "sort"

// Item is one child as rendered by the host.
type Item struct {
	ID       string
	IsFolder bool
}

// Compare orders a and b using index, the position of each id in a folder's
// sequence. Ids missing from index rank at n, after every known id. With
// foldersFirst a folder always precedes a file.
func Compare(a, b Item, index map[string]int, n int, foldersFirst bool) int {
	if foldersFirst && a.IsFolder != b.IsFolder {
		if a.IsFolder {
			return -1
		}
		return 1
	}
	ia, ok := index[a.ID]
	if !ok {
		ia = n
	}
	ib, ok := index[b.ID]
	if !ok {
		ib = n
	}
	return ia - ib
}

// SortItems returns items ordered by sequence. The sort is stable, so items
// with equal rank keep the host's default order. A nil sequence leaves the
// default order untouched apart from folders-first grouping.
func SortItems(items []Item, sequence []string, foldersFirst bool) []Item {
	out := append([]Item(nil), items...)
	index := make(map[string]int, len(sequence))
	for i, id := range sequence {
		if _, dup := index[id]; !dup {
			index[id] = i
		}
	}
	n := len(sequence)
	sort.SliceStable(out, func(i, j int) bool {
		return Compare(out[i], out[j], index, n, foldersFirst) < 0
	})
	return out
}
