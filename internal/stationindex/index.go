// Package stationindex answers the two station queries the map needs:
// the previous/next station along a line and a substring search by name.
package stationindex

import (
	"cmp"
	"iter"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/models"
)

// MaxSearchResults caps the number of stations a search yields
const MaxSearchResults = 5

// Index is a read-only view over a station collection. It is safe for
// concurrent use once built.
type Index struct {
	all    []models.Station               // dataset order
	folded []string                       // case-folded names, parallel to all
	byLine map[models.Line][]models.Station // ascending id per line
	byID   map[int]int                    // id -> position in all
}

// New builds the index. Stations are copied; later changes to the input
// slice are not observed.
func New(stations []models.Station) *Index {
	fold := cases.Fold()

	idx := &Index{
		all:    slices.Clone(stations),
		folded: make([]string, len(stations)),
		byLine: make(map[models.Line][]models.Station),
		byID:   make(map[int]int, len(stations)),
	}

	for i, s := range idx.all {
		idx.folded[i] = fold.String(s.Name)
		idx.byID[s.ID] = i
		idx.byLine[s.Line] = append(idx.byLine[s.Line], s)
	}

	for line, seq := range idx.byLine {
		slices.SortStableFunc(seq, func(a, b models.Station) int {
			return cmp.Compare(a.ID, b.ID)
		})
		idx.byLine[line] = seq
	}

	return idx
}

// Len returns the number of indexed stations
func (idx *Index) Len() int {
	return len(idx.all)
}

// All returns every station in dataset order
func (idx *Index) All() []models.Station {
	return slices.Clone(idx.all)
}

// Station looks a station up by id
func (idx *Index) Station(id int) (models.Station, bool) {
	i, ok := idx.byID[id]
	if !ok {
		return models.Station{}, false
	}
	return idx.all[i], true
}

// Line returns the stations of a line ordered by ascending id
func (idx *Index) Line(line models.Line) []models.Station {
	return slices.Clone(idx.byLine[line])
}

// Lines returns the lines that have at least one station, in display order
func (idx *Index) Lines() []models.Line {
	var lines []models.Line
	for _, l := range models.AllLines() {
		if len(idx.byLine[l]) > 0 {
			lines = append(lines, l)
		}
	}
	return lines
}

// NeighborsOf returns the stations immediately before and after s on its
// line. previous is nil for the first station, next is nil for the last,
// and both are nil when s is not part of its line's sequence.
func (idx *Index) NeighborsOf(s models.Station) (previous, next *models.Station) {
	seq := idx.byLine[s.Line]

	pos, found := slices.BinarySearchFunc(seq, s.ID, func(e models.Station, id int) int {
		return cmp.Compare(e.ID, id)
	})
	if !found {
		return nil, nil
	}

	if pos > 0 {
		p := seq[pos-1]
		previous = &p
	}
	if pos < len(seq)-1 {
		n := seq[pos+1]
		next = &n
	}
	return previous, next
}

// Search yields up to MaxSearchResults stations whose name contains query,
// ignoring case, in dataset order. The sequence is lazy and can be ranged
// over any number of times. A blank query yields nothing.
func (idx *Index) Search(query string) iter.Seq[models.Station] {
	query = strings.TrimSpace(query)
	if query == "" {
		return func(yield func(models.Station) bool) {}
	}
	needle := cases.Fold().String(query)

	return func(yield func(models.Station) bool) {
		found := 0
		for i, name := range idx.folded {
			if !strings.Contains(name, needle) {
				continue
			}
			if !yield(idx.all[i]) {
				return
			}
			found++
			if found == MaxSearchResults {
				return
			}
		}
	}
}
