package organizer

// SeriesGroups maps series instance UIDs to file paths, remembering the order
// in which each UID was first seen
type SeriesGroups struct {
	order []string
	files map[string][]string
}

// NewSeriesGroups returns an empty grouping
func NewSeriesGroups() *SeriesGroups {
	return &SeriesGroups{files: make(map[string][]string)}
}

// Add appends path to the group for uid, creating the group on first sight
func (g *SeriesGroups) Add(uid, path string) {
	if _, ok := g.files[uid]; !ok {
		g.order = append(g.order, uid)
	}
	g.files[uid] = append(g.files[uid], path)
}

// Len returns the number of distinct series
func (g *SeriesGroups) Len() int {
	return len(g.order)
}

// UIDs returns the series UIDs in first-seen order
func (g *SeriesGroups) UIDs() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Files returns the paths grouped under uid, in the order they were added
func (g *SeriesGroups) Files(uid string) []string {
	return g.files[uid]
}

// Each calls fn for every group in first-seen order
func (g *SeriesGroups) Each(fn func(uid string, files []string)) {
	for _, uid := range g.order {
		fn(uid, g.files[uid])
	}
}
