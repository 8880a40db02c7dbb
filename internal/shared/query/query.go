// Package query carries the find-configuration shared by every listing surface:
// selected fields, relation expansion names, and skip/take pagination.
package query

// DefaultTake bounds listings when the caller does not ask for a page size.
const DefaultTake = 10

// Page is a skip/take window over a listing. A Take of zero or less means
// "no limit"; repositories honor the page as given, the service surface
// normalizes to DefaultTake.
type Page struct {
	Skip int
	Take int
}

// Normalize applies the default page size and clamps a negative skip.
func (p Page) Normalize() Page {
	if p.Take <= 0 {
		p.Take = DefaultTake
	}
	if p.Skip < 0 {
		p.Skip = 0
	}
	return p
}

// Unbounded returns true when the page places no cap on the result set.
func (p Page) Unbounded() bool { return p.Take <= 0 }

// FindConfig bundles field selection, relation expansion, and pagination.
type FindConfig struct {
	Fields    []string
	Relations []string
	Page      Page
}
