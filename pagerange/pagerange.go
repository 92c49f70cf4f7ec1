package pagerange

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrSpecEmpty is returned when a range or fixed spec is the empty string.
	ErrSpecEmpty = errors.New("pagerange: spec is empty")

	// ErrInvalidPageNumbers is returned for a range whose start exceeds its
	// end, for page 0, and for specs that fail validation.
	ErrInvalidPageNumbers = errors.New("pagerange: invalid page numbers")

	// ErrPageNumberOverflow is returned when a spec names a page past the
	// end of the document.
	ErrPageNumberOverflow = errors.New("pagerange: page number exceeds page count")

	// ErrFixedPageNumberOverflow is returned when a chunk size exceeds the
	// page count.
	ErrFixedPageNumberOverflow = errors.New("pagerange: chunk size exceeds page count")
)

// Both patterns are constants; MustCompile panics at init if either is
// malformed.
var (
	rangeSpecPattern = regexp.MustCompile(`^\s*\d+(?:-\d+)?\s*(?:,\s*\d+(?:-\d+)?\s*)*$`)
	fixedSpecPattern = regexp.MustCompile(`^\d+$`)
)

// Group is one output of a split: the 1-based pages it keeps, in order, and
// the label used to name it.
type Group struct {
	Pages []int
	Label string
}

// Validate reports whether spec is a well-formed range spec. Malformed specs
// return false with a nil error; only the empty spec is an error.
func Validate(spec string) (bool, error) {
	if spec == "" {
		return false, ErrSpecEmpty
	}
	return rangeSpecPattern.MatchString(spec), nil
}

// ValidateFixed reports whether spec is a well-formed chunk size.
func ValidateFixed(spec string) (bool, error) {
	if spec == "" {
		return false, ErrSpecEmpty
	}
	return fixedSpecPattern.MatchString(spec), nil
}

// ParseFixed validates spec and returns the chunk size it names.
func ParseFixed(spec string) (int, error) {
	ok, err := ValidateFixed(spec)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: %q is not a chunk size", ErrInvalidPageNumbers, spec)
	}
	size, err := strconv.Atoi(spec)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrFixedPageNumberOverflow, spec)
	}
	if size < 1 {
		return 0, fmt.Errorf("%w: chunk size must be at least 1", ErrInvalidPageNumbers)
	}
	return size, nil
}

// Parse turns a range spec into groups, one per comma-separated token, for a
// document of maxPages pages. Each label is the token exactly as written
// between its commas.
func Parse(spec string, maxPages int) ([]Group, error) {
	ok, err := Validate(spec)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: malformed spec %q", ErrInvalidPageNumbers, spec)
	}

	tokens := strings.Split(spec, ",")
	groups := make([]Group, 0, len(tokens))
	for _, token := range tokens {
		pages, err := parseToken(token, maxPages)
		if err != nil {
			return nil, err
		}
		groups = append(groups, Group{Pages: pages, Label: token})
	}
	return groups, nil
}

// parseToken expands "N" or "A-B" into page numbers.
func parseToken(token string, maxPages int) ([]int, error) {
	first, last, isRange := strings.Cut(strings.TrimSpace(token), "-")
	if !isRange {
		last = first
	}

	start, err := pageNumber(first)
	if err != nil {
		return nil, err
	}
	end, err := pageNumber(last)
	if err != nil {
		return nil, err
	}

	if start > end {
		return nil, fmt.Errorf("%w: range %d-%d runs backwards", ErrInvalidPageNumbers, start, end)
	}
	if end > maxPages {
		return nil, fmt.Errorf("%w: page %d of %d", ErrPageNumberOverflow, end, maxPages)
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages, nil
}

// pageNumber parses a validated run of digits. Numbers too large for an int
// cannot be a page of any document.
func pageNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrPageNumberOverflow, s)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: pages are numbered from 1", ErrInvalidPageNumbers)
	}
	return n, nil
}

// Chunk partitions pages 1..maxPages into consecutive groups of size pages,
// followed by a shorter group for any remainder. Labels are "start-end",
// even for a single-page group.
func Chunk(maxPages, size int) ([]Group, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: chunk size must be at least 1", ErrInvalidPageNumbers)
	}
	if size > maxPages {
		return nil, fmt.Errorf("%w: chunk size %d, %d pages", ErrFixedPageNumberOverflow, size, maxPages)
	}

	groups := make([]Group, 0, (maxPages+size-1)/size)
	for start := 1; start <= maxPages; start += size {
		end := min(start+size-1, maxPages)
		pages := make([]int, 0, end-start+1)
		for p := start; p <= end; p++ {
			pages = append(pages, p)
		}
		groups = append(groups, Group{
			Pages: pages,
			Label: fmt.Sprintf("%d-%d", start, end),
		})
	}
	return groups, nil
}

// Complement returns the pages of 1..maxPages that group does not keep, in
// ascending order.
func Complement(group Group, maxPages int) []int {
	keep := make(map[int]bool, len(group.Pages))
	for _, p := range group.Pages {
		keep[p] = true
	}

	var out []int
	for p := 1; p <= maxPages; p++ {
		if !keep[p] {
			out = append(out, p)
		}
	}
	return out
}
