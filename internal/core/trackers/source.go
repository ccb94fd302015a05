package trackers

import "strings"

// A source descriptor is either a literal announce URL (usable as-is)
// or a URL pointing at a remote tracker list that must be fetched and
// parsed. Descriptors ending in "announce" are treated as literal,
// anything else as fetchable. The suffix check is a heuristic carried
// over from the upstream lists this tool consumes, a literal tracker
// not ending in that exact word will be fetched by mistake.
const literalSuffix = "announce"

func IsLiteral(source string) bool {
	return strings.HasSuffix(source, literalSuffix)
}

// Partition splits the configured descriptors into the set of literal
// trackers and the list of URLs left to fetch.
func Partition(sources []string) (*Set, []string) {
	literals := NewSet()
	var fetchables []string

	for _, source := range sources {
		if IsLiteral(source) {
			literals.Add(source)
			continue
		}
		fetchables = append(fetchables, source)
	}
	return literals, fetchables
}
