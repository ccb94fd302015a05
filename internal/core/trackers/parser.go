package trackers

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"strings"
)

// ErrUnrecognizedPayload is returned when a fetched body matches none
// of the known tracker list shapes.
var ErrUnrecognizedPayload = errors.New("payload matches no known tracker list format")

type trackerDocument struct {
	Trackers []string `yaml:"trackers" json:"trackers"`
}

// A payloadParser attempts to read one tracker list shape out of a raw
// response body. It reports false when the body is not in its shape,
// leaving the next strategy to try.
type payloadParser func(payload string) (*Set, bool)

// Parsers are tried in a fixed order, first success wins. The document
// shape goes first so that a JSON list whose URLs contain commas is
// never mistaken for comma-separated flat text.
var payloadParsers = []payloadParser{
	parseDocument,
	parseCommaSeparated,
	parseBlankLineSeparated,
}

func ParsePayload(payload string) (*Set, error) {
	for _, parse := range payloadParsers {
		if set, ok := parse(payload); ok {
			return set, nil
		}
	}
	return nil, ErrUnrecognizedPayload
}

// parseDocument reads a structured YAML (or JSON, a YAML subset)
// document carrying a `trackers` list of strings.
func parseDocument(payload string) (*Set, bool) {
	doc := trackerDocument{}
	if err := yaml.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, false
	}
	if doc.Trackers == nil {
		return nil, false
	}

	set := NewSet()
	for _, tracker := range doc.Trackers {
		set.Add(strings.TrimSpace(tracker))
	}
	return set, true
}

func parseCommaSeparated(payload string) (*Set, bool) {
	if !strings.Contains(payload, ",") {
		return nil, false
	}
	return splitInto(payload, ","), true
}

func parseBlankLineSeparated(payload string) (*Set, bool) {
	if !strings.Contains(payload, "\n\n") {
		return nil, false
	}
	return splitInto(payload, "\n\n"), true
}

func splitInto(payload string, separator string) *Set {
	set := NewSet()
	for _, token := range strings.Split(payload, separator) {
		set.Add(strings.TrimSpace(token))
	}
	return set
}
