package tap

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// diagnostic mirrors the YAML block producers like tape and node-tap write
// under a failing assertion. Nodes stay undecoded so absent and null fields
// can be told apart from empty strings; an absent key leaves a zero Node.
type diagnostic struct {
	Operator yaml.Node `yaml:"operator"`
	Expected yaml.Node `yaml:"expected"`
	Actual   yaml.Node `yaml:"actual"`
	At       yaml.Node `yaml:"at"`
	Stack    yaml.Node `yaml:"stack"`
}

// decodeDiagnostic decodes the lines of a YAML block, stripping the indent of
// its opening "---". When the block is not valid YAML the raw text becomes
// the stack so nothing is lost.
func decodeDiagnostic(lines []string, indent string) (*FailureDetail, error) {
	dedented := make([]string, len(lines))
	for i, l := range lines {
		dedented[i] = strings.TrimPrefix(l, indent)
	}
	doc := strings.Join(dedented, "\n")

	var d diagnostic
	if err := yaml.Unmarshal([]byte(doc), &d); err != nil {
		return &FailureDetail{Stack: doc}, fmt.Errorf("decoding diagnostic: %w", err)
	}

	detail := &FailureDetail{
		Operator: optionalText(&d.Operator),
		Expected: optionalText(&d.Expected),
		Actual:   optionalText(&d.Actual),
		At:       decodeLocation(&d.At),
	}
	if s := optionalText(&d.Stack); s != nil {
		detail.Stack = strings.TrimRight(*s, "\n")
	}
	return detail, nil
}

func isAbsent(n *yaml.Node) bool {
	return n == nil || n.Kind == 0 || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

func optionalText(n *yaml.Node) *string {
	if isAbsent(n) {
		return nil
	}
	s := nodeText(n)
	return &s
}

// nodeText renders scalars verbatim and collections as flow YAML.
func nodeText(n *yaml.Node) string {
	switch n.Kind {
	case yaml.ScalarNode:
		return n.Value
	case yaml.AliasNode:
		if n.Alias != nil {
			return nodeText(n.Alias)
		}
		return n.Value
	}
	flow := *n
	flow.Style |= yaml.FlowStyle
	out, err := yaml.Marshal(&flow)
	if err != nil {
		return n.Value
	}
	return strings.TrimRight(string(out), "\n")
}

// decodeLocation accepts either a mapping with file/line/column (or
// character) keys, or a string such as "fn (/path/file.js:30:12)".
func decodeLocation(n *yaml.Node) *Location {
	if isAbsent(n) {
		return nil
	}
	switch n.Kind {
	case yaml.MappingNode:
		loc := &Location{}
		for i := 0; i+1 < len(n.Content); i += 2 {
			value := nodeText(n.Content[i+1])
			switch n.Content[i].Value {
			case "file":
				loc.File = value
			case "line":
				loc.Line = value
			case "column", "character":
				loc.Column = value
			}
		}
		return loc
	case yaml.ScalarNode:
		return ParseLocation(n.Value)
	default:
		return &Location{File: nodeText(n)}
	}
}

// ParseLocation parses "file:line:column", optionally wrapped as
// "function (file:line:column)" and optionally prefixed with file://.
func ParseLocation(s string) *Location {
	s = strings.TrimSpace(s)
	if open := strings.LastIndex(s, "("); open >= 0 && strings.HasSuffix(s, ")") {
		s = s[open+1 : len(s)-1]
	}
	s = strings.TrimPrefix(s, "file://")

	rest, last, ok := cutNumericSuffix(s)
	if !ok {
		return &Location{File: s}
	}
	file, line, ok := cutNumericSuffix(rest)
	if !ok {
		return &Location{File: rest, Line: last}
	}
	return &Location{File: file, Line: line, Column: last}
}

func cutNumericSuffix(s string) (head, num string, ok bool) {
	i := strings.LastIndexByte(s, ':')
	if i <= 0 || i == len(s)-1 {
		return s, "", false
	}
	if _, err := strconv.Atoi(s[i+1:]); err != nil {
		return s, "", false
	}
	return s[:i], s[i+1:], true
}
