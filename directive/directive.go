// Package directive implements the field-directive DSL parser (component
// C1): turning one or more directive strings into a normalized Plan that
// the record hasher can interpret without re-parsing.
//
// Grammar (whitespace stripped before parsing):
//
//	directive   := group ( ';' group )*
//	group       := [ '&' ] field ( ',' field )*
//	field       := NAME [ '%' DIGITS ]
package directive

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/hpcc-systems/Medley/errors"
)

// Field is one named attribute within a group, with its requested
// string-deletion expansion depth.
type Field struct {
	Name   string
	Expand int
}

// Group is a comma-separated tuple of fields hashed together as one
// logical unit. Required groups are never dropped by the group-level
// deletion neighborhood.
type Group struct {
	Required bool
	Fields   []Field
}

// Alternative is one parsed directive string: an ordered list of groups.
type Alternative struct {
	Groups []Group
}

// Plan is the normalized, OR-combined form of every directive string
// supplied to a build or query — C4 evaluates every alternative and
// unions the results.
type Plan []Alternative

// FieldNames returns the set of field names referenced anywhere in alt,
// in first-seen order. Used to project a source record down to only the
// attributes this alternative cares about.
func (a Alternative) FieldNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, g := range a.Groups {
		for _, f := range g.Fields {
			if _, ok := seen[f.Name]; ok {
				continue
			}
			seen[f.Name] = struct{}{}
			names = append(names, f.Name)
		}
	}
	return names
}

// Parse parses one or more directive strings into a normalized Plan. Each
// string is one OR-combined alternative; adding a directive string never
// removes edges another alternative would have found (P5, OR
// monotonicity).
func Parse(directiveTexts ...string) (Plan, error) {
	if len(directiveTexts) == 0 {
		return nil, errors.Wrap(errors.ErrDirectiveEmpty, "no directive text supplied")
	}

	plan := make(Plan, 0, len(directiveTexts))
	for _, text := range directiveTexts {
		alt, err := parseAlternative(text)
		if err != nil {
			return nil, err
		}
		plan = append(plan, alt)
	}
	return plan, nil
}

func parseAlternative(text string) (Alternative, error) {
	stripped := stripWhitespace(text)

	groupTexts := strings.Split(stripped, ";")
	groups := make([]Group, 0, len(groupTexts))
	for _, gt := range groupTexts {
		g, err := parseGroup(gt)
		if err != nil {
			return Alternative{}, err
		}
		groups = append(groups, g)
	}

	alt := Alternative{Groups: groups}
	normalizeExpandDistances(alt)
	return alt, nil
}

func parseGroup(text string) (Group, error) {
	if text == "" {
		return Group{}, errors.Wrap(errors.ErrDirectiveSyntax, "empty group")
	}

	required := false
	if text[0] == '&' {
		required = true
		text = text[1:]
	}
	if text == "" {
		return Group{}, errors.Wrap(errors.ErrDirectiveSyntax, "group has no fields")
	}

	fieldTexts := strings.Split(text, ",")
	fields := make([]Field, 0, len(fieldTexts))
	for _, ft := range fieldTexts {
		f, err := parseField(ft)
		if err != nil {
			return Group{}, err
		}
		fields = append(fields, f)
	}
	return Group{Required: required, Fields: fields}, nil
}

func parseField(text string) (Field, error) {
	if text == "" {
		return Field{}, errors.Wrap(errors.ErrDirectiveSyntax, "empty field name")
	}
	if strings.ContainsRune(text, '&') {
		return Field{}, errors.Wrap(errors.ErrDirectiveSyntax,
			"'&' is a required-group indicator and must be the first character of a group, not a field")
	}

	name, rawExpand, hasExpand := strings.Cut(text, "%")
	if name == "" {
		return Field{}, errors.Wrap(errors.ErrDirectiveSyntax, "empty field name")
	}
	if !hasExpand {
		return Field{Name: name, Expand: 0}, nil
	}
	if rawExpand == "" || !allDigits(rawExpand) {
		return Field{}, errors.Wrapf(errors.ErrDirectiveSyntax, "invalid expand distance %q on field %q", rawExpand, name)
	}
	n, err := strconv.Atoi(rawExpand)
	if err != nil {
		return Field{}, errors.Wrapf(errors.ErrDirectiveSyntax, "invalid expand distance %q on field %q", rawExpand, name)
	}
	if n < 0 {
		n = 0
	}
	return Field{Name: name, Expand: n}, nil
}

// normalizeExpandDistances merges repeated field names within alt so that
// every occurrence of a name carries the maximum requested expand
// distance, per the normalization rule in §4.1.
func normalizeExpandDistances(alt Alternative) {
	maxByName := make(map[string]int)
	for _, g := range alt.Groups {
		for _, f := range g.Fields {
			if f.Expand > maxByName[f.Name] {
				maxByName[f.Name] = f.Expand
			}
		}
	}
	for gi := range alt.Groups {
		for fi := range alt.Groups[gi].Fields {
			name := alt.Groups[gi].Fields[fi].Name
			alt.Groups[gi].Fields[fi].Expand = maxByName[name]
		}
	}
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
