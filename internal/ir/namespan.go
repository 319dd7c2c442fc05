package ir

import (
	"regexp"

	"github.com/roach88/solir/internal/diag"
)

// NameKind selects the leading pattern used to find a declaration's name.
type NameKind string

const (
	NameKindContract  NameKind = "contract"
	NameKindInterface NameKind = "interface"
	NameKindLibrary   NameKind = "library"
	NameKindFunction  NameKind = "function"
	NameKindModifier  NameKind = "modifier"
	NameKindEvent     NameKind = "event"
	NameKindError     NameKind = "error"
	NameKindStruct    NameKind = "struct"
	NameKindEnum      NameKind = "enum"
	NameKindValueType NameKind = "type"
	// NameKindSpecialFunction covers constructor, fallback and receive.
	// Pre-0.6 fallbacks are spelled `function ()`.
	NameKindSpecialFunction NameKind = "special"
)

const identifier = `[a-zA-Z$_][a-zA-Z0-9$_]*`

var namePatterns = map[NameKind]*regexp.Regexp{
	NameKindContract:        regexp.MustCompile(`^\s*(abstract\s)?\s*contract\s+(?P<name>` + identifier + `)`),
	NameKindInterface:       regexp.MustCompile(`^\s*interface\s+(?P<name>` + identifier + `)`),
	NameKindLibrary:         regexp.MustCompile(`^\s*library\s+(?P<name>` + identifier + `)`),
	NameKindFunction:        regexp.MustCompile(`^\s*function\s+(?P<name>` + identifier + `)`),
	NameKindModifier:        regexp.MustCompile(`^\s*modifier\s+(?P<name>` + identifier + `)`),
	NameKindEvent:           regexp.MustCompile(`^\s*event\s+(?P<name>` + identifier + `)`),
	NameKindError:           regexp.MustCompile(`^\s*error\s+(?P<name>` + identifier + `)`),
	NameKindStruct:          regexp.MustCompile(`^\s*struct\s+(?P<name>` + identifier + `)`),
	NameKindEnum:            regexp.MustCompile(`^\s*enum\s+(?P<name>` + identifier + `)`),
	NameKindValueType:       regexp.MustCompile(`^\s*type\s+(?P<name>` + identifier + `)`),
	NameKindSpecialFunction: regexp.MustCompile(`^\s*(?P<name>constructor|fallback|receive|function)\b`),
}

// LocateName returns the absolute byte span of the identifier of a
// declaration of the given kind. source is the declaration's own source
// slice and start its absolute offset. The returned span always lies within
// [start, start+len(source)).
func LocateName(kind NameKind, source []byte, start int) (Span, error) {
	re, ok := namePatterns[kind]
	if !ok {
		return Span{}, diag.NameSpanNotFound("", start, start+len(source), string(kind))
	}
	m := re.FindSubmatchIndex(source)
	if m == nil {
		return Span{}, diag.NameSpanNotFound("", start, start+len(source), string(kind))
	}
	i := re.SubexpIndex("name")
	return Span{Start: start + m[2*i], End: start + m[2*i+1]}, nil
}

// locateToken finds the first standalone occurrence of name in source at or
// after offset from. Used for variables and enum values, which have no
// leading keyword.
func locateToken(name string, source []byte, start, from int) (Span, error) {
	if name == "" || from < 0 || from > len(source) {
		return Span{}, diag.NameSpanNotFound("", start, start+len(source), "token")
	}
	re := regexp.MustCompile(`(?:^|[^a-zA-Z0-9$_])(` + regexp.QuoteMeta(name) + `)(?:[^a-zA-Z0-9$_]|$)`)
	m := re.FindSubmatchIndex(source[from:])
	if m == nil {
		return Span{}, diag.NameSpanNotFound("", start, start+len(source), "token")
	}
	return Span{Start: start + from + m[2], End: start + from + m[3]}, nil
}

// contractNameKind maps a contract kind to its locator pattern.
func contractNameKind(kind string) NameKind {
	switch kind {
	case "interface":
		return NameKindInterface
	case "library":
		return NameKindLibrary
	default:
		return NameKindContract
	}
}
