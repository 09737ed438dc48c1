package sigma

import "strings"

// Modifier is a tag appended to a selection key that alters how values are matched
// For example, CommandLine|contains|all
type Modifier int

const (
	ModUnknown Modifier = iota

	ModContains
	ModStartswith
	ModEndswith
	ModExists
	ModAll
	ModCased

	// Encodings
	ModBase64
	ModBase64Offset
	ModWide
	ModUTF16LE
	ModUTF16BE
	ModUTF16
	ModWindash

	// Regular expressions and their flags
	ModRegex
	ModRegexIgnoreCase
	ModRegexMultiline
	ModRegexDotAll

	// Comparisons
	ModCIDR
	ModLt
	ModLte
	ModGt
	ModGte

	// Value references
	ModExpand
	ModFieldRef

	// Time parts
	ModMinute
	ModHour
	ModDay
	ModWeek
	ModMonth
	ModYear
)

var modifierLiterals = [...]string{
	ModUnknown:         "unknown",
	ModContains:        "contains",
	ModStartswith:      "startswith",
	ModEndswith:        "endswith",
	ModExists:          "exists",
	ModAll:             "all",
	ModCased:           "cased",
	ModBase64:          "base64",
	ModBase64Offset:    "base64offset",
	ModWide:            "wide",
	ModUTF16LE:         "utf16le",
	ModUTF16BE:         "utf16be",
	ModUTF16:           "utf16",
	ModWindash:         "windash",
	ModRegex:           "re",
	ModRegexIgnoreCase: "i",
	ModRegexMultiline:  "m",
	ModRegexDotAll:     "s",
	ModCIDR:            "cidr",
	ModLt:              "lt",
	ModLte:             "lte",
	ModGt:              "gt",
	ModGte:             "gte",
	ModExpand:          "expand",
	ModFieldRef:        "fieldref",
	ModMinute:          "minute",
	ModHour:            "hour",
	ModDay:             "day",
	ModWeek:            "week",
	ModMonth:           "month",
	ModYear:            "year",
}

// long forms of regular expression flags
var modifierAliases = map[string]Modifier{
	"ignorecase": ModRegexIgnoreCase,
	"multiline":  ModRegexMultiline,
	"dotall":     ModRegexDotAll,
}

// ParseModifier resolves modifier literal, lookup is case insensitive
func ParseModifier(in string) (Modifier, bool) {
	in = strings.ToLower(in)
	if m, ok := modifierAliases[in]; ok {
		return m, true
	}
	for i, lit := range modifierLiterals {
		if Modifier(i) != ModUnknown && lit == in {
			return Modifier(i), true
		}
	}
	return ModUnknown, false
}

func (m Modifier) String() string {
	if m < 0 || int(m) >= len(modifierLiterals) {
		return modifierLiterals[ModUnknown]
	}
	return modifierLiterals[m]
}

// Modifiers is an ordered list of modifiers as written in selection key
type Modifiers []Modifier

// Has checks if modifier is present
func (m Modifiers) Has(mod Modifier) bool {
	for _, v := range m {
		if v == mod {
			return true
		}
	}
	return false
}

// HasAny checks if at least one of the modifiers is present
func (m Modifiers) HasAny(mods ...Modifier) bool {
	for _, mod := range mods {
		if m.Has(mod) {
			return true
		}
	}
	return false
}

// CaseSensitive reports whether values are compared with exact case
// Encoded values and regular expressions keep case, as does explicit cased modifier
func (m Modifiers) CaseSensitive() bool {
	return m.HasAny(
		ModBase64,
		ModBase64Offset,
		ModRegex,
		ModRegexIgnoreCase,
		ModRegexMultiline,
		ModRegexDotAll,
		ModCased,
	)
}

func (m Modifiers) String() string {
	if len(m) == 0 {
		return ""
	}
	out := make([]string, len(m))
	for i, v := range m {
		out[i] = v.String()
	}
	return strings.Join(out, "|")
}
