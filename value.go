package sigma

import (
	"strconv"
)

// ValueKind is the data type of a detection value
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueNumber
	ValueBool
	ValueNull
)

func (k ValueKind) String() string {
	switch k {
	case ValueString:
		return "string"
	case ValueNumber:
		return "number"
	case ValueBool:
		return "bool"
	case ValueNull:
		return "null"
	default:
		return "unknown"
	}
}

// Value is a single pattern in detection item value list
type Value struct {
	Kind ValueKind
	// Raw is the value as written in rule
	Raw string
	// Wildcard is set when string contains unescaped * or ? characters
	Wildcard bool

	canonical string
}

// String returns value as written in rule
func (v Value) String() string { return v.Raw }

// Canonical returns value with sigma escaping normalized
// Plain backslash can be written as \ or \\, both map to the same canonical form
func (v Value) Canonical() string { return v.canonical }

// Same reports whether two values denote an identical pattern
func (v Value) Same(o Value) bool {
	return v.Kind == o.Kind && v.canonical == o.canonical
}

// StringValue builds a string pattern
func StringValue(s string) Value {
	c := escapeSigmaForGlob(s)
	return Value{
		Kind:      ValueString,
		Raw:       s,
		Wildcard:  hasUnescapedWildcard(c),
		canonical: c,
	}
}

// NewValue converts decoded yaml scalar into Value
func NewValue(raw interface{}) (Value, bool) {
	switch v := raw.(type) {
	case string:
		return StringValue(v), true
	case int:
		return scalarValue(ValueNumber, strconv.Itoa(v)), true
	case int64:
		return scalarValue(ValueNumber, strconv.FormatInt(v, 10)), true
	case uint64:
		return scalarValue(ValueNumber, strconv.FormatUint(v, 10)), true
	case float64:
		return scalarValue(ValueNumber, strconv.FormatFloat(v, 'f', -1, 64)), true
	case bool:
		return scalarValue(ValueBool, strconv.FormatBool(v)), true
	case nil:
		return scalarValue(ValueNull, ""), true
	default:
		return Value{}, false
	}
}

func scalarValue(k ValueKind, s string) Value {
	return Value{Kind: k, Raw: s, canonical: s}
}

const (
	SIGMA_SPECIAL_WILDCARD      = byte('*')
	SIGMA_SPECIAL_SINGLE        = byte('?')
	SIGMA_SPECIAL_ESCAPE        = byte('\\')
	GLOB_SPECIAL_SQRBRKT_LEFT   = byte('[')
	GLOB_SPECIAL_SQRBRKT_RIGHT  = byte(']')
	GLOB_SPECIAL_CURLBRKT_LEFT  = byte('{')
	GLOB_SPECIAL_CURLBRKT_RIGHT = byte('}')
)

// hasUnescapedWildcard scans escaped glob form
// backslash always escapes the following byte there
func hasUnescapedWildcard(escaped string) bool {
	for i := 0; i < len(escaped); i++ {
		switch escaped[i] {
		case SIGMA_SPECIAL_ESCAPE:
			i++
		case SIGMA_SPECIAL_WILDCARD, SIGMA_SPECIAL_SINGLE:
			return true
		}
	}
	return false
}

// Sigma has a different set of rules than the Glob library for escaping, so this function
// translates from Sigma escaping to gobwas/glob escaping. Output is unambiguous, so it doubles
// as canonical form when comparing values.
//
// Generally we only need to really watch for runs of backslashes by themselves, in the case where you see
// a special character ('?' or '*') with an escape, any run of additional escapes should be valid by convention
// (e.g. '\\*' per Sigma is an escaped backslash with a wildcard while '\\\*' is an escaped backslash and escaped
// wildcard).
//
// Sigma escaping rules:
//	* Plain backslash not followed by a wildcard can be expressed as single '\' or double backslash '\\'.
//	* A wildcard has to be escaped to handle it as a plain character: '\*'
//	* The backslash before a wildcard has to be escaped to handle the value as a backslash followed by a wildcard: '\\*'
//	* Three backslashes are necessary to escape both, the backslash and the wildcard and handle them as plain values: '\\\*'
//	* Three or four backslashes are handled as double backslash. Four are recommended for consistency reasons: '\\\\' results in the plain value '\\'
func escapeSigmaForGlob(str string) string {
	if str == "" {
		return ""
	}

	// brackets are plaintext in sigma but special in glob
	isBracket := func(b byte) bool {
		return b == GLOB_SPECIAL_SQRBRKT_LEFT || b == GLOB_SPECIAL_SQRBRKT_RIGHT ||
			b == GLOB_SPECIAL_CURLBRKT_LEFT || b == GLOB_SPECIAL_CURLBRKT_RIGHT
	}

	sLen := len(str)
	replStr := make([]byte, 2*sLen)
	x := (2 * sLen) - 1 // working backwards from the end of replStr

	wildcard := false // on after '?' or '*', off on anything other than '\' or wildcard
	slashCnt := 0     // length of current run of backslashes outside wildcard mode
	for i := (sLen - 1); i >= 0; i-- {
		switch str[i] {
		case SIGMA_SPECIAL_WILDCARD, SIGMA_SPECIAL_SINGLE:
			wildcard = true
		case SIGMA_SPECIAL_ESCAPE:
			if !wildcard {
				slashCnt++
			}
		default:
			wildcard = false
		}

		// run of backslashes ended, rebalance if odd
		if str[i] != SIGMA_SPECIAL_ESCAPE && slashCnt > 0 {
			if (slashCnt % 2) != 0 {
				replStr[x] = SIGMA_SPECIAL_ESCAPE
				x--
			}
			slashCnt = 0
		}

		replStr[x] = str[i]
		x--

		if isBracket(str[i]) {
			replStr[x] = SIGMA_SPECIAL_ESCAPE
			x--
		}
	}

	// leading backslashes
	if (slashCnt % 2) != 0 {
		replStr[x] = SIGMA_SPECIAL_ESCAPE
	} else {
		x++
	}

	return string(replStr[x:])
}
