package sigma

import (
	"testing"

	"github.com/gobwas/glob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigmaEscape(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		expected   string
		validMatch string
	}{
		{
			name:       "No_Change",
			input:      `\\leadingBackslash\\*.exe`,
			expected:   `\\leadingBackslash\\*.exe`,
			validMatch: `\leadingBackslash\testing.exe`,
		},
		{
			name:       "Leading_Single_Backslash_Wildcard_After_Slash",
			input:      `\leadingBackslash\\*.exe`,
			expected:   `\\leadingBackslash\\*.exe`,
			validMatch: `\leadingBackslash\testing.exe`,
		},
		{
			name:       "Leading_Wildcard_Single_Backslash_Esc_Wildcard",
			input:      `*\bits\*admin.exe`,
			expected:   `*\\bits\*admin.exe`,
			validMatch: `leading\bits*admin.exe`,
		},
		{
			name:       "Double_Leading_Backslash_Single_Backslash_Wildcard",
			input:      `\\\\DoubleBackslash\some*.exe`,
			expected:   `\\\\DoubleBackslash\\some*.exe`,
			validMatch: `\\DoubleBackslash\sometMatch.exe`,
		},
		{
			name:       "Plaintext_Only_Esc_Wildcard",
			input:      `some\full\\\*plaintext.exe`,
			expected:   `some\\full\\\*plaintext.exe`,
			validMatch: `some\full\*plaintext.exe`,
		},
		{
			name:       "Double_Leading_Backslash_Complex_Mix_Esc",
			input:      `\\\\DoubleBackslash\?\some*Other\\*test.\\???`,
			expected:   `\\\\DoubleBackslash\?\\some*Other\\*test.\\???`,
			validMatch: `\\DoubleBackslash?\someMixOther\wildcardtest.\cmd`,
		},
		{
			name:       "Mixed_Wildcards_Single_Backslash_Brackets",
			input:      `[*]\*\aSetof\\\sigma{rule?}here*`,
			expected:   `\[*\]\*\\aSetof\\\\sigma\{rule?\}here*`,
			validMatch: `[testing]*\aSetof\\sigma{rules}hereWeGo`,
		},
	}
	for _, curTest := range tests {
		t.Run(curTest.name, func(t *testing.T) {
			escStr := escapeSigmaForGlob(curTest.input)
			assert.Equal(t, curTest.expected, escStr)

			// canonical form must be a valid glob
			globT, err := glob.Compile(escStr)
			require.NoError(t, err)
			assert.True(t, globT.Match(curTest.validMatch),
				"glob: %s -- data: %s", escStr, curTest.validMatch)
		})
	}
}

func TestValue(t *testing.T) {
	for _, c := range []struct {
		raw      interface{}
		kind     ValueKind
		text     string
		wildcard bool
	}{
		{raw: "cmd.exe", kind: ValueString, text: "cmd.exe"},
		{raw: `*\cmd.exe`, kind: ValueString, text: `*\cmd.exe`, wildcard: true},
		{raw: `C:\Temp\?`, kind: ValueString, text: `C:\Temp\?`},
		{raw: `C:\Temp\\?`, kind: ValueString, text: `C:\Temp\\?`, wildcard: true},
		{raw: "[a]", kind: ValueString, text: "[a]"},
		{raw: 4624, kind: ValueNumber, text: "4624"},
		{raw: int64(-1), kind: ValueNumber, text: "-1"},
		{raw: 1.5, kind: ValueNumber, text: "1.5"},
		{raw: true, kind: ValueBool, text: "true"},
		{raw: nil, kind: ValueNull, text: ""},
	} {
		v, ok := NewValue(c.raw)
		require.True(t, ok, "%v", c.raw)
		assert.Equal(t, c.kind, v.Kind, "%v", c.raw)
		assert.Equal(t, c.text, v.String(), "%v", c.raw)
		assert.Equal(t, c.wildcard, v.Wildcard, "%v", c.raw)
	}

	_, ok := NewValue(map[interface{}]interface{}{"a": "b"})
	assert.False(t, ok)
	_, ok = NewValue([]interface{}{"a"})
	assert.False(t, ok)
}

func TestValueSame(t *testing.T) {
	single := StringValue(`C:\Windows\cmd.exe`)
	double := StringValue(`C:\\Windows\\cmd.exe`)
	assert.True(t, single.Same(double), "plain backslash has two spellings")
	assert.Equal(t, single.Canonical(), double.Canonical())
	assert.NotEqual(t, single.String(), double.String())

	assert.False(t, StringValue(`a\*`).Same(StringValue(`a*`)))
	assert.False(t, StringValue("Foo").Same(StringValue("foo")))

	num, _ := NewValue(1)
	assert.False(t, num.Same(StringValue("1")))
	assert.Equal(t, num.Canonical(), StringValue("1").Canonical())
}
