package perception

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStripLineComments(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Plain Comment",
			input: "\"A PAR H\", // hold in place",
			want:  "\"A PAR H\",",
		},
		{
			name:  "No Comment",
			input: "\"A PAR H\",",
			want:  "\"A PAR H\",",
		},
		{
			name:  "Marker Inside String",
			input: "\"content\": \"see http://example.com for details\"",
			want:  "\"content\": \"see http://example.com for details\"",
		},
		{
			name:  "Marker Inside String Then Real Comment",
			input: "\"url\": \"http://a.b\", // actual comment",
			want:  "\"url\": \"http://a.b\",",
		},
		{
			name:  "Escaped Quote Does Not Close String",
			input: "\"say \\\"hi\\\" // not a comment\"",
			want:  "\"say \\\"hi\\\" // not a comment\"",
		},
		{
			name:  "Multiline",
			input: "{\n\"orders\": [ // list\n\"A PAR H\"\n]\n}",
			want:  "{\n\"orders\": [\n\"A PAR H\"\n]\n}",
		},
		{
			name:  "Single Slash Kept",
			input: "\"STP/NC\": 1 / 2",
			want:  "\"STP/NC\": 1 / 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripLineComments(tt.input); got != tt.want {
				t.Errorf("stripLineComments() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStripTrailingCommas(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "Before Bracket", input: `["a", "b",]`, want: `["a", "b"]`},
		{name: "Before Brace", input: `{"a": 1,}`, want: `{"a": 1}`},
		{name: "With Whitespace", input: "[\"a\",\n  ]", want: `["a"]`},
		{name: "Untouched", input: `["a", "b"]`, want: `["a", "b"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripTrailingCommas(tt.input); got != tt.want {
				t.Errorf("stripTrailingCommas() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseLenientStringList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
		ok    bool
	}{
		{name: "Double Quoted", input: `"A PAR H", "F BRE H"`, want: []string{"A PAR H", "F BRE H"}, ok: true},
		{name: "Single Quoted", input: `'A PAR H', 'F BRE H'`, want: []string{"A PAR H", "F BRE H"}, ok: true},
		{name: "Mixed Quotes", input: `'A PAR H', "F BRE H"`, want: []string{"A PAR H", "F BRE H"}, ok: true},
		{name: "Trailing Comma", input: `"A PAR H",`, want: []string{"A PAR H"}, ok: true},
		{name: "Whitespace And Newlines", input: "\n  \"A PAR H\" ,\n  \"F BRE H\"\n", want: []string{"A PAR H", "F BRE H"}, ok: true},
		{name: "Escaped Quote", input: `"say \"hi\""`, want: []string{`say "hi"`}, ok: true},
		{name: "Empty", input: "", want: []string{}, ok: true},
		{name: "Bare Word Fails", input: `A PAR H`, ok: false},
		{name: "Unterminated Fails", input: `"A PAR H`, ok: false},
		{name: "Missing Separator Fails", input: `"a" "b"`, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseLenientStringList(tt.input)
			if ok != tt.ok {
				t.Fatalf("parseLenientStringList() ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseLenientStringList() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractBracketList(t *testing.T) {
	input := `{"orders": ['A PAR H', "F BRE - MAO",] oops`
	got, ok := extractBracketList(input)
	if !ok {
		t.Fatal("extractBracketList() failed")
	}
	want := []string{"A PAR H", "F BRE - MAO"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("extractBracketList() mismatch (-want +got):\n%s", diff)
	}
}
