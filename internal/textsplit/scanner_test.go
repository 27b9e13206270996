package textsplit

import "testing"

func TestDepthDelta(t *testing.T) {
	tests := []struct {
		line     string
		expected int
	}{
		{"func main() {", 1},
		{"}", -1},
		{"if (a) { b() }", 0},
		{`s := "{{{"`, 0},
		{`c := '{'`, 0},
		{`s := "\"{"`, 0},
		{"// comment {", 0},
		{"# comment {", 0},
		{"x := 1", 0},
		{"a[{(", 3},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			var st scanState
			if got := depthDelta(tt.line, &st); got != tt.expected {
				t.Errorf("depthDelta(%q) = %d, expected %d", tt.line, got, tt.expected)
			}
		})
	}
}

func TestDepthDeltaRawLiteralSpansLines(t *testing.T) {
	var st scanState
	if got := depthDelta("s := `{", &st); got != 0 {
		t.Errorf("opening raw literal should hide brace, got %d", got)
	}
	if !st.raw {
		t.Error("raw state should persist")
	}
	if got := depthDelta("still { inside", &st); got != 0 {
		t.Errorf("raw literal line should contribute 0, got %d", got)
	}
	if got := depthDelta("end` {", &st); got != 1 {
		t.Errorf("brace after raw close should count, got %d", got)
	}
	if st.raw {
		t.Error("raw state should have closed")
	}
}

func TestBalanced(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected bool
	}{
		{"empty", "", true},
		{"simple function", "func main() {\n\tprintln(\"hi\")\n}", true},
		{"unclosed brace", "func main() {", false},
		{"stray closer", "}", false},
		{"interleaved wrong", "( [ ) ]", false},
		{"brace in string", `s := "}"`, true},
		{"brace in comment", "// }\nx := 1", true},
		{"escaped quote", `s := "\"}"`, true},
		{"nested ok", "a(b[c{d}e]f)", true},
		{"python dict", "d = {\n    'a': [1, 2],\n}", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Balanced(tt.content); got != tt.expected {
				t.Errorf("Balanced(%q) = %v, expected %v", tt.content, got, tt.expected)
			}
		})
	}
}
