package mathutil

import "testing"

func TestParseMoney(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"$1,234.50", "1234.5"},
		{"(250.00)", "-250"},
		{" ( 5 ) ", "-5"},
		{"-12", "-12"},
		{"\"$3\"", "3"},
		{"\"$52,000\"", "52000"},
		{"$ 42.50", "42.5"},
		{"\t7\t", "7"},
		{"", "0"},
		{"n/a", "0"},
		{"()", "0"},
		{"0.1", "0.1"},
	}

	for _, tt := range tests {
		if got := ParseMoney(tt.input).String(); got != tt.expected {
			t.Errorf("ParseMoney(%q) = %s, expected %s", tt.input, got, tt.expected)
		}
	}
}
