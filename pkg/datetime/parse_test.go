package datetime

import (
	"reflect"
	"testing"
)

func TestParseMonth(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  string
		expectErr bool
	}{
		{name: "Short name", input: "Jan", expected: "Jan"},
		{name: "Lower case", input: "feb", expected: "Feb"},
		{name: "Full name", input: "September", expected: "Sep"},
		{name: "Number", input: "3", expected: "Mar"},
		{name: "Zero padded number", input: "03", expected: "Mar"},
		{name: "Year-month date", input: "2025-11", expected: "Nov"},
		{name: "Surrounding spaces", input: "  Dec ", expected: "Dec"},
		{name: "Out of range number", input: "13", expectErr: true},
		{name: "Too short", input: "Ma", expectErr: true},
		{name: "Empty", input: "", expectErr: true},
		{name: "Garbage", input: "Quarter", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseMonth(tt.input)
			if tt.expectErr {
				if err == nil {
					t.Errorf("ParseMonth(%q) expected error but got %q", tt.input, result)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMonth(%q) unexpected error = %v", tt.input, err)
			}
			if result != tt.expected {
				t.Errorf("ParseMonth(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestParseMonthSelection(t *testing.T) {
	tests := []struct {
		name      string
		tokens    []string
		expected  []string
		expectErr bool
	}{
		{name: "Single months", tokens: []string{"Mar", "Jan"}, expected: []string{"Jan", "Mar"}},
		{name: "Range", tokens: []string{"Jan-Mar"}, expected: []string{"Jan", "Feb", "Mar"}},
		{name: "Overlapping", tokens: []string{"Jan-Feb", "Feb", "Apr"}, expected: []string{"Jan", "Feb", "Apr"}},
		{name: "All", tokens: []string{"all"}, expected: []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}},
		{name: "Dates are not ranges", tokens: []string{"2025-02"}, expected: []string{"Feb"}},
		{name: "Empty selection", tokens: nil, expected: nil},
		{name: "Backwards range", tokens: []string{"Dec-Jan"}, expectErr: true},
		{name: "Bad month", tokens: []string{"Foo"}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseMonthSelection(tt.tokens)
			if tt.expectErr {
				if err == nil {
					t.Errorf("ParseMonthSelection(%v) expected error", tt.tokens)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMonthSelection(%v) unexpected error = %v", tt.tokens, err)
			}
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("ParseMonthSelection(%v) = %v, expected %v", tt.tokens, result, tt.expected)
			}
		})
	}
}

func TestDetectMonth(t *testing.T) {
	tests := []struct {
		header   string
		expected string
	}{
		{"Jan 2025", "Jan"},
		{"Total February", "Feb"},
		{"  OCT  ", "Oct"},
		{"Account", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := DetectMonth(tt.header); got != tt.expected {
			t.Errorf("DetectMonth(%q) = %q, expected %q", tt.header, got, tt.expected)
		}
	}
}

func TestMonthIndexAndContains(t *testing.T) {
	if MonthIndex("Jan") != 0 || MonthIndex("Dec") != 11 || MonthIndex("Foo") != -1 {
		t.Errorf("MonthIndex returned unexpected positions")
	}
	if !ContainsMonth([]string{"Jan", "Feb"}, "Feb") {
		t.Errorf("ContainsMonth should find Feb")
	}
	if ContainsMonth(nil, "Feb") {
		t.Errorf("ContainsMonth on empty selection should be false")
	}
}
