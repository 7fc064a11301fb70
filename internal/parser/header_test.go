package parser

import (
	"strings"
	"testing"
)

func TestDetectHeader(t *testing.T) {
	cases := []struct {
		first, second []string
		want          bool
	}{
		{[]string{"a", "b"}, []string{"1", "2"}, true},
		{[]string{"1", "2"}, []string{"3", "4"}, false},
		{[]string{"a", "1"}, []string{"2", "3"}, true},
		{[]string{"a", "b"}, nil, true},
		{[]string{"a"}, nil, false},
		{[]string{"a", "1"}, []string{"b", "2"}, false},
	}
	for _, tc := range cases {
		if got, _ := detectHeader(tc.first, tc.second); got != tc.want {
			t.Fatalf("detectHeader(%v, %v) = %v, want %v", tc.first, tc.second, got, tc.want)
		}
	}
}

func TestHeaderNames(t *testing.T) {
	names, renamed := headerNames([]string{"a", "", "a", "a_2"})
	if got := strings.Join(names, ","); got != "a,Column_2,a_2,a_2_2" {
		t.Fatalf("names = %s", got)
	}
	if renamed != 3 {
		t.Fatalf("renamed = %d, want 3", renamed)
	}
}
