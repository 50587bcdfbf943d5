package frame

import (
	"testing"

	"github.com/danmuck/evlctl/internal/testutil/testlog"
	"github.com/google/go-cmp/cmp"
)

func TestSplit(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		chunk    string
		segments []string
		fragment string
	}{
		{chunk: "", segments: []string{}, fragment: ""},
		{chunk: "A\r\n", segments: []string{"A"}, fragment: ""},
		{chunk: "A\r\nB\r\nC", segments: []string{"A", "B"}, fragment: "C"},
		{chunk: "partial", segments: []string{}, fragment: "partial"},
		{chunk: "A\r\n\r\n", segments: []string{"A", ""}, fragment: ""},
		{chunk: "A\nB\r\n", segments: []string{"A\nB"}, fragment: ""},
	}
	for _, tc := range cases {
		segments, fragment := Split(tc.chunk)
		if diff := cmp.Diff(tc.segments, segments); diff != "" {
			t.Fatalf("Split(%q) segments (-want +got):\n%s", tc.chunk, diff)
		}
		if fragment != tc.fragment {
			t.Fatalf("Split(%q) fragment got=%q want=%q", tc.chunk, fragment, tc.fragment)
		}
	}
}

func TestSplitDoesNotCarryFragments(t *testing.T) {
	testlog.Start(t)
	_, fragment := Split("5000")
	if fragment != "5000" {
		t.Fatalf("unexpected fragment %q", fragment)
	}
	segments, fragment := Split("25\r\n")
	if len(segments) != 1 || segments[0] != "25" || fragment != "" {
		t.Fatalf("second chunk must not see the first fragment: %q %q", segments, fragment)
	}
}

func TestJoinSplitRoundTrip(t *testing.T) {
	testlog.Start(t)
	packets := []string{"5000052A", "6090012F"}
	segments, fragment := Split(Join(packets...))
	if fragment != "" {
		t.Fatalf("unexpected fragment %q", fragment)
	}
	if diff := cmp.Diff(packets, segments); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
}
