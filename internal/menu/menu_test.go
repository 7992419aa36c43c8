package menu

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFormatItems_SkipsDisabled(t *testing.T) {
	options := []Option{
		{Label: "1. First", Enabled: true},
		{Label: "2. Hidden", Enabled: false},
		{Label: "3. Third", Enabled: true},
	}

	items, indexes := formatItems(options)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if diff := cmp.Diff([]int{0, 2}, indexes); diff != "" {
		t.Fatalf("index mapping mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatItems_AlignsNumbers(t *testing.T) {
	options := []Option{
		{Label: "1. Short", Enabled: true},
		{Label: "10. Longer", Enabled: true},
	}

	items, _ := formatItems(options)
	if !strings.Contains(items[0], " 1. Short") {
		t.Fatalf("single digit entry not right-aligned: %q", items[0])
	}
	if !strings.Contains(items[1], "10. Longer") {
		t.Fatalf("unexpected formatting: %q", items[1])
	}
}

func TestFormatItems_LabelWithoutNumber(t *testing.T) {
	options := []Option{
		{Label: "1. Numbered", Enabled: true},
		{Label: "Plain entry", Enabled: true},
	}

	items, _ := formatItems(options)
	if !strings.Contains(items[1], "Plain entry") {
		t.Fatalf("plain label lost: %q", items[1])
	}
}

func TestStatusPrefix(t *testing.T) {
	if statusPrefix("green") != "🟢" || statusPrefix("unknown") != "⚪" {
		t.Fatal("unexpected status prefixes")
	}
}
