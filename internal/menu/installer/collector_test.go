package installer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParsePortList(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{name: "empty", input: "", want: nil},
		{name: "spaces only", input: "   ", want: nil},
		{name: "single", input: "8080", want: []int{8080}},
		{name: "multiple with spaces", input: " 8080, 9000 ,3000", want: []int{8080, 9000, 3000}},
		{name: "duplicates collapsed", input: "8080,8080", want: []int{8080}},
		{name: "trailing comma", input: "8080,", want: []int{8080}},
		{name: "not a number", input: "8080,abc", wantErr: true},
		{name: "out of range", input: "70000", wantErr: true},
		{name: "zero", input: "0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePortList(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("port list mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateDomain(t *testing.T) {
	if err := validateDomain("example.com"); err != nil {
		t.Fatalf("valid domain rejected: %v", err)
	}
	for _, bad := range []string{"", "ab", "nodots"} {
		if err := validateDomain(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
