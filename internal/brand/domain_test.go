package brand

import "testing"

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"suzy.com", "suzy.com", false},
		{"https://www.suzy.com/pricing?x=1", "suzy.com", false},
		{"http://Shop.Example.co.uk:8443/", "shop.example.co.uk", false},
		{"  WWW.Acme.io  ", "acme.io", false},
		{"acme.com.", "acme.com", false},
		{"", "", true},
		{"https://", "", true},
		{"localhost", "", true},
		{"co.uk", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeDomain(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q, got %q", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error for %q: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeDomain(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
