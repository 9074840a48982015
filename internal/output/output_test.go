package output

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		json bool
		ids  bool
		env  string
		want Format
	}{
		{"default", false, false, "", FormatTable},
		{"json flag", true, false, "", FormatJSON},
		{"ids flag", false, true, "", FormatIDs},
		{"json flag beats ids", true, true, "", FormatJSON},
		{"env json", false, false, "json", FormatJSON},
		{"env ids", false, false, "ids", FormatIDs},
		{"env table", false, false, "table", FormatTable},
		{"flag beats env", true, false, "ids", FormatJSON},
		{"unknown env", false, false, "xml", FormatTable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SPOOL_OUTPUT", tt.env)
			if got := Detect(tt.json, tt.ids); got != tt.want {
				t.Errorf("Detect(%v, %v) = %v, want %v", tt.json, tt.ids, got, tt.want)
			}
		})
	}
}
