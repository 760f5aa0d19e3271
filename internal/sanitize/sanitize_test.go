package sanitize

import "testing"

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "milk", "milk"},
		{"trims", "  eggs \n", "eggs"},
		{"strips script", "<script>alert(1)</script>bread", "bread"},
		{"strips tags keeps text", "<b>oat</b> milk", "oat milk"},
		{"escapes ampersand", "salt & pepper", "salt &amp; pepper"},
		{"only markup", "<img src=x onerror=alert(1)>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.in); got != tt.want {
				t.Errorf("Text(%q): expected %q, got %q", tt.in, tt.want, got)
			}
		})
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"bob@example.com", "bob@example.com", true},
		{"  Bob@Example.COM ", "bob@example.com", true},
		{"not-an-email", "", false},
		{"bob@localhost", "", false},
		{"Bob <bob@example.com>", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := Email(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Email(%q): expected (%q, %v), got (%q, %v)", tt.in, tt.want, tt.wantOK, got, ok)
		}
	}
}

func TestLength(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"milk", 4},
		{"salt & pepper", 13},
		{"<b>café</b> & co", 11},
		{"&&&", 3},
	}
	for _, tt := range tests {
		if got := Length(Text(tt.in)); got != tt.want {
			t.Errorf("Length(Text(%q)): expected %d, got %d", tt.in, tt.want, got)
		}
	}
}
