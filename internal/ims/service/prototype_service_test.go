package service

import "testing"

func TestMakeSlug(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Classic Hoodie", "classic-hoodie"},
		{"  Heavy  Tee 01 ", "heavy-tee-01"},
		{"ALL-CAPS_NAME", "all-caps-name"},
		{"日本語のみ", ""},
	}
	for _, c := range cases {
		if got := makeSlug(c.in); got != c.want {
			t.Errorf("makeSlug(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
