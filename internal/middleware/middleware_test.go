package middleware

import "testing"

func TestHasCapability(t *testing.T) {
	cases := []struct {
		role, capability string
		want             bool
	}{
		{"head-architect", CapRead, true},
		{"head-architect", CapCatalogDrop, true},
		{"head-architect", CapUserManage, true},
		{"architect", CapCatalogWrite, true},
		{"architect", CapSerialStatus, true},
		{"architect", CapExport, true},
		{"architect", CapCatalogDrop, false},
		{"architect", CapUserManage, false},
		{"resident", CapRead, true},
		{"resident", CapCatalogWrite, false},
		{"resident", CapSerialStatus, false},
		{"", CapRead, false},
		{"intruder", CapRead, false},
	}
	for _, c := range cases {
		if got := HasCapability(c.role, c.capability); got != c.want {
			t.Errorf("HasCapability(%q, %q) = %v, want %v", c.role, c.capability, got, c.want)
		}
	}
}
