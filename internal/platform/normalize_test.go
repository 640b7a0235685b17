package platform

import "testing"

func TestFromGOOS(t *testing.T) {
	tests := []struct {
		goos string
		want Platform
	}{
		{"linux", Linux},
		{"darwin", OSX},
		{"windows", Windows},
		{"android", Android},
		{"freebsd", FreeBSD},
		{"netbsd", NetBSD},
		{"openbsd", OpenBSD},
		{"solaris", SunOS},
		{"illumos", SunOS},
		{" Linux ", Linux},
		{"plan9", Common},
		{"", Common},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			if got := fromGOOS(tt.goos); got != tt.want {
				t.Errorf("fromGOOS(%q) = %v, want %v", tt.goos, got, tt.want)
			}
		})
	}
}

func TestMapFamily(t *testing.T) {
	tests := []struct {
		family string
		want   string
	}{
		{"debian", FamilyDebian},
		{"Ubuntu", FamilyDebian},
		{"rocky", FamilyRHEL},
		{"opensuse", FamilySUSE},
		{"manjaro", FamilyArch},
		{"slackware", FamilyUnknown},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.family, func(t *testing.T) {
			if got := mapFamily(tt.family); got != tt.want {
				t.Errorf("mapFamily(%q) = %v, want %v", tt.family, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	for _, p := range All {
		got, err := Parse(p.String())
		if err != nil {
			t.Errorf("Parse(%q) error = %v", p, err)
		}
		if got != p {
			t.Errorf("Parse(%q) = %v", p, got)
		}
	}

	if _, err := Parse("beos"); err == nil {
		t.Error("Parse(beos) expected error")
	}
}
