// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package envflag

import (
	"flag"
	"io"
	"testing"

	"go.astrophena.name/newsdigest/internal/testutil"
)

func getenv(env map[string]string) func(string) string {
	return func(k string) string { return env[k] }
}

func TestValue(t *testing.T) {
	cases := map[string]struct {
		env       map[string]string
		args      []string
		wantCap   int
		wantDry   bool
		wantProfl string
	}{
		"defaults": {
			wantCap:   30,
			wantProfl: "brief",
		},
		"environment": {
			env:       map[string]string{"MAX_ENTRIES": "3", "DRY": "true", "PROFILE": "daily"},
			wantCap:   3,
			wantDry:   true,
			wantProfl: "daily",
		},
		"flags win over environment": {
			env:       map[string]string{"MAX_ENTRIES": "3", "PROFILE": "daily"},
			args:      []string{"-max-entries", "5", "-profile", "brief", "-dry"},
			wantCap:   5,
			wantDry:   true,
			wantProfl: "brief",
		},
		"unparsable environment falls back to default": {
			env:       map[string]string{"MAX_ENTRIES": "lots"},
			wantCap:   30,
			wantProfl: "brief",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			maxEntries := Value("max-entries", "MAX_ENTRIES", 30, "Entry cap.", fs, getenv(tc.env))
			dry := Value("dry", "DRY", false, "Dry run.", fs, getenv(tc.env))
			profile := Value("profile", "PROFILE", "brief", "Profile.", fs, getenv(tc.env))

			if err := fs.Parse(tc.args); err != nil {
				t.Fatal(err)
			}

			testutil.AssertEqual(t, *maxEntries, tc.wantCap)
			testutil.AssertEqual(t, *dry, tc.wantDry)
			testutil.AssertEqual(t, *profile, tc.wantProfl)
		})
	}
}

func TestSetInvalid(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	Value("max-entries", "MAX_ENTRIES", 30, "Entry cap.", fs, getenv(nil))
	if err := fs.Parse([]string{"-max-entries", "many"}); err == nil {
		t.Fatal("want error for non-integer value")
	}
}
