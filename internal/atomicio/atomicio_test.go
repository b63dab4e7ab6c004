// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package atomicio

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.astrophena.name/newsdigest/internal/testutil"
)

func TestWriteFile(t *testing.T) {
	t.Parallel()

	t.Run("new file", func(t *testing.T) {
		t.Parallel()
		file := filepath.Join(t.TempDir(), "digest_2026-10-18.mp3")

		if err := WriteFile(file, []byte("hello"), 0o644); err != nil {
			t.Fatal(err)
		}

		got, err := os.ReadFile(file)
		if err != nil {
			t.Fatal(err)
		}
		testutil.AssertEqual(t, string(got), "hello")
	})

	t.Run("overwrite leaves no leftovers", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		file := filepath.Join(dir, "digest_2026-10-18.mp3")

		if err := WriteFile(file, []byte("first run"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := WriteFile(file, []byte("second run"), 0o644); err != nil {
			t.Fatal(err)
		}

		got, err := os.ReadFile(file)
		if err != nil {
			t.Fatal(err)
		}
		testutil.AssertEqual(t, string(got), "second run")

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		testutil.AssertEqual(t, len(entries), 1)
	})

	t.Run("missing directory", func(t *testing.T) {
		t.Parallel()
		file := filepath.Join(t.TempDir(), "nope", "digest.mp3")
		if err := WriteFile(file, []byte("x"), 0o644); err == nil {
			t.Fatal("want error")
		}
	})
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("stream broke") }

func TestWriteFromCleansUpOnError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "digest.mp3")
	if err := WriteFrom(file, failingReader{}, 0o644); err == nil {
		t.Fatal("want error")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".digest.mp3.tmp") {
			t.Fatalf("temporary file %q left behind", e.Name())
		}
	}
	testutil.AssertEqual(t, len(entries), 0)
}
