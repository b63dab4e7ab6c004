// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package archive defines where digests are archived.
package archive

import (
	"context"
	"time"
)

// Document is an archived digest.
type Document struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Archiver stores the text of a digest as a document titled title.
type Archiver interface {
	Archive(ctx context.Context, title, text string) (*Document, error)
}

// Title returns the title of the document archived on day.
func Title(day time.Time) string {
	return "新聞彙整 " + day.UTC().Format(time.DateOnly)
}
