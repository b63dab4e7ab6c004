// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package docs archives digests as Google Docs documents.
package docs

import (
	"context"
	"fmt"

	"go.astrophena.name/newsdigest/internal/archive"

	docsapi "google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// Scopes are the OAuth 2.0 scopes the service account token must carry.
var Scopes = []string{docsapi.DocumentsScope, drive.DriveScope}

// Client creates documents and shares them with a recipient.
type Client struct {
	docs  *docsapi.Service
	drive *drive.Service
	// Recipient is granted write access to every created document. Empty
	// means the document is not shared.
	Recipient string
}

// New returns a new Client. Authentication is configured through opts, for
// example [option.WithTokenSource].
func New(ctx context.Context, recipient string, opts ...option.ClientOption) (*Client, error) {
	ds, err := docsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("docs: creating Docs service: %w", err)
	}
	dr, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("docs: creating Drive service: %w", err)
	}
	return &Client{docs: ds, drive: dr, Recipient: recipient}, nil
}

// Archive implements [archive.Archiver]. It creates a document titled title,
// inserts text at its beginning and shares it with the recipient, without
// sending a notification email.
func (c *Client) Archive(ctx context.Context, title, text string) (*archive.Document, error) {
	doc, err := c.docs.Documents.Create(&docsapi.Document{Title: title}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("docs: creating document: %w", err)
	}
	d := &archive.Document{
		ID:  doc.DocumentId,
		URL: URL(doc.DocumentId),
	}

	if text != "" {
		_, err = c.docs.Documents.BatchUpdate(doc.DocumentId, &docsapi.BatchUpdateDocumentRequest{
			Requests: []*docsapi.Request{{
				InsertText: &docsapi.InsertTextRequest{
					Location: &docsapi.Location{Index: 1},
					Text:     text,
				},
			}},
		}).Context(ctx).Do()
		if err != nil {
			return d, fmt.Errorf("docs: inserting text into %s: %w", doc.DocumentId, err)
		}
	}

	if c.Recipient != "" {
		_, err = c.drive.Permissions.Create(doc.DocumentId, &drive.Permission{
			Type:         "user",
			Role:         "writer",
			EmailAddress: c.Recipient,
		}).SendNotificationEmail(false).Context(ctx).Do()
		if err != nil {
			return d, fmt.Errorf("docs: sharing %s: %w", doc.DocumentId, err)
		}
	}

	return d, nil
}

// URL returns the editing URL of the document with id.
func URL(id string) string {
	return "https://docs.google.com/document/d/" + id + "/edit"
}

var _ archive.Archiver = (*Client)(nil)
