// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package gemini

import (
	"context"
	"errors"
	"testing"

	"go.astrophena.name/newsdigest/internal/llm"
	"go.astrophena.name/newsdigest/internal/testutil"

	"github.com/google/generative-ai-go/genai"
)

func TestText(t *testing.T) {
	cases := map[string]struct {
		resp    *genai.GenerateContentResponse
		want    string
		wantErr error
	}{
		"nil response": {
			wantErr: llm.ErrEmptyCompletion,
		},
		"no candidates": {
			resp:    &genai.GenerateContentResponse{},
			wantErr: llm.ErrEmptyCompletion,
		},
		"candidate without content": {
			resp:    &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}},
			wantErr: llm.ErrEmptyCompletion,
		},
		"single part": {
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []genai.Part{genai.Text(" 今天股市大漲唷～ \n")}},
			}}},
			want: "今天股市大漲唷～",
		},
		"multiple parts, non-text skipped": {
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []genai.Part{
					genai.Text("Sum-"),
					genai.Blob{MIMEType: "audio/mpeg", Data: []byte("x")},
					genai.Text("A"),
				}},
			}}},
			want: "Sum-A",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := Text(tc.resp)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("want %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			testutil.AssertEqual(t, got, tc.want)
		})
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(context.Background(), "", ""); err == nil {
		t.Fatal("want error for empty API key")
	}
}
