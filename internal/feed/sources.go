// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package feed

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// DefaultSources is the Starlark source of the built-in feed list.
//
//go:embed feeds.star
var DefaultSources string

// Source is a configured feed.
type Source struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// Name returns the title of the source, or its URL if it has none.
func (s Source) Name() string {
	if s.Title != "" {
		return s.Title
	}
	return s.URL
}

type sourceValue struct{ Source }

func (s *sourceValue) String() string        { return fmt.Sprintf("<feed url=%q>", s.URL) }
func (s *sourceValue) Type() string          { return "feed" }
func (s *sourceValue) Freeze()               {} // immutable
func (s *sourceValue) Truth() starlark.Bool  { return starlark.Bool(s.URL != "") }
func (s *sourceValue) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable: %s", s.Type()) }

func feedBuiltin(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(args) > 0 {
		return nil, errors.New("feed: unexpected positional arguments")
	}
	s := new(sourceValue)
	if err := starlark.UnpackArgs("feed", args, kwargs,
		"url", &s.URL,
		"title?", &s.Title,
	); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadSources evaluates a Starlark feed list. The file must define a global
// named feeds holding a list of feed(url, title?) values, for example:
//
//	feeds = [
//	    feed(url = "https://cn.wsj.com/zh-hant/rss", title = "WSJ 中文網"),
//	]
//
// Calls to print are sent to the default logger.
func LoadSources(filename, src string) ([]Source, error) {
	globals, err := starlark.ExecFileOptions(
		&syntax.FileOptions{TopLevelControl: true},
		&starlark.Thread{
			Name:  filename,
			Print: func(_ *starlark.Thread, msg string) { slog.Info(msg, "file", filename) },
		},
		filename,
		src,
		starlark.StringDict{
			"feed": starlark.NewBuiltin("feed", feedBuiltin),
		},
	)
	if err != nil {
		return nil, err
	}

	list, ok := globals["feeds"].(*starlark.List)
	if !ok {
		return nil, errors.New("feeds must be defined and be a list")
	}

	var sources []Source
	for i := range list.Len() {
		v, ok := list.Index(i).(*sourceValue)
		if !ok {
			return nil, fmt.Errorf("feeds[%d]: want feed, got %s", i, list.Index(i).Type())
		}
		u, err := url.Parse(v.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("invalid URL %q of feed %q", v.URL, v.Title)
		}
		sources = append(sources, v.Source)
	}
	return sources, nil
}
