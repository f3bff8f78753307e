// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content renders listing descriptions from Markdown to safe HTML.
package content

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// htmlSanitizer strips dangerous elements from rendered descriptions.
// Agents type free text; UGCPolicy allows safe formatting tags while removing
// scripts and event handlers.
var htmlSanitizer = bluemonday.UGCPolicy()

// RenderDescription converts a Markdown listing description to sanitized HTML.
func RenderDescription(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("rendering description: %w", err)
	}
	return htmlSanitizer.Sanitize(buf.String()), nil
}
