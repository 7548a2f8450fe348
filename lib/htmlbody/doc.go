// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package htmlbody turns Matrix message content into safe HTML.
//
// [Sanitize] is an allow-list filter over the x/net/html tokenizer:
// disallowed tags vanish but keep their text, script-like tags vanish
// with their content, attributes and URL schemes are filtered per tag,
// and anchors get target="_blank" unless they point inside the client.
// A [TextFilter] scoped to the call rewrites each text node, which is
// how search highlighting is applied without a second parse.
//
// [BodyToHTML] is the full pipeline for one message: sanitize the
// formatted body (or escape the plain body), highlight search terms,
// colour code blocks with chroma, and swap emoji for images.
// [FormatMarkdown] goes the other way, rendering an outgoing
// plain-text body with goldmark when it contains markdown.
package htmlbody
