// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package htmlbody

import (
	"regexp"
	"strings"
)

// Policy is an allow-list for message HTML.
type Policy struct {
	// AllowedTags are kept; every other tag is dropped with its text
	// content kept (see discardContentTags for the exceptions).
	AllowedTags map[string]bool

	// AllowedAttributes lists attribute names kept per tag.
	AllowedAttributes map[string][]string

	// ClassPrefixes lists, per tag, the class name prefixes that
	// survive. A tag must also list "class" in AllowedAttributes.
	ClassPrefixes map[string][]string

	// SelfClosing tags are written as <tag/> and never opened.
	SelfClosing map[string]bool

	// AllowedSchemes apply to href and src on every tag.
	AllowedSchemes []string

	// AllowedSchemesByTag extends AllowedSchemes for one tag.
	AllowedSchemesByTag map[string][]string

	// InternalLink matches hrefs that open inside the client; anchors
	// matching it lose their target, every other anchor gets
	// target="_blank". Nil treats every link as external.
	InternalLink *regexp.Regexp
}

// DefaultInternalLinkPattern matches permalinks into the web client.
const DefaultInternalLinkPattern = `^(https?://)?(?:www\.|staging\.|develop\.)?(vector|riot)\.im/(?:beta|staging|develop)?/?#/`

// DefaultPolicy returns the message allow-list: no h1/h2 (they dwarf
// the timeline), coloured font, links, images, tables, and code.
func DefaultPolicy() *Policy {
	tags := []string{
		"font", "del", "h3", "h4", "h5", "h6", "blockquote", "p", "a", "ul", "ol",
		"nl", "li", "b", "i", "u", "strong", "em", "strike", "code", "hr", "br", "div",
		"table", "thead", "caption", "tbody", "tr", "th", "td", "pre", "img",
	}
	allowed := make(map[string]bool, len(tags))
	for _, tag := range tags {
		allowed[tag] = true
	}
	selfClosing := make(map[string]bool)
	for _, tag := range []string{"img", "br", "hr", "area", "base", "basefont", "input", "link", "meta"} {
		selfClosing[tag] = true
	}

	return &Policy{
		AllowedTags: allowed,
		AllowedAttributes: map[string][]string{
			"font": {"color"},
			"a":    {"href", "name", "target"},
			"img":  {"src"},
			"code": {"class"},
		},
		ClassPrefixes: map[string][]string{
			"code": {"language-"},
		},
		SelfClosing:    selfClosing,
		AllowedSchemes: []string{"http", "https", "ftp", "mailto"},
		AllowedSchemesByTag: map[string][]string{
			"img": {"data"},
		},
		InternalLink: regexp.MustCompile(DefaultInternalLinkPattern),
	}
}

// WithInternalLink returns a copy of policy using pattern for the
// internal link test.
func (policy *Policy) WithInternalLink(pattern string) (*Policy, error) {
	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	clone := *policy
	clone.InternalLink = compiled
	return &clone, nil
}

func (policy *Policy) attributeAllowed(tag, attribute string) bool {
	for _, name := range policy.AllowedAttributes[tag] {
		if name == attribute {
			return true
		}
	}
	return false
}

func (policy *Policy) schemeAllowed(tag, value string) bool {
	scheme, ok := urlScheme(value)
	if !ok {
		return true
	}
	for _, allowed := range policy.AllowedSchemes {
		if scheme == allowed {
			return true
		}
	}
	for _, allowed := range policy.AllowedSchemesByTag[tag] {
		if scheme == allowed {
			return true
		}
	}
	return false
}

// filterClasses keeps the class names with an allowed prefix.
func (policy *Policy) filterClasses(tag, value string) string {
	prefixes := policy.ClassPrefixes[tag]
	var kept []string
	for _, class := range strings.Fields(value) {
		for _, prefix := range prefixes {
			if strings.HasPrefix(class, prefix) && len(class) > len(prefix) {
				kept = append(kept, class)
				break
			}
		}
	}
	return strings.Join(kept, " ")
}

var schemePattern = regexp.MustCompile(`^([a-z][a-z0-9+.\-]*):`)

// urlScheme extracts the lowercased scheme of a URL after removing
// whitespace and control characters, which browsers ignore inside
// schemes. ok is false for relative URLs.
func urlScheme(value string) (string, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if r <= ' ' || r == 0x7f {
			return -1
		}
		return r
	}, value)
	match := schemePattern.FindStringSubmatch(strings.ToLower(cleaned))
	if match == nil {
		return "", false
	}
	return match[1], true
}
