// Package skills turns raw comma separated skill fields into token lists.
//
// Tokens compare by exact, case-sensitive string equality. The only cleanup
// applied is trimming of whitespace around each token.
package skills

import "strings"

const separator = ","

// Options tweaks how token lists are cleaned after splitting.
type Options struct {
	// Dedupe keeps only the first occurrence of each token.
	Dedupe bool
	// DropEmpty removes tokens that are empty after trimming.
	DropEmpty bool
}

// Normalize splits raw on commas and trims each token. An empty field yields
// an empty list. Any other field keeps its empty tokens, so a whitespace only
// field is one empty token. Duplicates are kept and case is preserved.
func Normalize(raw string) []string {
	if raw == "" {
		return []string{}
	}

	parts := strings.Split(raw, separator)
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		tokens = append(tokens, strings.TrimSpace(part))
	}

	return tokens
}

// Parse is Normalize followed by Apply.
func Parse(raw string, opts Options) []string {
	return Apply(Normalize(raw), opts)
}

// Apply returns a cleaned copy of tokens according to opts. Order is kept.
func Apply(tokens []string, opts Options) []string {
	out := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))

	for _, token := range tokens {
		if opts.DropEmpty && token == "" {
			continue
		}
		if opts.Dedupe {
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
		}
		out = append(out, token)
	}

	return out
}
