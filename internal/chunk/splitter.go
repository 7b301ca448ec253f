package chunk

import "strings"

// splitter performs recursive character splitting: split on the coarsest
// separator that occurs in the text, merge small pieces back into windows of
// at most size with up to overlap carried between consecutive windows, and
// recurse into oversized pieces with the finer separators.
type splitter struct {
	size    int
	overlap int
}

// split applies the full separator chain to text.
func (s splitter) split(text string, separators []string) []string {
	sep, rest := chooseSeparator(text, separators)
	return s.assemble(splitKeepingSeparator(text, sep), rest)
}

// assemble merges undersized pieces into overlapping windows and recurses
// into oversized ones with the finer separators. A nil finer chain keeps an
// oversized piece whole. The structural pre-pass calls this directly with
// declaration-aligned pieces and the extension's full separator chain.
func (s splitter) assemble(pieces []string, finer []string) []string {
	var out []string
	var pending []string

	for _, piece := range pieces {
		if len(piece) < s.size {
			pending = append(pending, piece)
			continue
		}
		if len(pending) > 0 {
			out = append(out, s.merge(pending)...)
			pending = nil
		}
		if len(finer) == 0 {
			out = append(out, piece)
		} else {
			out = append(out, s.split(piece, finer)...)
		}
	}
	if len(pending) > 0 {
		out = append(out, s.merge(pending)...)
	}

	return out
}

// merge greedily packs consecutive pieces into windows of at most size.
// When a window is emitted, pieces are dropped from its front until at most
// overlap characters remain; those become the start of the next window, so
// structural context spanning a boundary is kept on both sides.
func (s splitter) merge(pieces []string) []string {
	var docs []string
	var window []string
	total := 0

	for _, p := range pieces {
		n := len(p)
		if total+n > s.size && len(window) > 0 {
			if doc := strings.Join(window, ""); strings.TrimSpace(doc) != "" {
				docs = append(docs, doc)
			}
			for len(window) > 0 && (total > s.overlap || (total+n > s.size && total > 0)) {
				total -= len(window[0])
				window = window[1:]
			}
		}
		window = append(window, p)
		total += n
	}

	if doc := strings.Join(window, ""); strings.TrimSpace(doc) != "" {
		docs = append(docs, doc)
	}
	return docs
}

// chooseSeparator picks the first separator that occurs in the text (the
// empty separator always matches) and returns the finer ones after it.
func chooseSeparator(text string, separators []string) (string, []string) {
	sep := ""
	var rest []string
	for i, cand := range separators {
		if cand == "" {
			sep = ""
			rest = nil
			break
		}
		if strings.Contains(text, cand) {
			sep = cand
			rest = separators[i+1:]
			break
		}
	}
	return sep, rest
}

// splitKeepingSeparator splits text on sep, attaching the separator to the
// front of each following piece so no content is lost. The empty separator
// splits into individual runes, never mid-rune, so reassembled windows stay
// valid UTF-8.
func splitKeepingSeparator(text, sep string) []string {
	if sep == "" {
		out := make([]string, 0, len(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}

	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	if parts[0] != "" {
		out = append(out, parts[0])
	}
	for _, p := range parts[1:] {
		out = append(out, sep+p)
	}
	return out
}
