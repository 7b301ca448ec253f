package chunk

import (
	"context"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
)

// grammarFor returns the tree-sitter grammar for an extension, or nil when
// the language has no grammar wired in. TypeScript parses acceptably with the
// JavaScript grammar for boundary purposes.
func grammarFor(ext string) *sitter.Language {
	switch ext {
	case ".go":
		return golang.GetLanguage()
	case ".py":
		return python.GetLanguage()
	case ".js", ".jsx", ".ts", ".tsx":
		return javascript.GetLanguage()
	default:
		return nil
	}
}

// structuralParser extracts top-level declaration boundaries from source
// text. It supplies the coarsest split level for supported languages; the
// textual separator chain handles everything finer.
type structuralParser struct {
	parser *sitter.Parser
	mu     sync.Mutex
}

func newStructuralParser() *structuralParser {
	return &structuralParser{parser: sitter.NewParser()}
}

// pieces splits content at the start byte of every top-level syntax node
// after the first, so each piece holds whole declarations plus whatever
// precedes them. Returns false when the extension is unsupported, parsing
// fails, or the file has no usable boundaries.
func (p *structuralParser) pieces(content, ext string) ([]string, bool) {
	lang := grammarFor(ext)
	if lang == nil {
		return nil, false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.parser.SetLanguage(lang)
	tree, err := p.parser.ParseCtx(context.Background(), nil, []byte(content))
	if err != nil || tree == nil {
		return nil, false
	}
	defer tree.Close()

	root := tree.RootNode()
	n := int(root.ChildCount())
	if n < 2 {
		return nil, false
	}

	var cuts []int
	for i := 1; i < n; i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		cut := int(child.StartByte())
		if cut <= 0 || cut >= len(content) {
			continue
		}
		if len(cuts) == 0 || cut > cuts[len(cuts)-1] {
			cuts = append(cuts, cut)
		}
	}
	if len(cuts) == 0 {
		return nil, false
	}

	pieces := make([]string, 0, len(cuts)+1)
	prev := 0
	for _, cut := range cuts {
		pieces = append(pieces, content[prev:cut])
		prev = cut
	}
	pieces = append(pieces, content[prev:])
	return pieces, true
}
