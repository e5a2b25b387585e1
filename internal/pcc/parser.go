package pcc

import (
	"fmt"

	"ability-lst/internal/ability"
	"ability-lst/internal/parser"
	"ability-lst/internal/vocab"
)

// Parser reads .pcc manifests found while walking a data directory.
type Parser struct {
	DataDir string
	Vocab   *vocab.Vocabulary
}

var _ parser.Parser = (*Parser)(nil)

func NewParser(dataDir string, v *vocab.Vocabulary) *Parser {
	return &Parser{DataDir: dataDir, Vocab: v}
}

func (p *Parser) CanParse(ext string) bool {
	return ext == extension
}

// Parse reads the manifest at filePath and resolves its ability file
// references. Manifests for game modes without a vocabulary entry are
// rejected with ability.ErrUnsupported.
func (p *Parser) Parse(filePath string) (*parser.ParseResult, error) {
	lines, err := parser.ReadLines(filePath)
	if err != nil {
		return nil, fmt.Errorf("read pcc file: %w", err)
	}
	m := Parse(lines)
	rs, ok := p.Vocab.ByGameMode(m.GameMode)
	if !ok {
		return nil, fmt.Errorf("%s: game mode %q: %w", filePath, m.GameMode, ability.ErrUnsupported)
	}

	refs := make([]string, 0, len(m.Abilities))
	for _, ref := range m.Abilities {
		refs = append(refs, Resolve(ref, filePath, p.DataDir))
	}
	return &parser.ParseResult{
		FilePath:   filePath,
		FileType:   "pcc",
		RuleSystem: rs,
		References: refs,
		RawLines:   lines,
	}, nil
}
