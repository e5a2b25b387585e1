package parser

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"ability-lst/internal/ability"
)

// ParseDocument sorts the lines of an ability file into header, abilities,
// MOD lines and other entries. Comment and blank lines are dropped. A
// malformed field aborts the whole document. MOD lines and other entries are
// kept exactly as read.
func ParseDocument(lines []string, rs ability.RuleSystem) (*Document, error) {
	doc := &Document{}
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		switch {
		case line == "" || strings.HasPrefix(line, ability.CommentPrefix):
			continue
		case strings.Contains(line, ability.MarkerHeader):
			doc.Header = line
			continue
		case strings.Contains(line, ability.MarkerMod):
			doc.Mods = append(doc.Mods, raw)
			continue
		}

		a, err := ParseLine(line, rs)
		if err != nil {
			var fe *FieldError
			if errors.As(err, &fe) {
				fe.LineNo = i + 1
			}
			return nil, err
		}
		if a == nil {
			doc.Other = append(doc.Other, raw)
			continue
		}
		doc.Abilities = append(doc.Abilities, a)
	}
	return doc, nil
}

// ReadLines reads a text file into lines.
func ReadLines(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return lines, nil
}

// LSTParser parses ability .lst files for one rule system.
type LSTParser struct {
	System ability.RuleSystem
}

func NewLSTParser(rs ability.RuleSystem) *LSTParser { return &LSTParser{System: rs} }

func (p *LSTParser) CanParse(ext string) bool {
	return ext == ".lst"
}

func (p *LSTParser) Parse(filePath string) (*ParseResult, error) {
	lines, err := ReadLines(filePath)
	if err != nil {
		return nil, fmt.Errorf("read lst file: %w", err)
	}
	doc, err := ParseDocument(lines, p.System)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filePath, err)
	}
	return &ParseResult{
		FilePath:   filePath,
		FileType:   "lst",
		RuleSystem: p.System,
		Document:   doc,
		RawLines:   lines,
	}, nil
}
