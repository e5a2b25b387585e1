package parser

import "ability-lst/internal/ability"

// Document is an ability .lst file split into the parts the tool keeps apart.
type Document struct {
	// Header is the SOURCELONG line, empty when the file has none.
	Header string
	// Abilities are the lines that parsed into feats, traits and GM awards.
	Abilities []*ability.Ability
	// Mods are .MOD lines, kept verbatim.
	Mods []string
	// Other holds lines that are not modeled abilities, kept verbatim.
	Other []string
}

// ParseResult holds parsing output for a single file.
type ParseResult struct {
	// FilePath is the absolute path to the parsed file.
	FilePath string
	// FileType is the detected type (lst or pcc).
	FileType string
	// RuleSystem the file was parsed for.
	RuleSystem ability.RuleSystem
	// Document is set for .lst files.
	Document *Document
	// References lists the ability files a .pcc manifest loads, resolved to
	// absolute paths.
	References []string
	// RawLines preserves the original file content.
	RawLines []string
}

// Parser is the interface for all file format parsers.
type Parser interface {
	// CanParse returns true if this parser handles the given file extension.
	CanParse(ext string) bool
	// Parse reads and parses a file.
	Parse(filePath string) (*ParseResult, error)
}
