package ingest

import (
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"

	"decorprice/internal"
)

// DetectKind guesses the import source from the file extension.
func DetectKind(path string) (internal.ImportSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return internal.SourceXLSX, nil
	case ".html", ".htm":
		return internal.SourceHTML, nil
	case ".pdf":
		return internal.SourcePDF, nil
	case ".json":
		return internal.SourceJSON, nil
	}
	return "", errors.Errorf("cannot detect input type of %s, pass --type", path)
}

// ResolveKind prefers an explicit --type and falls back to the extension.
func ResolveKind(kind, path string) (internal.ImportSource, error) {
	if strings.TrimSpace(kind) != "" {
		return ParseKind(kind)
	}
	return DetectKind(path)
}
