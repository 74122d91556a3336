package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"

	"pdfquery/internal/config"
	"pdfquery/internal/models"
)

const pdfExtension = ".pdf"

// LoadPages scans dir for PDF files (extension match is case-sensitive,
// no recursion) and parses each into page-level texts, in file-system
// enumeration order. A file that fails to parse aborts the whole load.
func LoadPages(dir string) ([]models.PageText, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var pages []models.PageText
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), pdfExtension) {
			continue
		}
		filePages, err := parsePDF(filepath.Join(dir, entry.Name()), entry.Name())
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", entry.Name(), err)
		}
		pages = append(pages, filePages...)
	}
	return pages, nil
}

func parsePDF(filePath, filename string) ([]models.PageText, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Get file size for reader initialization
	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, err
	}

	var pages []models.PageText
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			log.Warn().Str("file", filename).Int("page", i).Msg("Null page encountered")
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, err
		}
		pages = append(pages, models.PageText{
			SourceFilename: filename,
			PageNumber:     i,
			Content:        pageText,
		})
	}
	return pages, nil
}

// ChunkPages splits page texts into overlapping chunks, preserving
// document and page order.
func ChunkPages(pages []models.PageText, cfg *config.RAGConfig) []models.Chunk {
	var chunks []models.Chunk
	for _, page := range pages {
		for i, content := range chunkContent(page.Content, cfg.ChunkSize, cfg.ChunkOverlap) {
			chunks = append(chunks, models.Chunk{
				Content:        content,
				SourceFilename: page.SourceFilename,
				PageNumber:     page.PageNumber,
				ChunkID:        i + 1,
			})
		}
	}
	return chunks
}

// chunkContent slices content into chunks of at most maxChars with
// overlapChars shared between consecutive chunks. The chunks cover the
// source text exactly: the first chunk plus each following chunk minus
// its leading overlap reconstructs the input.
func chunkContent(content string, maxChars, overlapChars int) []string {
	// Handle edge cases
	if maxChars <= 0 || len(content) == 0 {
		return nil
	}
	if overlapChars < 0 {
		overlapChars = 0
	}
	if overlapChars >= maxChars {
		overlapChars = maxChars / 2 // avoid a non-advancing window
	}

	// If content fits in one chunk, return it as is
	if len(content) <= maxChars {
		return []string{content}
	}

	var chunks []string
	step := maxChars - overlapChars
	for start := 0; start < len(content); start += step {
		end := min(start+maxChars, len(content))
		chunks = append(chunks, content[start:end])
		if end == len(content) {
			break
		}
	}
	return chunks
}
