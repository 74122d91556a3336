package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pdfquery/internal/config"
	"pdfquery/internal/models"
	"pdfquery/internal/testutil"
)

func TestChunkContent_ShortText(t *testing.T) {
	text := "This page is shorter than the chunk size."
	chunks := chunkContent(text, 1500, 100)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk for short text, got %d", len(chunks))
	}
	if chunks[0] != text {
		t.Errorf("chunk content mismatch: %q", chunks[0])
	}
}

func TestChunkContent_Empty(t *testing.T) {
	if chunks := chunkContent("", 1500, 100); chunks != nil {
		t.Errorf("expected no chunks for empty text, got %d", len(chunks))
	}
}

func TestChunkContent_CoversSource(t *testing.T) {
	cases := []struct {
		name     string
		maxChars int
		overlap  int
		length   int
	}{
		{"default sizes", 1500, 100, 5000},
		{"small chunks", 10, 3, 101},
		{"exact multiple", 100, 20, 400},
		{"one char over", 100, 20, 101},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text := strings.Repeat("abcdefghij", tc.length/10+1)[:tc.length]
			chunks := chunkContent(text, tc.maxChars, tc.overlap)
			if len(chunks) == 0 {
				t.Fatal("no chunks produced")
			}

			var rebuilt strings.Builder
			for i, chunk := range chunks {
				if len(chunk) > tc.maxChars {
					t.Errorf("chunk %d exceeds max length: %d > %d", i, len(chunk), tc.maxChars)
				}
				if i == 0 {
					rebuilt.WriteString(chunk)
				} else {
					rebuilt.WriteString(chunk[tc.overlap:])
				}
			}
			if rebuilt.String() != text {
				t.Errorf("chunks do not reconstruct the source text (got %d chars, want %d)", rebuilt.Len(), len(text))
			}
		})
	}
}

func TestChunkContent_OverlapSharedBetweenChunks(t *testing.T) {
	text := strings.Repeat("0123456789", 50)
	chunks := chunkContent(text, 100, 20)
	for i := 1; i < len(chunks); i++ {
		prevTail := chunks[i-1][len(chunks[i-1])-20:]
		if !strings.HasPrefix(chunks[i], prevTail) {
			t.Fatalf("chunk %d does not start with the previous chunk's tail", i)
		}
	}
}

func TestChunkPages_OrderAndProvenance(t *testing.T) {
	cfg := &config.RAGConfig{ChunkSize: 50, ChunkOverlap: 10}
	pages := []models.PageText{
		{SourceFilename: "a.pdf", PageNumber: 1, Content: strings.Repeat("x", 120)},
		{SourceFilename: "a.pdf", PageNumber: 2, Content: "short page"},
		{SourceFilename: "b.pdf", PageNumber: 1, Content: strings.Repeat("y", 60)},
	}

	chunks := ChunkPages(pages, cfg)
	if len(chunks) < 4 {
		t.Fatalf("expected at least 4 chunks, got %d", len(chunks))
	}

	// order must follow the page sequence
	lastPage := ""
	seen := []string{}
	for _, c := range chunks {
		key := c.SourceFilename + ":" + string(rune('0'+c.PageNumber))
		if key != lastPage {
			seen = append(seen, key)
			lastPage = key
		}
	}
	want := []string{"a.pdf:1", "a.pdf:2", "b.pdf:1"}
	if len(seen) != len(want) {
		t.Fatalf("page order %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("page order %v, want %v", seen, want)
			break
		}
	}

	// short page yields exactly one chunk
	count := 0
	for _, c := range chunks {
		if c.SourceFilename == "a.pdf" && c.PageNumber == 2 {
			count++
		}
	}
	if count != 1 {
		t.Errorf("short page produced %d chunks, want 1", count)
	}
}

func TestLoadPages_IgnoresNonPDF(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", []byte("plain text"))
	// extension match is case-sensitive
	writeFile(t, dir, "REPORT.PDF", []byte("not parsed"))

	pages, err := LoadPages(dir)
	if err != nil {
		t.Fatalf("LoadPages failed: %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("expected no pages, got %d", len(pages))
	}
}

func TestLoadPages_FailFastOnBadPDF(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.pdf", testutil.MinimalPDF("valid content"))
	writeFile(t, dir, "bad.pdf", []byte("this is not a pdf"))

	if _, err := LoadPages(dir); err == nil {
		t.Fatal("expected error for unparseable PDF, got nil")
	}
}

func TestLoadPages_ReadsPagesInOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "paper.pdf", testutil.MinimalPDF("alpha results", "beta results", "gamma results"))

	pages, err := LoadPages(dir)
	if err != nil {
		t.Fatalf("LoadPages failed: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	for i, word := range []string{"alpha", "beta", "gamma"} {
		if pages[i].PageNumber != i+1 {
			t.Errorf("page %d has number %d", i, pages[i].PageNumber)
		}
		if pages[i].SourceFilename != "paper.pdf" {
			t.Errorf("page %d has source %q", i, pages[i].SourceFilename)
		}
		if !strings.Contains(pages[i].Content, word) {
			t.Errorf("page %d missing %q: %q", i+1, word, pages[i].Content)
		}
	}
}

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatal(err)
	}
}
