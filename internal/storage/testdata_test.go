package storage

import (
	"testing"

	"github.com/matsen/bibparse/internal/bibtex"
)

const testBib = `
@article{Smith2026-ab,
  author = {Smith, John and Doe, Jane},
  title = {Machine Learning in Biology},
  journal = {Nature},
  year = 2026
}

@article{Jones2025-cd,
  author = {Alice Jones},
  title = {Deep Learning for Protein Structure},
  year = 2025
}

@inproceedings{Brown2024-ef,
  author = {Brown, Bob and White, Carol},
  title = {Statistical Methods in Genomics},
  booktitle = {Proceedings of ISMB},
  year = 2024
}`

// testEntries parses the shared fixture library.
func testEntries(t *testing.T) []*bibtex.Entry {
	t.Helper()
	entries, err := bibtex.Parse(testBib, bibtex.Options{})
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	return entries
}
