// Package storage archives parse results to object storage
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/alchemorsel/mealplanner/internal/domain/recipe"
	"github.com/alchemorsel/mealplanner/internal/domain/stepgraph"
	"github.com/alchemorsel/mealplanner/internal/ports/outbound"
	"github.com/andybalholm/brotli"
	"github.com/google/uuid"
)

const (
	contentTypeJSON = "application/json"
	encodingBrotli  = "br"
)

// ArchivedGraph is the document written for every parse
type ArchivedGraph struct {
	ParsedID    uuid.UUID              `json:"parsed_id"`
	RecipeID    uuid.UUID              `json:"recipe_id"`
	Title       string                 `json:"title"`
	ContentHash string                 `json:"content_hash"`
	Provider    string                 `json:"provider"`
	Annotations stepgraph.Document     `json:"annotations"`
	Graph       stepgraph.StepGraph    `json:"graph"`
	Diagnostics []stepgraph.Diagnostic `json:"diagnostics,omitempty"`
	ParsedAt    string                 `json:"parsed_at"`
}

// Archiver writes brotli-compressed JSON snapshots of parse results
type Archiver struct {
	store  outbound.ArchiveStore
	prefix string
}

// NewArchiver creates an archiver writing under prefix
func NewArchiver(store outbound.ArchiveStore, prefix string) *Archiver {
	return &Archiver{store: store, prefix: prefix}
}

var _ outbound.GraphArchiver = (*Archiver)(nil)

// Archive stores p and returns the object key
func (a *Archiver) Archive(ctx context.Context, p *recipe.ParsedRecipe) (string, error) {
	doc := ArchivedGraph{
		ParsedID:    p.ID,
		RecipeID:    p.Recipe.ID(),
		Title:       p.Recipe.Title(),
		ContentHash: p.ContentHash,
		Provider:    p.Provider,
		Annotations: p.Annotations,
		Graph:       p.Graph,
		Diagnostics: p.Diagnostics,
		ParsedAt:    p.ParsedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode archive: %w", err)
	}
	body, err := Compress(raw)
	if err != nil {
		return "", err
	}

	key := a.Key(p)
	if err := a.store.Put(ctx, key, body, contentTypeJSON, encodingBrotli); err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return key, nil
}

// Key returns graphs/<yyyy>/<mm>/<content-hash>.json under the prefix
func (a *Archiver) Key(p *recipe.ParsedRecipe) string {
	t := p.ParsedAt.UTC()
	return fmt.Sprintf("%sgraphs/%04d/%02d/%s.json", a.prefix, t.Year(), int(t.Month()), p.ContentHash)
}

// Compress brotli-encodes data
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, brotli.DefaultCompression)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("brotli write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("brotli close: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress reverses Compress
func Decompress(data []byte) ([]byte, error) {
	return io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
}
