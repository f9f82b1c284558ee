package model

import (
	"context"
	"fmt"
	"io"

	"github.com/roach88/shelby/internal/date"
	"github.com/roach88/shelby/internal/store"
)

// Documents stores scanned letters and receipts. The scan itself is large
// and never selected; read it with OpenContent.
var Documents = store.NewTable(store.TableSpec{
	Name:      "documents",
	DependsOn: store.Both(Persons, Users),
	Columns: []store.Column{
		store.Blob("document").Stream(),
		store.ForeignKey("processed_by", Users),
		store.ForeignKey("from_person", Persons),
		store.ForeignKey("to_person", Persons),
		store.Date("received"),
		store.Date("processed"),
		store.Text("description"),
	},
	SortBy: []string{"id", "received", "processed"},
})

// Document is a scanned document with its routing information.
type Document struct {
	Content     []byte            `json:"-"`
	ProcessedBy store.Key[User]   `json:"processed_by"`
	FromPerson  store.Key[Person] `json:"from_person"`
	ToPerson    store.Key[Person] `json:"to_person"`
	Received    date.Date         `json:"received"`
	Processed   date.Date         `json:"processed"`
	Description string            `json:"description"`
}

// DocumentMetadata is everything about a document except its content.
type DocumentMetadata struct {
	Key         store.Key[Document] `json:"identifier"`
	ProcessedBy store.Key[User]     `json:"processed_by"`
	FromPerson  store.Key[Person]   `json:"from_person"`
	ToPerson    store.Key[Person]   `json:"to_person"`
	Received    date.Date           `json:"received"`
	Processed   date.Date           `json:"processed"`
	Description string              `json:"description"`
}

func (Document) Table() *store.Table { return Documents }

func (d Document) Values() []any {
	content := d.Content
	if content == nil {
		content = []byte{}
	}
	return []any{content, d.ProcessedBy, d.FromPerson, d.ToPerson, d.Received, d.Processed, d.Description}
}

func (Document) Decode(row store.Scanner) (DocumentMetadata, error) {
	var m DocumentMetadata
	err := row.Scan(&m.Key, &m.ProcessedBy, &m.FromPerson, &m.ToPerson, &m.Received, &m.Processed, &m.Description)
	return m, err
}

func (Document) DescribeStatement() string {
	return store.DescribeBy(Documents, "processed || ' ' || description")
}

// Metadata returns the metadata of the document stored under key.
func (d Document) Metadata(key store.Key[Document]) DocumentMetadata {
	return DocumentMetadata{
		Key:         key,
		ProcessedBy: d.ProcessedBy,
		FromPerson:  d.FromPerson,
		ToPerson:    d.ToPerson,
		Received:    d.Received,
		Processed:   d.Processed,
		Description: d.Description,
	}
}

// OpenContent streams the scan of a document.
func OpenContent(ctx context.Context, s *store.Store, key store.Key[Document]) (*store.Blob, error) {
	return s.OpenBlob(ctx, Documents, "document", key.Int64())
}

// LoadContent reads the whole scan of a document into memory.
func LoadContent(ctx context.Context, s *store.Store, key store.Key[Document]) ([]byte, error) {
	blob, err := OpenContent(ctx, s, key)
	if err != nil {
		return nil, err
	}

	content := make([]byte, blob.Size())
	if _, err := io.ReadFull(blob, content); err != nil {
		return nil, fmt.Errorf("load content of %s: %w", key, err)
	}
	return content, nil
}
