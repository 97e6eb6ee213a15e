// Package adapters provides the sharing module's view of the document
// registry.
package adapters

import (
	"context"

	"vault/internal/document"
	id "vault/pkg/domain"
	"vault/pkg/requestcontext"
)

// DocumentDirectory exposes ungated document lookup over the registry store.
// The sharing service applies its own ownership checks where they belong;
// token holders legitimately reach documents they do not own.
type DocumentDirectory struct {
	store document.Store
}

func NewDocumentDirectory(store document.Store) *DocumentDirectory {
	return &DocumentDirectory{store: store}
}

func (d *DocumentDirectory) Find(ctx context.Context, documentID id.DocumentID) (document.Document, error) {
	doc, err := d.store.FindByID(ctx, documentID)
	if err != nil {
		return document.Document{}, err
	}
	doc.Status = document.EffectiveStatus(doc, requestcontext.Now(ctx))
	return doc, nil
}
