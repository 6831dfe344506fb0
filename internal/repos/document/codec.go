package document

import (
	"encoding/json"
	"fmt"

	"github.com/saminkc999/coinledger/internal/domain"
)

// Marshal encodes a document in its persisted layout.
func Marshal(doc domain.Document) ([]byte, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	return b, nil
}

// Unmarshal decodes a persisted document. Empty input yields a zero Document.
func Unmarshal(b []byte) (domain.Document, error) {
	var doc domain.Document
	if len(b) == 0 {
		return doc, nil
	}

	err := json.Unmarshal(b, &doc)
	if err != nil {
		return domain.Document{}, fmt.Errorf("decode document: %w", err)
	}

	return doc, nil
}
