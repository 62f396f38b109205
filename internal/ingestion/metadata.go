package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Metadata describes one ingested résumé file
type Metadata struct {
	Source         string   `json:"source"`
	Format         Format   `json:"format"`
	MIME           string   `json:"mime,omitempty"`
	Timestamp      string   `json:"timestamp"` // RFC3339 format
	Hash           string   `json:"hash"`      // SHA256 hex digest of the input bytes
	Pages          int      `json:"pages,omitempty"`
	Characters     int      `json:"characters"`
	LargeTextHints []string `json:"large_text_hints,omitempty"`
}

// NewMetadata creates a new Metadata instance with current timestamp
func NewMetadata(source string, format Format, data []byte, text string) *Metadata {
	return &Metadata{
		Source:     source,
		Format:     format,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Hash:       computeHash(data),
		Characters: len([]rune(text)),
	}
}

func computeHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ToJSON marshals Metadata to pretty-printed JSON
func (m *Metadata) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return jsonBytes, nil
}
