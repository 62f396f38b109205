package types

import "strings"

// EntryKey is the lowercased (title, organization, dateRange) identity of an entry.
type EntryKey struct {
	Title        string
	Organization string
	DateRange    string
}

// placeholderKey is the triple emitted by broken templates; such entries are never kept.
var placeholderKey = EntryKey{Title: "position", Organization: "company"}

func newEntryKey(title, org, dates string) EntryKey {
	return EntryKey{
		Title:        strings.ToLower(strings.TrimSpace(title)),
		Organization: strings.ToLower(strings.TrimSpace(org)),
		DateRange:    strings.ToLower(strings.TrimSpace(dates)),
	}
}

// IsBlank reports whether every part of the key is empty
func (k EntryKey) IsBlank() bool {
	return k.Title == "" && k.Organization == "" && k.DateRange == ""
}

// IsPlaceholder reports whether the key is the ("position", "company", "") placeholder
func (k EntryKey) IsPlaceholder() bool {
	return k == placeholderKey
}

// Keepable reports whether an entry with this key may appear in output
func (k EntryKey) Keepable() bool {
	return !k.IsBlank() && !k.IsPlaceholder()
}
