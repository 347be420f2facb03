// Copyright (c) 2026 Meridia Health. All rights reserved.

/*
Package schema centralizes table and column identifiers so queries never
embed raw SQL names.
*/
package schema

// PreferencesTable represents the 'sync.preferences' table
type PreferencesTable struct {
	Table      string
	IdentityID string
	Document   string
	UpdatedAt  string
}

// Preferences is the schema definition for sync.preferences
var Preferences = PreferencesTable{
	Table:      "sync.preferences",
	IdentityID: "identityid",
	Document:   "document",
	UpdatedAt:  "updatedat",
}

// Columns returns all standard column names
func (t PreferencesTable) Columns() []string {
	return []string{t.IdentityID, t.Document, t.UpdatedAt}
}
