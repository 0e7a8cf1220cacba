package store

import (
	"encoding/json"
	"fmt"

	"mascot/models"
)

// userToDocument converts a typed user record into its generic tree form.
func userToDocument(record *models.UserRecord) (Document, error) {
	return toDocument(record)
}

// userFromDocument converts a generic tree back into a typed user record.
// Unknown fields in the document are dropped; missing fields take their zero
// values.
func userFromDocument(doc Document) (*models.UserRecord, error) {
	var record models.UserRecord
	if err := fromDocument(doc, &record); err != nil {
		return nil, fmt.Errorf("failed to decode user record: %w", err)
	}
	return &record, nil
}

// guildToDocument converts a typed guild record into its generic tree form.
func guildToDocument(record *models.GuildRecord) (Document, error) {
	return toDocument(record)
}

// guildFromDocument converts a generic tree back into a typed guild record.
func guildFromDocument(doc Document) (*models.GuildRecord, error) {
	var record models.GuildRecord
	if err := fromDocument(doc, &record); err != nil {
		return nil, fmt.Errorf("failed to decode guild record: %w", err)
	}
	return &record, nil
}

func toDocument(record any) (Document, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	return doc, nil
}

func fromDocument(doc Document, record any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, record)
}
