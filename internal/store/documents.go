package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gdslab/blockspec/internal/ir"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("document not found")

// DocumentInfo is one archive row without its payload.
type DocumentInfo struct {
	SourceID      string   `json:"source_id"`
	DocumentID    string   `json:"document_id"`
	SchemaVersion string   `json:"schema_version"`
	ToolVersion   string   `json:"tool_version"`
	CreatedAt     string   `json:"created_at"`
	Systems       []string `json:"systems"`
}

// SystemRecord is one compile of a named system.
type SystemRecord struct {
	SourceID  string `json:"source_id"`
	SystemID  string `json:"system_id"`
	CreatedAt string `json:"created_at"`
}

// SaveDocument archives a compiled document together with an index row
// per contained system. Saving the same document twice is idempotent;
// recompiles of identical content get fresh rows that share a
// document_id.
func (s *Store) SaveDocument(ctx context.Context, doc *ir.Document) error {
	docID, err := ir.DocumentID(doc)
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	payload, err := doc.Encode()
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (source_id, document_id, schema_version, tool_version, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(source_id) DO NOTHING
	`, doc.SourceID, docID, doc.SchemaVersion, doc.ToolVersion, string(payload))
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}

	for i := range doc.Systems {
		sys := &doc.Systems[i]
		sysID, err := ir.SystemID(sys)
		if err != nil {
			return fmt.Errorf("save document: hashing system %q: %w", sys.Name, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO systems (source_id, name, system_id)
			VALUES (?, ?, ?)
			ON CONFLICT(source_id, name) DO NOTHING
		`, doc.SourceID, sys.Name, sysID)
		if err != nil {
			return fmt.Errorf("save document: indexing system %q: %w", sys.Name, err)
		}
	}

	return tx.Commit()
}

// LoadDocument retrieves an archived document by its source id.
func (s *Store) LoadDocument(ctx context.Context, sourceID string) (*ir.Document, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM documents WHERE source_id = ?`, sourceID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load document %s: %w", sourceID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", sourceID, err)
	}
	return ir.DecodeDocument([]byte(payload))
}

// ListDocuments returns every archived document, newest first, without
// payloads.
func (s *Store) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source_id, document_id, schema_version, tool_version, created_at
		FROM documents
		ORDER BY created_at DESC, source_id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var infos []DocumentInfo
	for rows.Next() {
		var info DocumentInfo
		if err := rows.Scan(&info.SourceID, &info.DocumentID, &info.SchemaVersion, &info.ToolVersion, &info.CreatedAt); err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	for i := range infos {
		systems, err := s.documentSystems(ctx, infos[i].SourceID)
		if err != nil {
			return nil, err
		}
		infos[i].Systems = systems
	}

	return infos, nil
}

// SystemHistory returns every archived compile of the named system,
// oldest first. Consecutive records with differing system ids mark the
// compiles where the system's structure changed.
func (s *Store) SystemHistory(ctx context.Context, name string) ([]SystemRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sys.source_id, sys.system_id, doc.created_at
		FROM systems sys
		JOIN documents doc ON doc.source_id = sys.source_id
		WHERE sys.name = ?
		ORDER BY doc.created_at ASC, sys.source_id ASC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("system history %q: %w", name, err)
	}
	defer rows.Close()

	var records []SystemRecord
	for rows.Next() {
		var rec SystemRecord
		if err := rows.Scan(&rec.SourceID, &rec.SystemID, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("system history %q: %w", name, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("system history %q: %w", name, err)
	}

	return records, nil
}

func (s *Store) documentSystems(ctx context.Context, sourceID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM systems WHERE source_id = ? ORDER BY name`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("document systems %s: %w", sourceID, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("document systems %s: %w", sourceID, err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
