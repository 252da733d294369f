// Package model defines the records exchanged between the forms, the gateways
// and the external record store.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Table names a collection in the record store.
type Table string

const (
	TableEventos  Table = "eventos"
	TableEquipos  Table = "equipos"
	TableMiembros Table = "miembros"
	TableEmpresas Table = "empresas"
	TableNoticias Table = "noticias"
)

// Tables lists every table the registry manages, in navigation order.
var Tables = []Table{TableEventos, TableEquipos, TableMiembros, TableEmpresas, TableNoticias}

// ErrUnknownTable is returned by ParseTable for names outside Tables.
var ErrUnknownTable = errors.New("unknown table")

// ParseTable converts a raw name into a Table.
func ParseTable(name string) (Table, error) {
	t := Table(name)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
	return t, nil
}

// Valid reports whether t is one of the registry tables.
func (t Table) Valid() bool {
	for _, known := range Tables {
		if t == known {
			return true
		}
	}
	return false
}

func (t Table) String() string { return string(t) }

// Fields is a record's field map. Values are strings, []string for linked
// record ids, or Attachment.
type Fields map[string]any

// Record is a snapshot of one stored record.
type Record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// RecordPayload is what a form submits to the record gateway.
type RecordPayload struct {
	Table  Table  `json:"table"`
	Fields Fields `json:"data"`
}

// UploadResult is the public URL issued for one uploaded blob.
type UploadResult struct {
	URL string `json:"url"`
}

// Record gateway actions.
const (
	ActionCreate = ""
	ActionList   = "list"
	ActionDelete = "delete"
	ActionUpdate = "update"
)

// ListQuery asks the record gateway for a table's records.
type ListQuery struct {
	Table  Table  `json:"table"`
	Action string `json:"action"`
}

// NewListQuery builds a list query for table.
func NewListQuery(table Table) ListQuery {
	return ListQuery{Table: table, Action: ActionList}
}

// String returns the string value stored under key, or "" when the field is
// missing or not a string.
func (r Record) String(key string) string {
	s, _ := r.Fields[key].(string)
	return s
}

// Links returns the linked record ids stored under key.
func (r Record) Links(key string) []string {
	switch v := r.Fields[key].(type) {
	case []string:
		return v
	case []any:
		ids := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				ids = append(ids, s)
			}
		}
		return ids
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}

// MarshalJSON keeps Fields as a plain object even when nil.
func (f Fields) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]any(f))
}
