package sqlite

import "fmt"

// Every entity table has the same shape: the entity name is the unique key,
// position keeps insertion order, and data holds the entity as JSON.
const entityTableDDL = `CREATE TABLE %s (
    entity_id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    position INTEGER NOT NULL,
    data TEXT NOT NULL,
    created_at TEXT NOT NULL
);`

const positionIndexDDL = `CREATE INDEX idx_%s_position ON %s(position);`

// schemaDDL returns the statements creating the given entity tables.
func schemaDDL(tables ...string) []string {
	var stmts []string
	for _, name := range tables {
		stmts = append(stmts,
			fmt.Sprintf(entityTableDDL, name),
			fmt.Sprintf(positionIndexDDL, name, name))
	}
	return stmts
}
