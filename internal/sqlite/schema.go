package sqlite

// Schema DDL. The database is rebuilt from JSONL on every Attach, so there
// is no migration path.
const (
	createTodos = `CREATE TABLE todos (
    id INTEGER PRIMARY KEY,
    title TEXT NOT NULL,
    status INTEGER NOT NULL DEFAULT 0
);`

	createStoreState = `CREATE TABLE store_state (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);`
)

// store_state keys.
const (
	stateKeyNextID  = "next_id"
	stateKeyStoreID = "store_id"
)

// schemaDDL lists all CREATE TABLE statements in execution order.
var schemaDDL = []string{
	createTodos,
	createStoreState,
}
