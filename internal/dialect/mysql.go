package dialect

import "fmt"

// mysql builds introspection SQL from information_schema. In MySQL a
// schema is a database, so the "any schema" wildcard scopes single-table
// lookups to DATABASE() — the database the connection is attached to —
// rather than scanning every database on the server.
type mysql struct{}

func (mysql) Name() Name { return MySQL }

// myScope resolves the schema filter for single-table queries:
// explicit schema when given, the current database otherwise.
const myScope = `table_schema = CASE WHEN '%[2]s' = '' THEN DATABASE() ELSE '%[2]s' END`

const myTableExists = `
SELECT 1
FROM information_schema.tables
WHERE table_type = 'BASE TABLE'
  AND table_name = '%[1]s'
  AND ` + myScope

func (mysql) TableExists(t TableRef) (string, error) {
	if err := checkTable(t); err != nil {
		return "", err
	}
	return fmt.Sprintf(myTableExists, t.Table, t.Schema), nil
}

const myColumns = `
SELECT column_name,
       column_type,
       CASE WHEN is_nullable = 'YES' THEN 1 ELSE 0 END AS nullable,
       column_default
FROM information_schema.columns
WHERE table_name = '%[1]s'
  AND ` + myScope + `
ORDER BY ordinal_position
LIMIT %[3]d OFFSET %[4]d`

func (mysql) Columns(t TableRef, limit, offset int) (string, error) {
	if err := checkTable(t); err != nil {
		return "", err
	}
	if err := checkWindow(limit, offset); err != nil {
		return "", err
	}
	return fmt.Sprintf(myColumns, t.Table, t.Schema, limit, offset), nil
}

const myColumnsCount = `
SELECT COUNT(*)
FROM information_schema.columns
WHERE table_name = '%[1]s'
  AND ` + myScope

func (mysql) ColumnsCount(t TableRef) (string, error) {
	if err := checkTable(t); err != nil {
		return "", err
	}
	return fmt.Sprintf(myColumnsCount, t.Table, t.Schema), nil
}

// myFKFilter is shared by the foreign-key count and fetch templates.
// key_column_usage carries the referenced side directly, so no join is
// needed. A filtered side with no explicit schema scopes to DATABASE(),
// the same default as the single-table queries above; a fully unfiltered
// side stays unconstrained so cross-schema keys are still found.
// Args: 1=source_table 2=source_schema 3=dest_table 4=dest_schema.
const myFKFilter = `kcu.referenced_table_name IS NOT NULL
  AND ('%[1]s' = '' OR kcu.table_name = '%[1]s')
  AND (('%[1]s' = '' AND '%[2]s' = '') OR kcu.table_schema = CASE WHEN '%[2]s' = '' THEN DATABASE() ELSE '%[2]s' END)
  AND ('%[3]s' = '' OR kcu.referenced_table_name = '%[3]s')
  AND (('%[3]s' = '' AND '%[4]s' = '') OR kcu.referenced_table_schema = CASE WHEN '%[4]s' = '' THEN DATABASE() ELSE '%[4]s' END)`

const myForeignKeys = `
SELECT kcu.constraint_name,
       kcu.table_name             AS source_table,
       kcu.column_name            AS source_column,
       kcu.referenced_table_name  AS dest_table,
       kcu.referenced_column_name AS dest_column
FROM information_schema.key_column_usage kcu
WHERE ` + myFKFilter + `
  AND kcu.constraint_name IN (
      SELECT w.constraint_name
      FROM (
          SELECT DISTINCT kcu.constraint_name
          FROM information_schema.key_column_usage kcu
          WHERE ` + myFKFilter + `
          ORDER BY kcu.constraint_name
          LIMIT %[5]d OFFSET %[6]d
      ) w
  )
ORDER BY kcu.constraint_name, kcu.ordinal_position`

func (mysql) ForeignKeys(f FKFilter, limit, offset int) (string, error) {
	if err := checkFilter(f); err != nil {
		return "", err
	}
	if err := checkWindow(limit, offset); err != nil {
		return "", err
	}
	return fmt.Sprintf(myForeignKeys,
		f.SourceTable, f.SourceSchema, f.DestTable, f.DestSchema, limit, offset), nil
}

const myForeignKeysCount = `
SELECT COUNT(DISTINCT kcu.constraint_name)
FROM information_schema.key_column_usage kcu
WHERE ` + myFKFilter

func (mysql) ForeignKeysCount(f FKFilter) (string, error) {
	if err := checkFilter(f); err != nil {
		return "", err
	}
	return fmt.Sprintf(myForeignKeysCount,
		f.SourceTable, f.SourceSchema, f.DestTable, f.DestSchema), nil
}

const myPrimaryKeys = `
SELECT column_name
FROM information_schema.key_column_usage
WHERE constraint_name = 'PRIMARY'
  AND table_name = '%[1]s'
  AND ` + myScope + `
ORDER BY ordinal_position`

func (mysql) PrimaryKeys(t TableRef) (string, error) {
	if err := checkTable(t); err != nil {
		return "", err
	}
	return fmt.Sprintf(myPrimaryKeys, t.Table, t.Schema), nil
}

const myListTables = `
SELECT table_schema, table_name
FROM information_schema.tables
WHERE table_type = 'BASE TABLE'
  AND table_schema NOT IN ('mysql', 'information_schema', 'performance_schema', 'sys')
  AND ('%[1]s' = '' OR table_schema = '%[1]s')
ORDER BY table_schema, table_name
LIMIT %[2]d OFFSET %[3]d`

func (mysql) ListTables(schema string, limit, offset int) (string, error) {
	if err := checkOptional(schema); err != nil {
		return "", err
	}
	if err := checkWindow(limit, offset); err != nil {
		return "", err
	}
	return fmt.Sprintf(myListTables, schema, limit, offset), nil
}

const myListTablesCount = `
SELECT COUNT(*)
FROM information_schema.tables
WHERE table_type = 'BASE TABLE'
  AND table_schema NOT IN ('mysql', 'information_schema', 'performance_schema', 'sys')
  AND ('%[1]s' = '' OR table_schema = '%[1]s')`

func (mysql) ListTablesCount(schema string) (string, error) {
	if err := checkOptional(schema); err != nil {
		return "", err
	}
	return fmt.Sprintf(myListTablesCount, schema), nil
}

func (mysql) Sample(t TableRef, limit int) (string, error) {
	if err := checkTable(t); err != nil {
		return "", err
	}
	if err := checkSampleLimit(limit); err != nil {
		return "", err
	}
	if t.Schema == "" {
		return fmt.Sprintf("SELECT * FROM `%s` LIMIT %d", t.Table, limit), nil
	}
	return fmt.Sprintf("SELECT * FROM `%s`.`%s` LIMIT %d", t.Schema, t.Table, limit), nil
}
