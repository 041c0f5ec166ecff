package dialect

import "fmt"

// sqlite builds introspection SQL from sqlite_master and the table-valued
// pragma functions (pragma_table_info, pragma_foreign_key_list). SQLite
// has a single schema named "main", so any schema filter other than ""
// or "main" matches nothing.
//
// SQLite does not name foreign-key constraints, so a synthetic name
// "<table>.fk<id>" is derived from the pragma's constraint id. Ordering
// over that synthetic name is lexicographic, which is all the pagination
// contract requires (stable and deterministic).
type sqlite struct{}

func (sqlite) Name() Name { return SQLite }

// sqSchemaGuard matches the single "main" schema or the wildcard.
const sqSchemaGuard = `('%[2]s' = '' OR '%[2]s' = 'main')`

const sqTableExists = `
SELECT 1
FROM sqlite_master
WHERE type = 'table'
  AND name = '%[1]s'
  AND ` + sqSchemaGuard

func (sqlite) TableExists(t TableRef) (string, error) {
	if err := checkTable(t); err != nil {
		return "", err
	}
	return fmt.Sprintf(sqTableExists, t.Table, t.Schema), nil
}

const sqColumns = `
SELECT name,
       type,
       CASE WHEN "notnull" = 0 THEN 1 ELSE 0 END AS nullable,
       dflt_value
FROM pragma_table_info('%[1]s')
WHERE ` + sqSchemaGuard + `
ORDER BY cid
LIMIT %[3]d OFFSET %[4]d`

func (sqlite) Columns(t TableRef, limit, offset int) (string, error) {
	if err := checkTable(t); err != nil {
		return "", err
	}
	if err := checkWindow(limit, offset); err != nil {
		return "", err
	}
	return fmt.Sprintf(sqColumns, t.Table, t.Schema, limit, offset), nil
}

const sqColumnsCount = `
SELECT COUNT(*)
FROM pragma_table_info('%[1]s')
WHERE ` + sqSchemaGuard

func (sqlite) ColumnsCount(t TableRef) (string, error) {
	if err := checkTable(t); err != nil {
		return "", err
	}
	return fmt.Sprintf(sqColumnsCount, t.Table, t.Schema), nil
}

// sqFKFilterOuter and sqFKFilterInner are the same foreign-key filter with
// the aliases used in the outer fetch (m/f) and in the windowing subquery
// (m2/f2). Args: 1=source_table 2=source_schema 3=dest_table 4=dest_schema.
const sqFKFilterOuter = `m.type = 'table'
  AND ('%[1]s' = '' OR m.name = '%[1]s')
  AND ('%[2]s' = '' OR '%[2]s' = 'main')
  AND ('%[3]s' = '' OR f."table" = '%[3]s')
  AND ('%[4]s' = '' OR '%[4]s' = 'main')`

const sqFKFilterInner = `m2.type = 'table'
  AND ('%[1]s' = '' OR m2.name = '%[1]s')
  AND ('%[2]s' = '' OR '%[2]s' = 'main')
  AND ('%[3]s' = '' OR f2."table" = '%[3]s')
  AND ('%[4]s' = '' OR '%[4]s' = 'main')`

const sqForeignKeys = `
SELECT m.name || '.fk' || f.id AS constraint_name,
       m.name    AS source_table,
       f."from"  AS source_column,
       f."table" AS dest_table,
       f."to"    AS dest_column
FROM sqlite_master m
JOIN pragma_foreign_key_list(m.name) f
WHERE ` + sqFKFilterOuter + `
  AND m.name || '.fk' || f.id IN (
      SELECT w.constraint_name
      FROM (
          SELECT DISTINCT m2.name || '.fk' || f2.id AS constraint_name
          FROM sqlite_master m2
          JOIN pragma_foreign_key_list(m2.name) f2
          WHERE ` + sqFKFilterInner + `
          ORDER BY constraint_name
          LIMIT %[5]d OFFSET %[6]d
      ) w
  )
ORDER BY constraint_name, f.seq`

func (sqlite) ForeignKeys(f FKFilter, limit, offset int) (string, error) {
	if err := checkFilter(f); err != nil {
		return "", err
	}
	if err := checkWindow(limit, offset); err != nil {
		return "", err
	}
	return fmt.Sprintf(sqForeignKeys,
		f.SourceTable, f.SourceSchema, f.DestTable, f.DestSchema, limit, offset), nil
}

const sqForeignKeysCount = `
SELECT COUNT(DISTINCT m.name || '.fk' || f.id)
FROM sqlite_master m
JOIN pragma_foreign_key_list(m.name) f
WHERE ` + sqFKFilterOuter

func (sqlite) ForeignKeysCount(f FKFilter) (string, error) {
	if err := checkFilter(f); err != nil {
		return "", err
	}
	return fmt.Sprintf(sqForeignKeysCount,
		f.SourceTable, f.SourceSchema, f.DestTable, f.DestSchema), nil
}

const sqPrimaryKeys = `
SELECT name
FROM pragma_table_info('%[1]s')
WHERE pk > 0
  AND ` + sqSchemaGuard + `
ORDER BY pk`

func (sqlite) PrimaryKeys(t TableRef) (string, error) {
	if err := checkTable(t); err != nil {
		return "", err
	}
	return fmt.Sprintf(sqPrimaryKeys, t.Table, t.Schema), nil
}

const sqListTables = `
SELECT 'main' AS schema_name, name AS table_name
FROM sqlite_master
WHERE type = 'table'
  AND name NOT LIKE 'sqlite_%%'
  AND ('%[1]s' = '' OR '%[1]s' = 'main')
ORDER BY name
LIMIT %[2]d OFFSET %[3]d`

func (sqlite) ListTables(schema string, limit, offset int) (string, error) {
	if err := checkOptional(schema); err != nil {
		return "", err
	}
	if err := checkWindow(limit, offset); err != nil {
		return "", err
	}
	return fmt.Sprintf(sqListTables, schema, limit, offset), nil
}

const sqListTablesCount = `
SELECT COUNT(*)
FROM sqlite_master
WHERE type = 'table'
  AND name NOT LIKE 'sqlite_%%'
  AND ('%[1]s' = '' OR '%[1]s' = 'main')`

func (sqlite) ListTablesCount(schema string) (string, error) {
	if err := checkOptional(schema); err != nil {
		return "", err
	}
	return fmt.Sprintf(sqListTablesCount, schema), nil
}

func (sqlite) Sample(t TableRef, limit int) (string, error) {
	if err := checkTable(t); err != nil {
		return "", err
	}
	if err := checkSampleLimit(limit); err != nil {
		return "", err
	}
	return fmt.Sprintf(`SELECT * FROM "%s" LIMIT %d`, t.Table, limit), nil
}
