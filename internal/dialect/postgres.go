package dialect

import "fmt"

// postgres builds introspection SQL from information_schema, the same
// views used by every other information_schema dialect here. Identifier
// comparisons are case-sensitive, matching how Postgres stores unquoted
// names (folded to lowercase).
type postgres struct{}

func (postgres) Name() Name { return Postgres }

const pgTableExists = `
SELECT 1
FROM information_schema.tables
WHERE table_type = 'BASE TABLE'
  AND table_name = '%[1]s'
  AND ('%[2]s' = '' OR table_schema = '%[2]s')`

func (postgres) TableExists(t TableRef) (string, error) {
	if err := checkTable(t); err != nil {
		return "", err
	}
	return fmt.Sprintf(pgTableExists, t.Table, t.Schema), nil
}

const pgColumns = `
SELECT column_name,
       data_type,
       CASE WHEN is_nullable = 'YES' THEN 1 ELSE 0 END AS nullable,
       column_default
FROM information_schema.columns
WHERE table_name = '%[1]s'
  AND ('%[2]s' = '' OR table_schema = '%[2]s')
ORDER BY ordinal_position
LIMIT %[3]d OFFSET %[4]d`

func (postgres) Columns(t TableRef, limit, offset int) (string, error) {
	if err := checkTable(t); err != nil {
		return "", err
	}
	if err := checkWindow(limit, offset); err != nil {
		return "", err
	}
	return fmt.Sprintf(pgColumns, t.Table, t.Schema, limit, offset), nil
}

const pgColumnsCount = `
SELECT COUNT(*)
FROM information_schema.columns
WHERE table_name = '%[1]s'
  AND ('%[2]s' = '' OR table_schema = '%[2]s')`

func (postgres) ColumnsCount(t TableRef) (string, error) {
	if err := checkTable(t); err != nil {
		return "", err
	}
	return fmt.Sprintf(pgColumnsCount, t.Table, t.Schema), nil
}

// pgFKJoins pairs each constrained column (src) with the referred column
// (dst) at the same key position. The position match matters: joining on
// constraint name alone would cross-product the columns of a composite
// key.
const pgFKJoins = `FROM information_schema.referential_constraints rc
JOIN information_schema.key_column_usage src
  ON src.constraint_name   = rc.constraint_name
 AND src.constraint_schema = rc.constraint_schema
JOIN information_schema.key_column_usage dst
  ON dst.constraint_name   = rc.unique_constraint_name
 AND dst.constraint_schema = rc.unique_constraint_schema
 AND dst.ordinal_position  = src.ordinal_position`

// Args: 1=source_table 2=source_schema 3=dest_table 4=dest_schema.
const pgFKFilter = `('%[1]s' = '' OR src.table_name = '%[1]s')
  AND ('%[2]s' = '' OR src.table_schema = '%[2]s')
  AND ('%[3]s' = '' OR dst.table_name = '%[3]s')
  AND ('%[4]s' = '' OR dst.table_schema = '%[4]s')`

const pgForeignKeys = `
SELECT rc.constraint_name,
       src.table_name  AS source_table,
       src.column_name AS source_column,
       dst.table_name  AS dest_table,
       dst.column_name AS dest_column
` + pgFKJoins + `
WHERE ` + pgFKFilter + `
  AND rc.constraint_name IN (
      SELECT w.constraint_name
      FROM (
          SELECT DISTINCT rc.constraint_name
          ` + pgFKJoins + `
          WHERE ` + pgFKFilter + `
          ORDER BY rc.constraint_name
          LIMIT %[5]d OFFSET %[6]d
      ) w
  )
ORDER BY rc.constraint_name, src.ordinal_position`

func (postgres) ForeignKeys(f FKFilter, limit, offset int) (string, error) {
	if err := checkFilter(f); err != nil {
		return "", err
	}
	if err := checkWindow(limit, offset); err != nil {
		return "", err
	}
	return fmt.Sprintf(pgForeignKeys,
		f.SourceTable, f.SourceSchema, f.DestTable, f.DestSchema, limit, offset), nil
}

const pgForeignKeysCount = `
SELECT COUNT(DISTINCT rc.constraint_name)
` + pgFKJoins + `
WHERE ` + pgFKFilter

func (postgres) ForeignKeysCount(f FKFilter) (string, error) {
	if err := checkFilter(f); err != nil {
		return "", err
	}
	return fmt.Sprintf(pgForeignKeysCount,
		f.SourceTable, f.SourceSchema, f.DestTable, f.DestSchema), nil
}

const pgPrimaryKeys = `
SELECT kcu.column_name
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON tc.constraint_name = kcu.constraint_name
 AND tc.table_schema    = kcu.table_schema
WHERE tc.constraint_type = 'PRIMARY KEY'
  AND tc.table_name = '%[1]s'
  AND ('%[2]s' = '' OR tc.table_schema = '%[2]s')
ORDER BY kcu.ordinal_position`

func (postgres) PrimaryKeys(t TableRef) (string, error) {
	if err := checkTable(t); err != nil {
		return "", err
	}
	return fmt.Sprintf(pgPrimaryKeys, t.Table, t.Schema), nil
}

const pgListTables = `
SELECT table_schema, table_name
FROM information_schema.tables
WHERE table_type = 'BASE TABLE'
  AND table_schema NOT IN ('pg_catalog', 'information_schema')
  AND ('%[1]s' = '' OR table_schema = '%[1]s')
ORDER BY table_schema, table_name
LIMIT %[2]d OFFSET %[3]d`

func (postgres) ListTables(schema string, limit, offset int) (string, error) {
	if err := checkOptional(schema); err != nil {
		return "", err
	}
	if err := checkWindow(limit, offset); err != nil {
		return "", err
	}
	return fmt.Sprintf(pgListTables, schema, limit, offset), nil
}

const pgListTablesCount = `
SELECT COUNT(*)
FROM information_schema.tables
WHERE table_type = 'BASE TABLE'
  AND table_schema NOT IN ('pg_catalog', 'information_schema')
  AND ('%[1]s' = '' OR table_schema = '%[1]s')`

func (postgres) ListTablesCount(schema string) (string, error) {
	if err := checkOptional(schema); err != nil {
		return "", err
	}
	return fmt.Sprintf(pgListTablesCount, schema), nil
}

func (postgres) Sample(t TableRef, limit int) (string, error) {
	if err := checkTable(t); err != nil {
		return "", err
	}
	if err := checkSampleLimit(limit); err != nil {
		return "", err
	}
	if t.Schema == "" {
		return fmt.Sprintf(`SELECT * FROM "%s" LIMIT %d`, t.Table, limit), nil
	}
	return fmt.Sprintf(`SELECT * FROM "%s"."%s" LIMIT %d`, t.Schema, t.Table, limit), nil
}
