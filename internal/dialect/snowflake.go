package dialect

import "fmt"

// snowflake builds introspection SQL from the database-scoped
// INFORMATION_SCHEMA views. Snowflake stores unquoted identifiers in
// uppercase; callers pass names exactly as stored, the templates do not
// fold case. Pagination uses LIMIT/OFFSET like Postgres.
type snowflake struct{}

func (snowflake) Name() Name { return Snowflake }

const sfTableExists = `
SELECT 1
FROM information_schema.tables
WHERE table_type = 'BASE TABLE'
  AND table_name = '%[1]s'
  AND ('%[2]s' = '' OR table_schema = '%[2]s')`

func (snowflake) TableExists(t TableRef) (string, error) {
	if err := checkTable(t); err != nil {
		return "", err
	}
	return fmt.Sprintf(sfTableExists, t.Table, t.Schema), nil
}

const sfColumns = `
SELECT column_name,
       data_type,
       CASE WHEN is_nullable = 'YES' THEN 1 ELSE 0 END AS nullable,
       column_default
FROM information_schema.columns
WHERE table_name = '%[1]s'
  AND ('%[2]s' = '' OR table_schema = '%[2]s')
ORDER BY ordinal_position
LIMIT %[3]d OFFSET %[4]d`

func (snowflake) Columns(t TableRef, limit, offset int) (string, error) {
	if err := checkTable(t); err != nil {
		return "", err
	}
	if err := checkWindow(limit, offset); err != nil {
		return "", err
	}
	return fmt.Sprintf(sfColumns, t.Table, t.Schema, limit, offset), nil
}

const sfColumnsCount = `
SELECT COUNT(*)
FROM information_schema.columns
WHERE table_name = '%[1]s'
  AND ('%[2]s' = '' OR table_schema = '%[2]s')`

func (snowflake) ColumnsCount(t TableRef) (string, error) {
	if err := checkTable(t); err != nil {
		return "", err
	}
	return fmt.Sprintf(sfColumnsCount, t.Table, t.Schema), nil
}

// sfFKJoins pairs constrained and referred columns positionally, the same
// double key_column_usage join used for SQL Server.
const sfFKJoins = `FROM information_schema.referential_constraints rc
JOIN information_schema.key_column_usage src
  ON src.constraint_name   = rc.constraint_name
 AND src.constraint_schema = rc.constraint_schema
JOIN information_schema.key_column_usage dst
  ON dst.constraint_name   = rc.unique_constraint_name
 AND dst.constraint_schema = rc.unique_constraint_schema
 AND dst.ordinal_position  = src.ordinal_position`

// Args: 1=source_table 2=source_schema 3=dest_table 4=dest_schema.
const sfFKFilter = `('%[1]s' = '' OR src.table_name = '%[1]s')
  AND ('%[2]s' = '' OR src.table_schema = '%[2]s')
  AND ('%[3]s' = '' OR dst.table_name = '%[3]s')
  AND ('%[4]s' = '' OR dst.table_schema = '%[4]s')`

const sfForeignKeys = `
SELECT rc.constraint_name,
       src.table_name  AS source_table,
       src.column_name AS source_column,
       dst.table_name  AS dest_table,
       dst.column_name AS dest_column
` + sfFKJoins + `
WHERE ` + sfFKFilter + `
  AND rc.constraint_name IN (
      SELECT w.constraint_name
      FROM (
          SELECT DISTINCT rc.constraint_name
          ` + sfFKJoins + `
          WHERE ` + sfFKFilter + `
          ORDER BY rc.constraint_name
          LIMIT %[5]d OFFSET %[6]d
      ) w
  )
ORDER BY rc.constraint_name, src.ordinal_position`

func (snowflake) ForeignKeys(f FKFilter, limit, offset int) (string, error) {
	if err := checkFilter(f); err != nil {
		return "", err
	}
	if err := checkWindow(limit, offset); err != nil {
		return "", err
	}
	return fmt.Sprintf(sfForeignKeys,
		f.SourceTable, f.SourceSchema, f.DestTable, f.DestSchema, limit, offset), nil
}

const sfForeignKeysCount = `
SELECT COUNT(DISTINCT rc.constraint_name)
` + sfFKJoins + `
WHERE ` + sfFKFilter

func (snowflake) ForeignKeysCount(f FKFilter) (string, error) {
	if err := checkFilter(f); err != nil {
		return "", err
	}
	return fmt.Sprintf(sfForeignKeysCount,
		f.SourceTable, f.SourceSchema, f.DestTable, f.DestSchema), nil
}

const sfPrimaryKeys = `
SELECT kcu.column_name
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON tc.constraint_name   = kcu.constraint_name
 AND tc.constraint_schema = kcu.constraint_schema
WHERE tc.constraint_type = 'PRIMARY KEY'
  AND tc.table_name = '%[1]s'
  AND ('%[2]s' = '' OR tc.table_schema = '%[2]s')
ORDER BY kcu.ordinal_position`

func (snowflake) PrimaryKeys(t TableRef) (string, error) {
	if err := checkTable(t); err != nil {
		return "", err
	}
	return fmt.Sprintf(sfPrimaryKeys, t.Table, t.Schema), nil
}

const sfListTables = `
SELECT table_schema, table_name
FROM information_schema.tables
WHERE table_type = 'BASE TABLE'
  AND table_schema <> 'INFORMATION_SCHEMA'
  AND ('%[1]s' = '' OR table_schema = '%[1]s')
ORDER BY table_schema, table_name
LIMIT %[2]d OFFSET %[3]d`

func (snowflake) ListTables(schema string, limit, offset int) (string, error) {
	if err := checkOptional(schema); err != nil {
		return "", err
	}
	if err := checkWindow(limit, offset); err != nil {
		return "", err
	}
	return fmt.Sprintf(sfListTables, schema, limit, offset), nil
}

const sfListTablesCount = `
SELECT COUNT(*)
FROM information_schema.tables
WHERE table_type = 'BASE TABLE'
  AND table_schema <> 'INFORMATION_SCHEMA'
  AND ('%[1]s' = '' OR table_schema = '%[1]s')`

func (snowflake) ListTablesCount(schema string) (string, error) {
	if err := checkOptional(schema); err != nil {
		return "", err
	}
	return fmt.Sprintf(sfListTablesCount, schema), nil
}

func (snowflake) Sample(t TableRef, limit int) (string, error) {
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
