package dialect

import "fmt"

// mssql builds introspection SQL from information_schema. SQL Server
// paginates with OFFSET … ROWS FETCH NEXT … ROWS ONLY, which requires an
// ORDER BY — every windowed template here has one. Foreign keys pair the
// constrained and referred columns positionally by joining
// key_column_usage twice through referential_constraints.
type mssql struct{}

func (mssql) Name() Name { return MSSQL }

const msTableExists = `
SELECT 1
FROM information_schema.tables
WHERE table_type = 'BASE TABLE'
  AND table_name = '%[1]s'
  AND ('%[2]s' = '' OR table_schema = '%[2]s')`

func (mssql) TableExists(t TableRef) (string, error) {
	if err := checkTable(t); err != nil {
		return "", err
	}
	return fmt.Sprintf(msTableExists, t.Table, t.Schema), nil
}

const msColumns = `
SELECT column_name,
       data_type,
       CASE WHEN is_nullable = 'YES' THEN 1 ELSE 0 END AS nullable,
       column_default
FROM information_schema.columns
WHERE table_name = '%[1]s'
  AND ('%[2]s' = '' OR table_schema = '%[2]s')
ORDER BY ordinal_position
OFFSET %[4]d ROWS FETCH NEXT %[3]d ROWS ONLY`

func (mssql) Columns(t TableRef, limit, offset int) (string, error) {
	if err := checkTable(t); err != nil {
		return "", err
	}
	if err := checkWindow(limit, offset); err != nil {
		return "", err
	}
	return fmt.Sprintf(msColumns, t.Table, t.Schema, limit, offset), nil
}

const msColumnsCount = `
SELECT COUNT(*)
FROM information_schema.columns
WHERE table_name = '%[1]s'
  AND ('%[2]s' = '' OR table_schema = '%[2]s')`

func (mssql) ColumnsCount(t TableRef) (string, error) {
	if err := checkTable(t); err != nil {
		return "", err
	}
	return fmt.Sprintf(msColumnsCount, t.Table, t.Schema), nil
}

// msFKJoins pairs each constrained column (src) with the referred column
// (dst) at the same key position.
const msFKJoins = `FROM information_schema.referential_constraints rc
JOIN information_schema.key_column_usage src
  ON src.constraint_name   = rc.constraint_name
 AND src.constraint_schema = rc.constraint_schema
JOIN information_schema.key_column_usage dst
  ON dst.constraint_name   = rc.unique_constraint_name
 AND dst.constraint_schema = rc.unique_constraint_schema
 AND dst.ordinal_position  = src.ordinal_position`

// Args: 1=source_table 2=source_schema 3=dest_table 4=dest_schema.
const msFKFilter = `('%[1]s' = '' OR src.table_name = '%[1]s')
  AND ('%[2]s' = '' OR src.table_schema = '%[2]s')
  AND ('%[3]s' = '' OR dst.table_name = '%[3]s')
  AND ('%[4]s' = '' OR dst.table_schema = '%[4]s')`

const msForeignKeys = `
SELECT rc.constraint_name,
       src.table_name  AS source_table,
       src.column_name AS source_column,
       dst.table_name  AS dest_table,
       dst.column_name AS dest_column
` + msFKJoins + `
WHERE ` + msFKFilter + `
  AND rc.constraint_name IN (
      SELECT w.constraint_name
      FROM (
          SELECT DISTINCT rc.constraint_name
          ` + msFKJoins + `
          WHERE ` + msFKFilter + `
      ) w
      ORDER BY w.constraint_name
      OFFSET %[6]d ROWS FETCH NEXT %[5]d ROWS ONLY
  )
ORDER BY rc.constraint_name, src.ordinal_position`

func (mssql) ForeignKeys(f FKFilter, limit, offset int) (string, error) {
	if err := checkFilter(f); err != nil {
		return "", err
	}
	if err := checkWindow(limit, offset); err != nil {
		return "", err
	}
	return fmt.Sprintf(msForeignKeys,
		f.SourceTable, f.SourceSchema, f.DestTable, f.DestSchema, limit, offset), nil
}

const msForeignKeysCount = `
SELECT COUNT(DISTINCT rc.constraint_name)
` + msFKJoins + `
WHERE ` + msFKFilter

func (mssql) ForeignKeysCount(f FKFilter) (string, error) {
	if err := checkFilter(f); err != nil {
		return "", err
	}
	return fmt.Sprintf(msForeignKeysCount,
		f.SourceTable, f.SourceSchema, f.DestTable, f.DestSchema), nil
}

const msPrimaryKeys = `
SELECT kcu.column_name
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON tc.constraint_name   = kcu.constraint_name
 AND tc.constraint_schema = kcu.constraint_schema
WHERE tc.constraint_type = 'PRIMARY KEY'
  AND tc.table_name = '%[1]s'
  AND ('%[2]s' = '' OR tc.table_schema = '%[2]s')
ORDER BY kcu.ordinal_position`

func (mssql) PrimaryKeys(t TableRef) (string, error) {
	if err := checkTable(t); err != nil {
		return "", err
	}
	return fmt.Sprintf(msPrimaryKeys, t.Table, t.Schema), nil
}

const msListTables = `
SELECT table_schema, table_name
FROM information_schema.tables
WHERE table_type = 'BASE TABLE'
  AND ('%[1]s' = '' OR table_schema = '%[1]s')
ORDER BY table_schema, table_name
OFFSET %[3]d ROWS FETCH NEXT %[2]d ROWS ONLY`

func (mssql) ListTables(schema string, limit, offset int) (string, error) {
	if err := checkOptional(schema); err != nil {
		return "", err
	}
	if err := checkWindow(limit, offset); err != nil {
		return "", err
	}
	return fmt.Sprintf(msListTables, schema, limit, offset), nil
}

const msListTablesCount = `
SELECT COUNT(*)
FROM information_schema.tables
WHERE table_type = 'BASE TABLE'
  AND ('%[1]s' = '' OR table_schema = '%[1]s')`

func (mssql) ListTablesCount(schema string) (string, error) {
	if err := checkOptional(schema); err != nil {
		return "", err
	}
	return fmt.Sprintf(msListTablesCount, schema), nil
}

func (mssql) Sample(t TableRef, limit int) (string, error) {
	if err := checkTable(t); err != nil {
		return "", err
	}
	if err := checkSampleLimit(limit); err != nil {
		return "", err
	}
	if t.Schema == "" {
		return fmt.Sprintf("SELECT TOP %d * FROM [%s]", limit, t.Table), nil
	}
	return fmt.Sprintf("SELECT TOP %d * FROM [%s].[%s]", limit, t.Schema, t.Table), nil
}
