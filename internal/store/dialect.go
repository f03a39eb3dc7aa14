package store

import (
	"fmt"

	"nyc-trip-loader/internal/model"
)

// dialect hides the SQL differences between the supported drivers.
type dialect string

const (
	postgresDialect dialect = DriverPostgres
	sqliteDialect   dialect = DriverSQLite
)

func (d dialect) placeholder(n int) string {
	if d == postgresDialect {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (d dialect) columnType(kind model.ColumnKind) string {
	switch kind {
	case model.KindInteger:
		if d == postgresDialect {
			return "BIGINT"
		}
		return "INTEGER"
	case model.KindFloat:
		if d == postgresDialect {
			return "DOUBLE PRECISION"
		}
		return "REAL"
	case model.KindTimestamp:
		return "TIMESTAMP"
	case model.KindBoolean:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

func (d dialect) tableExistsSQL() string {
	if d == postgresDialect {
		return `SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1)`
	}
	return `SELECT COUNT(*) > 0 FROM sqlite_master WHERE type = 'table' AND name = ?`
}

// columnsSQL lists the column names of a table.
func (d dialect) columnsSQL() string {
	if d == postgresDialect {
		return `SELECT column_name FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = $1`
	}
	return `SELECT name FROM pragma_table_info(?)`
}

// clearSQL empties a table in a single statement.
func (d dialect) clearSQL(table string) string {
	if d == postgresDialect {
		return "TRUNCATE TABLE " + quote(table)
	}
	return "DELETE FROM " + quote(table)
}

func (d dialect) hour(col string) string {
	if d == postgresDialect {
		return fmt.Sprintf("CAST(EXTRACT(HOUR FROM %s) AS INTEGER)", col)
	}
	return fmt.Sprintf("CAST(strftime('%%H', %s) AS INTEGER)", col)
}

// dayOfWeek numbers days 0 (Sunday) to 6 on both drivers.
func (d dialect) dayOfWeek(col string) string {
	if d == postgresDialect {
		return fmt.Sprintf("CAST(EXTRACT(DOW FROM %s) AS INTEGER)", col)
	}
	return fmt.Sprintf("CAST(strftime('%%w', %s) AS INTEGER)", col)
}

func (d dialect) month(col string) string {
	if d == postgresDialect {
		return fmt.Sprintf("CAST(EXTRACT(MONTH FROM %s) AS INTEGER)", col)
	}
	return fmt.Sprintf("CAST(strftime('%%m', %s) AS INTEGER)", col)
}

// secondsBetween is end - start in seconds.
func (d dialect) secondsBetween(end, start string) string {
	if d == postgresDialect {
		return fmt.Sprintf("EXTRACT(EPOCH FROM (%s - %s))", end, start)
	}
	return fmt.Sprintf("((julianday(%s) - julianday(%s)) * 86400.0)", end, start)
}

// bucket10 floors a non-negative amount to its $10 bucket.
func (d dialect) bucket10(col string) string {
	if d == postgresDialect {
		return fmt.Sprintf("(FLOOR(%s / 10) * 10)", col)
	}
	return fmt.Sprintf("(CAST(%s / 10 AS INTEGER) * 10)", col)
}
