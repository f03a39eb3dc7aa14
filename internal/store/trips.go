package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"nyc-trip-loader/internal/model"
)

// ResetTrips empties the destination table. It reports whether the table
// existed; a missing table is not an error since the first append creates it.
func (db *DB) ResetTrips(ctx context.Context) (bool, error) {
	exists, err := db.tableExists(ctx, db.conn, db.table)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}
	if _, err := db.conn.ExecContext(ctx, db.dialect.clearSQL(db.table)); err != nil {
		return true, fmt.Errorf("failed to clear table %s: %w", db.table, err)
	}
	return true, nil
}

// AppendTrips adds records to the destination table, creating it on first use.
// The batch is written in one transaction: either every row lands or none does.
func (db *DB) AppendTrips(ctx context.Context, trips []model.TripRecord) (int64, error) {
	if len(trips) == 0 {
		return 0, nil
	}

	tx, err := db.conn.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, db.createTripsSQL()); err != nil {
		return 0, fmt.Errorf("failed to create table %s: %w", db.table, err)
	}

	additional := additionalColumns(trips)
	if err := db.addColumns(ctx, tx, additional); err != nil {
		return 0, err
	}
	rows := newRowLayout(additional)

	var n int64
	if db.dialect == postgresDialect {
		n, err = db.copyTrips(ctx, tx, rows, trips)
	} else {
		n, err = db.insertTrips(ctx, tx, rows, trips)
	}
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit %d rows: %w", n, err)
	}
	return n, nil
}

// CountTrips returns the number of rows in the destination table.
func (db *DB) CountTrips(ctx context.Context) (int64, error) {
	var n int64
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quote(db.table)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", db.table, err)
	}
	return n, nil
}

func (db *DB) createTripsSQL() string {
	cols := make([]string, len(model.TripColumns))
	for i, c := range model.TripColumns {
		cols[i] = quote(c.Name) + " " + db.dialect.columnType(c.Kind)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", quote(db.table), strings.Join(cols, ",\n\t"))
}

// additionalColumns collects the non-standard columns a batch carries, in
// first-seen order.
func additionalColumns(trips []model.TripRecord) []model.Column {
	var cols []model.Column
	seen := make(map[string]bool)
	for i := range trips {
		for _, f := range trips[i].Additional {
			key := strings.ToLower(f.Name)
			if !seen[key] {
				seen[key] = true
				cols = append(cols, f.Column)
			}
		}
	}
	return cols
}

// addColumns adds the carried-through columns the table does not have yet.
func (db *DB) addColumns(ctx context.Context, tx *sql.Tx, cols []model.Column) error {
	if len(cols) == 0 {
		return nil
	}
	for _, c := range cols {
		if _, ok := model.StandardColumn(c.Name); ok {
			return fmt.Errorf("column %s clashes with a standard trip column", c.Name)
		}
	}

	existing, err := db.columnNames(ctx, tx)
	if err != nil {
		return err
	}
	for _, c := range cols {
		if existing[strings.ToLower(c.Name)] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", quote(db.table), quote(c.Name), db.dialect.columnType(c.Kind))
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to add column %s to %s: %w", c.Name, db.table, err)
		}
	}
	return nil
}

// columnNames returns the lower-cased column names of the trips table.
func (db *DB) columnNames(ctx context.Context, tx *sql.Tx) (map[string]bool, error) {
	rows, err := tx.QueryContext(ctx, db.dialect.columnsSQL(), db.table)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %s: %w", db.table, err)
	}
	defer rows.Close()

	names := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to list columns of %s: %w", db.table, err)
		}
		names[strings.ToLower(name)] = true
	}
	return names, rows.Err()
}

// rowLayout is the column list of one append: the standard columns followed
// by the batch's carried-through columns.
type rowLayout struct {
	names      []string
	additional map[string]int
}

func newRowLayout(additional []model.Column) rowLayout {
	l := rowLayout{names: model.ColumnNames(), additional: make(map[string]int, len(additional))}
	for _, c := range additional {
		l.additional[strings.ToLower(c.Name)] = len(l.names)
		l.names = append(l.names, c.Name)
	}
	return l
}

// values lays out one record; carried-through columns it lacks are NULL.
func (l rowLayout) values(t *model.TripRecord) []interface{} {
	vals := t.Values()
	if len(l.names) == len(vals) {
		return vals
	}
	vals = append(vals, make([]interface{}, len(l.names)-len(vals))...)
	for _, f := range t.Additional {
		if i, ok := l.additional[strings.ToLower(f.Name)]; ok {
			vals[i] = f.Value
		}
	}
	return vals
}

// copyTrips streams the batch with COPY FROM STDIN.
func (db *DB) copyTrips(ctx context.Context, tx *sql.Tx, rows rowLayout, trips []model.TripRecord) (int64, error) {
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(db.table, rows.names...))
	if err != nil {
		return 0, fmt.Errorf("failed to start copy into %s: %w", db.table, err)
	}
	defer stmt.Close()

	for i := range trips {
		if _, err := stmt.ExecContext(ctx, rows.values(&trips[i])...); err != nil {
			return 0, fmt.Errorf("failed to copy row %d: %w", i, err)
		}
	}

	// Flush the COPY stream
	if _, err := stmt.ExecContext(ctx); err != nil {
		return 0, fmt.Errorf("failed to finish copy into %s: %w", db.table, err)
	}
	return int64(len(trips)), nil
}

func (db *DB) insertTrips(ctx context.Context, tx *sql.Tx, rows rowLayout, trips []model.TripRecord) (int64, error) {
	cols := make([]string, len(rows.names))
	marks := make([]string, len(rows.names))
	for i, name := range rows.names {
		cols[i] = quote(name)
		marks[i] = db.dialect.placeholder(i + 1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quote(db.table), strings.Join(cols, ", "), strings.Join(marks, ", "))

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert into %s: %w", db.table, err)
	}
	defer stmt.Close()

	var n int64
	for i := range trips {
		if _, err := stmt.ExecContext(ctx, rows.values(&trips[i])...); err != nil {
			return 0, fmt.Errorf("failed to insert row %d: %w", i, err)
		}
		n++
	}
	return n, nil
}
