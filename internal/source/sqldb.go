package source

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/microsoft/go-mssqldb"

	"datacompare/internal/table"
)

// sqlQueryLoader runs cfg.Input as a query against the database named by
// cfg.Kind. The connection string comes from the environment variable
// derived from the kind label ("SQL Server" -> SQL_SERVER_CONNECTION).
// A missing connection string loads an empty table rather than failing,
// so a partially configured environment degrades to "no data" instead of
// aborting a whole batch.
type sqlQueryLoader struct {
	cfg Config
}

func (l *sqlQueryLoader) Load(ctx context.Context) (table.Table, error) {
	query := strings.TrimSpace(l.cfg.Input)
	if query == "" {
		return table.Empty(), nil
	}
	dsn := os.Getenv(envConnectionName(l.cfg.Kind))
	if dsn == "" {
		return table.Empty(), nil
	}

	var (
		t   table.Table
		err error
	)
	switch l.cfg.Kind {
	case KindPostgres:
		t, err = queryPostgres(ctx, dsn, query)
	default:
		t, err = querySQLServer(ctx, dsn, query)
	}
	if err != nil {
		return table.Empty(), wrapLoad(l.cfg.Kind, err)
	}
	return t, nil
}

// storedProcLoader executes cfg.Input as a SQL Server stored procedure and
// captures its first result set.
type storedProcLoader struct {
	cfg Config
}

func (l *storedProcLoader) Load(ctx context.Context) (table.Table, error) {
	proc := strings.TrimSpace(l.cfg.Input)
	if proc == "" {
		return table.Empty(), nil
	}
	dsn := os.Getenv(envConnectionName(KindSQLServer))
	if dsn == "" {
		return table.Empty(), nil
	}

	t, err := querySQLServer(ctx, dsn, "EXEC "+proc)
	if err != nil {
		return table.Empty(), wrapLoad(l.cfg.Kind, err)
	}
	return t, nil
}

func querySQLServer(ctx context.Context, dsn, query string) (table.Table, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return table.Empty(), err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return table.Empty(), err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return table.Empty(), err
	}

	var out [][]any
	scan := make([]any, len(columns))
	for i := range scan {
		scan[i] = new(any)
	}
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return table.Empty(), err
		}
		row := make([]any, len(columns))
		for i, p := range scan {
			row[i] = dbCell(*p.(*any))
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return table.Empty(), err
	}
	return table.New(columns, out), nil
}

func queryPostgres(ctx context.Context, dsn, query string) (table.Table, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return table.Empty(), err
	}
	defer conn.Close(ctx)

	rows, err := conn.Query(ctx, query)
	if err != nil {
		return table.Empty(), err
	}
	defer rows.Close()

	descs := rows.FieldDescriptions()
	columns := make([]string, len(descs))
	for i, d := range descs {
		columns[i] = d.Name
	}

	var out [][]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return table.Empty(), err
		}
		row := make([]any, len(columns))
		for i := range columns {
			if i < len(values) {
				row[i] = dbCell(values[i])
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return table.Empty(), err
	}
	return table.New(columns, out), nil
}

// dbCell normalizes a driver value to the table cell convention: nil for
// NULL, otherwise a string rendering of the value.
func dbCell(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
