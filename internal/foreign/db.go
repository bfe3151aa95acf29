package foreign

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/yen-lang/Yen-sub000/internal/object"
)

var drivers = map[string]bool{"sqlite3": true, "mysql": true, "postgres": true}

var (
	dbMutex        sync.Mutex
	dbConnections  = map[int64]*sql.DB{}
	dbTransactions = map[int64]*sql.Tx{}
)

// execer is the part of *sql.DB and *sql.Tx the natives use.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
}

func connection(arg object.Object, fn string) (int64, execer, error) {
	id, err := unpackInt(arg, fn, 1)
	if err != nil {
		return 0, nil, err
	}
	dbMutex.Lock()
	defer dbMutex.Unlock()
	if tx, ok := dbTransactions[id]; ok {
		return id, tx, nil
	}
	if db, ok := dbConnections[id]; ok {
		return id, db, nil
	}
	return 0, nil, object.NewError(object.NativeError, "invalid connection handle %d", id)
}

func queryParams(args []object.Object) ([]any, error) {
	params := make([]any, len(args))
	for i, a := range args {
		p, err := toHost(a)
		if err != nil {
			return nil, err
		}
		params[i] = p
	}
	return params, nil
}

// fnDbOpen connects with one of the registered drivers and returns a handle.
func fnDbOpen() *object.Native {
	return &object.Native{
		Name:  "db.open",
		Arity: 2,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			parts, err := unpackStrings(args, "open")
			if err != nil {
				return nil, err
			}
			driver, dsn := parts[0], parts[1]
			if !drivers[driver] {
				return nil, object.NewError(object.NativeError, "unknown database driver %q", driver)
			}

			db, err := sql.Open(driver, dsn)
			if err != nil {
				return nil, object.NewError(object.NativeError, "failed to open connection: %v", err)
			}
			if driver == "sqlite3" {
				// every pooled connection to :memory: would be a separate database
				db.SetMaxOpenConns(1)
			}
			if err := db.Ping(); err != nil {
				db.Close()
				return nil, object.NewError(object.NativeError, "failed to ping database: %v", err)
			}

			id := ctx.NextHandleID()
			dbMutex.Lock()
			dbConnections[id] = db
			dbMutex.Unlock()
			slog.Debug("database connection opened",
				slog.String("driver", driver),
				slog.Int64("handle", id))
			return &object.Integer{Value: id}, nil
		},
	}
}

func fnDbExec() *object.Native {
	return &object.Native{
		Name:  "db.exec",
		Arity: -1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			if len(args) < 2 {
				return nil, object.NewError(object.ArityError, "`exec` expects a handle and a statement")
			}
			_, conn, err := connection(args[0], "exec")
			if err != nil {
				return nil, err
			}
			stmt, err := unpackString(args[1], "exec", 2)
			if err != nil {
				return nil, err
			}
			params, err := queryParams(args[2:])
			if err != nil {
				return nil, err
			}

			result, err := conn.Exec(stmt, params...)
			if err != nil {
				return nil, object.NewError(object.NativeError, "exec failed: %v", err)
			}
			affected, _ := result.RowsAffected()
			lastID, _ := result.LastInsertId()

			res := object.NewMap()
			res.Set("rows_affected", &object.Integer{Value: affected})
			res.Set("last_insert_id", &object.Integer{Value: lastID})
			return res, nil
		},
	}
}

func fnDbQuery() *object.Native {
	return &object.Native{
		Name:  "db.query",
		Arity: -1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			if len(args) < 2 {
				return nil, object.NewError(object.ArityError, "`query` expects a handle and a statement")
			}
			_, conn, err := connection(args[0], "query")
			if err != nil {
				return nil, err
			}
			stmt, err := unpackString(args[1], "query", 2)
			if err != nil {
				return nil, err
			}
			params, err := queryParams(args[2:])
			if err != nil {
				return nil, err
			}

			rows, err := conn.Query(stmt, params...)
			if err != nil {
				return nil, object.NewError(object.NativeError, "query failed: %v", err)
			}
			defer rows.Close()
			return renderRows(rows)
		},
	}
}

func fnDbBegin() *object.Native {
	return &object.Native{
		Name:  "db.begin",
		Arity: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			id, err := unpackInt(args[0], "begin", 1)
			if err != nil {
				return nil, err
			}
			dbMutex.Lock()
			defer dbMutex.Unlock()
			db, ok := dbConnections[id]
			if !ok {
				return nil, object.NewError(object.NativeError, "invalid connection handle %d", id)
			}
			if _, open := dbTransactions[id]; open {
				return nil, object.NewError(object.NativeError, "transaction already open on handle %d", id)
			}
			tx, err := db.Begin()
			if err != nil {
				return nil, object.NewError(object.NativeError, "failed to begin transaction: %v", err)
			}
			dbTransactions[id] = tx
			return args[0], nil
		},
	}
}

func fnDbCommit() *object.Native {
	return finishTx("commit", (*sql.Tx).Commit)
}

func fnDbRollback() *object.Native {
	return finishTx("rollback", (*sql.Tx).Rollback)
}

func finishTx(name string, finish func(*sql.Tx) error) *object.Native {
	return &object.Native{
		Name:  "db." + name,
		Arity: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			id, err := unpackInt(args[0], name, 1)
			if err != nil {
				return nil, err
			}
			dbMutex.Lock()
			defer dbMutex.Unlock()
			tx, ok := dbTransactions[id]
			if !ok {
				return nil, object.NewError(object.NativeError, "no open transaction on handle %d", id)
			}
			delete(dbTransactions, id)
			if err := finish(tx); err != nil {
				return nil, object.NewError(object.NativeError, "failed to %s transaction: %v", name, err)
			}
			return args[0], nil
		},
	}
}

func fnDbClose() *object.Native {
	return &object.Native{
		Name:  "db.close",
		Arity: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			id, err := unpackInt(args[0], "close", 1)
			if err != nil {
				return nil, err
			}
			dbMutex.Lock()
			defer dbMutex.Unlock()
			if tx, ok := dbTransactions[id]; ok {
				tx.Rollback()
				delete(dbTransactions, id)
			}
			db, ok := dbConnections[id]
			if !ok {
				return nil, object.NewError(object.NativeError, "invalid connection handle %d", id)
			}
			delete(dbConnections, id)
			if err := db.Close(); err != nil {
				return nil, object.NewError(object.NativeError, "failed to close connection: %v", err)
			}
			slog.Debug("database connection closed", slog.Int64("handle", id))
			return object.NULL, nil
		},
	}
}

// renderRows turns a result set into a list of maps keyed by column name.
func renderRows(rows *sql.Rows) (object.Object, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, object.NewError(object.NativeError, "failed to read columns: %v", err)
	}
	types, _ := rows.ColumnTypes()

	result := &object.List{Elements: []object.Object{}}
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, object.NewError(object.NativeError, "failed to scan row: %v", err)
		}

		row := object.NewMap()
		for i, col := range columns {
			var typeName string
			if i < len(types) {
				typeName = types[i].DatabaseTypeName()
			}
			row.Set(col, mapValue(values[i], typeName))
		}
		result.Elements = append(result.Elements, row)
	}
	if err := rows.Err(); err != nil {
		return nil, object.NewError(object.NativeError, "failed to read rows: %v", err)
	}
	return result, nil
}

// mapValue converts a scanned column into a value. Drivers report text
// columns as []byte, so the column type decides between bool and string.
func mapValue(v any, dbType string) object.Object {
	switch x := v.(type) {
	case nil, int64, float64, string, []byte:
		if b, ok := x.([]byte); ok && dbType == "BOOL" {
			return object.NativeBool(string(b) == "t" || string(b) == "true" || string(b) == "1")
		}
		return fromHost(x)
	case bool:
		return object.NativeBool(x)
	case time.Time:
		return &object.String{Value: x.Format(time.RFC3339)}
	}
	return &object.String{Value: fmt.Sprintf("%v", v)}
}
