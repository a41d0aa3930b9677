package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/jengzang/rose-backend-go/internal/database"
	apperrors "github.com/jengzang/rose-backend-go/internal/errors"
	"github.com/jengzang/rose-backend-go/internal/models"
)

// DatasetRepository handles database operations for datasets and their
// observations
type DatasetRepository struct {
	db *sqlx.DB
}

// NewDatasetRepository creates a new dataset repository
func NewDatasetRepository(db *sqlx.DB) *DatasetRepository {
	return &DatasetRepository{db: db}
}

const datasetColumns = `_id, NAME, TABLENAME, COLUMNNAME, PREDICATE, COMMENTS, AXIAL, CREATED_AT, UPDATED_AT`

// Create stores a dataset row and its observations
func (r *DatasetRepository) Create(ctx context.Context, ds *models.Dataset, values []float64) error {
	return database.Transaction(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO _datasets (_id, NAME, TABLENAME, COLUMNNAME, PREDICATE, COMMENTS, AXIAL)
			VALUES (:_id, :NAME, :TABLENAME, :COLUMNNAME, :PREDICATE, :COMMENTS, :AXIAL)
		`, ds)
		if err != nil {
			return fmt.Errorf("failed to insert dataset: %w", err)
		}
		return insertValues(ctx, tx, ds.ID, 0, values)
	})
}

// GetByID retrieves a dataset row
func (r *DatasetRepository) GetByID(ctx context.Context, id string) (*models.Dataset, error) {
	var ds models.Dataset
	err := r.db.GetContext(ctx, &ds, `SELECT `+datasetColumns+`,
			(SELECT COUNT(*) FROM _values v WHERE v.DATASET_ID = d._id) AS VALUE_COUNT
		FROM _datasets d WHERE _id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("dataset", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}
	return &ds, nil
}

// List returns every dataset in creation order with its observation count
func (r *DatasetRepository) List(ctx context.Context) ([]models.Dataset, error) {
	list := []models.Dataset{}
	err := r.db.SelectContext(ctx, &list, `SELECT `+datasetColumns+`,
			(SELECT COUNT(*) FROM _values v WHERE v.DATASET_ID = d._id) AS VALUE_COUNT
		FROM _datasets d
		ORDER BY CREATED_AT, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	return list, nil
}

// Values returns a dataset's observations in insertion order
func (r *DatasetRepository) Values(ctx context.Context, id string) ([]float64, error) {
	values := []float64{}
	err := r.db.SelectContext(ctx, &values, `SELECT VALUE FROM _values WHERE DATASET_ID = ? ORDER BY SEQ`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query values: %w", err)
	}
	return values, nil
}

// AppendValues adds observations after the existing ones
func (r *DatasetRepository) AppendValues(ctx context.Context, id string, values []float64) error {
	return database.Transaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var exists int
		if err := tx.GetContext(ctx, &exists, `SELECT COUNT(*) FROM _datasets WHERE _id = ?`, id); err != nil {
			return fmt.Errorf("failed to check dataset: %w", err)
		}
		if exists == 0 {
			return apperrors.NotFound("dataset", id)
		}

		var next int
		if err := tx.GetContext(ctx, &next, `SELECT COALESCE(MAX(SEQ) + 1, 0) FROM _values WHERE DATASET_ID = ?`, id); err != nil {
			return fmt.Errorf("failed to read last sequence: %w", err)
		}
		if err := insertValues(ctx, tx, id, next, values); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE _datasets SET UPDATED_AT = CURRENT_TIMESTAMP WHERE _id = ?`, id); err != nil {
			return fmt.Errorf("failed to touch dataset: %w", err)
		}
		return nil
	})
}

// SetAxial records whether the dataset is plotted as axes
func (r *DatasetRepository) SetAxial(ctx context.Context, id string, axial bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE _datasets SET AXIAL = ?, UPDATED_AT = CURRENT_TIMESTAMP WHERE _id = ?`, axial, id)
	if err != nil {
		return fmt.Errorf("failed to update dataset: %w", err)
	}
	return requireAffected(res, id)
}

// Delete removes a dataset and, through the foreign key, its observations
func (r *DatasetRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM _datasets WHERE _id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	return requireAffected(res, id)
}

// ReadColumn reads the numeric values of table.column, optionally
// filtered by a SQL predicate. NULLs are skipped.
func (r *DatasetRepository) ReadColumn(ctx context.Context, table, column, predicate string) ([]float64, error) {
	if reservedTable(table) {
		return nil, apperrors.InvalidConfiguration("table %q is reserved", table)
	}
	if err := checkPredicate(predicate); err != nil {
		return nil, err
	}
	if err := r.checkColumn(ctx, table, column); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT CAST(%s AS REAL) FROM %s WHERE %s IS NOT NULL`,
		quoteIdent(column), quoteIdent(table), quoteIdent(column))
	if p := strings.TrimSpace(predicate); p != "" {
		query += " AND (" + p + ")"
	}
	query += " ORDER BY rowid"

	conn, err := r.db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()
	if _, err := conn.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		return nil, fmt.Errorf("failed to enter read-only mode: %w", err)
	}
	defer func() {
		if _, err := conn.ExecContext(context.Background(), "PRAGMA query_only = OFF"); err != nil {
			// drop the connection rather than return it read-only
			_ = conn.Raw(func(interface{}) error { return driver.ErrBadConn })
		}
	}()

	values := []float64{}
	if err := conn.SelectContext(ctx, &values, query); err != nil {
		return nil, apperrors.InvalidConfiguration("cannot read %s.%s: %v", table, column, err)
	}
	return values, nil
}

// reservedTable reports whether name belongs to the application or to
// SQLite itself.
func reservedTable(name string) bool {
	n := strings.ToLower(name)
	return strings.HasPrefix(n, "_") || n == "migrations" ||
		strings.HasPrefix(n, "sqlite_") || strings.HasPrefix(n, "pragma_")
}

// checkPredicate scans an import predicate and refuses statement
// separators, comments and any identifier naming a reserved table.
// String literals are skipped.
func checkPredicate(p string) error {
	reject := func(format string, args ...interface{}) error {
		return apperrors.InvalidConfiguration("predicate: "+format, args...)
	}
	for i := 0; i < len(p); {
		c := p[i]
		switch {
		case c == '\'':
			end, ok := closing(p, i, '\'')
			if !ok {
				return reject("unterminated string")
			}
			i = end
		case c == '"' || c == '`' || c == '[':
			closer := c
			if c == '[' {
				closer = ']'
			}
			end, ok := closing(p, i, closer)
			if !ok {
				return reject("unterminated identifier")
			}
			if name := p[i+1 : end-1]; reservedTable(strings.ReplaceAll(name, string(closer)+string(closer), string(closer))) {
				return reject("%q is reserved", name)
			}
			i = end
		case c == ';':
			return reject("multiple statements are not allowed")
		case c == '-' && i+1 < len(p) && p[i+1] == '-',
			c == '/' && i+1 < len(p) && p[i+1] == '*':
			return reject("comments are not allowed")
		case isIdentByte(c):
			start := i
			for i < len(p) && isIdentByte(p[i]) {
				i++
			}
			word := p[start:i]
			if (word[0] < '0' || word[0] > '9') && reservedTable(word) {
				return reject("%q is reserved", word)
			}
		default:
			i++
		}
	}
	return nil
}

// closing returns the index just past the quote that closes the one at
// start. A doubled quote is an escaped quote.
func closing(s string, start int, quote byte) (int, bool) {
	for i := start + 1; i < len(s); i++ {
		if s[i] != quote {
			continue
		}
		if quote != ']' && i+1 < len(s) && s[i+1] == quote {
			i++
			continue
		}
		return i + 1, true
	}
	return 0, false
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

func (r *DatasetRepository) checkColumn(ctx context.Context, table, column string) error {
	var columns []string
	err := r.db.SelectContext(ctx, &columns, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	if len(columns) == 0 {
		return apperrors.NotFound("table", table)
	}
	for _, c := range columns {
		if c == column {
			return nil
		}
	}
	return apperrors.NotFound("column", table+"."+column)
}

func insertValues(ctx context.Context, tx *sqlx.Tx, id string, start int, values []float64) error {
	if len(values) == 0 {
		return nil
	}
	rows := make([]models.DatasetValue, len(values))
	for i, v := range values {
		rows[i] = models.DatasetValue{DatasetID: id, Seq: start + i, Value: v}
	}
	// SQLite limits bound parameters per statement
	const batch = 300
	for lo := 0; lo < len(rows); lo += batch {
		hi := min(lo+batch, len(rows))
		_, err := tx.NamedExecContext(ctx,
			`INSERT INTO _values (DATASET_ID, SEQ, VALUE) VALUES (:DATASET_ID, :SEQ, :VALUE)`, rows[lo:hi])
		if err != nil {
			return fmt.Errorf("failed to insert values: %w", err)
		}
	}
	return nil
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return apperrors.NotFound("dataset", id)
	}
	return nil
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
