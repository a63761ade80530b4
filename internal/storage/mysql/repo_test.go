package mysql

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elt/internal/schema"
	"elt/internal/storage"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &Repository{db: db, cfg: Config{Schema: "olist"}}, mock
}

func TestCopyFrom_MultiRowInsert(t *testing.T) {
	t.Parallel()

	r, mock := newMockRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `olist`.`dim_x` (`k`, `v`) VALUES (?, ?), (?, ?)")).
		WithArgs("a", int64(1), "b", nil).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	n, err := r.CopyFrom(context.Background(), "dim_x", []string{"k", "v"}, [][]any{{"a", int64(1)}, {"b", nil}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_RowLengthMismatchRollsBack(t *testing.T) {
	t.Parallel()

	r, mock := newMockRepo(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := r.CopyFrom(context.Background(), "dim_x", []string{"k", "v"}, [][]any{{"a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row length")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_ExecError(t *testing.T) {
	t.Parallel()

	r, mock := newMockRepo(t)
	boom := errors.New("duplicate entry")
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO").WillReturnError(boom)
	mock.ExpectRollback()

	_, err := r.CopyFrom(context.Background(), "dim_x", []string{"k"}, [][]any{{"a"}})
	require.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_EmptyInputs(t *testing.T) {
	t.Parallel()

	r := &Repository{}
	n, err := r.CopyFrom(context.Background(), "dim_x", []string{"k"}, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = r.CopyFrom(context.Background(), "dim_x", nil, [][]any{{"a"}})
	assert.Error(t, err)
}

func TestInsertSQL(t *testing.T) {
	t.Parallel()

	q, args, err := insertSQL("`t`", []string{"a", "b"}, [][]any{{1, 2}, {3, 4}, {5, 6}})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO `t` (`a`, `b`) VALUES (?, ?), (?, ?), (?, ?)", q)
	assert.Equal(t, []any{1, 2, 3, 4, 5, 6}, args)
}

func TestCount(t *testing.T) {
	t.Parallel()

	r, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `olist`.`fact_sales`")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(int64(7)))

	n, err := r.Count(context.Background(), "fact_sales")
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}

func TestNormalizeDSN(t *testing.T) {
	t.Parallel()

	dsn, err := NormalizeDSN("user:pw@tcp(localhost:3306)/olist")
	require.NoError(t, err)
	assert.True(t, strings.Contains(dsn, "parseTime=true"), dsn)

	mc, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.True(t, mc.ParseTime)
	assert.Equal(t, "olist", mc.DBName)

	_, err = NormalizeDSN("not a dsn")
	assert.Error(t, err)
}

func TestStatements(t *testing.T) {
	t.Parallel()

	tbl := schema.Table{
		Name: "dim_product",
		Key:  "product_key",
		Columns: []schema.Column{
			{Name: "product_key", Type: schema.Text},
			{Name: "category", Type: schema.Text, Nullable: true},
			{Name: "weight_g", Type: schema.Float, Nullable: true},
		},
	}
	stmts, err := Statements("olist", tbl)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"CREATE DATABASE IF NOT EXISTS `olist`;",
		"DROP TABLE IF EXISTS `olist`.`dim_product`;",
		"CREATE TABLE `olist`.`dim_product` (\n" +
			"  `product_key` VARCHAR(255) NOT NULL,\n" +
			"  `category` TEXT,\n" +
			"  `weight_g` DOUBLE,\n" +
			"  PRIMARY KEY (`product_key`)\n" +
			");",
	}, stmts)
}

func TestPromoteStatements(t *testing.T) {
	t.Parallel()

	stmts, err := PromoteStatements("olist", "dim_product__staging", "dim_product")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"DROP TABLE IF EXISTS `olist`.`dim_product`;",
		"RENAME TABLE `olist`.`dim_product__staging` TO `olist`.`dim_product`;",
	}, stmts)
}

func TestPromote_ExecsInOrder(t *testing.T) {
	t.Parallel()

	r, mock := newMockRepo(t)
	mock.ExpectExec(regexp.QuoteMeta("DROP TABLE IF EXISTS `olist`.`dim_product`;")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("RENAME TABLE")).WillReturnError(errors.New("locked"))

	err := Promote(context.Background(), &wrappedRepo{Repository: r, closeFn: func() {}}, "olist", "dim_product__staging", "dim_product")
	assert.ErrorContains(t, err, "promote olist.dim_product")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapterRegistration(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var gotCfg Config
	closed := false
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		gotCfg = cfg
		return &Repository{cfg: cfg}, func() { closed = true }, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{Kind: "mysql", DSN: "u:p@/db", Schema: "olist"})
	require.NoError(t, err)
	assert.Equal(t, Config{DSN: "u:p@/db", Schema: "olist"}, gotCfg)

	repo.Close()
	assert.True(t, closed)
}
