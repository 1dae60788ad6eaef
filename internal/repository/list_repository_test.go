package repository

import (
	"context"
	"database/sql"
	"reflect"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/petrkov/shopping-list/internal/list"
)

func newListRepoWithMock(t *testing.T) (*ListRepo, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewListRepo(db), mock, db
}

const (
	selectListQ      = `SELECT items, quantities, checked FROM shopping_lists WHERE user_id=\? LIMIT 1`
	selectForUpdateQ = `SELECT items, quantities, checked FROM shopping_lists WHERE user_id=\? FOR UPDATE`
	updateListQ      = `UPDATE shopping_lists SET items=\?, quantities=\?, checked=\? WHERE user_id=\?`
	insertListQ      = `INSERT INTO shopping_lists \(user_id, items, quantities, checked\) VALUES \(\?,\?,\?,\?\)`
)

func listRows(items, quantities, checked string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"items", "quantities", "checked"}).
		AddRow(items, quantities, checked)
}

func TestLoad_NoRow(t *testing.T) {
	repo, mock, db := newListRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectListQ).WithArgs("u1").WillReturnError(sql.ErrNoRows)

	_, err := repo.Load(context.Background(), "u1")
	if err != ErrNoList {
		t.Fatalf("expected ErrNoList, got %v", err)
	}
}

func TestLoad_DecodesTriple(t *testing.T) {
	repo, mock, db := newListRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectListQ).WithArgs("u1").
		WillReturnRows(listRows(`["milk","eggs"]`, `[2,12]`, `[false,true]`))

	l, err := repo.Load(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !reflect.DeepEqual(l.Items, []string{"milk", "eggs"}) ||
		!reflect.DeepEqual(l.Quantities, []int{2, 12}) ||
		!reflect.DeepEqual(l.Checked, []bool{false, true}) {
		t.Fatalf("unexpected list: %+v", l)
	}
}

func TestLoad_PadsMissingCheckedColumn(t *testing.T) {
	repo, mock, db := newListRepoWithMock(t)
	defer db.Close()

	// Rows written before the checked column existed carry NULL there.
	mock.ExpectQuery(selectListQ).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"items", "quantities", "checked"}).
			AddRow(`["milk"]`, `[2]`, nil))

	l, err := repo.Load(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !reflect.DeepEqual(l.Checked, []bool{false}) {
		t.Fatalf("expected padded checked flags, got %v", l.Checked)
	}
}

func TestMutate_AppendsAndSaves(t *testing.T) {
	repo, mock, db := newListRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(selectForUpdateQ).WithArgs("u1").
		WillReturnRows(listRows(`["milk"]`, `[2]`, `[false]`))
	mock.ExpectExec(updateListQ).
		WithArgs([]byte(`["milk","eggs"]`), []byte(`[2,12]`), []byte(`[false,false]`), "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	l, err := repo.Mutate(context.Background(), "u1", func(l *list.List) error {
		return l.Append("eggs", 12)
	})
	if err != nil {
		t.Fatalf("Mutate error: %v", err)
	}
	if l.Len() != 2 {
		t.Fatalf("unexpected result list: %+v", l)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMutate_CreatesRowWhenAbsent(t *testing.T) {
	repo, mock, db := newListRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(selectForUpdateQ).WithArgs("u1").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(insertListQ).
		WithArgs("u1", []byte(`[]`), []byte(`[]`), []byte(`[]`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	l, err := repo.Ensure(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Ensure error: %v", err)
	}
	if l.Len() != 0 {
		t.Fatalf("expected empty list, got %+v", l)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMutate_SecondAccessDoesNotRecreate(t *testing.T) {
	repo, mock, db := newListRepoWithMock(t)
	defer db.Close()

	// Row already exists: no INSERT, no UPDATE (nil fn), just read and commit.
	mock.ExpectBegin()
	mock.ExpectQuery(selectForUpdateQ).WithArgs("u1").
		WillReturnRows(listRows(`[]`, `[]`, `[]`))
	mock.ExpectCommit()

	l, err := repo.Ensure(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Ensure error: %v", err)
	}
	if l.Len() != 0 {
		t.Fatalf("expected empty list, got %+v", l)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMutate_RollsBackOnRejection(t *testing.T) {
	repo, mock, db := newListRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(selectForUpdateQ).WithArgs("u1").
		WillReturnRows(listRows(`["milk"]`, `[2]`, `[false]`))
	mock.ExpectRollback()

	_, err := repo.Mutate(context.Background(), "u1", func(l *list.List) error {
		return l.DeleteAt(5)
	})
	if err != list.ErrIndexOutOfRange {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSave_RewritesFullTriple(t *testing.T) {
	repo, mock, db := newListRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(updateListQ).
		WithArgs([]byte(`["tea"]`), []byte(`[1]`), []byte(`[true]`), "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	l := list.List{Items: []string{"tea"}, Quantities: []int{1}, Checked: []bool{true}}
	if err := repo.Save(context.Background(), "u1", l); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
