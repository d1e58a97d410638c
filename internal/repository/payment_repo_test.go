package repository

import (
	"errors"
	"testing"

	"coursio/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      conn,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
	return db, mock
}

func TestPaymentRepoGetByOrderID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "order_id", "email", "status", "amount"}).
		AddRow(1, "ord_1", "asha@example.com", domain.PaymentPending, 999)
	mock.ExpectQuery("SELECT (.+) FROM `payments` WHERE order_id = (.+)").
		WithArgs("ord_1", 1).
		WillReturnRows(rows)

	p, err := repo.GetByOrderID("ord_1")
	if err != nil {
		t.Fatalf("GetByOrderID: %v", err)
	}
	if p.OrderID != "ord_1" || p.Amount != 999 || p.Status != domain.PaymentPending {
		t.Errorf("payment = %+v", p)
	}
}

func TestPaymentRepoGetByOrderIDMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM `payments` WHERE order_id = (.+)").
		WithArgs("ord_missing", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByOrderID("ord_missing")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestPaymentRepoFindSettled(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "order_id", "email", "status"}).
		AddRow(7, "ord_0", "asha@example.com", domain.PaymentSuccess)
	mock.ExpectQuery("SELECT (.+) FROM `payments` WHERE \\(?email = (.+) AND product_id = (.+) AND status IN (.+)").
		WithArgs("asha@example.com", 7, domain.ProductCourse, "ord_1",
			domain.PaymentSuccess, domain.PaymentReconciled, 1).
		WillReturnRows(rows)

	p, err := repo.FindSettled("asha@example.com", 7, domain.ProductCourse, "ord_1")
	if err != nil {
		t.Fatalf("FindSettled: %v", err)
	}
	if p == nil || p.OrderID != "ord_0" {
		t.Errorf("payment = %+v", p)
	}
}

func TestPaymentRepoFindSettledNone(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM `payments` WHERE \\(?email = (.+)").
		WithArgs("asha@example.com", 7, domain.ProductCourse, "ord_1",
			domain.PaymentSuccess, domain.PaymentReconciled, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	p, err := repo.FindSettled("asha@example.com", 7, domain.ProductCourse, "ord_1")
	if err != nil {
		t.Fatalf("FindSettled: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil for no prior entitlement, got %+v", p)
	}
}

func TestPaymentRepoListByStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "order_id", "status"}).
		AddRow(1, "ord_1", domain.PaymentPending).
		AddRow(2, "ord_2", domain.PaymentFailed)
	mock.ExpectQuery("SELECT (.+) FROM `payments` WHERE status IN (.+) ORDER BY created_at DESC").
		WithArgs(domain.PaymentPending, domain.PaymentFailed, 50).
		WillReturnRows(rows)

	out, err := repo.ListByStatus([]string{domain.PaymentPending, domain.PaymentFailed}, 50)
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if len(out) != 2 || out[0].OrderID != "ord_1" || out[1].Status != domain.PaymentFailed {
		t.Errorf("payments = %+v", out)
	}
}

func TestPaymentRepoMarkFailed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `payments` SET (.+) WHERE order_id = (.+)").
		WithArgs("Amount mismatch (Razorpay: 500, DB: 999)", domain.PaymentFailed, sqlmock.AnyArg(), "ord_1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.MarkFailed("ord_1", "Amount mismatch (Razorpay: 500, DB: 999)"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
}
