package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestApplyDebit(t *testing.T) {
	tests := []struct {
		name      string
		balance   int
		amount    int
		remaining int
		err       error
	}{
		{name: "partial debit", balance: 100, amount: 40, remaining: 60},
		{name: "exact balance", balance: 100, amount: 100, remaining: 0},
		{name: "zero amount", balance: 100, amount: 0, remaining: 100},
		{name: "one over balance", balance: 100, amount: 101, remaining: 100, err: ErrInsufficientFunds},
		{name: "empty balance", balance: 0, amount: 1, remaining: 0, err: ErrInsufficientFunds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remaining, err := ApplyDebit(tt.balance, tt.amount)
			if err != tt.err {
				t.Fatalf("err = %v, want %v", err, tt.err)
			}
			if remaining != tt.remaining {
				t.Errorf("remaining = %d, want %d", remaining, tt.remaining)
			}
		})
	}
}

// fakeRunner stands in for a transaction: QueryRow serves a scripted
// balance and Exec records every write.
type fakeRunner struct {
	coins  int
	rowErr error
	execs  []fakeExec
}

type fakeExec struct {
	query string
	args  []interface{}
}

func (f *fakeRunner) Query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error) {
	return nil, errors.New("unexpected query")
}

func (f *fakeRunner) QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row {
	return fakeRow{coins: f.coins, err: f.rowErr}
}

func (f *fakeRunner) Exec(ctx context.Context, query string, args ...interface{}) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, fakeExec{query: query, args: args})
	return pgconn.CommandTag{}, nil
}

type fakeRow struct {
	coins int
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}

	*(dest[0].(*int)) = r.coins
	return nil
}

func TestDebitCoinsTxInsufficientFunds(t *testing.T) {
	svc := &PlayerService{}
	runner := &fakeRunner{coins: 100}

	err := svc.DebitCoinsTx(context.Background(), runner, "p1", 150)
	if err != ErrInsufficientFunds {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if len(runner.execs) != 0 {
		t.Errorf("balance was written on a rejected debit: %v", runner.execs)
	}
}

func TestDebitCoinsTxWritesRemainingBalance(t *testing.T) {
	svc := &PlayerService{}
	runner := &fakeRunner{coins: 100}

	if err := svc.DebitCoinsTx(context.Background(), runner, "p1", 40); err != nil {
		t.Fatalf("DebitCoinsTx: %v", err)
	}

	if len(runner.execs) != 1 {
		t.Fatalf("exec count = %d, want 1", len(runner.execs))
	}
	if got := runner.execs[0].args[0]; got != 60 {
		t.Errorf("persisted balance = %v, want 60", got)
	}
}

func TestDebitCoinsTxMissingPlayer(t *testing.T) {
	svc := &PlayerService{}
	runner := &fakeRunner{rowErr: pgx.ErrNoRows}

	if err := svc.DebitCoinsTx(context.Background(), runner, "p1", 10); err != ErrPlayerNotFound {
		t.Errorf("err = %v, want ErrPlayerNotFound", err)
	}
}
