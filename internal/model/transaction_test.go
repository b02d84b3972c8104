package model

import "testing"

func TestParseTransactionType(t *testing.T) {
	tests := []struct {
		input   string
		want    TransactionType
		wantErr bool
	}{
		{input: "DEPOSIT", want: TypeDeposit},
		{input: "deposit", want: TypeDeposit},
		{input: "Withdrawal", want: TypeWithdrawal},
		{input: "payment", want: TypePayment},
		{input: "CHARGE", want: TypeCharge},
		{input: "transfer", want: TypeTransfer},
		{input: "refund", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTransactionType(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestTransactionKindPredicates(t *testing.T) {
	account := []TransactionType{TypeDeposit, TypeWithdrawal, TypeTransfer}
	for _, transactionType := range account {
		tx := Transaction{TransactionType: transactionType}
		if !tx.IsAccountTransaction() || tx.IsCreditTransaction() {
			t.Errorf("%s must be an account transaction", transactionType)
		}
	}

	credit := []TransactionType{TypePayment, TypeCharge}
	for _, transactionType := range credit {
		tx := Transaction{TransactionType: transactionType}
		if !tx.IsCreditTransaction() || tx.IsAccountTransaction() {
			t.Errorf("%s must be a credit transaction", transactionType)
		}
	}
}
