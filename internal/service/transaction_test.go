package service

import "testing"

func TestCheckSufficientFunds(t *testing.T) {
	tests := []struct {
		name    string
		balance float64
		amount  float64
		wantErr bool
	}{
		{"достаточно с запасом", 1000, 300, false},
		{"ровно весь баланс", 500, 500, false},
		{"не хватает", 100, 100.01, true},
		{"нулевой баланс", 0, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkSufficientFunds(tt.balance, tt.amount)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkSufficientFunds(%.2f, %.2f) = %v, ожидалась ошибка: %v",
					tt.balance, tt.amount, err, tt.wantErr)
			}
		})
	}
}
