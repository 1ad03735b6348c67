package model

import (
	"errors"
	"testing"
)

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2024-01-15"); err != nil {
		t.Errorf("valid date rejected: %v", err)
	}

	invalid := []string{"", "15/01/2024", "2024-13-01", "2024-01-32", "yesterday"}
	for _, s := range invalid {
		if _, err := ParseDate(s); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("ParseDate(%q): got %v, want ErrInvalidInput", s, err)
		}
	}
}

func TestAddDays(t *testing.T) {
	tests := []struct {
		date string
		days int
		want string
	}{
		{"2024-01-01", 14, "2024-01-15"},
		{"2024-01-31", 1, "2024-02-01"},
		{"2024-02-28", 1, "2024-02-29"}, // leap year
		{"2023-12-31", 1, "2024-01-01"},
	}
	for _, tt := range tests {
		got, err := AddDays(tt.date, tt.days)
		if err != nil {
			t.Errorf("AddDays(%q, %d): %v", tt.date, tt.days, err)
			continue
		}
		if got != tt.want {
			t.Errorf("AddDays(%q, %d) = %q, want %q", tt.date, tt.days, got, tt.want)
		}
	}
}

func TestLoanOverdue(t *testing.T) {
	active := Loan{DueDate: "2024-01-15"}
	if active.Overdue("2024-01-15") {
		t.Error("loan overdue on its due date")
	}
	if !active.Overdue("2024-01-16") {
		t.Error("loan not overdue the day after the due date")
	}

	returned := Loan{DueDate: "2024-01-15", ReturnDate: "2024-01-20"}
	if returned.Overdue("2024-02-01") {
		t.Error("returned loan reported overdue")
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("longenough"); err != nil {
		t.Errorf("valid password rejected: %v", err)
	}
	if err := ValidatePassword("short"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("short password: got %v, want ErrInvalidInput", err)
	}
}
