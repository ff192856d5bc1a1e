package model

import "testing"

func TestValidRole(t *testing.T) {
	tests := []struct {
		role     string
		expected bool
	}{
		{RoleAdmin, true},
		{RoleEmployee, true},
		// Unknown roles fail-closed.
		{"manager", false},
		{"Admin", false},
		{"", false},
	}

	for _, tt := range tests {
		got := ValidRole(tt.role)
		if got != tt.expected {
			t.Errorf("ValidRole(%q) = %v, want %v", tt.role, got, tt.expected)
		}
	}
}

func TestValidPeriod(t *testing.T) {
	tests := []struct {
		period   string
		expected bool
	}{
		{PeriodWeekly, true},
		{PeriodMonthly, true},
		{"daily", false},
		{"Weekly", false},
		{"", false},
	}

	for _, tt := range tests {
		got := ValidPeriod(tt.period)
		if got != tt.expected {
			t.Errorf("ValidPeriod(%q) = %v, want %v", tt.period, got, tt.expected)
		}
	}
}
