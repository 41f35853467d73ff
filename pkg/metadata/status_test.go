package metadata

import (
	"testing"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from     Status
		to       Status
		expected bool
	}{
		{StatusDraft, StatusSubmitted, true},
		{StatusDraft, StatusCancelled, true},
		{StatusDraft, StatusApproved, false},
		{StatusSubmitted, StatusApproved, true},
		{StatusSubmitted, StatusRejected, true},
		{StatusSubmitted, StatusCancelled, true},
		{StatusSubmitted, StatusDraft, false},
		{StatusApproved, StatusRejected, false},
		{StatusRejected, StatusSubmitted, false},
		{StatusCancelled, StatusSubmitted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.expected {
				t.Errorf("Expected %v for %s -> %s, got %v", tt.expected, tt.from, tt.to, got)
			}
		})
	}
}

func TestNewStatus(t *testing.T) {
	tests := []struct {
		input         string
		expectedError bool
	}{
		{"draft", false},
		{"submitted", false},
		{"approved", false},
		{"pending", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := NewStatus(tt.input)
			if tt.expectedError && err == nil {
				t.Errorf("Expected error for input %s, but got none", tt.input)
			}
			if !tt.expectedError && err != nil {
				t.Errorf("Did not expect error for input %s, but got %v", tt.input, err)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		expected bool
	}{
		{StatusDraft, false},
		{StatusSubmitted, false},
		{StatusApproved, true},
		{StatusRejected, true},
		{StatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.expected {
				t.Errorf("Expected %v for %s, got %v", tt.expected, tt.status, got)
			}
		})
	}
}
