package domain

import (
	"strings"
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("impact_score", "must be in [0, 100]", 140.0)

	if err.Field != "impact_score" {
		t.Errorf("Expected field impact_score, got %s", err.Field)
	}

	msg := err.Error()
	if !strings.Contains(msg, "impact_score") {
		t.Errorf("Expected error message to contain field name, got %s", msg)
	}
	if !strings.Contains(msg, "must be in [0, 100]") {
		t.Errorf("Expected error message to contain reason, got %s", msg)
	}
}

func TestConfigurationError(t *testing.T) {
	err := NewConfigurationError("weight_table", "weights for DRUG_REPURPOSING sum to 0.9800")

	msg := err.Error()
	if !strings.Contains(msg, "weight_table") {
		t.Errorf("Expected error message to contain component, got %s", msg)
	}
	if !strings.Contains(msg, "0.9800") {
		t.Errorf("Expected error message to contain detail, got %s", msg)
	}
}
