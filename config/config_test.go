package config

import (
	"strings"
	"testing"

	"inmobiliaria-analyzer/models"
)

func validConfig() *Config {
	return &Config{
		Bounds:      Bounds{MinPrice: 50000, MaxPrice: 500000, MinArea: 30, MaxArea: 200},
		RiskWeights: DefaultRiskWeights(),
		TopN:        10,
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("default configuration should validate: %v", err)
	}
}

func TestValidateRejectsInvertedBounds(t *testing.T) {
	cfg := validConfig()
	cfg.Bounds.MinPrice = 600000
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected an error for MIN_PRICE > MAX_PRICE")
	}
	if !strings.Contains(err.Error(), "MIN_PRICE") {
		t.Errorf("error should name the violated precondition, got: %v", err)
	}
}

func TestValidateRejectsBadWeights(t *testing.T) {
	cfg := validConfig()
	cfg.RiskWeights[models.RiskMedium] = Weights{ROI: 0.5, PricePerM2: 0.3, Size: 0.3}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected an error for weights not summing to 1.0")
	}
	if !strings.Contains(err.Error(), "sum") {
		t.Errorf("error should mention the weight sum, got: %v", err)
	}
}

func TestValidateRejectsMissingTolerance(t *testing.T) {
	cfg := validConfig()
	delete(cfg.RiskWeights, models.RiskHigh)
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for a missing tolerance row")
	}
}

func TestParseRiskTolerance(t *testing.T) {
	for _, s := range []string{"low", "medium", "high"} {
		if _, err := models.ParseRiskTolerance(s); err != nil {
			t.Errorf("ParseRiskTolerance(%q) unexpected error: %v", s, err)
		}
	}
	if _, err := models.ParseRiskTolerance("aggressive"); err == nil {
		t.Error("unrecognized tolerance must be rejected, not defaulted")
	}
}
