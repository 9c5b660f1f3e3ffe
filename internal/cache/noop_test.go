package cache

import (
	"context"
	"testing"
	"time"
)

// TestNoOpCache verifies that NoOpCache implements the Cache interface correctly
func TestNoOpCache(t *testing.T) {
	var c Cache = NewNoOpCache()
	ctx := context.Background()

	result, err := c.GetReport(ctx, "test-key")
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if result != nil {
		t.Errorf("Expected nil result (cache miss), got %v", result)
	}

	err = c.SetReport(ctx, "test-key", &Entry{Mode: "enhanced", Result: "verdict"}, time.Hour)
	if err != nil {
		t.Errorf("Expected no error on SetReport, got %v", err)
	}

	// Nothing was actually cached
	result, err = c.GetReport(ctx, "test-key")
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if result != nil {
		t.Errorf("Expected nil result (no-op cache doesn't store), got %v", result)
	}

	n, err := c.Purge(ctx)
	if err != nil || n != 0 {
		t.Errorf("Expected (0, nil) from Purge, got (%d, %v)", n, err)
	}

	if err := c.Close(); err != nil {
		t.Errorf("Expected no error on Close, got %v", err)
	}
}

func TestGenerateKey(t *testing.T) {
	base := GenerateKey("enhanced", "rog-research-preview", "The Earth is flat.")

	if len(base) != 64 {
		t.Fatalf("expected hex sha256 key, got %q", base)
	}
	if again := GenerateKey("enhanced", "rog-research-preview", "The Earth is flat."); again != base {
		t.Errorf("key is not stable: %s vs %s", base, again)
	}

	variants := map[string]string{
		"mode":    GenerateKey("legacy", "rog-research-preview", "The Earth is flat."),
		"model":   GenerateKey("enhanced", "phi", "The Earth is flat."),
		"content": GenerateKey("enhanced", "rog-research-preview", "The Earth is round."),
		"shifted": GenerateKey("enhance", "drog-research-preview", "The Earth is flat."),
	}
	for name, key := range variants {
		if key == base {
			t.Errorf("changing %s should change the key", name)
		}
	}
}
