package config

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func validTestConfig() Config {
	return Config{
		ListenAddr:    ":8080",
		DatabasePath:  ":memory:",
		NoOIDC:        true,
		NoAI:          true,
		AIProvider:    AIProviderMock,
		AIModel:       defaultAIModel,
		AIRequireAuth: true,
	}
}

func TestValidate_TestModeMinimalConfigPasses(t *testing.T) {
	t.Parallel()
	cfg := validTestConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid test-mode config, got error: %v", err)
	}
}

func TestValidate_RequiresServiceSecretsWhenNotMocked(t *testing.T) {
	t.Parallel()
	cfg := validTestConfig()
	cfg.NoOIDC = false
	cfg.OIDCIssuer = ""
	cfg.OIDCClientID = ""
	cfg.AIProvider = AIProviderOpenAI
	cfg.OpenAIAPIKey = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error when real services are enabled without secrets")
	}
	msg := err.Error()
	for _, expected := range []string{
		"OIDC_ISSUER",
		"OIDC_CLIENT_ID",
		"OPENAI_API_KEY",
	} {
		if !strings.Contains(msg, expected) {
			t.Fatalf("expected validation error to mention %q, got: %v", expected, err)
		}
	}
}

func TestValidate_RejectsUnknownAIProvider(t *testing.T) {
	t.Parallel()
	cfg := validTestConfig()
	cfg.AIProvider = "huggingface"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for unknown AI provider")
	}
	if !strings.Contains(err.Error(), "AI_PROVIDER") {
		t.Fatalf("expected error to mention AI_PROVIDER, got: %v", err)
	}
}

func testValidate_RejectsBadDatabaseKeyLengths(t *rapid.T) {
	cfg := validTestConfig()

	length := rapid.IntRange(1, 128).Filter(func(n int) bool { return n != 64 }).Draw(t, "key_len")
	cfg.DatabaseKey = strings.Repeat("a", length)

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error for %d-char DATABASE_KEY", length)
	}
	if !strings.Contains(err.Error(), "DATABASE_KEY") {
		t.Fatalf("expected error to mention DATABASE_KEY, got: %v", err)
	}
}

func TestValidate_RejectsBadDatabaseKeyLengths(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testValidate_RejectsBadDatabaseKeyLengths)
}

func TestValidate_RejectsNonHexDatabaseKey(t *testing.T) {
	t.Parallel()
	cfg := validTestConfig()
	cfg.DatabaseKey = strings.Repeat("z", 64)

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for non-hex DATABASE_KEY")
	}
	if !strings.Contains(err.Error(), "valid hex") {
		t.Fatalf("expected hex error, got: %v", err)
	}
}

func TestValidate_AcceptsWellFormedDatabaseKey(t *testing.T) {
	t.Parallel()
	cfg := validTestConfig()
	cfg.DatabaseKey = strings.Repeat("ab", 32)

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected 64-hex DATABASE_KEY to validate, got: %v", err)
	}
}

func TestSplitOrigins(t *testing.T) {
	t.Parallel()

	got := splitOrigins(" https://app.example.com/ ,, http://localhost:3000 ")
	want := []string{"https://app.example.com", "http://localhost:3000"}
	if len(got) != len(want) {
		t.Fatalf("origin count mismatch: got=%v want=%v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("origin %d mismatch: got=%q want=%q", i, got[i], want[i])
		}
	}

	if out := splitOrigins(""); len(out) != 0 {
		t.Fatalf("expected no origins for empty input, got %v", out)
	}
}
