package config

import (
	"os"
	"testing"

	"github.com/joho/godotenv"
)

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("GEP_TEST_SET", "from-env")

	if got := getEnv("GEP_TEST_SET", "fallback"); got != "from-env" {
		t.Errorf("Expected env value to win, got %s", got)
	}
	if got := getEnv("GEP_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("Expected fallback, got %s", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("GEP_TEST_BOOL", "true")
	if !getEnvBool("GEP_TEST_BOOL", false) {
		t.Error("Expected true from env")
	}

	t.Setenv("GEP_TEST_BOOL", "not-a-bool")
	if !getEnvBool("GEP_TEST_BOOL", true) {
		t.Error("Expected fallback for malformed boolean")
	}
}

// Slack tokens and spreadsheet ranges routinely contain characters that
// trip naive .env parsers, so pin down the quoting behavior we rely on.
func TestGodotenvQuoting(t *testing.T) {
	content := `SHEETS_ACTUALS_RANGE='Actuals "Q1"!A:E'`
	tmpfile, err := os.CreateTemp("", ".env.test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	env, err := godotenv.Read(tmpfile.Name())
	if err != nil {
		t.Fatalf("Error reading env: %v", err)
	}

	expected := `Actuals "Q1"!A:E`
	if env["SHEETS_ACTUALS_RANGE"] != expected {
		t.Errorf("Expected %s, got %s", expected, env["SHEETS_ACTUALS_RANGE"])
	}
}
