package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARNING", slog.LevelWarn},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"debug", slog.LevelDebug},
		{" warn ", slog.LevelWarn},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLogLevel(tt.input); got != tt.expected {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig("nonexistent.yaml")
	if err != nil {
		t.Fatalf("LoadConfig returned error for missing file: %v", err)
	}

	if config.Level != "INFO" {
		t.Errorf("Default level = %q, want INFO", config.Level)
	}
	if !config.ConsoleEnabled {
		t.Error("Default ConsoleEnabled = false, want true")
	}
	if config.FileEnabled {
		t.Error("Default FileEnabled = true, want false")
	}
	if config.FilePath != "logs/nightmare.log" {
		t.Errorf("Default FilePath = %q, want logs/nightmare.log", config.FilePath)
	}
}

func TestLoadConfigReadsLoggingSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.yaml")
	content := `generation:
  room_count_min: 3
logging:
  level: DEBUG
  console_enabled: false
  file_enabled: true
  file_path: run.log
  file_max_size_mb: 20
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if config.Level != "DEBUG" {
		t.Errorf("Level = %q, want DEBUG", config.Level)
	}
	if config.ConsoleEnabled {
		t.Error("ConsoleEnabled = true, want false")
	}
	if !config.FileEnabled || config.FilePath != "run.log" {
		t.Errorf("file sink = %v %q, want true run.log", config.FileEnabled, config.FilePath)
	}
	if config.FileMaxSizeMB != 20 {
		t.Errorf("FileMaxSizeMB = %d, want 20", config.FileMaxSizeMB)
	}
	// Not present in YAML: default kept.
	if config.FileMaxBackups != 5 {
		t.Errorf("FileMaxBackups = %d, want 5", config.FileMaxBackups)
	}
}

func TestLoadConfigWithoutLoggingSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.yaml")
	if err := os.WriteFile(path, []byte("game:\n  final_depth: 4\n"), 0644); err != nil {
		t.Fatal(err)
	}

	config, _ := LoadConfig(path)
	if !config.ConsoleEnabled {
		t.Error("absent logging section must not disable the console")
	}
}

func TestEnvVarOverride(t *testing.T) {
	t.Setenv("NIS_LOG_LEVEL", "ERROR")
	t.Setenv("NIS_LOG_CONSOLE_FORMAT", "json")
	t.Setenv("NIS_LOG_FILE_ENABLED", "true")
	t.Setenv("NIS_LOG_FILE_PATH", "/custom/path.log")

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if config.Level != "ERROR" {
		t.Errorf("Level = %q, want ERROR", config.Level)
	}
	if config.ConsoleFormat != "json" {
		t.Errorf("ConsoleFormat = %q, want json", config.ConsoleFormat)
	}
	if !config.FileEnabled {
		t.Error("FileEnabled = false, want true")
	}
	if config.FilePath != "/custom/path.log" {
		t.Errorf("FilePath = %q, want /custom/path.log", config.FilePath)
	}
}

func TestInitializeConsoleText(t *testing.T) {
	defer Reset()
	var buf bytes.Buffer

	cfg := DefaultConfig()
	if err := initialize(cfg, &buf); err != nil {
		t.Fatal(err)
	}

	Info("level generated", "depth", 3)
	Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "level generated") || !strings.Contains(out, "depth=3") {
		t.Errorf("missing info record: %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record leaked at INFO: %s", out)
	}
}

func TestInitializeConsoleJSON(t *testing.T) {
	defer Reset()
	var buf bytes.Buffer

	cfg := DefaultConfig()
	cfg.ConsoleFormat = "json"
	if err := initialize(cfg, &buf); err != nil {
		t.Fatal(err)
	}

	Info("kill", "enemy", "cat", "reward", 4)

	out := buf.String()
	if !strings.Contains(out, `"msg":"kill"`) || !strings.Contains(out, `"reward":4`) {
		t.Errorf("unexpected json output: %s", out)
	}
}

func TestInitializeFileRequiresPath(t *testing.T) {
	defer Reset()
	cfg := DefaultConfig()
	cfg.FileEnabled = true
	cfg.FilePath = ""
	if err := initialize(cfg, &bytes.Buffer{}); err == nil {
		t.Error("expected error for file logging without a path")
	}
}

func TestInitializeFileSink(t *testing.T) {
	defer Reset()
	path := filepath.Join(t.TempDir(), "logs", "game.log")

	cfg := DefaultConfig()
	cfg.ConsoleEnabled = false
	cfg.FileEnabled = true
	cfg.FilePath = path
	if err := initialize(cfg, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}

	Warning("store unavailable", "driver", "sqlite")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "store unavailable") {
		t.Errorf("file sink missing record: %s", data)
	}
}

func TestAlwaysBypassesLogLevel(t *testing.T) {
	defer Reset()
	var buf bytes.Buffer

	cfg := DefaultConfig()
	cfg.Level = "ERROR"
	if err := initialize(cfg, &buf); err != nil {
		t.Fatal(err)
	}

	Info("Info message")
	Warning("Warning message")
	Error("Error message")
	Always("Run finished")

	out := buf.String()
	if strings.Contains(out, "Info message") || strings.Contains(out, "Warning message") {
		t.Errorf("records below ERROR leaked: %s", out)
	}
	if !strings.Contains(out, "Error message") {
		t.Error("ERROR record missing")
	}
	if !strings.Contains(out, "level=ALWAYS") {
		t.Errorf("ALWAYS level not rendered: %s", out)
	}
}

func TestFormattedLogging(t *testing.T) {
	defer Reset()
	var buf bytes.Buffer
	current = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	Debugf("Debug: %d + %d = %d", 1, 2, 3)
	Infof("Info: %s", "test")
	Warningf("Warning: %.2f%%", 99.95)
	Errorf("Error: %v", "failed")

	out := buf.String()
	for _, want := range []string{"Debug: 1 + 2 = 3", "Info: test", "Warning: 99.95%", "Error: failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestTeeHandler(t *testing.T) {
	defer Reset()
	var buf1, buf2 bytes.Buffer

	h1 := slog.NewTextHandler(&buf1, &slog.HandlerOptions{Level: slog.LevelInfo})
	h2 := slog.NewTextHandler(&buf2, &slog.HandlerOptions{Level: slog.LevelError})
	current = slog.New(tee([]slog.Handler{h1, h2}))

	Info("only first")
	Error("both")

	if !strings.Contains(buf1.String(), "only first") || !strings.Contains(buf1.String(), "both") {
		t.Errorf("first handler output: %s", buf1.String())
	}
	if strings.Contains(buf2.String(), "only first") {
		t.Error("second handler received record below its level")
	}
	if !strings.Contains(buf2.String(), "both") {
		t.Error("second handler missing error record")
	}

	Info("tagged", "profile", "ann")
	current.With("depth", 3).Error("scoped")
	if !strings.Contains(buf2.String(), "depth=3") || !strings.Contains(buf1.String(), "depth=3") {
		t.Error("WithAttrs not forwarded to every sink")
	}
}

func TestNilLogger(t *testing.T) {
	Reset()
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("logging with nil logger panicked: %v", r)
		}
	}()

	Debug("debug")
	Info("info")
	Warning("warning")
	Error("error")
	Always("always")
}
