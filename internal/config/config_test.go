package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/juryclean/internal/core"
)

// env returns a LookupFunc backed by a map.
func env(vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFrom(env(nil))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Input.Dir != "structure_samples" {
		t.Errorf("Input.Dir = %q, want %q", cfg.Input.Dir, "structure_samples")
	}
	if cfg.Output.File != "juror_cleaned_output.csv" {
		t.Errorf("Output.File = %q, want %q", cfg.Output.File, "juror_cleaned_output.csv")
	}
	if cfg.Clean.UsedPolicy != "flag" {
		t.Errorf("Clean.UsedPolicy = %q, want %q", cfg.Clean.UsedPolicy, "flag")
	}
	if cfg.Clean.Precision != 4 {
		t.Errorf("Clean.Precision = %d, want %d", cfg.Clean.Precision, 4)
	}
	if cfg.Clean.Workers != 1 {
		t.Errorf("Clean.Workers = %d, want %d", cfg.Clean.Workers, 1)
	}
	if cfg.Split.ScanRows != 10 {
		t.Errorf("Split.ScanRows = %d, want %d", cfg.Split.ScanRows, 10)
	}
	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("Server.Addr() = %q, want %q", cfg.Server.Addr(), "0.0.0.0:8080")
	}
	if cfg.Server.MaxUploadSize != 33554432 {
		t.Errorf("Server.MaxUploadSize = %d, want %d", cfg.Server.MaxUploadSize, 33554432)
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"JURYCLEAN_PORT":                "9090",
		"JURYCLEAN_USED_POLICY":         "derive",
		"JURYCLEAN_WORKERS":             "8",
		"JURYCLEAN_INPUT_DETECT_HEADER": "true",
		"JURYCLEAN_LOG_LEVEL":           "debug",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Clean.UsedPolicy != "derive" {
		t.Errorf("Clean.UsedPolicy = %q, want %q", cfg.Clean.UsedPolicy, "derive")
	}
	if cfg.Clean.Workers != 8 {
		t.Errorf("Clean.Workers = %d, want %d", cfg.Clean.Workers, 8)
	}
	if !cfg.Input.DetectHeader {
		t.Error("Input.DetectHeader = false, want true")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{"PORT": "3000", "LOG_FORMAT": "json"}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 3000)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoad_ProcessEnvironment(t *testing.T) {
	t.Setenv("JURYCLEAN_OUTPUT_FILE", "out/cleaned.csv")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output.File != "out/cleaned.csv" {
		t.Errorf("Output.File = %q, want %q", cfg.Output.File, "out/cleaned.csv")
	}
}

func TestLoad_Duration(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"JURYCLEAN_READ_TIMEOUT":  "45s",
		"JURYCLEAN_MAX_WAIT_TIME": "1m30s",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, 45*time.Second)
	}
	if cfg.Server.MaxWaitTime != 90*time.Second {
		t.Errorf("Server.MaxWaitTime = %v, want %v", cfg.Server.MaxWaitTime, 90*time.Second)
	}
}

func TestLoad_CommaSeparatedSlice(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"JURYCLEAN_TRUSTED_PROXIES": "10.0.0.0/8, 172.16.0.0/12 , ,192.168.0.0/16",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	want := []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}
	if len(cfg.Server.TrustedProxies) != len(want) {
		t.Fatalf("TrustedProxies = %v, want %v", cfg.Server.TrustedProxies, want)
	}
	for i := range want {
		if cfg.Server.TrustedProxies[i] != want[i] {
			t.Errorf("TrustedProxies[%d] = %q, want %q", i, cfg.Server.TrustedProxies[i], want[i])
		}
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		wantErr string
	}{
		{"bad integer", map[string]string{"JURYCLEAN_PORT": "eighty"}, "invalid integer"},
		{"bad duration", map[string]string{"JURYCLEAN_READ_TIMEOUT": "soon"}, "invalid duration"},
		{"bad boolean", map[string]string{"JURYCLEAN_OUTPUT_BOM": "maybe"}, "invalid boolean"},
		{"port out of range", map[string]string{"JURYCLEAN_PORT": "70000"}, "JURYCLEAN_PORT"},
		{"unknown policy", map[string]string{"JURYCLEAN_USED_POLICY": "guess"}, "JURYCLEAN_USED_POLICY"},
		{"unknown mode", map[string]string{"JURYCLEAN_MODE": "loose"}, "JURYCLEAN_MODE"},
		{"zero workers", map[string]string{"JURYCLEAN_WORKERS": "0"}, "JURYCLEAN_WORKERS"},
		{"bad precision", map[string]string{"JURYCLEAN_PRECISION": "-2"}, "JURYCLEAN_PRECISION"},
		{"bad log level", map[string]string{"JURYCLEAN_LOG_LEVEL": "loud"}, "JURYCLEAN_LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(env(tt.vars))
			if err == nil {
				t.Fatal("LoadFrom() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg, err := LoadFrom(env(nil))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	cfg.Clean.Workers = 0
	cfg.Server.MaxConcurrent = 0

	err = cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"JURYCLEAN_WORKERS", "JURYCLEAN_MAX_CONCURRENT"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestCleanConfigRuleSet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	src := "rules:\n  - target: case_number\n    match:\n      - {strategy: exact, pattern: Docket}\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	c := CleanConfig{Mode: "fold", RulesFile: path, UsedPolicy: "source", Precision: 2, Workers: 3}
	opts, err := c.Options(nil)
	if err != nil {
		t.Fatalf("Options() error = %v", err)
	}
	if opts.Rules.Mode != core.ModeFold {
		t.Errorf("Rules.Mode = %v, want fold", opts.Rules.Mode)
	}
	rule, _ := opts.Rules.Rule(core.TargetCaseNumber)
	if len(rule.Match) != 1 || rule.Match[0].Pattern != "Docket" {
		t.Errorf("case_number rule = %+v, want the file override", rule)
	}
	if opts.Policy != core.PolicySource || opts.Precision != 2 || opts.Workers != 3 {
		t.Errorf("Options() = %+v", opts)
	}

	c.RulesFile = filepath.Join(dir, "missing.yaml")
	if _, err := c.RuleSet(); err == nil {
		t.Error("RuleSet() expected error for missing file")
	}
}

func TestString(t *testing.T) {
	cfg, err := LoadFrom(env(nil))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	s := cfg.String()
	if !strings.Contains(s, `UsedPolicy: "flag"`) || !strings.Contains(s, `Addr: "0.0.0.0:8080"`) {
		t.Errorf("String() = %s", s)
	}
}
