package main

import (
	"bytes"
	"strings"
	"testing"

	"playtrack/internal/config"
	"playtrack/internal/development"
	"playtrack/internal/models"
	"playtrack/internal/repository"
	"playtrack/internal/service"
)

func TestPrintSummaryListsOnlyProblemRecords(t *testing.T) {
	summary := &service.CheckSummary{
		Checked:  3,
		Drifted:  1,
		Repaired: 0,
		Failed:   1,
		Results: []service.CheckResult{
			{Key: repository.RecordKey{ChildID: "child-ok", Category: models.CategoryLanguage}},
			{
				Key:     repository.RecordKey{ChildID: "child-drift", Category: models.CategoryCognitive},
				Report:  development.Report{StoredAge: 7.5, PlayDataAge: 6},
				Drifted: true,
			},
			{Key: repository.RecordKey{ChildID: "child-bad", Category: models.CategorySocial}, Err: "invalid achievement state"},
		},
	}

	var buf bytes.Buffer
	printSummary(&buf, summary)
	out := buf.String()

	if strings.Contains(out, "child-ok") {
		t.Errorf("consistent records should not be listed:\n%s", out)
	}
	for _, want := range []string{"child-drift", "drift", "7.50", "6.00", "child-bad", "error: invalid achievement state", "CHECKED 3", "FAILED 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestConfigPathPrefersFlag(t *testing.T) {
	defer func(orig string) { cfgFile = orig }(cfgFile)

	cfgFile = "/etc/playtrack.yaml"
	path, err := configPath()
	if err != nil {
		t.Fatalf("configPath() error = %v", err)
	}
	if path != "/etc/playtrack.yaml" {
		t.Errorf("configPath() = %q", path)
	}

	cfgFile = ""
	path, err = configPath()
	if err != nil {
		t.Fatalf("configPath() error = %v", err)
	}
	if !strings.HasSuffix(path, ".playtrack.yaml") {
		t.Errorf("configPath() = %q, want default under home", path)
	}
}

func TestUsesFileLockFollowsDialect(t *testing.T) {
	tests := []struct {
		databaseType string
		want         bool
		wantErr      bool
	}{
		{databaseType: "", want: true},
		{databaseType: "sqlite", want: true},
		{databaseType: "SQLite", want: true},
		{databaseType: "sqlite3", want: true},
		{databaseType: "postgres", want: false},
		{databaseType: "MySQL", want: false},
		{databaseType: "oracle", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.databaseType, func(t *testing.T) {
			got, err := usesFileLock(&config.Config{DatabaseType: tt.databaseType, DatabasePath: "./playtrack.db"})
			if (err != nil) != tt.wantErr {
				t.Fatalf("usesFileLock() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("usesFileLock() = %v, want %v", got, tt.want)
			}
		})
	}
}
