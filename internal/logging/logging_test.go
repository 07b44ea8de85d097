package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetLevel(t *testing.T) {
	original := Log.GetLevel()
	defer Log.SetLevel(original)

	tests := []struct {
		name    string
		input   string
		want    logrus.Level
		wantErr bool
	}{
		{name: "debug", input: "debug", want: logrus.DebugLevel},
		{name: "empty defaults to info", input: "", want: logrus.InfoLevel},
		{name: "case insensitive", input: "WARN", want: logrus.WarnLevel},
		{name: "warning alias", input: "warning", want: logrus.WarnLevel},
		{name: "error", input: "error", want: logrus.ErrorLevel},
		{name: "unknown", input: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SetLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SetLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && Log.GetLevel() != tt.want {
				t.Errorf("level = %v, want %v", Log.GetLevel(), tt.want)
			}
		})
	}
}
