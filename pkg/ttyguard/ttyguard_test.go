package ttyguard

import "testing"

func TestShouldSuppress(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		envRobot bool
		want     bool
	}{
		{"interactive", []string{"--pole", "liberal"}, false, false},
		{"no args", nil, false, false},
		{"robot flag", []string{"--robot-top"}, false, true},
		{"single dash", []string{"-robot-summary"}, false, true},
		{"export with value", []string{"--export-report=-"}, false, true},
		{"version", []string{"--version"}, false, true},
		{"diagnostics", []string{"--base", "docs", "--diagnostics"}, false, true},
		{"save config", []string{"--save-config", "--base", "docs"}, false, true},
		{"env", nil, true, true},
		{"flag value is not a flag", []string{"--actor", "robot-x"}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldSuppress(tt.args, tt.envRobot); got != tt.want {
				t.Errorf("ShouldSuppress(%v, %v) = %v, want %v", tt.args, tt.envRobot, got, tt.want)
			}
		})
	}
}
