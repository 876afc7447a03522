// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestBindFlags_AllTypes(t *testing.T) {
	type params struct {
		JSONOutput
		Name     string        `flag:"name" default:"patrol"`
		Force    bool          `flag:"force,f"`
		Ticks    int           `flag:"ticks" default:"3"`
		MinStep  float64       `flag:"min-step" default:"0.01"`
		Interval time.Duration `flag:"interval" default:"50ms"`
		Names    []string      `flag:"names"`
		ignored  string
	}
	var got params

	flagSet := FlagsFromParams("test", &got)
	if err := flagSet.Parse([]string{"--json", "-f", "--ticks=7", "--interval", "1s", "--names", "a,b"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if !got.OutputJSON {
		t.Error("embedded --json not bound")
	}
	if got.Name != "patrol" {
		t.Errorf("Name = %q, want default patrol", got.Name)
	}
	if !got.Force {
		t.Error("Force not set by -f")
	}
	if got.Ticks != 7 {
		t.Errorf("Ticks = %d, want 7", got.Ticks)
	}
	if got.MinStep != 0.01 {
		t.Errorf("MinStep = %v, want 0.01", got.MinStep)
	}
	if got.Interval != time.Second {
		t.Errorf("Interval = %v, want 1s", got.Interval)
	}
	if len(got.Names) != 2 || got.Names[0] != "a" || got.Names[1] != "b" {
		t.Errorf("Names = %v, want [a b]", got.Names)
	}
	if flagSet.Lookup("ignored") != nil {
		t.Error("untagged field was bound")
	}
}

func TestBindFlags_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		params any
	}{
		{"not a pointer", struct{}{}},
		{"unsupported type", &struct {
			Count uint8 `flag:"count"`
		}{}},
		{"bad default", &struct {
			Ticks int `flag:"ticks" default:"many"`
		}{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := BindFlags(tt.params, pflag.NewFlagSet("test", pflag.ContinueOnError)); err == nil {
				t.Error("BindFlags succeeded, want an error")
			}
		})
	}
}
