//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets.
type Test mg.Namespace

// All runs all tests verbosely.
func (Test) All() error {
	return sh.RunV(binGo, "test", "-v", "./...")
}

// Unit runs all tests quietly.
func (Test) Unit() error {
	return sh.RunV(binGo, "test", "./...")
}

// Race runs all tests with the race detector.
func (Test) Race() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// Cover runs all tests and writes a coverage profile.
func (Test) Cover() error {
	if err := sh.RunV(binGo, "test", "-coverprofile="+coverFile, "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func="+coverFile)
}

// Smoke builds the binary and drives one create/update/delete cycle
// against a temporary config and data directory.
func (Test) Smoke() error {
	mg.Deps(Build)

	tmp, err := os.MkdirTemp("", "todos-smoke-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	bin, err := filepath.Abs(binaryPath())
	if err != nil {
		return err
	}
	base := []string{
		"--config-dir", filepath.Join(tmp, "config"),
		"--data-dir", filepath.Join(tmp, "data"),
	}
	run := func(args ...string) (string, error) {
		return sh.Output(bin, append(base, args...)...)
	}

	steps := []struct {
		args []string
		want string
	}{
		{[]string{"init"}, "Store initialized"},
		{[]string{"create", "smoke", "test"}, "Created todo 1"},
		{[]string{"done", "1"}, "Updated todo 1"},
		{[]string{"--json", "get", "1"}, `"status": true`},
		{[]string{"next-id"}, "2"},
		{[]string{"delete", "1"}, "Deleted todo 1"},
	}
	for _, step := range steps {
		out, err := run(step.args...)
		if err != nil {
			return fmt.Errorf("todos %s: %w", strings.Join(step.args, " "), err)
		}
		if !strings.Contains(out, step.want) {
			return fmt.Errorf("todos %s: output %q does not contain %q", strings.Join(step.args, " "), out, step.want)
		}
	}

	if _, err := run("get", "1"); err == nil {
		return fmt.Errorf("todos get 1: expected failure after delete")
	}
	fmt.Println("smoke test passed")
	return nil
}
