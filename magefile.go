//go:build mage

package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	modulePath = "github.com/dkoosis/tapmonkey"
	binPath    = "./bin/tapmonkey"
)

// Default target - build the binary
var Default = Build

// Build builds the tapmonkey binary
func Build() error {
	date := time.Now().UTC().Format(time.RFC3339)
	ldflags := fmt.Sprintf("-s -w -X '%[1]s/internal/version.Version=%[2]s' -X '%[1]s/internal/version.CommitHash=%[3]s' -X '%[1]s/internal/version.BuildDate=%[4]s'",
		modulePath, gitVersion(), gitCommit(), date)

	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", binPath, "./cmd/tapmonkey"); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	fmt.Println("Built:", binPath)
	return nil
}

// Install installs tapmonkey into GOBIN
func Install() error {
	return sh.RunV("go", "install", "./cmd/tapmonkey")
}

// Clean removes build artifacts
func Clean() error {
	if err := sh.Rm("./bin"); err != nil {
		return err
	}
	return sh.Run("go", "clean", "-testcache")
}

// QA runs formatting, vet, lint and the race-enabled test suite
func QA() {
	mg.SerialDeps(Lint.Format, Lint.Vet, Lint.Golangci, Test.Race, Build)
}

// Lint namespace for linting commands
type Lint mg.Namespace

// All runs all linters
func (Lint) All() error {
	var errs []error
	for _, fn := range []func() error{Lint{}.Format, Lint{}.Vet, Lint{}.Golangci} {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Format checks code formatting
func (Lint) Format() error {
	out, err := sh.Output("gofmt", "-l", ".")
	if err != nil {
		return err
	}
	if out != "" {
		return fmt.Errorf("files need gofmt:\n%s", out)
	}
	return nil
}

// Vet runs go vet
func (Lint) Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Golangci runs golangci-lint, skipping when it is not installed
func (Lint) Golangci() error {
	if _, err := exec.LookPath("golangci-lint"); err != nil {
		fmt.Fprintln(os.Stderr, "golangci-lint not found (install: go install github.com/golangci/golangci-lint/cmd/golangci-lint@latest)")
		return nil
	}
	return sh.RunV("golangci-lint", "run", "--timeout=5m", "./...")
}

// Test namespace for testing commands
type Test mg.Namespace

// All runs all tests
func (Test) All() error {
	return sh.RunV("go", "test", "./...")
}

// Coverage runs tests with coverage
func (Test) Coverage() error {
	if err := sh.RunV("go", "test", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-func=coverage.out")
}

// Race runs tests with race detector
func (Test) Race() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Demo pipes a sample TAP stream through a freshly built binary
func (Test) Demo() error {
	mg.Deps(Build)
	sample := strings.Join([]string{
		"TAP version 13",
		"# math",
		"ok 1 adds",
		"not ok 2 subtracts",
		"  ---",
		"    operator: equal",
		"    expected: 1",
		"    actual:   2",
		"  ...",
		"1..2",
	}, "\n") + "\n"
	cmd := exec.Command(binPath)
	cmd.Stdin = strings.NewReader(sample)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func gitVersion() string {
	out, err := sh.Output("git", "describe", "--tags", "--always", "--dirty", "--match=v*")
	if err != nil {
		return "dev"
	}
	return strings.TrimSpace(out)
}

func gitCommit() string {
	out, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(out)
}
