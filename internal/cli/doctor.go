package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/wxlim/moodlit/internal/keyring"
	"github.com/wxlim/moodlit/internal/sgtime"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false

	// Check 1: local state store reachable
	if err := checkStateStore(ctx); err != nil {
		fmt.Printf("❌ State store reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ State store reachable: OK (%s)\n", ctx.State.Path())
	}

	// Check 2: cookie storage (warning only; the file fallback still works)
	if keyring.IsAvailable() {
		fmt.Printf("✓ OS keyring: OK\n")
	} else {
		fmt.Printf("⚠ OS keyring: WARNING\n")
		fmt.Printf("   keyring unavailable, session cookie falls back to a file\n")
	}

	// Check 3: backend reachable
	if err := checkBackend(ctx); err != nil {
		fmt.Printf("❌ Backend reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Backend reachable: OK (%s)\n", ctx.Config.APIBaseURL)
	}

	// Check 4: clock sanity
	if err := checkClock(); err != nil {
		fmt.Printf("❌ Clock: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Clock: OK (today is %s in SG)\n", sgtime.TodayKey(nil))
	}

	// Check 5: duplicate instance (warning only)
	if pid, found := findOtherInstance(); found {
		fmt.Printf("⚠ Single instance: WARNING\n")
		fmt.Printf("   another moodlit process is running (PID %d); concurrent habit saves may race\n", pid)
	} else {
		fmt.Printf("✓ Single instance: OK\n")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkStateStore(ctx *Context) error {
	if err := ctx.State.Load(); err != nil {
		return fmt.Errorf("failed to load state store: %w", err)
	}
	if _, err := ctx.State.Session(); err != nil {
		return fmt.Errorf("failed to read session flags: %w", err)
	}
	return nil
}

func checkBackend(ctx *Context) error {
	callCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return ctx.API.Ping(callCtx)
}

func checkClock() error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

// findOtherInstance scans the process table for a second moodlit binary.
func findOtherInstance() (int, bool) {
	procs, err := ps.Processes()
	if err != nil {
		return 0, false
	}
	self := os.Getpid()
	for _, p := range procs {
		if p.Pid() == self {
			continue
		}
		if strings.HasPrefix(p.Executable(), "moodlit") {
			return p.Pid(), true
		}
	}
	return 0, false
}
