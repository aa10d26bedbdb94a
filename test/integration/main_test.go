//go:build integration
// +build integration

package integration

import (
	"fmt"
	"os"
	"testing"

	"github.com/ontariodoctor/backend/test/integration/framework"
)

func TestMain(m *testing.M) {
	fmt.Println("=== Building ontario-triage binary ===")
	if err := framework.BuildDaemon(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to build daemon: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("=== Binary built at: %s ===\n", framework.BinaryPath)

	code := m.Run()

	framework.Cleanup()
	os.Exit(code)
}
