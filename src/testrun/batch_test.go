package testrun

import (
	"context"
	"testing"
	"time"
)

func TestRunBatchCollectsAllResults(t *testing.T) {
	binDir := t.TempDir()
	writeTestScript(t, binDir, "tcp-echo", "exit 0")
	writeTestScript(t, binDir, "tcp-push-pop", "exit 7")
	writeTestScript(t, binDir, "udp-echo", "exit 0")
	r := &Runner{BinDir: binDir}

	invs := []Invocation{
		testInvocation("tcp-echo", RoleServer, 10*time.Second),
		testInvocation("tcp-push-pop", RoleServer, 10*time.Second),
		testInvocation("udp-echo", RoleServer, 10*time.Second),
	}

	results, err := RunBatch(context.Background(), r, invs, 1, false)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if Failed(results) != 1 {
		t.Errorf("failed = %d, want 1", Failed(results))
	}
}

func TestRunBatchFailFast(t *testing.T) {
	binDir := t.TempDir()
	writeTestScript(t, binDir, "tcp-echo", "exit 7")
	writeTestScript(t, binDir, "udp-echo", "sleep 0.2; exit 0")
	r := &Runner{BinDir: binDir}

	invs := []Invocation{
		testInvocation("tcp-echo", RoleServer, 10*time.Second),
		testInvocation("udp-echo", RoleServer, 10*time.Second),
		testInvocation("udp-echo", RoleServer, 10*time.Second),
		testInvocation("udp-echo", RoleServer, 10*time.Second),
	}

	results, err := RunBatch(context.Background(), r, invs, 1, true)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(results) == 0 || Failed(results) == 0 {
		t.Fatal("failing result not collected")
	}
	if len(results) == len(invs) {
		t.Error("fail-fast ran the whole batch anyway")
	}
}

func TestRunBatchParallelLimit(t *testing.T) {
	binDir := t.TempDir()
	writeTestScript(t, binDir, "tcp-echo", "sleep 0.3; exit 0")
	r := &Runner{BinDir: binDir}

	invs := []Invocation{
		testInvocation("tcp-echo", RoleServer, 10*time.Second),
		testInvocation("tcp-echo", RoleServer, 10*time.Second),
		testInvocation("tcp-echo", RoleServer, 10*time.Second),
		testInvocation("tcp-echo", RoleServer, 10*time.Second),
	}

	start := time.Now()
	results, err := RunBatch(context.Background(), r, invs, 4, false)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}
	// Four 300ms sleeps at width 4 finish well under the sequential 1.2s.
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("batch took %s, parallelism not effective", elapsed)
	}
}

func TestRunBatchInvalidInvocation(t *testing.T) {
	r := &Runner{BinDir: t.TempDir()}
	bad := testInvocation("", RoleServer, time.Second)

	if _, err := RunBatch(context.Background(), r, []Invocation{bad}, 1, false); err == nil {
		t.Error("invalid invocation did not surface as an error")
	}
}
