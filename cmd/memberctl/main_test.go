package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"hash-password", "-cost", "4"}, strings.NewReader("s3cret-pass\n"), &out, &errOut)
	if code != 0 {
		t.Fatalf("exit=%d stderr=%s", code, errOut.String())
	}
	hash := strings.TrimSpace(out.String())
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret-pass")); err != nil {
		t.Fatalf("hash does not verify: %v", err)
	}
	if cost, _ := bcrypt.Cost([]byte(hash)); cost != 4 {
		t.Fatalf("cost=%d, want 4", cost)
	}
}

func TestHashPassword_RequiresInput(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	if code := run(context.Background(), []string{"hash-password"}, strings.NewReader(""), &out, &errOut); code != 1 {
		t.Fatalf("exit=%d, want 1", code)
	}
	if !strings.Contains(errOut.String(), "password is required") {
		t.Fatalf("stderr=%q", errOut.String())
	}
}

func TestUnknownCommand(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	if code := run(context.Background(), []string{"frobnicate"}, strings.NewReader(""), &out, &errOut); code != 2 {
		t.Fatalf("exit=%d, want 2", code)
	}
}

func TestCreateMember(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "members.db"))
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("DEFAULT_MEMBERSHIP_TIER", "gold")

	args := []string{"create-member", "-username", "alice", "-email", "Alice@Example.com"}

	var out, errOut bytes.Buffer
	if code := run(context.Background(), args, strings.NewReader("correct horse\n"), &out, &errOut); code != 0 {
		t.Fatalf("exit=%d stderr=%s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "alice@example.com") {
		t.Fatalf("stdout=%q", out.String())
	}

	out.Reset()
	errOut.Reset()
	if code := run(context.Background(), args, strings.NewReader("correct horse\n"), &out, &errOut); code != 1 {
		t.Fatalf("duplicate exit=%d, want 1", code)
	}
	if !strings.Contains(errOut.String(), "already registered") {
		t.Fatalf("stderr=%q", errOut.String())
	}
}

func TestCreateMember_RefusesMemoryBackend(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("STORAGE_BACKEND", "memory")

	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"create-member", "-username", "alice", "-email", "a@example.com"}, strings.NewReader("correct horse\n"), &out, &errOut)
	if code != 1 {
		t.Fatalf("exit=%d, want 1", code)
	}
	if !strings.Contains(errOut.String(), "does not persist") {
		t.Fatalf("stderr=%q", errOut.String())
	}
}
