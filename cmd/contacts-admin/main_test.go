package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func useTempDatabase(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_FILE", filepath.Join(dir, "contacts.db"))
	t.Setenv("PEPPER_FILE", filepath.Join(dir, "pepper"))
}

// stubPasswords answers the password prompts in order.
func stubPasswords(t *testing.T, answers ...string) {
	t.Helper()
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func(int) ([]byte, error) {
		require.NotEmpty(t, answers, "unexpected password prompt")
		next := answers[0]
		answers = answers[1:]
		return []byte(next), nil
	}
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.Error(t, run(context.Background(), nil, &stdout, &stderr))
	require.Contains(t, stderr.String(), "bootstrap")

	require.Error(t, run(context.Background(), []string{"frobnicate"}, &stdout, &stderr))
}

func TestBootstrap_Generate(t *testing.T) {
	useTempDatabase(t)
	ctx := context.Background()

	var stdout, stderr bytes.Buffer
	err := run(ctx, []string{"bootstrap", "-email", "root@example.com", "-username", "root", "-generate"}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())
	require.Contains(t, stdout.String(), "created admin root@example.com")
	require.Contains(t, stdout.String(), "password: ")

	err = run(ctx, []string{"bootstrap", "-email", "other@example.com", "-generate"}, &stdout, &stderr)
	require.ErrorContains(t, err, "already has accounts")
}

func TestBootstrap_Prompt(t *testing.T) {
	useTempDatabase(t)

	stubPasswords(t, "correct horse battery", "correct horse battery")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"bootstrap", "-email", "root@example.com"}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())
	require.False(t, strings.Contains(stdout.String(), "password:"))
	require.Contains(t, stderr.String(), "Repeat password")
}

func TestBootstrap_PromptMismatch(t *testing.T) {
	useTempDatabase(t)

	stubPasswords(t, "correct horse battery", "something else")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"bootstrap", "-email", "root@example.com"}, &stdout, &stderr)
	require.ErrorIs(t, err, errPasswordMismatch)
}

func TestBootstrap_RequiresEmail(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"bootstrap", "-generate"}, &stdout, &stderr)
	require.ErrorContains(t, err, "-email")
}
