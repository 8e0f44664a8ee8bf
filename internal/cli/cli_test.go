package cli

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmuoria/interview-invite-agent/internal/config"
	"github.com/fmuoria/interview-invite-agent/internal/directory"
	"github.com/fmuoria/interview-invite-agent/internal/logging"
)

func TestVersionCmd_Use(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "interview-invite version test-version-1.0.0")
}

func TestTemplateCmd_WritesWorkbook(t *testing.T) {
	out := filepath.Join(t.TempDir(), "candidates")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"template", out})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	}()

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "candidates.xlsx")

	dir, err := directory.Load(out+".xlsx", logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, len(directory.SampleRecords()), dir.Len())
}

func TestTemplateCmd_RequiresPath(t *testing.T) {
	assert.Error(t, templateCmd.Args(templateCmd, nil))
	assert.NoError(t, templateCmd.Args(templateCmd, []string{"x.xlsx"}))
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"gui", "serve", "template", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfgPath := filepath.Join(dir, "config.json")
	cfg := config.DefaultConfig()
	cfg.Organization.Name = "From File"
	cfg.Mail.SenderEmail = "file@datafactz.com"
	require.NoError(t, cfg.SaveTo(cfgPath))

	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("sender_email=dotenv@datafactz.com\npassword=app-password\nORG_NAME=From Dotenv\n"), 0600))

	environ := config.MapLookup(map[string]string{"ORG_NAME": "From Env"})

	got, path, err := loadConfig(cfgPath, envPath, environ)
	require.NoError(t, err)
	assert.Equal(t, cfgPath, path)
	assert.Equal(t, "From Env", got.Organization.Name)
	assert.Equal(t, "dotenv@datafactz.com", got.Mail.SenderEmail)
	assert.Equal(t, "app-password", got.Mail.SenderPassword)
}

func TestLoadConfig_MissingFilesUseDefaults(t *testing.T) {
	dir := t.TempDir()

	got, _, err := loadConfig(filepath.Join(dir, "nope.json"), filepath.Join(dir, "nope.env"), config.MapLookup(nil))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), got)
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, "127.0.0.1:0", http.NotFoundHandler(), logging.Discard())
	}()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}

func TestServe_ListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	err = serve(context.Background(), ln.Addr().String(), http.NotFoundHandler(), logging.Discard())
	assert.Error(t, err)
}
