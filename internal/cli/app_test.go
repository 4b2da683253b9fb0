package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reikningar/internal/config"
	"reikningar/internal/log"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seed_bills.txt"),
		[]byte("Vodafone;01.02.2024;4990;true\n"), 0o644))
	return &config.Config{
		Port:              "8081",
		DataBackend:       config.BackendMemory,
		DataDirectory:     dir,
		AssistantBackend:  config.AssistantOllama,
		OllamaURL:         "http://127.0.0.1:1/api/generate",
		OllamaModel:       "test",
		AssistantTimeout:  time.Second,
		AssistantMaxTurns: 4,
		ContextMaxRecords: 10,
	}
}

func TestNewAppLoadsSnapshot(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(t), log.Discard())
	require.NoError(t, err)
	defer app.Close()

	snap := app.State.Snapshot()
	require.Len(t, snap.Bills, 1)
	assert.Equal(t, "Vodafone", snap.Bills[0].Creditor)
	require.NotNil(t, app.Assistant)
	assert.Equal(t, 4, app.Assistant.MaxTurns)
	assert.Equal(t, 10, app.Assistant.MaxRecords)
}

func TestNewAppWithoutGeminiKeyDisablesAssistant(t *testing.T) {
	cfg := testConfig(t)
	cfg.AssistantBackend = config.AssistantGemini
	cfg.GeminiModel = "gemini-2.5-flash"

	app, err := NewApp(context.Background(), cfg, log.Discard())
	require.NoError(t, err)
	defer app.Close()
	assert.Nil(t, app.Assistant)
}

func TestQueueDisabled(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(t), log.Discard())
	require.NoError(t, err)
	defer app.Close()

	_, err = app.Queue()
	assert.ErrorIs(t, err, ErrQueueDisabled)
}

func TestSheetSourceRequiresConfiguration(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(t), log.Discard())
	require.NoError(t, err)
	defer app.Close()

	_, err = app.SheetSource(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrSheetsNotConfigured)

	_, err = app.SheetSource(context.Background(), "1AbCdEf", "Yfirlit")
	assert.ErrorIs(t, err, ErrSheetsNotConfigured, "an id alone still needs credentials")
}

func TestNewCompleterUnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.AssistantBackend = "gpt"
	_, err := NewCompleter(context.Background(), cfg)
	assert.Error(t, err)
}

func TestLoadAndValidateConfigRejectsBadBackend(t *testing.T) {
	t.Setenv("DATA_BACKEND", "postgres")
	_, err := LoadAndValidateConfig(log.Discard())
	assert.ErrorContains(t, err, "invalid data backend")
}
