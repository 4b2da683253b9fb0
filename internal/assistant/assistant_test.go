package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reikningar/internal/core"
)

func TestBuildContext(t *testing.T) {
	bills := []core.Bill{
		core.NewBill("billing@on.is", "05.01.2024", decimal.NewNullDecimal(decimal.RequireFromString("12345.99")), true),
		core.NewBill("Unknown", "", decimal.NullDecimal{}, false),
	}
	cat := "Matvara"
	txs := []core.Transaction{
		core.NewTransaction("2024-01-07", "BONUS", decimal.RequireFromString("-1234.5"), decimal.NullDecimal{}, &cat),
	}

	got := BuildContext(bills, txs, 0)
	want := strings.Join([]string{
		"Financial Data Summary:",
		"Bills:",
		"- billing@on.is: 12345 kr on 05.01.2024",
		"- Unknown: unknown kr on unknown",
		"",
		"Transactions:",
		"- BONUS: -1234 kr on 2024-01-07",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestBuildContext_Empty(t *testing.T) {
	assert.Equal(t, "Financial Data Summary:\nNo bills available.\nNo transactions available.", BuildContext(nil, nil, 10))
}

func TestBuildContext_Bounded(t *testing.T) {
	var bills []core.Bill
	for i := 1; i <= 5; i++ {
		bills = append(bills, core.NewBill(fmt.Sprintf("c%d", i), "01.01.2024", decimal.NewNullDecimal(decimal.NewFromInt(int64(i))), false))
	}
	got := BuildContext(bills, nil, 2)
	assert.Contains(t, got, "- c2: 2 kr on 01.01.2024")
	assert.NotContains(t, got, "- c3:")
	assert.Contains(t, got, "... and 3 more")
}

func TestSplit(t *testing.T) {
	turns := make([]Turn, 15)
	older, recent := Split(turns, 12)
	assert.Len(t, older, 3)
	assert.Len(t, recent, 12)

	older, recent = Split(turns[:12], 12)
	assert.Empty(t, older)
	assert.Len(t, recent, 12)
}

func TestSynopsis(t *testing.T) {
	assert.Equal(t, "User asked about: rent?", Synopsis(Turn{Role: RoleUser, Content: "rent?"}))

	long := strings.Repeat("á", 150)
	got := Synopsis(Turn{Role: RoleAssistant, Content: long})
	assert.Equal(t, "Assistant replied briefly: "+strings.Repeat("á", 100)+"...", got)

	assert.Equal(t, "Assistant replied briefly: ok...", Synopsis(Turn{Role: RoleAssistant, Content: "ok"}))
}

func TestBuildPrompt(t *testing.T) {
	var turns []Turn
	for i := 0; i < 14; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		turns = append(turns, Turn{Role: role, Content: fmt.Sprintf("m%d", i)})
	}

	got := BuildPrompt("sys", "DATA", turns, 12)
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 1+2+1+12)
	assert.Equal(t, "System: sys", lines[0])
	assert.Equal(t, "", lines[1])
	assert.Equal(t, "DATA", lines[2])
	assert.Equal(t, "(Summary of earlier conversation): User asked about: m0 | Assistant replied briefly: m1...", lines[3])
	assert.Equal(t, "User: m2", lines[4])
	assert.Equal(t, "Assistant: m13", lines[15])
}

func TestBuildPrompt_NoSummaryWithinLimit(t *testing.T) {
	got := BuildPrompt("", "", []Turn{{Role: RoleUser, Content: "hi"}}, 12)
	assert.Equal(t, "System: "+SystemPrompt+"\nUser: hi", got)
}

func TestOllamaCompleter_Streams(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/x-ndjson")
		fmt.Fprintln(w, `{"response":"Hall","done":false}`)
		fmt.Fprintln(w, ``)
		fmt.Fprintln(w, `{"response":"ó!","done":false}`)
		fmt.Fprintln(w, `{"response":"","done":true}`)
	}))
	defer srv.Close()

	c := NewOllamaCompleter(srv.URL, "", time.Second*5)
	got, err := c.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "Halló!", got)
	assert.Contains(t, gotBody, `"model":"gemma3:12b"`)
	assert.Contains(t, gotBody, `"prompt":"prompt"`)
}

func TestOllamaCompleter_Failures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		},
		"garbage": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintln(w, `not json`)
		},
		"error field": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintln(w, `{"error":"out of memory"}`)
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()
			_, err := NewOllamaCompleter(srv.URL, "m", 5*time.Second).Complete(context.Background(), "p")
			assert.ErrorIs(t, err, core.ErrExternalService)
		})
	}
}

func TestOllamaCompleter_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	_, err := NewOllamaCompleter(url, "m", time.Second).Complete(context.Background(), "p")
	assert.ErrorIs(t, err, core.ErrExternalService)
}

func TestAssistantAsk(t *testing.T) {
	var prompts []string
	a := New(CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		prompts = append(prompts, prompt)
		return "about 100 kr", nil
	}), nil)

	bills := []core.Bill{core.NewBill("A", "01.01.2024", decimal.NewNullDecimal(decimal.NewFromInt(100)), false)}
	reply, err := a.Ask(context.Background(), "  how much for A? ", bills, nil)
	require.NoError(t, err)
	assert.Equal(t, "about 100 kr", reply)

	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "- A: 100 kr on 01.01.2024")
	assert.True(t, strings.HasSuffix(prompts[0], "User: how much for A?"))

	turns := a.History.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, RoleUser, turns[0].Role)
	assert.Equal(t, Turn{Role: RoleAssistant, Content: "about 100 kr"}, turns[1])
}

func TestAssistantAsk_FailureRollsBack(t *testing.T) {
	boom := fmt.Errorf("%w: down", core.ErrExternalService)
	a := New(CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", boom
	}), nil)

	_, err := a.Ask(context.Background(), "q", nil, nil)
	assert.True(t, errors.Is(err, core.ErrExternalService))
	assert.Equal(t, 0, a.History.Len())
}

func TestAssistantAsk_EmptyQuestion(t *testing.T) {
	a := New(CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		t.Fatal("completer must not be called")
		return "", nil
	}), nil)
	_, err := a.Ask(context.Background(), "   ", nil, nil)
	assert.ErrorIs(t, err, core.ErrMalformedInput)
}

func TestAssistantAsk_SummarizesOldTurns(t *testing.T) {
	var last string
	a := New(CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		last = prompt
		return "r", nil
	}), nil)
	a.MaxTurns = 4
	for i := 0; i < 3; i++ {
		_, err := a.Ask(context.Background(), fmt.Sprintf("q%d", i), nil, nil)
		require.NoError(t, err)
	}
	assert.Contains(t, last, "(Summary of earlier conversation): User asked about: q0")
	assert.NotContains(t, last, "User: q0")
	assert.Contains(t, last, "User: q1")
}
