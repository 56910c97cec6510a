package translate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bestony/mintranslate/internal/apperr"
	"github.com/bestony/mintranslate/internal/domain"
	"github.com/bestony/mintranslate/internal/ports"
	"github.com/bestony/mintranslate/internal/state"
)

const (
	testDebounce = 20 * time.Millisecond
	waitTimeout  = 2 * time.Second
	pollEvery    = 2 * time.Millisecond
)

type stubHistory struct {
	mu      sync.Mutex
	records []*domain.HistoryRecord
	err     error
}

func (h *stubHistory) Insert(ctx context.Context, rec *domain.HistoryRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	h.records = append(h.records, rec)
	return nil
}

func (h *stubHistory) List(ctx context.Context, limit, offset int) ([]*domain.HistoryRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*domain.HistoryRecord(nil), h.records...), nil
}

func (h *stubHistory) Count(ctx context.Context) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records), nil
}

func (h *stubHistory) Delete(ctx context.Context, id string) error { return nil }
func (h *stubHistory) Clear(ctx context.Context) error             { return nil }

func (h *stubHistory) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}

// stubClient emits its chunks (each one the accumulated text so far) and
// optionally a terminal error. A non-nil release channel holds the stream
// back until the test closes it.
type stubClient struct {
	chunks  []string
	err     error
	release chan struct{}

	mu      sync.Mutex
	lastReq ports.ChatRequest
}

func (c *stubClient) Stream(ctx context.Context, req ports.ChatRequest) (<-chan ports.StreamChunk, error) {
	c.mu.Lock()
	c.lastReq = req
	c.mu.Unlock()

	out := make(chan ports.StreamChunk)
	go func() {
		defer close(out)
		if c.release != nil {
			select {
			case <-c.release:
			case <-ctx.Done():
				return
			}
		}
		for _, text := range c.chunks {
			select {
			case out <- ports.StreamChunk{Content: text}:
			case <-ctx.Done():
				return
			}
		}
		if c.err != nil {
			select {
			case out <- ports.StreamChunk{Err: c.err}:
			case <-ctx.Done():
			}
		}
	}()
	return out, nil
}

func (c *stubClient) request() ports.ChatRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastReq
}

// stubBuilder hands out clients in order, repeating the last one.
type stubBuilder struct {
	mu      sync.Mutex
	clients []ports.ChatClient
	err     error
	calls   int
}

func (b *stubBuilder) build(p *domain.Provider) (ports.ChatClient, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	i := b.calls - 1
	if i >= len(b.clients) {
		i = len(b.clients) - 1
	}
	return b.clients[i], nil
}

func (b *stubBuilder) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func testProvider() domain.Provider {
	return domain.Provider{
		ID:     "p1",
		Type:   domain.ProviderOpenAI,
		Name:   "main",
		Model:  "gpt-4.1-mini",
		APIKey: "sk-test",
	}
}

func newTestEnv(t *testing.T, b *stubBuilder) (*state.Store, *stubHistory, *Orchestrator) {
	t.Helper()
	store := state.NewStore("translate precisely")
	p := testProvider()
	store.Patch(func(st *state.TranslateState) {
		st.Providers = []domain.Provider{p}
		st.DefaultProviderID = p.ID
		st.LeftLang = domain.LangEnglish
		st.RightLang = domain.LangFrench
	})
	hist := &stubHistory{}
	o := NewOrchestrator(Deps{Store: store, History: hist, BuildClient: b.build}, WithDebounce(testDebounce))
	o.Start()
	t.Cleanup(o.Stop)
	return store, hist, o
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, cond, waitTimeout, pollEvery, msg)
}

func TestDebouncedInputTranslates(t *testing.T) {
	client := &stubClient{chunks: []string{"Bon", "Bonjour"}}
	b := &stubBuilder{clients: []ports.ChatClient{client}}
	store, hist, _ := newTestEnv(t, b)

	store.SetLeftText("h")
	store.SetLeftText("hello")

	waitFor(t, func() bool { return store.State().RightText == "Bonjour" }, "translation never landed")
	waitFor(t, func() bool { return !store.State().IsTranslating }, "translating flag never cleared")

	// Retyping within the debounce window coalesced into one request.
	assert.Equal(t, 1, b.callCount())

	req := client.request()
	assert.Equal(t, "gpt-4.1-mini", req.Model)
	assert.Equal(t, "translate precisely", req.System)
	assert.Contains(t, req.User, "hello")
	assert.Contains(t, req.User, `"English"`)
	assert.Contains(t, req.User, `"French"`)

	waitFor(t, func() bool { return hist.len() == 1 }, "history record not inserted")
	recs, _ := hist.List(context.Background(), 0, 0)
	rec := recs[0]
	assert.Equal(t, "hello", rec.SourceText)
	assert.Equal(t, "Bonjour", rec.TranslatedText)
	assert.Equal(t, domain.LangEnglish, rec.SourceLang)
	assert.Equal(t, domain.LangFrench, rec.TargetLang)
	assert.NotEmpty(t, rec.ID)
	assert.NotZero(t, rec.CreatedAt)
}

func TestManualTriggerSkipsDebounce(t *testing.T) {
	client := &stubClient{chunks: []string{"Salut"}}
	b := &stubBuilder{clients: []ports.ChatClient{client}}
	store, _, _ := newTestEnv(t, b)

	store.SetLeftText("hi")
	store.TriggerTranslateNow()

	waitFor(t, func() bool { return store.State().RightText == "Salut" }, "manual trigger did not translate")
}

func TestStaleResultDiscarded(t *testing.T) {
	slow := &stubClient{chunks: []string{"première"}, release: make(chan struct{})}
	fast := &stubClient{chunks: []string{"deuxième"}}
	b := &stubBuilder{clients: []ports.ChatClient{slow, fast}}
	store, hist, _ := newTestEnv(t, b)

	store.SetLeftText("first")
	store.TriggerTranslateNow()
	waitFor(t, func() bool { return store.State().IsTranslating }, "first request never started")

	store.SetLeftText("second")
	store.TriggerTranslateNow()
	waitFor(t, func() bool { return store.State().RightText == "deuxième" }, "second result never landed")
	waitFor(t, func() bool { return !store.State().IsTranslating }, "translating flag never cleared")

	// Let the superseded request resolve; its outcome must be dropped.
	close(slow.release)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, "deuxième", store.State().RightText)
	assert.Equal(t, "", store.State().TranslateError)
	assert.Equal(t, 1, hist.len())
}

func TestBlankCommittedInputClearsOutput(t *testing.T) {
	client := &stubClient{chunks: []string{"Bonjour"}}
	b := &stubBuilder{clients: []ports.ChatClient{client}}
	store, _, _ := newTestEnv(t, b)

	store.SetLeftText("hello")
	store.TriggerTranslateNow()
	waitFor(t, func() bool { return store.State().RightText == "Bonjour" }, "initial translation missing")

	store.SetLeftText("   ")
	store.TriggerTranslateNow()
	waitFor(t, func() bool { return store.State().RightText == "" }, "output was not cleared")

	assert.Equal(t, 1, b.callCount())
	assert.False(t, store.State().IsTranslating)
}

func TestEqualLanguagesPassthrough(t *testing.T) {
	b := &stubBuilder{clients: []ports.ChatClient{&stubClient{}}}
	store, hist, _ := newTestEnv(t, b)

	store.SetLeftText("same text")
	store.Patch(func(st *state.TranslateState) {
		st.RightLang = st.LeftLang
		st.DebouncedLeftText = st.LeftText
	})

	waitFor(t, func() bool { return store.State().RightText == "same text" }, "passthrough did not mirror input")
	assert.Equal(t, 0, b.callCount())
	assert.Equal(t, 0, hist.len())
}

func TestMissingCredentialsBlocksRequest(t *testing.T) {
	b := &stubBuilder{clients: []ports.ChatClient{&stubClient{chunks: []string{"x"}}}}
	store, _, _ := newTestEnv(t, b)

	store.Patch(func(st *state.TranslateState) {
		p := st.Providers[0]
		p.APIKey = ""
		st.Providers = []domain.Provider{p}
		st.TranslateError = "errors.aiRequestFailed"
	})
	store.SetLeftText("hello")
	store.TriggerTranslateNow()

	waitFor(t, func() bool { return store.State().TranslateError == "" }, "stale error not cleared")
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, b.callCount())
	assert.False(t, store.State().IsTranslating)
}

func TestKeylessProviderNeedsNoCredentials(t *testing.T) {
	client := &stubClient{chunks: []string{"local"}}
	b := &stubBuilder{clients: []ports.ChatClient{client}}
	store, _, _ := newTestEnv(t, b)

	store.Patch(func(st *state.TranslateState) {
		p := st.Providers[0]
		p.Type = domain.ProviderOllama
		p.APIKey = ""
		st.Providers = []domain.Provider{p}
	})
	store.SetLeftText("hello")
	store.TriggerTranslateNow()

	waitFor(t, func() bool { return store.State().RightText == "local" }, "keyless provider did not translate")
}

func TestNoDefaultProviderIsIdle(t *testing.T) {
	b := &stubBuilder{clients: []ports.ChatClient{&stubClient{}}}
	store, _, _ := newTestEnv(t, b)

	store.Patch(func(st *state.TranslateState) { st.DefaultProviderID = "" })
	store.SetLeftText("hello")
	store.TriggerTranslateNow()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, b.callCount())
	assert.False(t, store.State().IsTranslating)
}

func TestStreamErrorSurfaces(t *testing.T) {
	client := &stubClient{err: apperr.AIRequestFailed}
	b := &stubBuilder{clients: []ports.ChatClient{client}}
	store, hist, _ := newTestEnv(t, b)

	store.SetLeftText("hello")
	store.TriggerTranslateNow()

	waitFor(t, func() bool { return store.State().TranslateError == string(apperr.AIRequestFailed) },
		"stream error not surfaced")
	waitFor(t, func() bool { return !store.State().IsTranslating }, "translating flag never cleared")
	assert.Equal(t, "", store.State().RightText)
	assert.Equal(t, 0, hist.len())
}

func TestClientBuildErrorSurfaces(t *testing.T) {
	b := &stubBuilder{err: apperr.OpenAIAPIKeyMissing, clients: []ports.ChatClient{&stubClient{}}}
	store, _, _ := newTestEnv(t, b)

	store.SetLeftText("hello")
	store.TriggerTranslateNow()

	waitFor(t, func() bool { return store.State().TranslateError == string(apperr.OpenAIAPIKeyMissing) },
		"build error not surfaced")
}

func TestHistoryFailureDoesNotBlockResult(t *testing.T) {
	client := &stubClient{chunks: []string{"Bonjour"}}
	b := &stubBuilder{clients: []ports.ChatClient{client}}
	store, hist, _ := newTestEnv(t, b)
	hist.err = context.DeadlineExceeded

	store.SetLeftText("hello")
	store.TriggerTranslateNow()

	waitFor(t, func() bool { return store.State().RightText == "Bonjour" }, "result blocked by history failure")
	assert.Equal(t, "", store.State().TranslateError)
}

func TestStopAbortsInFlight(t *testing.T) {
	blocked := &stubClient{chunks: []string{"late"}, release: make(chan struct{})}
	b := &stubBuilder{clients: []ports.ChatClient{blocked}}
	store, _, o := newTestEnv(t, b)

	store.SetLeftText("hello")
	store.TriggerTranslateNow()
	waitFor(t, func() bool { return store.State().IsTranslating }, "request never started")

	o.Stop()
	assert.False(t, store.State().IsTranslating)

	// A resolution arriving after teardown must not write anything.
	close(blocked.release)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, "", store.State().RightText)
	assert.Equal(t, "", store.State().TranslateError)
}

func TestStopIsIdempotent(t *testing.T) {
	b := &stubBuilder{clients: []ports.ChatClient{&stubClient{}}}
	_, _, o := newTestEnv(t, b)

	o.Stop()
	o.Stop()
}

func TestLanguageChangeRetranslates(t *testing.T) {
	first := &stubClient{chunks: []string{"Bonjour"}}
	second := &stubClient{chunks: []string{"こんにちは"}}
	b := &stubBuilder{clients: []ports.ChatClient{first, second}}
	store, _, _ := newTestEnv(t, b)

	store.SetLeftText("hello")
	store.TriggerTranslateNow()
	waitFor(t, func() bool { return store.State().RightText == "Bonjour" }, "first translation missing")

	store.Patch(func(st *state.TranslateState) { st.RightLang = domain.LangJapanese })
	waitFor(t, func() bool { return store.State().RightText == "こんにちは" }, "language change did not retranslate")
	assert.Equal(t, 2, b.callCount())
}
