// Package translate runs the translation effects loop: it watches the
// session store, debounces raw input, and keeps at most one streaming
// request in flight, where only the most recently started request may write
// its outcome back into state.
package translate

import (
	"context"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/bestony/mintranslate/internal/apperr"
	"github.com/bestony/mintranslate/internal/domain"
	"github.com/bestony/mintranslate/internal/ports"
	"github.com/bestony/mintranslate/internal/state"
)

// DefaultDebounce is the delay between the last keystroke and the input
// commit that may start a translation.
const DefaultDebounce = 500 * time.Millisecond

const temperature = 0.2

// BuildClientFunc returns a streaming chat client for a provider record.
type BuildClientFunc func(*domain.Provider) (ports.ChatClient, error)

type Deps struct {
	Store       *state.Store
	History     ports.HistoryRepository
	BuildClient BuildClientFunc
}

type Orchestrator struct {
	d        Deps
	debounce time.Duration

	mu          sync.Mutex
	timer       *time.Timer
	unsubscribe func()

	reqs requestManager
}

type Option func(*Orchestrator)

// WithDebounce overrides the commit delay (tests shorten it).
func WithDebounce(d time.Duration) Option {
	return func(o *Orchestrator) { o.debounce = d }
}

func NewOrchestrator(d Deps, opts ...Option) *Orchestrator {
	o := &Orchestrator{d: d, debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start subscribes the effects loop to the store. Idempotent.
func (o *Orchestrator) Start() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.unsubscribe != nil {
		return
	}
	o.unsubscribe = o.d.Store.Subscribe(o.onStateChange)
}

// Stop tears the loop down: the pending debounce timer is cancelled and any
// in-flight request is aborted and marked permanently stale, so even a
// resolution that never observed the cancellation cannot touch state.
// Safe to call when not started.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.unsubscribe == nil {
		o.mu.Unlock()
		return
	}
	o.unsubscribe()
	o.unsubscribe = nil
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	o.mu.Unlock()

	o.reqs.Abort(true)
	o.d.Store.SetIsTranslating(false)
}

// translateInputsChanged reports whether anything a translation depends on
// differs between the two snapshots.
func translateInputsChanged(cur, prev state.TranslateState) bool {
	if cur.DefaultProviderID != prev.DefaultProviderID ||
		cur.SystemPrompt != prev.SystemPrompt ||
		cur.DebouncedLeftText != prev.DebouncedLeftText ||
		cur.LeftLang != prev.LeftLang ||
		cur.RightLang != prev.RightLang {
		return true
	}
	a, b := cur.ActiveProvider(), prev.ActiveProvider()
	switch {
	case a == nil && b == nil:
		return false
	case a == nil || b == nil:
		return true
	default:
		return *a != *b
	}
}

// onStateChange is the single decision pass, run once per state transition.
func (o *Orchestrator) onStateChange(cur, prev state.TranslateState) {
	if cur.LeftText != prev.LeftText {
		o.resetDebounce()
	}

	if !translateInputsChanged(cur, prev) {
		return
	}

	active := cur.ActiveProvider()
	if active == nil {
		o.reqs.Abort(true)
		o.d.Store.SetIsTranslating(false)
		o.d.Store.SetTranslateError("")
		return
	}
	if active.Type.RequiresAPIKey() && strings.TrimSpace(active.APIKey) == "" {
		o.reqs.Abort(true)
		o.d.Store.SetIsTranslating(false)
		o.d.Store.SetTranslateError("")
		return
	}

	committed := cur.DebouncedLeftText
	if strings.TrimSpace(committed) == "" {
		o.reqs.Abort(true)
		o.d.Store.SetIsTranslating(false)
		o.d.Store.SetTranslateError("")
		o.d.Store.SetRightText("")
		return
	}

	if cur.LeftLang == cur.RightLang {
		// Passthrough: no call, mirror the committed input.
		o.reqs.Abort(true)
		o.d.Store.SetIsTranslating(false)
		o.d.Store.SetTranslateError("")
		o.d.Store.SetRightText(committed)
		return
	}

	gen, ctx := o.reqs.Start()
	o.d.Store.SetIsTranslating(true)
	o.d.Store.SetTranslateError("")

	go o.run(ctx, gen, *active, committed, cur.LeftLang, cur.RightLang, cur.SystemPrompt)
}

func (o *Orchestrator) resetDebounce() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.unsubscribe == nil {
		return
	}
	if o.timer != nil {
		o.timer.Stop()
	}
	o.timer = time.AfterFunc(o.debounce, func() {
		o.d.Store.SetDebouncedLeftText(o.d.Store.State().LeftText)
	})
}

// run executes one translation attempt and applies its outcome unless the
// request went stale meanwhile.
func (o *Orchestrator) run(ctx context.Context, gen uint64, provider domain.Provider, text string, src, tgt domain.Lang, systemPrompt string) {
	translated, err := o.translate(ctx, provider, text, src, tgt, systemPrompt)

	if o.reqs.IsStale(gen, ctx) {
		return
	}
	if err != nil {
		o.d.Store.SetTranslateError(apperr.Message(err, apperr.TranslationFailed))
	} else {
		o.d.Store.SetRightText(translated)
		rec := &domain.HistoryRecord{
			ID:             domain.NewID(),
			CreatedAt:      time.Now().UnixMilli(),
			SourceLang:     src,
			TargetLang:     tgt,
			SourceText:     text,
			TranslatedText: translated,
		}
		hctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := o.d.History.Insert(hctx, rec); err != nil {
			log.WithError(err).Error("translate history: insert failed")
		}
		cancel()
	}

	// A newer request may have started while the outcome was applied; the
	// translating flag then belongs to it.
	if o.reqs.IsStale(gen, ctx) {
		return
	}
	o.reqs.ClearInFlight(gen)
	o.d.Store.SetIsTranslating(false)
}

// translate builds the provider client and drains its stream. Each chunk
// carries the accumulated text so far, so the buffer is replaced, not
// appended to.
func (o *Orchestrator) translate(ctx context.Context, provider domain.Provider, text string, src, tgt domain.Lang, systemPrompt string) (string, error) {
	client, err := o.d.BuildClient(&provider)
	if err != nil {
		return "", err
	}

	stream, err := client.Stream(ctx, ports.ChatRequest{
		Model:       provider.Model,
		System:      systemPrompt,
		User:        userPrompt(text, src, tgt),
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}

	var output string
	for chunk := range stream {
		if ctx.Err() != nil {
			return "", apperr.TranslationCanceled
		}
		if chunk.Err != nil {
			return "", chunk.Err
		}
		output = chunk.Content
	}
	if ctx.Err() != nil {
		return "", apperr.TranslationCanceled
	}
	return strings.TrimSpace(output), nil
}
