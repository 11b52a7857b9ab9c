package ai

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// Dispatcher is the single seam through which the service talks to any AI
// backend. One Send is one upstream request: no retry, no streaming, no
// session reuse across calls.
type Dispatcher interface {
	Send(ctx context.Context, provider, model, system, user string) (string, error)
}

type dispatcher struct {
	providers map[string]IProvider
	timeout   time.Duration
}

func NewDispatcher(providers map[string]IProvider, timeout time.Duration) Dispatcher {
	return &dispatcher{providers: providers, timeout: timeout}
}

// session scopes exactly one upstream call. A fresh correlation id is
// generated per Send and discarded with it, so no conversational state can
// leak between calls.
type session struct {
	id       string
	provider string
	model    string
}

func newSession(provider, model string) session {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return session{
		id:       hex.EncodeToString(buf),
		provider: provider,
		model:    model,
	}
}

func (d *dispatcher) Send(ctx context.Context, provider, model, system, user string) (string, error) {
	p := d.providers[provider]
	if p == nil {
		return "", fmt.Errorf("unsupported ai provider: %s", provider)
	}
	if !SupportsModel(provider, model) {
		return "", fmt.Errorf("unsupported model %s for provider %s", model, provider)
	}
	sess := newSession(provider, model)
	logger := logutil.GetLogger(ctx).With(
		zap.String("session_id", sess.id),
		zap.String("provider", sess.provider),
		zap.String("model", sess.model),
	)
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	start := time.Now()
	reply, err := p.Generate(ctx, model, system, user)
	if err != nil {
		logger.Error("ai call failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return "", err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		logger.Error("ai call returned empty reply", zap.Duration("elapsed", time.Since(start)))
		return "", fmt.Errorf("empty ai response")
	}
	logger.Debug("ai call finished", zap.Duration("elapsed", time.Since(start)), zap.Int("reply_len", len(reply)))
	return reply, nil
}
