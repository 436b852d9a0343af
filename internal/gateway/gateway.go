package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ctgpost/MarketingWebTools/internal/domain"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const (
	DefaultModel   = "gemini-3-flash-preview"
	DefaultTimeout = 30 * time.Second
)

var ErrGenerationUnavailable = errors.New("generation service unavailable")

// Generator is the outbound text-generation call.
type Generator interface {
	GenerateText(ctx context.Context, model, prompt string) (string, error)
}

// Request carries the parameters for one generation kind.
type Request struct {
	Kind            domain.GenerationKind
	Goal            string
	ProductName     string
	Category        string
	ShopDescription string
}

type Config struct {
	Model   string
	Timeout time.Duration
	// Consecutive failures before the breaker opens. 0 keeps the breaker
	// closed so every call reaches the generator.
	MaxFailures uint32
	// How long an open breaker waits before letting a trial call through.
	OpenTimeout time.Duration
}

// Gateway turns every generation attempt into a string: the generated text
// on success, the kind's fallback message on any failure.
type Gateway struct {
	gen     Generator
	model   string
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker[string]
	logger  *zap.Logger
}

func New(gen Generator, cfg Config, logger *zap.Logger) *Gateway {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	st := gobreaker.Settings{
		Name:        "text-generation",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return cfg.MaxFailures > 0 && counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &Gateway{
		gen:     gen,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		cb:      gobreaker.NewCircuitBreaker[string](st),
		logger:  logger,
	}
}

func (g *Gateway) MarketingTip(ctx context.Context, goal string) string {
	return g.Generate(ctx, Request{Kind: domain.KindMarketingTip, Goal: goal})
}

func (g *Gateway) SocialCaption(ctx context.Context, productName, category string) string {
	return g.Generate(ctx, Request{Kind: domain.KindSocialCaption, ProductName: productName, Category: category})
}

func (g *Gateway) Keywords(ctx context.Context, shopDescription string) string {
	return g.Generate(ctx, Request{Kind: domain.KindKeywords, ShopDescription: shopDescription})
}

// Generate issues exactly one request for req and never returns an error.
// With a trip threshold configured, an open breaker answers with the
// fallback without calling the generator.
func (g *Gateway) Generate(ctx context.Context, req Request) string {
	prompt, err := Prompt(req)
	if err != nil {
		g.logger.Error("generation request rejected", zap.String("kind", req.Kind.String()), zap.Error(err))
		return Fallback(req.Kind)
	}
	if g.gen == nil {
		g.logger.Debug("generation disabled", zap.String("kind", req.Kind.String()))
		return Fallback(req.Kind)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.cb.Execute(func() (string, error) {
		return g.call(ctx, prompt)
	})
	if err != nil {
		g.logger.Error("generation failed",
			zap.String("kind", req.Kind.String()),
			zap.String("model", g.model),
			zap.Error(err))
		return Fallback(req.Kind)
	}
	return text
}

// call shields the breaker from a panicking generator.
func (g *Gateway) call(ctx context.Context, prompt string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generator panic: %v", r)
		}
	}()
	return g.gen.GenerateText(ctx, g.model, prompt)
}
