// Package service orchestrates the readings pipeline:
// admission, cache lookup, dispatch, oracle call, cache fill
package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/NightBlad/Tarotbot/internal/adapters/oracle"
	"github.com/NightBlad/Tarotbot/internal/core/draw"
	perr "github.com/NightBlad/Tarotbot/internal/platform/errors"
	"github.com/NightBlad/Tarotbot/internal/platform/logger"
	"github.com/NightBlad/Tarotbot/internal/services/readings/cache"
	"github.com/NightBlad/Tarotbot/internal/services/readings/domain"
	"github.com/NightBlad/Tarotbot/internal/services/readings/limit"
	"github.com/NightBlad/Tarotbot/internal/services/readings/queue"
)

// Gateway is the outbound oracle seam, satisfied by adapters/oracle.Client
type Gateway interface {
	Call(ctx context.Context, flow, input string) (string, error)
	Configured() bool
}

// Svc implements domain.ServicePort and domain.StatusPort
type Svc struct {
	log    logger.Logger
	cache  *cache.Cache[string]
	limits *limit.Set
	queue  *queue.Dispatcher
	gw     Gateway
	engine *draw.Engine

	total   atomic.Uint64
	started time.Time
	now     func() time.Time
}

// New wires the pipeline components into a service
func New(c *cache.Cache[string], l *limit.Set, q *queue.Dispatcher, gw Gateway, e *draw.Engine) *Svc {
	return &Svc{
		log:     *logger.Named("readings"),
		cache:   c,
		limits:  l,
		queue:   q,
		gw:      gw,
		engine:  e,
		started: time.Now(),
		now:     time.Now,
	}
}

// oracleInput is the serialized payload handed to the oracle
// field order is fixed so fingerprint-stable inputs reduce identically
type oracleInput struct {
	Spread   string        `json:"spread"`
	Question string        `json:"question,omitempty"`
	N        int           `json:"n,omitempty"`
	Sig      string        `json:"sig,omitempty"`
	Cards    []cardSummary `json:"cards,omitempty"`
}

type cardSummary struct {
	Position    string `json:"position,omitempty"`
	Name        string `json:"name"`
	Orientation string `json:"orientation"`
	Meaning     string `json:"meaning"`
}

// Ask runs one request through the full pipeline
// Error types map to the wire at the handler: RateLimitedError to 429,
// Timeout to 504, Upstream to 502, Config to 500
func (s *Svc) Ask(ctx context.Context, identity, flowID string, req domain.OracleRequest) (string, error) {
	s.total.Add(1)

	if !draw.KnownKind(req.SpreadKind) {
		return "", perr.InvalidArgf("unknown spread kind %q", req.SpreadKind)
	}

	if ok, retry := s.limits.Admit(identity, limit.General); !ok {
		return "", &domain.RateLimitedError{
			Limiter:    limit.General.String(),
			RetryAfter: retry,
			QueueLen:   s.queue.Waiting(),
		}
	}

	fp := domain.Fingerprint(flowID, req)
	if text, ok := s.cache.Get(fp); ok {
		s.log.Debug().Str("fingerprint", fp).Msg("cache hit")
		return text, nil
	}

	// the oracle lane is only consumed on a miss, cache hits are free
	if ok, retry := s.limits.Admit(identity, limit.Oracle); !ok {
		return "", &domain.RateLimitedError{
			Limiter:    limit.Oracle.String(),
			RetryAfter: retry,
			QueueLen:   s.queue.Waiting(),
		}
	}

	text, err := s.queue.Do(ctx, fp, func(jobCtx context.Context) (string, error) {
		input, err := s.buildInput(req)
		if err != nil {
			return "", err
		}
		return s.gw.Call(jobCtx, flowID, input)
	})
	if err != nil {
		if errors.Is(err, oracle.ErrNoOutput) {
			// the call succeeded end to end but carried no text;
			// an empty reading is not worth caching
			s.log.Warn().Str("flow", flowID).Msg("oracle returned no extractable output")
			return "", nil
		}
		return "", err
	}

	if text != "" {
		s.cache.Set(fp, text)
	}
	return text, nil
}

// buildInput draws the requested spread and serializes the oracle payload
func (s *Svc) buildInput(req domain.OracleRequest) (string, error) {
	in := oracleInput{
		Spread:   req.SpreadKind,
		Question: req.Question,
		N:        req.Count,
		Sig:      req.Significator,
	}
	res, err := s.engine.Draw(req.SpreadKind, draw.Params{
		N:            req.Count,
		Significator: req.Significator,
	})
	if err != nil {
		return "", err
	}
	in.Cards = summarize(res)

	b, err := json.Marshal(in)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "marshal oracle input failed")
	}
	return string(b), nil
}

func summarize(res any) []cardSummary {
	switch v := res.(type) {
	case draw.Card:
		return []cardSummary{summaryOf("", v)}
	case []draw.Card:
		out := make([]cardSummary, 0, len(v))
		for _, c := range v {
			out = append(out, summaryOf("", c))
		}
		return out
	case []draw.Positioned:
		out := make([]cardSummary, 0, len(v))
		for _, p := range v {
			out = append(out, summaryOf(p.Position, p.Card))
		}
		return out
	default:
		return nil
	}
}

func summaryOf(pos string, c draw.Card) cardSummary {
	meaning := c.MeaningUp
	if c.Orientation == draw.Reversed {
		meaning = c.MeaningRev
	}
	return cardSummary{
		Position:    pos,
		Name:        c.Name,
		Orientation: c.Orientation,
		Meaning:     meaning,
	}
}

// OracleConfigured implements domain.StatusPort
func (s *Svc) OracleConfigured() bool { return s.gw.Configured() }

// Status implements domain.StatusPort
func (s *Svc) Status() domain.StatusSnapshot {
	hits := s.cache.Hits()
	misses := s.cache.Misses()
	rate := 0.0
	if hits+misses > 0 {
		rate = float64(hits) / float64(hits+misses)
	}
	return domain.StatusSnapshot{
		UptimeSeconds: int64(s.now().Sub(s.started) / time.Second),
		TotalRequests: s.total.Load(),
		CacheHits:     hits,
		CacheMisses:   misses,
		CacheHitRate:  rate,
		QueueWaiting:  s.queue.Waiting(),
		QueuePending:  s.queue.Running(),
		CacheSize:     s.cache.Size(),
		CacheCapacity: s.cache.Capacity(),
	}
}
