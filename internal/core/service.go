package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/typesniff/internal/avroschema"
	"github.com/JonMunkholm/typesniff/internal/classify"
	"github.com/JonMunkholm/typesniff/internal/datetime"
	"github.com/JonMunkholm/typesniff/internal/ini"
	"github.com/JonMunkholm/typesniff/internal/logging"
	"github.com/JonMunkholm/typesniff/internal/sniff"
)

// ErrNoDatabase is returned by database-backed operations when the service
// runs without a pool.
var ErrNoDatabase = errors.New("database not configured")

// Options tunes a Service. Zero values take package defaults.
type Options struct {
	MaxDocumentSize   int64
	Workers           int
	ParallelThreshold int
	MaxInteger        uint64
	MaxJSONDepth      int
	Timeout           time.Duration // per analysis; 0 disables
}

// Service provides the core type sniffing operations.
type Service struct {
	pool       *pgxpool.Pool
	db         copier
	limiter    *AnalysisLimiter
	classifier *classify.Classifier
	loader     *ini.Loader
	opts       Options
}

// NewService creates a Service. pool may be nil, in which case ingest and
// profile operations return ErrNoDatabase.
func NewService(pool *pgxpool.Pool, limiter *AnalysisLimiter, opts Options) *Service {
	if limiter == nil {
		limiter = NewAnalysisLimiter(0, 0)
	}
	if opts.MaxDocumentSize <= 0 {
		opts.MaxDocumentSize = DefaultMaxDocumentSize
	}
	c := classify.New(classify.Options{MaxInteger: opts.MaxInteger})
	s := &Service{
		pool:       pool,
		limiter:    limiter,
		classifier: c,
		loader:     ini.NewLoader(c),
		opts:       opts,
	}
	if pool != nil {
		s.db = pool
	}
	return s
}

// HasDatabase reports whether a pool is configured.
func (s *Service) HasDatabase() bool {
	return s.db != nil
}

// Ping checks the database connection. It is a no-op without a pool.
func (s *Service) Ping(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	return s.pool.Ping(ctx)
}

// Limiter returns the analysis limiter.
func (s *Service) Limiter() *AnalysisLimiter {
	return s.limiter
}

// Classifier returns the configured classifier.
func (s *Service) Classifier() *classify.Classifier {
	return s.classifier
}

func (s *Service) sniffer(extra string) *sniff.Sniffer {
	return sniff.New(sniff.Options{
		ExtraHeaderChars:  extra,
		Workers:           s.opts.Workers,
		ParallelThreshold: s.opts.ParallelThreshold,
		Classifier:        s.classifier,
	})
}

// withTimeout applies the per-analysis timeout, if any.
func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.Timeout)
}

// Classify classifies one token.
func (s *Service) Classify(token string) classify.Value {
	return s.classifier.Classify(token)
}

// ClassifyBatch classifies tokens in parallel, preserving order.
func (s *Service) ClassifyBatch(ctx context.Context, tokens []string) ([]classify.Value, error) {
	out := make([]classify.Value, len(tokens))

	workers := max(s.opts.Workers, 1)
	chunk := (len(tokens) + workers - 1) / workers
	if chunk < 256 {
		chunk = 256
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < len(tokens); lo += chunk {
		hi := min(lo+chunk, len(tokens))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if i%1024 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				out[i] = s.classifier.Classify(tokens[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("classify batch: %w", err)
	}
	return out, nil
}

// RecognizeDateTime matches token against the datetime catalog.
func (s *Service) RecognizeDateTime(token string) (datetime.Result, bool) {
	return datetime.Recognize(token)
}

// ReadDocument reads a body with the service's size limit.
func (s *Service) ReadDocument(r io.Reader) (Document, error) {
	return ReadDocument(r, s.opts.MaxDocumentSize)
}

// SniffDocument reads r and infers its table schema.
func (s *Service) SniffDocument(ctx context.Context, r io.Reader, req SniffRequest) (*SniffResult, error) {
	doc, err := s.ReadDocument(r)
	if err != nil {
		return nil, err
	}
	return s.SniffContent(ctx, doc.Content, req)
}

// SniffContent infers the table schema of already-decoded content.
func (s *Service) SniffContent(ctx context.Context, content string, req SniffRequest) (*SniffResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	schema, err := s.sniffer(req.ExtraHeaderChars).Sniff(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("sniff document: %w", err)
	}

	res := &SniffResult{Schema: schema, Bytes: int64(len(content)), Duration: time.Since(start)}
	logging.FromContext(ctx).Info("document sniffed",
		"bytes", res.Bytes,
		"rows", schema.LineCount,
		"columns", schema.ColumnCount,
		"has_header", schema.HasHeader,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// InferJSONSchema reads a JSON document and infers its Avro-style schema.
func (s *Service) InferJSONSchema(ctx context.Context, r io.Reader) (avroschema.Schema, error) {
	doc, err := s.ReadDocument(r)
	if err != nil {
		return nil, err
	}
	schema, err := avroschema.Infer([]byte(doc.Content), avroschema.Options{MaxDepth: s.opts.MaxJSONDepth})
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Debug("json schema inferred", "bytes", doc.RawBytes)
	return schema, nil
}

// ParseINI parses an INI body and classifies every value, keyed by section.
func (s *Service) ParseINI(r io.Reader) (map[string]map[string]classify.Value, error) {
	doc, err := s.ReadDocument(r)
	if err != nil {
		return nil, err
	}
	parsed, err := ini.ParseString(doc.Content)
	if err != nil {
		return nil, err
	}
	out := make(map[string]map[string]classify.Value, len(parsed.Sections))
	for _, sec := range parsed.Sections {
		values := make(map[string]classify.Value, len(sec.Entries))
		for _, e := range sec.Entries {
			values[e.Key] = s.classifier.Classify(e.Value)
		}
		out[sec.Name] = values
	}
	return out, nil
}

// LoadINI resolves a layered configuration request from local files.
func (s *Service) LoadINI(ctx context.Context, req ini.Request) (map[string]any, error) {
	return s.loader.Load(ctx, req)
}
