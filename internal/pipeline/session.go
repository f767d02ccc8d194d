package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tiger/signstream/api/playback"
	"github.com/tiger/signstream/internal/assets"
	"github.com/tiger/signstream/internal/grammar"
	parsecontracts "github.com/tiger/signstream/providers/parser/contracts"
	reccontracts "github.com/tiger/signstream/providers/recognition/contracts"
)

// ErrAlreadyRunning reports a second Start on a session that has already
// been started. Sessions are single use.
var ErrAlreadyRunning = errors.New("session already started")

// Default stage tuning. The video queue is deliberately small so slow
// playback throttles conversion instead of piling up clips.
const (
	DefaultVideoQueueCapacity = 10
	DefaultTextQueueCapacity  = 256
	DefaultPollInterval       = time.Second
)

// Config tunes a streaming session.
type Config struct {
	VideoQueueCapacity int
	TextQueueCapacity  int
	PollInterval       time.Duration
	Logger             *logrus.Logger
}

func (c Config) withDefaults() Config {
	if c.VideoQueueCapacity <= 0 {
		c.VideoQueueCapacity = DefaultVideoQueueCapacity
	}
	if c.TextQueueCapacity <= 0 {
		c.TextQueueCapacity = DefaultTextQueueCapacity
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.Logger == nil {
		c.Logger = logrus.New()
	}
	return c
}

// Observers receives session lifecycle callbacks. All fields are optional.
// Each callback is invoked in event order and never concurrently with
// itself; a slow observer slows the stage that produced the event.
type Observers struct {
	OnTranscript func(text string)
	OnISLText    func(tokens []string)
	OnError      func(stage string, err error)
}

// Session wires a speech recognizer, a sentence parser, and a clip resolver
// into the two-stage ingest and conversion pipeline. Recognized final
// transcripts flow through the text queue into the converter, which emits
// playable clips on the bounded video queue.
type Session struct {
	cfg       Config
	rec       reccontracts.Recognizer
	parser    parsecontracts.Parser
	resolver  *assets.Resolver
	observers Observers
	log       *logrus.Logger

	textQueue  *Queue[string]
	videoQueue *Queue[playback.Clip]

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// Each callback is serialized independently. Callbacks from different
	// workers may still overlap with each other.
	transcriptMu sync.Mutex
	islMu        sync.Mutex
	errMu        sync.Mutex
}

// NewSession constructs a session over the given providers.
func NewSession(rec reccontracts.Recognizer, parser parsecontracts.Parser, resolver *assets.Resolver, observers Observers, cfg Config) (*Session, error) {
	if rec == nil {
		return nil, fmt.Errorf("recognizer is required")
	}
	if parser == nil {
		return nil, fmt.Errorf("parser is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	cfg = cfg.withDefaults()

	textQueue, err := NewQueue[string](cfg.TextQueueCapacity)
	if err != nil {
		return nil, fmt.Errorf("text queue: %w", err)
	}
	videoQueue, err := NewQueue[playback.Clip](cfg.VideoQueueCapacity)
	if err != nil {
		return nil, fmt.Errorf("video queue: %w", err)
	}

	return &Session{
		cfg:        cfg,
		rec:        rec,
		parser:     parser,
		resolver:   resolver,
		observers:  observers,
		log:        cfg.Logger,
		textQueue:  textQueue,
		videoQueue: videoQueue,
	}, nil
}

// Start launches the ingest and conversion workers. A session starts at most
// once; later calls return ErrAlreadyRunning.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyRunning
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(2)
	go s.runIngest(ctx)
	go s.runConvert(ctx)
	s.log.WithField("poll_interval", s.cfg.PollInterval).Info("session started")
	return nil
}

// Stop cancels the workers, closes both queues, and waits for the workers to
// exit. It is safe to call more than once and before Start.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.textQueue.Close()
	s.videoQueue.Close()
	s.wg.Wait()
}

// Wait blocks until both workers have exited, which happens after Stop or
// once the recognizer stream ends and the converter drains.
func (s *Session) Wait() {
	s.wg.Wait()
}

// NextClip hands the playback layer the next clip, waiting up to wait when
// none is ready. It returns ErrQueueTimeout on an idle session and
// ErrQueueClosed once the session has stopped and the queue is drained.
func (s *Session) NextClip(wait time.Duration) (playback.Clip, error) {
	return s.videoQueue.Pop(wait)
}

func (s *Session) runIngest(ctx context.Context) {
	defer s.wg.Done()
	// The converter drains whatever ingest queued before this close.
	defer s.textQueue.Close()

	err := s.rec.Stream(ctx, func(ev reccontracts.TranscriptEvent) error {
		if !ev.Final {
			return nil
		}
		text := strings.TrimSpace(ev.Text)
		if text == "" {
			return nil
		}
		s.notifyTranscript(text)
		return s.textQueue.Push(text)
	})
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, ErrQueueClosed):
	default:
		s.log.WithError(err).Error("recognition stream failed")
		s.notifyError("ingest", err)
	}
}

func (s *Session) runConvert(ctx context.Context) {
	defer s.wg.Done()
	defer s.videoQueue.Close()

	for {
		text, err := s.textQueue.Pop(s.cfg.PollInterval)
		if errors.Is(err, ErrQueueTimeout) {
			continue
		}
		if errors.Is(err, ErrQueueClosed) {
			return
		}
		if convErr := s.convertTranscript(ctx, text); convErr != nil {
			if errors.Is(convErr, ErrQueueClosed) {
				return
			}
			// One bad transcript must not take the session down.
			s.log.WithError(convErr).WithField("transcript", text).Error("conversion failed")
			s.notifyError("convert", convErr)
		}
	}
}

func (s *Session) convertTranscript(ctx context.Context, text string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("conversion panic: %v", r)
		}
	}()

	rawSentences, err := s.parser.Segment(ctx, text)
	if err != nil {
		return fmt.Errorf("segment transcript: %w", err)
	}
	tokens := make([]string, 0, len(rawSentences)*4)
	for _, raw := range rawSentences {
		sentence, parseErr := s.parser.Parse(ctx, raw)
		if parseErr != nil {
			return fmt.Errorf("parse sentence %q: %w", raw, parseErr)
		}
		tokens = append(tokens, grammar.TranslateSentence(sentence)...)
	}
	if len(tokens) == 0 {
		return nil
	}
	s.notifyISLText(tokens)

	for _, clip := range s.resolver.ResolveTokens(tokens) {
		if pushErr := s.videoQueue.Push(clip); pushErr != nil {
			return pushErr
		}
	}
	return nil
}

func (s *Session) notifyTranscript(text string) {
	if s.observers.OnTranscript == nil {
		return
	}
	s.transcriptMu.Lock()
	defer s.transcriptMu.Unlock()
	s.observers.OnTranscript(text)
}

func (s *Session) notifyISLText(tokens []string) {
	if s.observers.OnISLText == nil {
		return
	}
	s.islMu.Lock()
	defer s.islMu.Unlock()
	s.observers.OnISLText(tokens)
}

func (s *Session) notifyError(stage string, err error) {
	if s.observers.OnError == nil {
		return
	}
	s.errMu.Lock()
	defer s.errMu.Unlock()
	s.observers.OnError(stage, err)
}
