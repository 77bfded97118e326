// README: Session service; serialises turns per conversation and bridges to the generation backend.
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tripmate/internal/ai"
	"tripmate/internal/logger"
	"tripmate/internal/metrics"
	"tripmate/internal/modules/itinerary"
	"tripmate/internal/modules/preference"
	"tripmate/internal/modules/prompt"
)

var errNoBackend = errors.New("no generation backend configured")

const (
	// persistTimeout bounds session writes, which run detached from the
	// request context so an expired request still records its turn.
	persistTimeout    = 5 * time.Second
	maxCommitAttempts = 5
)

// TokenSpender charges one generation against a caller's quota.
type TokenSpender interface {
	UseToken(ctx context.Context, uid string) error
}

// ItineraryArchive keeps generated itineraries.
type ItineraryArchive interface {
	Save(ctx context.Context, rec *itinerary.Record) error
}

type ServiceDeps struct {
	Store     Store
	Generator ai.Generator
	// Usage, Archive and Locker are optional. Without a Locker turns are
	// serialised within this process only.
	Usage   TokenSpender
	Archive ItineraryArchive
	Locker  Locker
	Logger  *zap.Logger
	Now     func() time.Time
}

type Service struct {
	store   Store
	gen     ai.Generator
	usage   TokenSpender
	archive ItineraryArchive
	locker  Locker
	log     *zap.Logger
	now     func() time.Time
	locks   *keyedMutex
}

func NewService(deps ServiceDeps) *Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:   deps.Store,
		gen:     deps.Generator,
		usage:   deps.Usage,
		archive: deps.Archive,
		locker:  deps.Locker,
		log:     logger.OrNop(deps.Logger),
		now:     now,
		locks:   newKeyedMutex(),
	}
}

// ChatResult is the outcome of one conversational turn.
type ChatResult struct {
	Reply       string
	Preferences preference.State
	Updated     []preference.Field
}

// Create starts a new, empty conversation owned by caller.
func (s *Service) Create(ctx context.Context, caller string) (*Session, error) {
	sess := New(uuid.Must(uuid.NewV7()).String(), s.now())
	sess.Owner = caller
	if err := s.store.Put(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Chat records one user turn. The backend sees the preferences as they were
// before this utterance. When the backend fails the turn is still recorded
// with FallbackReply and the backend error is returned next to the result.
func (s *Service) Chat(ctx context.Context, caller, id, utterance string) (*ChatResult, error) {
	if strings.TrimSpace(utterance) == "" {
		return nil, ErrEmptyUtterance
	}

	unlock, err := s.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sess, err := s.loadOrCreate(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err := s.spend(ctx, caller); err != nil {
		return nil, err
	}

	chatPrompt := prompt.Chat(sess.Preferences, sess.Exchanges(), utterance)
	reply, genErr := s.generate(ctx, ai.Request{Prompt: chatPrompt, Profile: ai.ChatProfile})
	if genErr != nil {
		s.log.Warn("chat generation failed",
			zap.String("conversation_id", id),
			zap.Error(genErr),
		)
		reply = FallbackReply
	}

	var e preference.Extraction
	sess, err = s.commit(ctx, caller, sess, func(sess *Session) {
		e = sess.Intake(utterance, reply, s.now())
	})
	if err != nil {
		return nil, err
	}
	s.observe(id, e)

	return &ChatResult{
		Reply:       reply,
		Preferences: sess.Snapshot(),
		Updated:     e.Matched(),
	}, genErr
}

// Preferences returns a snapshot of the conversation's preference state.
func (s *Service) Preferences(ctx context.Context, caller, id string) (preference.State, error) {
	sess, err := s.load(ctx, caller, id)
	if err != nil {
		return preference.State{}, err
	}
	return sess.Snapshot(), nil
}

func (s *Service) History(ctx context.Context, caller, id string) ([]Turn, error) {
	sess, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return sess.History, nil
}

// ItineraryPrompt composes the itinerary request without calling the backend.
// It returns prompt.ErrDestinationRequired when no destination is known.
func (s *Service) ItineraryPrompt(ctx context.Context, caller, id string) (string, error) {
	prefs, err := s.Preferences(ctx, caller, id)
	if err != nil {
		return "", err
	}
	return prompt.Itinerary(prefs)
}

// Itinerary generates a day-by-day itinerary. Backend errors are returned
// wrapped, never replaced with placeholder text.
func (s *Service) Itinerary(ctx context.Context, caller, id string) (string, error) {
	prefs, err := s.Preferences(ctx, caller, id)
	if err != nil {
		return "", err
	}
	itineraryPrompt, err := prompt.Itinerary(prefs)
	if err != nil {
		return "", err
	}
	if err := s.spend(ctx, caller); err != nil {
		return "", err
	}

	text, err := s.generate(ctx, ai.Request{Prompt: itineraryPrompt, Profile: ai.ItineraryProfile})
	if err != nil {
		s.log.Error("itinerary generation failed",
			zap.String("conversation_id", id),
			zap.Error(err),
		)
		return "", err
	}

	if s.archive != nil {
		rec := &itinerary.Record{
			ConversationID: id,
			UID:            caller,
			Destination:    *prefs.Destination,
			Prompt:         itineraryPrompt,
			Content:        text,
			CreatedAt:      s.now(),
		}
		pctx, cancel := detached(ctx)
		defer cancel()
		if err := s.archive.Save(pctx, rec); err != nil {
			s.log.Warn("archive itinerary", zap.String("conversation_id", id), zap.Error(err))
		}
	}
	return text, nil
}

// Reset clears history and preferences of a conversation in one step.
func (s *Service) Reset(ctx context.Context, caller, id string) (*Session, error) {
	unlock, err := s.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sess, err := s.loadOrCreate(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	sess, err = s.commit(ctx, caller, sess, func(sess *Session) {
		sess.Clear(s.now())
	})
	if err != nil {
		return nil, err
	}
	metrics.ConversationResets.Inc()
	return sess, nil
}

// lock takes the in-process lock for id, then the shared one if configured.
func (s *Service) lock(ctx context.Context, id string) (func(), error) {
	unlock := s.locks.Lock(id)
	if s.locker == nil {
		return unlock, nil
	}
	release, err := s.locker.Acquire(ctx, id)
	if err != nil {
		unlock()
		return nil, err
	}
	return func() {
		release()
		unlock()
	}, nil
}

// commit applies change to sess and writes it. On a version conflict the
// session is reloaded and change is applied again to the fresh copy.
func (s *Service) commit(ctx context.Context, caller string, sess *Session, change func(*Session)) (*Session, error) {
	ctx, cancel := detached(ctx)
	defer cancel()

	for attempt := 1; ; attempt++ {
		change(sess)
		err := s.store.Put(ctx, sess)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, ErrConflict) || attempt == maxCommitAttempts {
			return nil, err
		}
		metrics.SessionWriteConflicts.Inc()
		s.log.Debug("session write conflict, reloading",
			zap.String("conversation_id", sess.ID),
			zap.Int("attempt", attempt),
		)
		if sess, err = s.loadOrCreate(ctx, caller, sess.ID); err != nil {
			return nil, err
		}
	}
}

// load returns ErrNotFound both for missing conversations and for ones owned
// by another caller.
func (s *Service) load(ctx context.Context, caller, id string) (*Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sess.AccessibleBy(caller) {
		return nil, ErrNotFound
	}
	return sess, nil
}

// loadOrCreate starts a conversation under caller when id is unknown, and
// lets the first authenticated caller claim an unowned one.
func (s *Service) loadOrCreate(ctx context.Context, caller, id string) (*Session, error) {
	sess, err := s.store.Get(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		sess = New(id, s.now())
	case err != nil:
		return nil, err
	case !sess.AccessibleBy(caller):
		return nil, ErrNotFound
	}
	if sess.Owner == "" {
		sess.Owner = caller
	}
	return sess, nil
}

func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
}

func (s *Service) spend(ctx context.Context, caller string) error {
	if s.usage == nil || caller == "" {
		return nil
	}
	return s.usage.UseToken(ctx, caller)
}

func (s *Service) generate(ctx context.Context, req ai.Request) (string, error) {
	if s.gen == nil {
		return "", &ai.BackendError{Provider: "none", Err: errNoBackend}
	}
	start := time.Now()
	text, err := s.gen.Generate(ctx, req)
	metrics.BackendDuration.WithLabelValues(req.Profile.Name).Observe(time.Since(start).Seconds())
	if err == nil && strings.TrimSpace(text) == "" {
		err = &ai.BackendError{Provider: "unknown", Err: ai.ErrEmptyResponse}
	}
	if err != nil {
		metrics.BackendRequests.WithLabelValues(req.Profile.Name, "error").Inc()
		return "", err
	}
	metrics.BackendRequests.WithLabelValues(req.Profile.Name, "ok").Inc()
	return strings.TrimSpace(text), nil
}

func (s *Service) observe(id string, e preference.Extraction) {
	for _, f := range e.Matched() {
		metrics.PreferenceMatches.WithLabelValues(string(f)).Inc()
	}
	for _, pf := range e.ParseFailures {
		metrics.PreferenceParseFailures.WithLabelValues(string(pf.Field)).Inc()
		s.log.Debug("skipped malformed capture",
			zap.String("conversation_id", id),
			zap.String("field", string(pf.Field)),
			zap.String("capture", pf.Capture),
			zap.Error(pf.Err),
		)
	}
}
