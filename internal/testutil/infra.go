package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"cafe-ordering/internal/domain"
)

// Sender records every Chattable passed to Send.
type Sender struct {
	mu   sync.Mutex
	Sent []tgbotapi.Chattable
	Err  error
}

func (s *Sender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return tgbotapi.Message{}, s.Err
	}
	s.Sent = append(s.Sent, c)
	return tgbotapi.Message{MessageID: len(s.Sent)}, nil
}

func (s *Sender) Messages() []tgbotapi.Chattable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]tgbotapi.Chattable(nil), s.Sent...)
}

// ChatIDs returns the destination of each sent message or photo.
func (s *Sender) ChatIDs() []int64 {
	var ids []int64
	for _, c := range s.Messages() {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			ids = append(ids, m.ChatID)
		case tgbotapi.PhotoConfig:
			ids = append(ids, m.ChatID)
		}
	}
	return ids
}

type Published struct {
	Exchange string
	Key      string
	Body     any
}

type Publisher struct {
	mu   sync.Mutex
	Msgs []Published
	Err  error
}

func (p *Publisher) PublishJSON(_ context.Context, exchange, key string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Msgs = append(p.Msgs, Published{Exchange: exchange, Key: key, Body: v})
	return nil
}

func (p *Publisher) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var keys []string
	for _, m := range p.Msgs {
		keys = append(keys, m.Key)
	}
	return keys
}

// Locker is an in-process stand-in for the Redis lock.
type Locker struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewLocker() *Locker { return &Locker{held: map[string]bool{}} }

func (l *Locker) Acquire(_ context.Context, key string, _ time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, domain.ErrLocked
	}
	l.held[key] = true
	return func() {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
	}, nil
}

// Hold marks key as taken by someone else.
func (l *Locker) Hold(key string) {
	l.mu.Lock()
	l.held[key] = true
	l.mu.Unlock()
}

// Sessions is an in-memory session/feedback store.
type Sessions struct {
	mu       sync.Mutex
	Items    map[string]domain.CafeTableSession
	feedback map[string]bool
}

func NewSessions() *Sessions {
	return &Sessions{Items: map[string]domain.CafeTableSession{}, feedback: map[string]bool{}}
}

func (s *Sessions) SaveSession(_ context.Context, sess *domain.CafeTableSession, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Items[sess.SessionID] = *sess
	return nil
}

func (s *Sessions) GetSession(_ context.Context, id string) (*domain.CafeTableSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.Items[id]
	if !ok {
		return nil, domain.NotFound("Session", id)
	}
	return &sess, nil
}

func (s *Sessions) MarkFeedback(_ context.Context, id string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.feedback[id] {
		return false, nil
	}
	s.feedback[id] = true
	return true, nil
}

func (s *Sessions) ClearFeedback(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.feedback, id)
	return nil
}

var ErrBoom = errors.New("boom")
