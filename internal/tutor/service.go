// Package tutor answers learner questions through an LLM chat completion
// API. Prompts are built from a fixed persona ("Tim") plus the context of
// the exercise the learner is working on.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"

	"go.uber.org/zap"
)

var (
	ErrEmptyQuestion   = errors.New("question is empty")
	ErrQuestionTooLong = errors.New("question is too long")
	ErrUnavailable     = errors.New("tutor is not configured")
)

// Question is what the client sends.
type Question struct {
	Question      string    `json:"question"`
	TaskContext   string    `json:"taskContext"`
	PriorMessages []Message `json:"priorMessages"`
}

const maxContextLen = 2000

var systemPrompt = template.Must(template.New("system").Parse(
	`You are Tim, a friendly tutor for number systems and computer architecture.
Explain binary, octal and hexadecimal conversion, one's and two's complement,
signed addition with wraparound, the Von Neumann architecture and simple
assembly. Guide the learner with hints and questions; do not just hand over
the final answer of an exercise. Keep replies short.
{{- if .TaskContext}}

The learner is working on this exercise:
{{.TaskContext}}
{{- end}}`))

// Service validates questions and forwards them to a Completer.
type Service struct {
	completer      Completer
	maxQuestionLen int
	maxHistory     int
	logger         *zap.Logger
}

// Options configures a Service.
type Options struct {
	MaxQuestionLen int
	MaxHistory     int
	Logger         *zap.Logger
}

// NewService returns a tutor. A nil completer yields ErrUnavailable on
// every question.
func NewService(completer Completer, opts Options) *Service {
	if opts.MaxQuestionLen <= 0 {
		opts.MaxQuestionLen = 250
	}
	if opts.MaxHistory < 0 {
		opts.MaxHistory = 0
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{
		completer:      completer,
		maxQuestionLen: opts.MaxQuestionLen,
		maxHistory:     opts.MaxHistory,
		logger:         opts.Logger,
	}
}

// MaxQuestionLen is the longest accepted question in characters.
func (s *Service) MaxQuestionLen() int { return s.maxQuestionLen }

// Validate checks the question without calling the model.
func (s *Service) Validate(q Question) error {
	text := strings.TrimSpace(q.Question)
	if text == "" {
		return ErrEmptyQuestion
	}
	if n := utf8.RuneCountInString(text); n > s.maxQuestionLen {
		return fmt.Errorf("%w: %d characters, limit is %d", ErrQuestionTooLong, n, s.maxQuestionLen)
	}
	return nil
}

// BuildRequest renders the system prompt and keeps the newest history.
func (s *Service) BuildRequest(q Question) (*Request, error) {
	var sys strings.Builder
	taskContext := truncate(strings.TrimSpace(q.TaskContext), maxContextLen)
	if err := systemPrompt.Execute(&sys, struct{ TaskContext string }{taskContext}); err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	history := q.PriorMessages
	if len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}
	messages := make([]Message, 0, len(history)+1)
	for _, m := range history {
		// clients may only replay user and assistant turns
		if m.Role != RoleUser && m.Role != RoleAssistant {
			continue
		}
		messages = append(messages, Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, Message{Role: RoleUser, Content: strings.TrimSpace(q.Question)})

	return &Request{
		System:      sys.String(),
		Messages:    messages,
		MaxTokens:   400,
		Temperature: 0.4,
	}, nil
}

// Ask validates q and returns the tutor's answer.
func (s *Service) Ask(ctx context.Context, q Question) (string, error) {
	if err := s.Validate(q); err != nil {
		return "", err
	}
	if s.completer == nil {
		return "", ErrUnavailable
	}
	req, err := s.BuildRequest(q)
	if err != nil {
		return "", err
	}
	answer, err := s.completer.Complete(ctx, req)
	if err != nil {
		s.logger.Warn("tutor completion failed", zap.Error(err), zap.Int("history", len(req.Messages)-1))
		return "", err
	}
	return answer, nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
