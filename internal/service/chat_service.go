package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/teamai/teamai-api/internal/generation"
	"github.com/teamai/teamai-api/internal/platform/logger"
	"github.com/teamai/teamai-api/internal/redact"
)

const chatSystemPrompt = "Ты - AI ассистент TeamAI, помогающий с управлением проектами и задачами. " +
	"Отвечай кратко и по делу на русском языке."

// ChatReply is the assistant answer.
type ChatReply struct {
	Response  string
	Timestamp time.Time
	// FromModel is false when the keyword fallback produced Response.
	FromModel bool
}

// ChatService answers project-management questions.
type ChatService interface {
	// Chat never fails because of the completion backend: any backend error
	// yields a keyword-based reply.
	Chat(ctx context.Context, message, chatContext string) (*ChatReply, error)
}

type chatServiceImpl struct {
	client generation.CompletionClient
	now    func() time.Time
	logger *slog.Logger
}

var _ ChatService = (*chatServiceImpl)(nil)

// NewChatService returns an error if client is nil.
func NewChatService(client generation.CompletionClient, l *slog.Logger) (ChatService, error) {
	if client == nil {
		return nil, &ServiceError{Service: "chat", Operation: "create_service", Message: "completion client cannot be nil"}
	}
	if l == nil {
		l = slog.Default()
	}
	return &chatServiceImpl{
		client: client,
		now:    time.Now,
		logger: l.With("component", "chat_service"),
	}, nil
}

// Chat implements ChatService.
func (s *chatServiceImpl) Chat(ctx context.Context, message, chatContext string) (*ChatReply, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	userPrompt := message
	if strings.TrimSpace(chatContext) != "" {
		userPrompt = fmt.Sprintf("Контекст: %s\n\nВопрос: %s", chatContext, message)
	}

	answer, err := s.client.Complete(ctx, chatSystemPrompt, userPrompt)
	if err == nil {
		return &ChatReply{Response: answer, Timestamp: s.now().UTC(), FromModel: true}, nil
	}

	if errors.Is(err, generation.ErrConfigurationMissing) {
		log.Debug("no completion credential, answering from keywords")
	} else {
		log.Warn("completion failed, answering from keywords", "error", redact.Error(err))
	}
	return &ChatReply{Response: KeywordReply(message, chatContext), Timestamp: s.now().UTC()}, nil
}

// keywordRule answers when all of its keyword groups match. A group matches
// when the message contains any of its keywords.
type keywordRule struct {
	needsContext bool
	groups       [][]string
	reply        string
}

var keywordRules = []keywordRule{
	{
		needsContext: true,
		groups:       [][]string{{"как"}, {"начать"}},
		reply: "Рекомендую начать с анализа требований и планирования архитектуры. " +
			"Изучите описание задачи и определите основные этапы работы.",
	},
	{
		needsContext: true,
		groups:       [][]string{{"дедлайн", "срок"}},
		reply: "Проверьте дедлайн в деталях задачи. Распределите время так, чтобы " +
			"оставить 20% на тестирование и исправление ошибок.",
	},
	{
		needsContext: true,
		groups:       [][]string{{"помощь", "помоги"}},
		reply: "Я готов помочь! Вы можете:\n" +
			"- Уточнить требования к задаче\n" +
			"- Спланировать этапы выполнения\n" +
			"- Обсудить технические решения\n" +
			"Что именно вас интересует?",
	},
	{
		needsContext: true,
		groups:       [][]string{{"приоритет"}},
		reply: "Сосредоточьтесь на задачах с высоким приоритетом. " +
			"Они критически важны для успеха проекта.",
	},
	{
		groups: [][]string{{"проект"}},
		reply: "Для эффективного управления проектом:\n" +
			"1. Четко определите цели\n" +
			"2. Распределите задачи по навыкам\n" +
			"3. Отслеживайте прогресс регулярно\n" +
			"4. Общайтесь с командой",
	},
	{
		groups: [][]string{{"задач"}},
		reply: "Создавайте конкретные, измеримые задачи. " +
			"Используйте AI распределение для оптимального назначения участников.",
	},
	{
		groups: [][]string{{"привет", "здравствуй"}},
		reply: "Привет! Я ваш AI помощник в управлении проектами. " +
			"Задайте мне любой вопрос о задачах, дедлайнах или планировании.",
	},
	{
		groups: [][]string{{"спасибо", "благодар"}},
		reply:  "Рад помочь! Обращайтесь, если возникнут другие вопросы.",
	},
}

const defaultKeywordReply = "Понял ваш вопрос. Могу предложить:\n" +
	"- Проанализировать текущее состояние задачи\n" +
	"- Дать рекомендации по планированию\n" +
	"- Помочь с приоритизацией\n\n" +
	"Уточните, что именно вас интересует?"

// KeywordReply picks a canned answer by the keywords in message. Rules marked
// needsContext apply only when chatContext is not blank. The first matching
// rule wins.
func KeywordReply(message, chatContext string) string {
	lower := strings.ToLower(message)
	hasContext := strings.TrimSpace(chatContext) != ""

	for _, rule := range keywordRules {
		if rule.needsContext && !hasContext {
			continue
		}
		if rule.matches(lower) {
			return rule.reply
		}
	}
	return defaultKeywordReply
}

func (r keywordRule) matches(lower string) bool {
	for _, group := range r.groups {
		if !containsAny(lower, group) {
			return false
		}
	}
	return true
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
