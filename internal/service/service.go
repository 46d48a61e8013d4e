package service

import (
	"github.com/rs/zerolog"

	"catmatch/internal/repository"
	"catmatch/internal/utils"
)

// Options 是建立服務時需要的設定
type Options struct {
	SuperLikesPerDay int
	Realtime         RealtimeOptions
	Clock            utils.Clock
}

type Services struct {
	Quota        *QuotaService
	Interest     *InterestService
	Match        *MatchService
	Conversation *ConversationService
	Registry     *Registry
	Dispatcher   *Dispatcher
}

func NewServices(repos *repository.Repositories, opts Options, log zerolog.Logger) *Services {
	clock := opts.Clock
	if clock == nil {
		clock = utils.SystemClock()
	}

	quota := NewQuotaService(repos, opts.SuperLikesPerDay, log.With().Str("component", "quota").Logger())
	interest := NewInterestService(repos, quota, clock, log.With().Str("component", "interest").Logger())
	match := NewMatchService(repos, clock, log.With().Str("component", "match").Logger())
	conversation := NewConversationService(repos, match, clock, log.With().Str("component", "conversation").Logger())

	registry := NewRegistry(conversation, log.With().Str("component", "registry").Logger())
	dispatcher := NewDispatcher(registry, conversation, opts.Realtime, log.With().Str("component", "dispatcher").Logger())

	return &Services{
		Quota:        quota,
		Interest:     interest,
		Match:        match,
		Conversation: conversation,
		Registry:     registry,
		Dispatcher:   dispatcher,
	}
}
