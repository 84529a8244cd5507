package mocks

//go:generate mockgen -destination=agent.go -package=mocks -mock_names=Repository=MockAgentRepository,CatalogReader=MockCatalogReader github.com/alanyang/agent-market/internal/port/agent Repository,CatalogReader
//go:generate mockgen -destination=eventbus.go -package=mocks github.com/alanyang/agent-market/internal/port/eventbus EventBus,Subscription
//go:generate mockgen -destination=locker.go -package=mocks github.com/alanyang/agent-market/internal/port/locker AdvisoryLocker
//go:generate mockgen -destination=credit.go -package=mocks -mock_names=Repository=MockCreditRepository github.com/alanyang/agent-market/internal/port/credit Repository
//go:generate mockgen -destination=notification.go -package=mocks -mock_names=Repository=MockNotificationRepository github.com/alanyang/agent-market/internal/port/notification Repository
//go:generate mockgen -destination=deployment.go -package=mocks -mock_names=Repository=MockDeploymentRepository github.com/alanyang/agent-market/internal/port/deployment Repository
//go:generate mockgen -destination=usage.go -package=mocks -mock_names=Repository=MockUsageRepository github.com/alanyang/agent-market/internal/port/usage Repository
//go:generate mockgen -destination=profile.go -package=mocks -mock_names=Repository=MockProfileRepository github.com/alanyang/agent-market/internal/port/profile Repository
//go:generate mockgen -destination=agentapi.go -package=mocks -mock_names=Client=MockAgentAPIClient github.com/alanyang/agent-market/internal/port/agentapi Client
//go:generate mockgen -destination=idempotency.go -package=mocks -mock_names=Store=MockIdempotencyStore github.com/alanyang/agent-market/internal/port/idempotency Store
//go:generate mockgen -destination=notifier.go -package=mocks github.com/alanyang/agent-market/internal/port/notifier ViewerNotifier,Broadcaster
//go:generate mockgen -destination=querycache.go -package=mocks -mock_names=Cache=MockQueryCache,Coordinated=MockCoordinatedCache github.com/alanyang/agent-market/internal/port/querycache Cache,Coordinated
