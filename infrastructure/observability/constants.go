package observability

// Metric name prefixes
const (
	MetricPrefix = "curator"
)

// Metric names
const (
	// Activity metrics
	EntriesTotal      = MetricPrefix + ".activity.entries_total"
	RejectionsTotal   = MetricPrefix + ".activity.rejections_total"
	SettlementsTotal  = MetricPrefix + ".activity.settlements_total"
	PayoutTokensTotal = MetricPrefix + ".activity.payout_tokens_total"
	ActivitiesRunning = MetricPrefix + ".activity.running"

	// Discord metrics
	InteractionsTotal = MetricPrefix + ".discord.interactions_total"

	// NATS metrics
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"

	// Database metrics
	DatabaseQueriesTotal  = MetricPrefix + ".database.queries_total"
	DatabaseQueryDuration = MetricPrefix + ".database.query_duration"
)

// Label keys
const (
	LabelKind       = "kind"
	LabelOperation  = "operation"
	LabelType       = "type"
	LabelEventType  = "event_type"
	LabelRepository = "repository"
	LabelMethod     = "method"
)

// Interaction types
const (
	InteractionTypeCommand   = "command"
	InteractionTypeComponent = "component"
	InteractionTypeModal     = "modal"
)
