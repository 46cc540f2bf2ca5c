package observability

// Metric name prefixes
const (
	MetricPrefix = "coinflip"
)

// Metric names
const (
	// Wager metrics
	WagersCreatedTotal  = MetricPrefix + ".wagers.created_total"
	WagersSettledTotal  = MetricPrefix + ".wagers.settled_total"
	WagersOpen          = MetricPrefix + ".wagers.open"
	ProofRejectionTotal = MetricPrefix + ".wagers.proof_rejections_total"

	// Treasury metrics
	FeesCollectedTotal = MetricPrefix + ".treasury.fees_collected_total"
	EscrowOpen         = MetricPrefix + ".treasury.escrow_open"

	// Event bus metrics
	EventsPublishedTotal = MetricPrefix + ".events.published_total"
	EventsFailedTotal    = MetricPrefix + ".events.failed_total"

	// Balance metrics
	BalanceTransactionsTotal = MetricPrefix + ".balance.transactions_total"

	// Worker metrics
	WorkerRunsTotal = MetricPrefix + ".workers.runs_total"

	// Database metrics
	DatabaseQueriesTotal  = MetricPrefix + ".database.queries_total"
	DatabaseQueryDuration = MetricPrefix + ".database.query_duration"
)

// Label keys
const (
	LabelType      = "type"
	LabelEventType = "event_type"
	LabelSink      = "sink"
	LabelStatus    = "status"
	LabelWon       = "won"
	LabelWorker    = "worker"
	LabelOutcome   = "outcome"

	// Database labels
	LabelRepository = "repository"
	LabelMethod     = "method"
)

// Worker names
const (
	WorkerForfeitSweeper = "forfeit_sweeper"
	WorkerHouseResolver  = "house_resolver"
	WorkerEpochTicker    = "epoch_ticker"
)
