package types

type RunMode string

const (
	// ModeLocal is the mode for running the API server locally
	ModeLocal RunMode = "local"
	// ModeAPI is the mode for running just the API server
	ModeAPI RunMode = "api"
	// ModeAWSLambdaAPI is the mode for running the API server in AWS Lambda
	ModeAWSLambdaAPI RunMode = "aws_lambda_api"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// StoreBackend selects the document store holding clients, sub-entities,
// invoices and receipts
type StoreBackend string

const (
	StoreBackendPostgres StoreBackend = "postgres"
	StoreBackendMongo    StoreBackend = "mongo"
)

// SequenceBackend selects where named counters live. "store" keeps them next
// to the records in the configured StoreBackend.
type SequenceBackend string

const (
	SequenceBackendStore    SequenceBackend = "store"
	SequenceBackendDynamoDB SequenceBackend = "dynamodb"
)
