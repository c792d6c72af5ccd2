// Where: internal/constants/env.go
// What: Environment variable naming constants.
// Why: Centralize environment variable names to avoid typos and inconsistencies.
package constants

// Suffixes combined with the tool prefix by envutil.Key.
const (
	SuffixConfigPath  = "CONFIG_PATH"
	SuffixConfigHome  = "CONFIG_HOME"
	SuffixProjectDir  = "PROJECT_DIR"
	SuffixLogLevel    = "LOG"
	SuffixInteractive = "INTERACTIVE"

	// Local development stack
	SuffixPortDynamoDB    = "PORT_DYNAMODB"
	SuffixPortDynamoAdmin = "PORT_DYNAMODB_ADMIN"
)

// Variables shared with the deployment scripts, read unprefixed.
const (
	EnvProjectName = "PROJECT_NAME"
	EnvEnvironment = "ENVIRONMENT"
	EnvAWSRegion   = "AWS_REGION"
	EnvAWSProfile  = "AWS_PROFILE"

	// DynamoDB endpoint override for the local development stack.
	EnvDynamoEndpoint = "DYNAMODB_ENDPOINT"
)
