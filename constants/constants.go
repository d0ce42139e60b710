package constants

// DefaultAllowOrigin - local frontend dev server, always allowed by CORS
const DefaultAllowOrigin = "http://localhost:8080"

// deployment
const (
	// EnvStage - deployment stage name, API is also served under /{stage}
	EnvStage = "ENV"
	EnvPort  = "PORT"
	// EnvAllowOrigin - optional extra CORS origin, may be a glob (https://*.example.com)
	EnvAllowOrigin = "ALLOW_ORIGIN"
	// EnvLambdaFunctionName is set by the Lambda runtime
	EnvLambdaFunctionName = "AWS_LAMBDA_FUNCTION_NAME"
)

// storage
const (
	EnvStoreType = "STORE"
	// EnvTableName - DynamoDB table holding todos
	EnvTableName        = "STORAGE_TODODB_NAME"
	EnvAWSRegion        = "AWS_REGION"
	EnvDynamoDBEndpoint = "DYNAMODB_ENDPOINT"
	EnvDataDir          = "DATA_DIR"
)

// logging
const (
	// EnvDebug - set to true to enable debug logging
	EnvDebug     = "DEBUG"
	EnvLogFormat = "LOG_FORMAT"
)
