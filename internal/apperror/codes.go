package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Whitelist dApp error codes
const (
	// Blockchain/Ethereum errors
	CodeEthereumConnectionFailed Code = "ETHEREUM_CONNECTION_FAILED"
	CodeEthereumSubscribeFailed  Code = "ETHEREUM_SUBSCRIBE_FAILED"
	CodeEthereumRPCError         Code = "ETHEREUM_RPC_ERROR"
	CodeBlockNotFound            Code = "BLOCK_NOT_FOUND"
	CodeGasEstimationFailed      Code = "GAS_ESTIMATION_FAILED"
	CodeWrongNetwork             Code = "WRONG_NETWORK"

	// Wallet errors
	CodeWalletNotConfigured Code = "WALLET_NOT_CONFIGURED"
	CodeWalletUnlockFailed  Code = "WALLET_UNLOCK_FAILED"
	CodeInvalidPrivateKey   Code = "INVALID_PRIVATE_KEY"
	CodeWalletNotConnected  Code = "WALLET_NOT_CONNECTED"

	// Contract errors
	CodeContractCallFailed   Code = "CONTRACT_CALL_FAILED"
	CodeContractNoCode       Code = "CONTRACT_NOT_FOUND"
	CodeTransactionFailed    Code = "TRANSACTION_FAILED"
	CodeTransactionReverted  Code = "TRANSACTION_REVERTED"
	CodeTransactionSignError Code = "TRANSACTION_SIGN_ERROR"
	CodeAlreadyWhitelisted   Code = "ALREADY_WHITELISTED"

	// Circuit breaker errors
	CodeCircuitOpen     Code = "CIRCUIT_OPEN"
	CodeCircuitHalfOpen Code = "CIRCUIT_HALF_OPEN"
)
