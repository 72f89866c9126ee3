package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	// Blockchain/Ethereum errors
	CodeEthereumConnectionFailed: "Failed to connect to Ethereum node",
	CodeEthereumSubscribeFailed:  "Failed to subscribe to Ethereum events",
	CodeEthereumRPCError:         "Ethereum RPC call failed",
	CodeBlockNotFound:            "Block not found",
	CodeGasEstimationFailed:      "Gas estimation failed",
	CodeWrongNetwork:             "Connected to the wrong network",

	// Wallet errors
	CodeWalletNotConfigured: "No wallet configured",
	CodeWalletUnlockFailed:  "Failed to unlock wallet",
	CodeInvalidPrivateKey:   "Invalid private key",
	CodeWalletNotConnected:  "Wallet is not connected",

	// Contract errors
	CodeContractCallFailed:   "Smart contract call failed",
	CodeContractNoCode:       "No contract deployed at address",
	CodeTransactionFailed:    "Failed to send transaction",
	CodeTransactionReverted:  "Transaction reverted",
	CodeTransactionSignError: "Failed to sign transaction",
	CodeAlreadyWhitelisted:   "Address is already whitelisted",

	// Circuit breaker errors
	CodeCircuitOpen:     "Circuit breaker is open",
	CodeCircuitHalfOpen: "Circuit breaker is half-open",
}
