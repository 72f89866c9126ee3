package contract

// Method names on the whitelist contract.
const (
	methodAdd         = "addAddressToWhitelist"
	methodMax         = "maxWhitelistedAddresses"
	methodCount       = "numAddressesWhitelisted"
	methodWhitelisted = "whitelistedAddress"
)

// WhitelistABI covers the deployed Whitelist contract.
// The counters are uint8 on chain.
const WhitelistABI = `[
	{
		"inputs": [{"internalType": "uint8", "name": "_maxWhitelistedAddresses", "type": "uint8"}],
		"stateMutability": "nonpayable",
		"type": "constructor"
	},
	{
		"inputs": [],
		"name": "addAddressToWhitelist",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "maxWhitelistedAddresses",
		"outputs": [{"internalType": "uint8", "name": "", "type": "uint8"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "numAddressesWhitelisted",
		"outputs": [{"internalType": "uint8", "name": "", "type": "uint8"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "address", "name": "", "type": "address"}],
		"name": "whitelistedAddress",
		"outputs": [{"internalType": "bool", "name": "", "type": "bool"}],
		"stateMutability": "view",
		"type": "function"
	}
]`
