package domain

const (
	// Native currency symbols
	NATIVE_CURRENCY_ETH = "ETH"
	NATIVE_CURRENCY_XTZ = "XTZ"

	// Blockchain constants
	ETHEREUM_ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"

	// BALANCE_TOLERANCE is the rounding tolerance used when comparing computed and live balances
	BALANCE_TOLERANCE = "0.000001"
)
