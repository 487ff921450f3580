package domain

import "errors"

var (
	// ErrInvalidInput is returned when a request is malformed and must be rejected before any write
	ErrInvalidInput = errors.New("invalid input")

	// ErrAccountNotFound is returned when an account is not found
	ErrAccountNotFound = errors.New("account not found")

	// ErrInitialBalanceExists is returned when an initial balance already exists and overwrite was not requested
	ErrInitialBalanceExists = errors.New("initial balance already exists")

	// ErrUnsupportedBlockchain is returned when no chain data source serves a blockchain
	ErrUnsupportedBlockchain = errors.New("unsupported blockchain")

	// ErrOracleUnavailable is returned when no live balance could be fetched
	ErrOracleUnavailable = errors.New("balance oracle unavailable")
)
