// Package indexer ingests Aave v3 LiquidationCall events from a live
// WebSocket subscription and persists them as liquidation records.
package indexer

import (
	"fmt"
	"strconv"

	"liquidation-radar/internal/domain"
	"liquidation-radar/internal/ethereum"
)

// Aave v3 Pool LiquidationCall event:
// LiquidationCall(address indexed collateralAsset, address indexed debtAsset,
// address indexed user, uint256 debtToCover, uint256 liquidatedCollateralAmount,
// address liquidator, bool receiveAToken)
const LiquidationCallTopic = "0xe413a321e8681d831f4dbccbca790d2952b56f977908e45be37335533e005286"

// Aave v3 Pool on Ethereum mainnet.
const AavePoolAddress = "0x87870bca3f3fd6335c3f4ce8392d69350b4fa4e2"

// DecodeLiquidation converts a LiquidationCall log into a liquidation record.
// blockTimestamp is the Unix timestamp of the log's block.
func DecodeLiquidation(log ethereum.Log, blockTimestamp int64) (*domain.LiquidationRecord, error) {
	if len(log.Topics) != 4 {
		return nil, fmt.Errorf("expected 4 topics, got %d", len(log.Topics))
	}
	if log.Topics[0] != LiquidationCallTopic {
		return nil, fmt.Errorf("unexpected topic0 %s", log.Topics[0])
	}

	collateralAsset, err := ethereum.TopicToAddress(log.Topics[1])
	if err != nil {
		return nil, fmt.Errorf("decode collateral asset: %w", err)
	}
	debtAsset, err := ethereum.TopicToAddress(log.Topics[2])
	if err != nil {
		return nil, fmt.Errorf("decode debt asset: %w", err)
	}
	user, err := ethereum.TopicToAddress(log.Topics[3])
	if err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}

	debtWord, err := ethereum.DataWord(log.Data, 0)
	if err != nil {
		return nil, fmt.Errorf("decode debtToCover: %w", err)
	}
	debtToCover, err := ethereum.WordToBig(debtWord)
	if err != nil {
		return nil, fmt.Errorf("decode debtToCover: %w", err)
	}

	collateralWord, err := ethereum.DataWord(log.Data, 1)
	if err != nil {
		return nil, fmt.Errorf("decode liquidatedCollateralAmount: %w", err)
	}
	liquidatedCollateral, err := ethereum.WordToBig(collateralWord)
	if err != nil {
		return nil, fmt.Errorf("decode liquidatedCollateralAmount: %w", err)
	}

	liquidatorWord, err := ethereum.DataWord(log.Data, 2)
	if err != nil {
		return nil, fmt.Errorf("decode liquidator: %w", err)
	}
	liquidator, err := ethereum.WordToAddress(liquidatorWord)
	if err != nil {
		return nil, fmt.Errorf("decode liquidator: %w", err)
	}

	blockNumber, err := ethereum.HexToUint64(log.BlockNumber)
	if err != nil {
		return nil, fmt.Errorf("decode block number: %w", err)
	}
	logIndex, err := ethereum.HexToUint64(log.LogIndex)
	if err != nil {
		return nil, fmt.Errorf("decode log index: %w", err)
	}

	return &domain.LiquidationRecord{
		ID:                         log.TransactionHash + "-" + strconv.FormatUint(logIndex, 10),
		User:                       user,
		Liquidator:                 liquidator,
		CollateralAsset:            collateralAsset,
		DebtAsset:                  debtAsset,
		DebtToCover:                debtToCover.String(),
		LiquidatedCollateralAmount: liquidatedCollateral.String(),
		BlockTimestamp:             blockTimestamp,
		BlockNumber:                int64(blockNumber),
		TxHash:                     log.TransactionHash,
	}, nil
}
