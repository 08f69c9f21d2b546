package server

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/go-batchpay/internal/api"
)

type chainIDReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

// checkLedger 启动时校验节点链 ID 与批量合约接口，避免向错误的网络发送交易
func checkLedger(ctx context.Context, s *api.Server) error {
	if reader, ok := s.Ledger.(chainIDReader); ok {
		chainID, err := reader.ChainID(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to read chain id from node")
		}

		if chainID.Int64() != s.Config.Ledger.ChainID {
			return errors.Errorf("node serves chain %s, configured chain is %d", chainID, s.Config.Ledger.ChainID)
		}
	}

	batchContract := common.HexToAddress(s.Config.Ledger.BatchContract)

	iface, err := s.Ledger.ResolveInterface(ctx, batchContract)
	if err != nil {
		return errors.Wrapf(err, "failed to resolve batch contract %s", batchContract.Hex())
	}

	if !iface.HasMethod(s.Config.Ledger.DistributeMethod) {
		return errors.Errorf("batch contract %s has no method %q", batchContract.Hex(), s.Config.Ledger.DistributeMethod)
	}

	log.Info().
		Int64("chain_id", s.Config.Ledger.ChainID).
		Str("batch_contract", batchContract.Hex()).
		Str("resolver", s.Config.Ledger.ResolverMode).
		Msg("Ledger check passed")

	return nil
}
