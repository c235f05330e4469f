package backend

import (
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/models"
)

type v3ComputePhase struct {
	IsSkipped *bool   `json:"skipped,omitempty"`
	Reason    *string `json:"reason,omitempty"`
	Success   *bool   `json:"success,omitempty"`
	GasFees   *int64  `json:"gas_fees,string,omitempty"`
	GasUsed   *int64  `json:"gas_used,string,omitempty"`
	ExitCode  *int32  `json:"exit_code,omitempty"`
	VmSteps   *uint32 `json:"vm_steps,omitempty"`
}

type v3TransactionDescr struct {
	Type      string          `json:"type"`
	ComputePh *v3ComputePhase `json:"compute_ph,omitempty"`
}

type v3AccountState struct {
	Hash models.Hash `json:"hash"`
}

type v3Transaction struct {
	Account            string             `json:"account"`
	Hash               models.Hash        `json:"hash"`
	Lt                 uint64             `json:"lt,string"`
	Now                uint32             `json:"now"`
	McSeqno            uint32             `json:"mc_block_seqno"`
	OrigStatus         string             `json:"orig_status"`
	EndStatus          string             `json:"end_status"`
	Descr              v3TransactionDescr `json:"description"`
	AccountStateBefore *v3AccountState    `json:"account_state_before"`
	AccountStateAfter  *v3AccountState    `json:"account_state_after"`
}

type v3TransactionsResponse struct {
	Transactions []v3Transaction `json:"transactions"`
}

type v3Block struct {
	Workchain int32          `json:"workchain"`
	Shard     models.ShardId `json:"shard"`
	Seqno     uint32         `json:"seqno"`
}

type v3MasterchainInfo struct {
	Last  *v3Block `json:"last"`
	First *v3Block `json:"first"`
}

type v3BlocksResponse struct {
	Blocks []v3Block `json:"blocks"`
}

type v3Error struct {
	Error string `json:"error"`
}

func onchainCompute(ph *v3ComputePhase) *models.OnchainCompute {
	if ph == nil {
		return nil
	}
	var res models.OnchainCompute
	if ph.IsSkipped != nil {
		res.Skipped = *ph.IsSkipped
	}
	if ph.Reason != nil {
		res.SkipReason = *ph.Reason
	}
	if ph.Success != nil {
		res.Success = *ph.Success
	}
	if ph.ExitCode != nil {
		res.ExitCode = *ph.ExitCode
	}
	if ph.VmSteps != nil {
		res.VmSteps = *ph.VmSteps
	}
	gasUsed := ph.GasUsed
	// some indexed rows have gas_fees and gas_used swapped
	if ph.GasFees != nil && gasUsed != nil && *ph.GasFees < *gasUsed {
		gasUsed = ph.GasFees
	}
	if gasUsed != nil && *gasUsed > 0 {
		res.GasUsed = uint64(*gasUsed)
	}
	return &res
}

func (tx *v3Transaction) toData(network models.Network) (*models.TransactionData, error) {
	addr, err := models.ParseAddress(tx.Account)
	if err != nil {
		return nil, err
	}
	loc, err := models.NewTxLocator(tx.Lt, tx.Hash, addr, network)
	if err != nil {
		return nil, err
	}
	res := &models.TransactionData{
		Locator:    loc,
		McSeqno:    tx.McSeqno,
		Now:        tx.Now,
		OrigStatus: tx.OrigStatus,
		EndStatus:  tx.EndStatus,
		Compute:    onchainCompute(tx.Descr.ComputePh),
	}
	if tx.AccountStateBefore != nil {
		res.StateHashBefore = tx.AccountStateBefore.Hash
	}
	if tx.AccountStateAfter != nil {
		res.StateHashAfter = tx.AccountStateAfter.Hash
	}
	return res, nil
}
