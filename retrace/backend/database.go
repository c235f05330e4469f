package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/models"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/ratelimit"
)

// DbClient reads a ton-index Postgres database directly. Queries wait on
// the shared limiter like every other outbound call.
type DbClient struct {
	Pool    *pgxpool.Pool
	Network models.Network
	Limiter *ratelimit.Limiter
}

func afterConnectRegisterTypes(ctx context.Context, conn *pgx.Conn) error {
	for _, type_name := range []string{"tonaddr", "_tonaddr", "tonhash", "_tonhash"} {
		data_type, err := conn.LoadType(ctx, type_name)
		if err != nil {
			return fmt.Errorf("failed to load type '%s': %v", type_name, err)
		}
		conn.TypeMap().RegisterType(data_type)
	}
	return nil
}

func NewDbClient(dsn string, maxconns int, minconns int, network models.Network, limiter *ratelimit.Limiter) (*DbClient, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if maxconns > 0 {
		config.MaxConns = int32(maxconns)
	}
	if minconns > 0 {
		config.MinConns = int32(minconns)
	}
	config.HealthCheckPeriod = 60 * time.Second
	config.AfterConnect = afterConnectRegisterTypes

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %v", err)
	}
	if err = pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %v", err)
	}
	return &DbClient{Pool: pool, Network: network, Limiter: limiter}, nil
}

func (db *DbClient) Close() {
	db.Pool.Close()
}

func (db *DbClient) acquire(ctx context.Context) (*pgxpool.Conn, error) {
	if err := db.Limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, models.BackendError{Code: 500, Message: err.Error()}
	}
	return conn, nil
}

const transactionColumns = `T.account, T.hash, T.lt, T.now, T.mc_block_seqno, T.orig_status, T.end_status,
	T.account_state_hash_before, T.account_state_hash_after, T.compute_skipped, T.skipped_reason,
	T.compute_success, T.compute_gas_fees, T.compute_gas_used, T.compute_exit_code, T.compute_vm_steps`

func scanTransaction(row pgx.Row, network models.Network) (*models.TransactionData, error) {
	var account, hash string
	var lt int64
	var now, mcSeqno *int32
	var origStatus, endStatus, hashBefore, hashAfter *string
	var ph v3ComputePhase
	err := row.Scan(&account, &hash, &lt, &now, &mcSeqno, &origStatus, &endStatus,
		&hashBefore, &hashAfter, &ph.IsSkipped, &ph.Reason,
		&ph.Success, &ph.GasFees, &ph.GasUsed, &ph.ExitCode, &ph.VmSteps)
	if err != nil {
		return nil, err
	}

	tx := v3Transaction{Account: account, Lt: uint64(lt)}
	if tx.Hash, err = models.ParseHash(hash); err != nil {
		return nil, err
	}
	if now != nil {
		tx.Now = uint32(*now)
	}
	if mcSeqno != nil {
		tx.McSeqno = uint32(*mcSeqno)
	}
	if origStatus != nil {
		tx.OrigStatus = *origStatus
	}
	if endStatus != nil {
		tx.EndStatus = *endStatus
	}
	if tx.AccountStateBefore, err = scanStateHash(hashBefore); err != nil {
		return nil, err
	}
	if tx.AccountStateAfter, err = scanStateHash(hashAfter); err != nil {
		return nil, err
	}
	if ph.IsSkipped != nil || ph.VmSteps != nil {
		tx.Descr.ComputePh = &ph
	}
	return tx.toData(network)
}

func scanStateHash(value *string) (*v3AccountState, error) {
	if value == nil {
		return nil, nil
	}
	h, err := models.ParseHash(*value)
	if err != nil {
		return nil, err
	}
	return &v3AccountState{Hash: h}, nil
}

func (db *DbClient) queryTransaction(ctx context.Context, ref string, query string, args ...any) (*models.TransactionData, error) {
	conn, err := db.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	res, err := scanTransaction(conn.QueryRow(ctx, query, args...), db.Network)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(ref, db.Network)
	}
	if err != nil {
		return nil, models.BackendError{Code: 500, Message: err.Error()}
	}
	return res, nil
}

func (db *DbClient) LookupTransaction(ctx context.Context, hash models.Hash, lt uint64) (*models.TransactionData, error) {
	if lt > 0 {
		return db.queryTransaction(ctx, fmt.Sprintf("%d:%s", lt, hash.Base64()),
			`select `+transactionColumns+` from transactions as T where T.hash = $1 and T.lt = $2 limit 1`,
			hash.Base64(), int64(lt))
	}
	return db.queryTransaction(ctx, hash.Base64(),
		`select `+transactionColumns+` from transactions as T where T.hash = $1 order by T.lt desc limit 1`,
		hash.Base64())
}

func (db *DbClient) FetchTransaction(ctx context.Context, loc models.TxLocator) (*models.TransactionData, error) {
	return db.queryTransaction(ctx, loc.String(),
		`select `+transactionColumns+` from transactions as T where T.account = $1 and T.hash = $2 and T.lt = $3 limit 1`,
		loc.Address.Raw(), loc.Hash.Base64(), int64(loc.Lt))
}

func (db *DbClient) ChainHead(ctx context.Context) (uint32, error) {
	conn, err := db.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	var seqno int32
	err = conn.QueryRow(ctx, "select seqno from blocks where workchain = -1 order by seqno desc limit 1").Scan(&seqno)
	if err != nil {
		return 0, models.BackendError{Code: 500, Message: err.Error()}
	}
	return uint32(seqno), nil
}

func (db *DbClient) ShardConfig(ctx context.Context, mcSeqno uint32, workchain int32) (models.ShardSeqnoTable, error) {
	conn, err := db.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `select S.workchain, S.shard, S.seqno from shard_state as S
		where S.mc_seqno = $1 and S.workchain = $2
		order by S.workchain, S.shard, S.seqno`, int32(mcSeqno), workchain)
	if err != nil {
		return nil, models.BackendError{Code: 500, Message: err.Error()}
	}
	defer rows.Close()

	table := models.ShardSeqnoTable{}
	for rows.Next() {
		var item models.ShardSeqno
		var shard int64
		var seqno int32
		if err := rows.Scan(&item.Workchain, &shard, &seqno); err != nil {
			return nil, models.BackendError{Code: 500, Message: err.Error()}
		}
		item.Shard = models.ShardId(shard)
		item.Seqno = uint32(seqno)
		table = append(table, item)
	}
	if err := rows.Err(); err != nil {
		return nil, models.BackendError{Code: 500, Message: err.Error()}
	}
	return table, nil
}
