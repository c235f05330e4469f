package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/models"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/ratelimit"
)

const (
	DefaultMainnetEndpoint = "https://toncenter.com"
	DefaultTestnetEndpoint = "https://testnet.toncenter.com"
)

// Toncenter reads transactions and shard state from the toncenter v3 API.
// Every request waits on the shared limiter first.
type Toncenter struct {
	Endpoint string
	ApiKey   string
	Network  models.Network
	Timeout  time.Duration
	Limiter  *ratelimit.Limiter
}

func NewToncenter(endpoint string, apiKey string, network models.Network, timeout time.Duration, limiter *ratelimit.Limiter) *Toncenter {
	if len(endpoint) == 0 {
		endpoint = DefaultMainnetEndpoint
		if network.IsTestnet() {
			endpoint = DefaultTestnetEndpoint
		}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Toncenter{
		Endpoint: endpoint,
		ApiKey:   apiKey,
		Network:  network,
		Timeout:  timeout,
		Limiter:  limiter,
	}
}

// get returns found=false on 404 and a BackendError on transport failures,
// rate limiting and server errors.
func (t *Toncenter) get(ctx context.Context, path string, params url.Values, out any) (bool, error) {
	if err := t.Limiter.Acquire(ctx); err != nil {
		return false, err
	}

	baseUrl, err := url.Parse(t.Endpoint)
	if err != nil {
		return false, models.BackendError{Code: 500, Message: err.Error()}
	}
	baseUrl.Path += path
	baseUrl.RawQuery = params.Encode()

	timeout := t.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return false, context.DeadlineExceeded
	}

	agent := fiber.Get(baseUrl.String())
	if len(t.ApiKey) > 0 {
		agent.Set("X-Api-Key", t.ApiKey)
	}
	agent.Timeout(timeout)

	type result struct {
		code int
		body []byte
		errs []error
	}
	done := make(chan result, 1)
	go func() {
		code, body, errs := agent.Bytes()
		done <- result{code, body, errs}
	}()
	var res result
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case res = <-done:
	}
	if len(res.errs) > 0 {
		return false, models.BackendError{Code: 502, Message: res.errs[0].Error()}
	}
	code, body := res.code, res.body

	switch {
	case code == fiber.StatusNotFound:
		return false, nil
	case code < 200 || code >= 300:
		msg := fmt.Sprintf("%s returned status %d", path, code)
		var e v3Error
		if json.Unmarshal(body, &e) == nil && len(e.Error) > 0 {
			msg = fmt.Sprintf("%s: %s", msg, e.Error)
		}
		return false, models.BackendError{Code: code, Message: msg}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return false, models.BackendError{Code: 502, Message: fmt.Sprintf("failed to decode %s response: %v", path, err)}
	}
	return true, nil
}

func (t *Toncenter) queryTransaction(ctx context.Context, params url.Values, ref string) (*models.TransactionData, error) {
	params.Set("limit", "1")
	var resp v3TransactionsResponse
	found, err := t.get(ctx, "/api/v3/transactions", params, &resp)
	if err != nil {
		return nil, err
	}
	if !found || len(resp.Transactions) == 0 {
		return nil, notFound(ref, t.Network)
	}
	res, err := resp.Transactions[0].toData(t.Network)
	if err != nil {
		return nil, models.BackendError{Code: 502, Message: fmt.Sprintf("malformed transaction %s: %v", ref, err)}
	}
	return res, nil
}

func (t *Toncenter) LookupTransaction(ctx context.Context, hash models.Hash, lt uint64) (*models.TransactionData, error) {
	params := url.Values{}
	params.Set("hash", hash.Base64())
	ref := hash.Base64()
	if lt > 0 {
		params.Set("lt", strconv.FormatUint(lt, 10))
		ref = fmt.Sprintf("%d:%s", lt, ref)
	}
	res, err := t.queryTransaction(ctx, params, ref)
	if err != nil {
		return nil, err
	}
	if res.Locator.Hash != hash || (lt > 0 && res.Locator.Lt != lt) {
		return nil, notFound(ref, t.Network)
	}
	return res, nil
}

func (t *Toncenter) FetchTransaction(ctx context.Context, loc models.TxLocator) (*models.TransactionData, error) {
	params := url.Values{}
	params.Set("hash", loc.Hash.Base64())
	params.Set("lt", strconv.FormatUint(loc.Lt, 10))
	params.Set("account", loc.Address.Raw())
	res, err := t.queryTransaction(ctx, params, loc.String())
	if err != nil {
		return nil, err
	}
	if res.Locator.Hash != loc.Hash || res.Locator.Lt != loc.Lt || !res.Locator.Address.Equal(loc.Address) {
		return nil, notFound(loc.String(), t.Network)
	}
	return res, nil
}

func (t *Toncenter) ChainHead(ctx context.Context) (uint32, error) {
	var info v3MasterchainInfo
	found, err := t.get(ctx, "/api/v3/masterchainInfo", url.Values{}, &info)
	if err != nil {
		return 0, err
	}
	if !found || info.Last == nil {
		return 0, models.BackendError{Code: 502, Message: "masterchain info is not available"}
	}
	return info.Last.Seqno, nil
}

func (t *Toncenter) ShardConfig(ctx context.Context, mcSeqno uint32, workchain int32) (models.ShardSeqnoTable, error) {
	params := url.Values{}
	params.Set("seqno", strconv.FormatUint(uint64(mcSeqno), 10))
	var resp v3BlocksResponse
	found, err := t.get(ctx, "/api/v3/masterchainBlockShardState", params, &resp)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.BackendError{Code: 502, Message: fmt.Sprintf("shard state of masterchain block %d is not available", mcSeqno)}
	}
	table := models.ShardSeqnoTable{}
	for _, blk := range resp.Blocks {
		if blk.Workchain != workchain {
			continue
		}
		table = append(table, models.ShardSeqno{Workchain: blk.Workchain, Shard: blk.Shard, Seqno: blk.Seqno})
	}
	return table, nil
}
