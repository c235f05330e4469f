package backend

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/models"
)

const (
	sampleTxHashB64  = "Pl9JeY3iOdpdj4C03DACBNN2E+QgOj97h3wEqIyBhWs="
	sampleTxLt       = 47670702000009
	sampleAccountRaw = "0:DAE153A74D894BBC32748198CD626E4F5DF4A69AD2FA56CE80FC2644B5708D20"
	sampleAccount    = "EQDa4VOnTYlLvDJ0gZjNYm5PXfSmmtL6Vs6A_CZEtXCNICq_"
)

var sampleTransaction = fiber.Map{
	"account":        sampleAccountRaw,
	"hash":           sampleTxHashB64,
	"lt":             "47670702000009",
	"now":            1719830000,
	"mc_block_seqno": 38711042,
	"orig_status":    "active",
	"end_status":     "active",
	"description": fiber.Map{
		"type": "ord",
		"compute_ph": fiber.Map{
			"skipped":   false,
			"success":   true,
			"gas_fees":  "1284000",
			"gas_used":  "3210",
			"exit_code": 0,
			"vm_steps":  68,
		},
	},
	"account_state_before": fiber.Map{"hash": "MHnWHKLB8ljiAn7hYlqxIGdb92upgg57Kffxgf2EqBg="},
	"account_state_after":  fiber.Map{"hash": "16ll3S16/iv63Ins6npGQa6sIPJUhoJG6O719AqyMkA="},
}

func startFakeToncenter(t *testing.T, app *fiber.App) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })
	return "http://" + ln.Addr().String()
}

// recorder keeps the last request values seen by a fake handler.
type recorder struct {
	mu     sync.Mutex
	values map[string]string
}

func (r *recorder) set(key, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.values == nil {
		r.values = map[string]string{}
	}
	// fiber reuses request buffers once the handler returns
	r.values[key] = strings.Clone(value)
}

func (r *recorder) get(key string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.values[key]
}

func newFakeApp() *fiber.App {
	return fiber.New(fiber.Config{DisableStartupMessage: true})
}

func sampleHash(t *testing.T) models.Hash {
	h, err := models.ParseHash(sampleTxHashB64)
	require.NoError(t, err)
	return h
}

func TestToncenterLookupTransaction(t *testing.T) {
	app := newFakeApp()
	var seen recorder
	app.Get("/api/v3/transactions", func(c *fiber.Ctx) error {
		seen.set("apiKey", c.Get("X-Api-Key"))
		seen.set("lt", c.Query("lt"))
		if c.Query("hash") != sampleTxHashB64 {
			return c.JSON(fiber.Map{"transactions": []fiber.Map{}, "address_book": fiber.Map{}})
		}
		return c.JSON(fiber.Map{"transactions": []fiber.Map{sampleTransaction}, "address_book": fiber.Map{}})
	})
	client := NewToncenter(startFakeToncenter(t, app), "secret", models.Testnet, time.Second, nil)

	tx, err := client.LookupTransaction(context.Background(), sampleHash(t), 0)
	require.NoError(t, err)
	assert.Equal(t, "secret", seen.get("apiKey"))
	assert.Equal(t, "", seen.get("lt"))
	assert.Equal(t, uint64(sampleTxLt), tx.Locator.Lt)
	assert.Equal(t, models.Testnet, tx.Locator.Network)
	assert.Equal(t, sampleAccount, tx.Locator.Address.String())
	assert.Equal(t, uint32(38711042), tx.McSeqno)
	assert.Equal(t, "16ll3S16/iv63Ins6npGQa6sIPJUhoJG6O719AqyMkA=", tx.StateHashAfter.Base64())
	require.NotNil(t, tx.Compute)
	assert.Equal(t, uint32(68), tx.Compute.VmSteps)
	assert.Equal(t, uint64(3210), tx.Compute.GasUsed)
	assert.True(t, tx.Compute.Success)

	_, err = client.LookupTransaction(context.Background(), sampleHash(t), sampleTxLt)
	require.NoError(t, err)
	assert.Equal(t, "47670702000009", seen.get("lt"))

	_, err = client.LookupTransaction(context.Background(), sampleHash(t), sampleTxLt+1)
	var notFound models.TransactionNotFoundError
	require.True(t, errors.As(err, &notFound), "got %v", err)
	assert.Equal(t, []models.Network{models.Testnet}, notFound.Networks)

	_, err = client.LookupTransaction(context.Background(), models.Hash{1}, 0)
	assert.True(t, errors.As(err, &notFound), "got %v", err)
}

func TestToncenterFetchTransaction(t *testing.T) {
	app := newFakeApp()
	var seen recorder
	app.Get("/api/v3/transactions", func(c *fiber.Ctx) error {
		seen.set("account", c.Query("account"))
		return c.JSON(fiber.Map{"transactions": []fiber.Map{sampleTransaction}})
	})
	client := NewToncenter(startFakeToncenter(t, app), "", models.Mainnet, time.Second, nil)

	addr, err := models.ParseAddress(sampleAccount)
	require.NoError(t, err)
	loc, err := models.NewTxLocator(sampleTxLt, sampleHash(t), addr, models.Mainnet)
	require.NoError(t, err)

	tx, err := client.FetchTransaction(context.Background(), loc)
	require.NoError(t, err)
	assert.Equal(t, sampleAccountRaw, seen.get("account"))
	assert.True(t, loc.Equal(tx.Locator))

	other := loc
	other.Lt++
	_, err = client.FetchTransaction(context.Background(), other)
	assert.ErrorAs(t, err, &models.TransactionNotFoundError{})
}

func TestToncenterErrors(t *testing.T) {
	app := newFakeApp()
	app.Get("/api/v3/transactions", func(c *fiber.Ctx) error {
		switch c.Query("hash") {
		case models.Hash{1}.Base64():
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		case models.Hash{2}.Base64():
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Ratelimit exceed"})
		default:
			return c.Status(fiber.StatusInternalServerError).SendString("boom")
		}
	})
	client := NewToncenter(startFakeToncenter(t, app), "", models.Mainnet, time.Second, nil)
	ctx := context.Background()

	_, err := client.LookupTransaction(ctx, models.Hash{1}, 0)
	assert.ErrorAs(t, err, &models.TransactionNotFoundError{})

	_, err = client.LookupTransaction(ctx, models.Hash{2}, 0)
	var backendErr models.BackendError
	require.True(t, errors.As(err, &backendErr), "got %v", err)
	assert.Equal(t, fiber.StatusTooManyRequests, backendErr.Code)
	assert.Contains(t, backendErr.Message, "Ratelimit exceed")

	_, err = client.LookupTransaction(ctx, models.Hash{3}, 0)
	require.True(t, errors.As(err, &backendErr), "got %v", err)
	assert.Equal(t, fiber.StatusInternalServerError, backendErr.Code)

	unreachable := NewToncenter("http://127.0.0.1:1", "", models.Mainnet, time.Second, nil)
	_, err = unreachable.ChainHead(ctx)
	require.True(t, errors.As(err, &backendErr), "got %v", err)
	assert.Equal(t, 502, backendErr.Code)
}

func TestToncenterChainData(t *testing.T) {
	app := newFakeApp()
	app.Get("/api/v3/masterchainInfo", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"last":  fiber.Map{"workchain": -1, "shard": "-9223372036854775808", "seqno": 36200000},
			"first": fiber.Map{"workchain": -1, "shard": "-9223372036854775808", "seqno": 1},
		})
	})
	app.Get("/api/v3/masterchainBlockShardState", func(c *fiber.Ctx) error {
		if c.Query("seqno") != "36109845" {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "block not found"})
		}
		return c.JSON(fiber.Map{"blocks": []fiber.Map{
			{"workchain": -1, "shard": "-9223372036854775808", "seqno": 36109845},
			{"workchain": 0, "shard": "-9223372036854775808", "seqno": 41917556},
		}})
	})
	client := NewToncenter(startFakeToncenter(t, app), "", models.Mainnet, time.Second, nil)
	ctx := context.Background()

	head, err := client.ChainHead(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(36200000), head)

	table, err := client.ShardConfig(ctx, 36109845, 0)
	require.NoError(t, err)
	assert.Equal(t, models.ShardSeqnoTable{{Workchain: 0, Shard: models.MasterchainShard, Seqno: 41917556}}, table)

	_, err = client.ShardConfig(ctx, 1, 0)
	assert.ErrorAs(t, err, &models.BackendError{})
}

func TestNewToncenterDefaults(t *testing.T) {
	assert.Equal(t, DefaultMainnetEndpoint, NewToncenter("", "", models.Mainnet, 0, nil).Endpoint)
	assert.Equal(t, DefaultTestnetEndpoint, NewToncenter("", "", models.Testnet, 0, nil).Endpoint)
	assert.Equal(t, 10*time.Second, NewToncenter("", "", models.Testnet, 0, nil).Timeout)
}

func TestToncenterCancel(t *testing.T) {
	app := newFakeApp()
	app.Get("/api/v3/masterchainInfo", func(c *fiber.Ctx) error {
		time.Sleep(time.Second)
		return c.JSON(fiber.Map{"last": fiber.Map{"workchain": -1, "seqno": 1}})
	})
	client := NewToncenter(startFakeToncenter(t, app), "", models.Mainnet, 10*time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	start := time.Now()
	_, err := client.ChainHead(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}
