package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/sirupsen/logrus"

	_ "github.com/toncenter/ton-indexer/ton-retrace-go/docs"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/links"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/models"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/runner"
)

const maxBatchSize = 100

type RequestError struct {
	Error string `json:"error"`
} // @name RequestError

type EmulateRequest struct {
	Link    string `json:"link" example:"https://ton.cx/tx/44640875000007:53bLbTDYoHiBHGJPz2/oGr1JvJ/SS7iVVeMTUi5PYpw=:EQCtJGu1Q5xptmRFuP16M2w01QValw3V8IiyxQczAf83YITE"`
	Network string `json:"network" example:"mainnet"`
} // @name EmulateRequest

func (req EmulateRequest) Validate() error {
	if len(strings.TrimSpace(req.Link)) == 0 {
		return fmt.Errorf("link is required")
	}
	return nil
}

type EmulateBatchRequest struct {
	Links   []string `json:"links"`
	Network string   `json:"network" example:"mainnet"`
} // @name EmulateBatchRequest

func (req EmulateBatchRequest) Validate() error {
	if len(req.Links) == 0 {
		return fmt.Errorf("links array cannot be empty")
	}
	if len(req.Links) > maxBatchSize {
		return fmt.Errorf("at most %d links are allowed in one batch", maxBatchSize)
	}
	for i, link := range req.Links {
		if len(strings.TrimSpace(link)) == 0 {
			return fmt.Errorf("link at index %d cannot be empty", i)
		}
	}
	return nil
}

type LinksResponse struct {
	Locator models.TxLocator  `json:"locator"`
	Links   map[string]string `json:"links"`
} // @name LinksResponse

func newLinksResponse(loc models.TxLocator, dialects []string) (LinksResponse, error) {
	rendered, err := links.RenderSelected(loc, dialects)
	if err != nil {
		return LinksResponse{}, err
	}
	return LinksResponse{Locator: loc, Links: rendered}, nil
}

type BatchItemResponse struct {
	Input  string                  `json:"input"`
	Report *models.EmulationReport `json:"report,omitempty"`
	Error  *string                 `json:"error,omitempty"`
} // @name BatchItemResponse

type EmulateBatchResponse struct {
	Items []BatchItemResponse `json:"items"`
} // @name EmulateBatchResponse

func newBatchResponse(items []runner.BatchItem) EmulateBatchResponse {
	res := EmulateBatchResponse{Items: make([]BatchItemResponse, 0, len(items))}
	for _, item := range items {
		row := BatchItemResponse{Input: item.Input, Report: item.Report}
		if item.Err != nil {
			msg := item.Err.Error()
			row.Error = &msg
		}
		res.Items = append(res.Items, row)
	}
	return res
}

type handlers struct {
	app *App
}

// linkParam reads a link from the query string. '+' of standard base64
// arrives as a space when the client did not escape it.
func linkParam(c *fiber.Ctx) (string, error) {
	link := strings.TrimSpace(c.Query("link"))
	if len(link) == 0 {
		return "", fiber.NewError(fiber.StatusBadRequest, "link is required")
	}
	return strings.ReplaceAll(link, " ", "+"), nil
}

func splitList(value string) []string {
	var res []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); len(item) > 0 {
			res = append(res, item)
		}
	}
	return res
}

// @title TON Retrace API
// @version 0.1.0
// @description TON Retrace API locates transactions by explorer links and re-executes them step by step.
// @basePath /api/retrace/

// Locate godoc
// @summary Locate transaction
// @description Resolve a transaction link, `lt:hash` pair or bare hash to a full locator.
// @tags locate
// @produce json
// @param link query string true "Transaction link or hash"
// @param network query string false "Network of the input" Enums(mainnet, testnet)
// @success 200 {object} models.TxLocator
// @failure 404 {object} RequestError
// @failure 422 {object} RequestError
// @router /v1/locate [get]
func (h *handlers) Locate(c *fiber.Ctx) error {
	link, err := linkParam(c)
	if err != nil {
		return err
	}
	testnet, err := parseNetwork(c.Query("network"))
	if err != nil {
		return err
	}
	loc, err := h.app.Links.Parse(c.UserContext(), link, testnet)
	if err != nil {
		return err
	}
	return c.JSON(&loc)
}

// Links godoc
// @summary Render transaction links
// @description Resolve a transaction and render it in every supported explorer dialect.
// @tags locate
// @produce json
// @param link query string true "Transaction link or hash"
// @param network query string false "Network of the input" Enums(mainnet, testnet)
// @param dialects query string false "Comma separated dialects to render, all by default. Example: `toncx,tonviewer`."
// @success 200 {object} LinksResponse
// @failure 404 {object} RequestError
// @failure 422 {object} RequestError
// @router /v1/links [get]
func (h *handlers) Links(c *fiber.Ctx) error {
	link, err := linkParam(c)
	if err != nil {
		return err
	}
	testnet, err := parseNetwork(c.Query("network"))
	if err != nil {
		return err
	}
	loc, err := h.app.Links.Parse(c.UserContext(), link, testnet)
	if err != nil {
		return err
	}
	res, err := newLinksResponse(loc, splitList(c.Query("dialects")))
	if err != nil {
		return err
	}
	return c.JSON(&res)
}

// McSeqnoByShard godoc
// @summary Masterchain seqno by shard block
// @description Find the first masterchain block whose shard configuration includes the given shard block.
// @tags blockchain
// @produce json
// @param workchain query int32 true "Shard block workchain"
// @param shard query string true "Shard id, decimal or 16 hex digits. Example: `8000000000000000`."
// @param seqno query int32 true "Shard block seqno"
// @param network query string false "Network" Enums(mainnet, testnet) default(mainnet)
// @success 200 {object} models.McSeqnoResult
// @failure 404 {object} RequestError
// @failure 422 {object} RequestError
// @router /v1/mcSeqnoByShard [get]
func (h *handlers) McSeqnoByShard(c *fiber.Ctx) error {
	var ref models.ShardBlockRef
	workchain, err := strconv.ParseInt(c.Query("workchain"), 10, 32)
	if err != nil {
		return models.FormatError{Input: c.Query("workchain"), Reason: "invalid workchain"}
	}
	ref.Workchain = int32(workchain)
	seqno, err := strconv.ParseUint(c.Query("seqno"), 10, 32)
	if err != nil {
		return models.FormatError{Input: c.Query("seqno"), Reason: "invalid seqno"}
	}
	ref.Seqno = uint32(seqno)
	if ref.Shard, err = models.ParseShardId(c.Query("shard")); err != nil {
		return err
	}
	network := models.Mainnet
	if value := c.Query("network"); len(value) > 0 {
		if network, err = models.ParseNetwork(strings.ToLower(value)); err != nil {
			return err
		}
	}

	res, err := h.app.Masterchain.Resolve(c.UserContext(), ref, network)
	if err != nil {
		return err
	}
	return c.JSON(&res)
}

// Emulate godoc
// @summary Emulate transaction
// @description Re-execute a transaction on its pre-transaction state and return the step-by-step compute log.
// @tags emulate
// @accept json
// @produce json
// @param request body EmulateRequest true "Emulate Request"
// @success 200 {object} models.EmulationReport
// @failure 404 {object} RequestError
// @failure 422 {object} RequestError
// @failure 502 {object} RequestError
// @router /v1/emulate [post]
func (h *handlers) Emulate(c *fiber.Ctx) error {
	var req EmulateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request: "+err.Error())
	}
	if err := req.Validate(); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request: "+err.Error())
	}
	testnet, err := parseNetwork(req.Network)
	if err != nil {
		return err
	}
	report, err := h.app.Runner.EmulateLink(c.UserContext(), req.Link, testnet)
	if err != nil {
		return err
	}
	return c.JSON(report)
}

// EmulateBatch godoc
// @summary Emulate transactions
// @description Emulate several transactions in order. A failing item does not fail the batch.
// @tags emulate
// @accept json
// @produce json
// @param request body EmulateBatchRequest true "Emulate Batch Request"
// @success 200 {object} EmulateBatchResponse
// @failure 400 {object} RequestError
// @router /v1/emulateBatch [post]
func (h *handlers) EmulateBatch(c *fiber.Ctx) error {
	var req EmulateBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request: "+err.Error())
	}
	if err := req.Validate(); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request: "+err.Error())
	}
	testnet, err := parseNetwork(req.Network)
	if err != nil {
		return err
	}
	res := newBatchResponse(h.app.Runner.EmulateBatch(c.UserContext(), req.Links, testnet))
	return c.JSON(&res)
}

func HealthCheck(c *fiber.Ctx) error {
	return c.Status(200).SendString("OK")
}

func statusOf(err error) int {
	var fiberErr *fiber.Error
	var backendErr models.BackendError
	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.As(err, &models.FormatError{}),
		errors.As(err, &models.UnrecognizedLinkError{}),
		errors.Is(err, models.ErrNetworkRequired):
		return fiber.StatusUnprocessableEntity
	case errors.As(err, &models.TransactionNotFoundError{}),
		errors.As(err, &models.NotIncludedError{}):
		return fiber.StatusNotFound
	case errors.As(err, &models.DecoderIntegrityError{}):
		return fiber.StatusInternalServerError
	case errors.As(err, &models.EmulationBackendError{}):
		if errors.Is(err, context.DeadlineExceeded) {
			return fiber.StatusGatewayTimeout
		}
		return fiber.StatusBadGateway
	case errors.As(err, &backendErr):
		if backendErr.Code >= 400 {
			return backendErr.Code
		}
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

func ErrorHandlerFunc(logger *logrus.Logger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		ip := ctx.IP()
		if ips := ctx.IPs(); len(ips) > 0 {
			ip = ips[0]
		}
		code := statusOf(err)
		msg := err.Error()
		if code == fiber.StatusInternalServerError {
			msg = fmt.Sprintf("internal server error: %s", msg)
		}
		if code != fiber.StatusNotFound {
			logger.WithFields(logrus.Fields{
				"code":    code,
				"path":    ctx.Path(),
				"ip":      ip,
				"queries": ctx.Queries(),
			}).WithError(err).Warn("request failed")
		}
		return ctx.Status(code).JSON(RequestError{Error: msg})
	}
}

func NewServer(app *App, prefork bool, logger *logrus.Logger) *fiber.App {
	h := &handlers{app: app}
	config := fiber.Config{
		AppName:        "TON Retrace API",
		Concurrency:    256 * 1024,
		Prefork:        prefork,
		ErrorHandler:   ErrorHandlerFunc(logger),
		ReadBufferSize: 1048576,
	}
	server := fiber.New(config)

	server.Use("/api/retrace/", func(c *fiber.Ctx) error {
		c.Accepts("application/json")
		start := time.Now()
		err := c.Next()
		stop := time.Now()
		c.Append("Server-timing", fmt.Sprintf("app;dur=%v", stop.Sub(start).String()))
		return err
	})

	server.Get("/healthcheck", HealthCheck)

	server.Get("/api/retrace/v1/locate", h.Locate)
	server.Get("/api/retrace/v1/links", h.Links)
	server.Get("/api/retrace/v1/mcSeqnoByShard", h.McSeqnoByShard)
	server.Post("/api/retrace/v1/emulate", h.Emulate)
	server.Post("/api/retrace/v1/emulateBatch", h.EmulateBatch)

	var swagger_config = swagger.Config{
		Title:           "TON Retrace API - Swagger UI",
		Layout:          "BaseLayout",
		DeepLinking:     true,
		TryItOutEnabled: true,
	}
	server.Get("/api/retrace/*", swagger.New(swagger_config))
	return server
}
