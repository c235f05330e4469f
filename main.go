package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/psiemens/sconfig"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/links"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/models"
)

type Config struct {
	Backend           string `default:"toncenter" flag:"backend" info:"transaction backend. Valid values (toncenter, postgres)"`
	MainnetEndpoint   string `default:"https://toncenter.com" flag:"mainnet-endpoint" info:"toncenter v3 endpoint for mainnet"`
	TestnetEndpoint   string `default:"https://testnet.toncenter.com" flag:"testnet-endpoint" info:"toncenter v3 endpoint for testnet"`
	ApiKey            string `default:"" flag:"api-key" info:"toncenter API key"`
	RequestTimeoutMs  int    `default:"10000" flag:"request-timeout" info:"backend request timeout in milliseconds"`
	RateLimitMs       int    `default:"1000" flag:"rate-limit" info:"minimum interval between outbound requests in milliseconds, 0 disables"`
	PgDsn             string `default:"" flag:"pg" info:"PostgreSQL connection string of a mainnet ton-index database"`
	TestnetPgDsn      string `default:"" flag:"testnet-pg" info:"PostgreSQL connection string of a testnet ton-index database"`
	MaxConns          int    `default:"100" flag:"maxconns" info:"PostgreSQL max connections"`
	MinConns          int    `default:"0" flag:"minconns" info:"PostgreSQL min connections"`
	LiteConfig        string `default:"" flag:"liteserver-config" info:"global config URL of mainnet liteservers used as chain source"`
	TestnetLiteConfig string `default:"" flag:"testnet-liteserver-config" info:"global config URL of testnet liteservers used as chain source"`
	Redis             string `default:"localhost:6379" flag:"redis" info:"Redis server dsn"`
	EmulatorQueue     string `default:"emulatorqueue" flag:"emulator-queue" info:"Redis queue name of the emulator worker"`
	EmulatorTimeoutMs int    `default:"30000" flag:"emulator-timeout" info:"emulation timeout in milliseconds"`
	CacheTTLSec       int    `default:"86400" flag:"cache-ttl" info:"lookup cache TTL in seconds, 0 disables the cache"`
	StrictNetwork     bool   `default:"false" flag:"strict-network" info:"require an explicit network for inputs that do not name one"`
	Bind              string `default:":8080" flag:"bind" info:"bind address"`
	Prefork           bool   `default:"false" flag:"prefork" info:"prefork workers"`
	Verbose           bool   `default:"false" flag:"verbose,v" info:"enable verbose logging"`
	LogFormat         string `default:"text" flag:"log-format" info:"logging output format. Valid values (text, JSON)"`
}

const EnvPrefix = "TON_RETRACE"

var (
	log  *logrus.Logger
	conf Config
)

var rootCmd = &cobra.Command{
	Use:           "ton-retrace",
	Short:         "Locate and re-execute TON transactions",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogger()
	},
}

func init() {
	initLogger()

	rootCmd.AddCommand(serveCmd, locateCmd, recognizeCmd, linksCmd, mcSeqnoCmd, emulateCmd)
	for _, cmd := range []*cobra.Command{locateCmd, linksCmd, mcSeqnoCmd, emulateCmd} {
		cmd.Flags().String("network", "", "network of the input. Valid values (mainnet, testnet)")
	}
	linksCmd.Flags().StringSlice("dialect", nil, "dialects to render, all by default")
	mcSeqnoCmd.Flags().Int32("workchain", 0, "shard block workchain")
	mcSeqnoCmd.Flags().String("shard", "8000000000000000", "shard block shard id")
	mcSeqnoCmd.Flags().Uint32("seqno", 0, "shard block seqno")

	initConfig()
}

func initLogger() {
	log = logrus.New()
	log.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	log.Out = os.Stderr
}

func configureLogger() {
	if strings.EqualFold(conf.LogFormat, "json") {
		log.Formatter = new(logrus.JSONFormatter)
	}
	if conf.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}
}

func initConfig() {
	err := sconfig.New(&conf).
		FromEnvironment(EnvPrefix).
		BindFlags(rootCmd.PersistentFlags()).
		Parse()
	if err != nil {
		log.Fatal(err)
	}
}

// networkFlag turns --network into the optional testnet switch.
func networkFlag(cmd *cobra.Command) (*bool, error) {
	value, err := cmd.Flags().GetString("network")
	if err != nil || len(value) == 0 {
		return nil, err
	}
	return parseNetwork(value)
}

func parseNetwork(value string) (*bool, error) {
	if len(value) == 0 {
		return nil, nil
	}
	network, err := models.ParseNetwork(strings.ToLower(value))
	if err != nil {
		return nil, err
	}
	testnet := network.IsTestnet()
	return &testnet, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// withApp builds the application for one command and releases it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := NewApp(ctx, conf, log)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(ctx, app)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *App) error {
			server := NewServer(app, conf.Prefork, log)
			log.WithField("bind", conf.Bind).Info("starting server")
			return server.Listen(conf.Bind)
		})
	},
}

var locateCmd = &cobra.Command{
	Use:   "locate <link>",
	Short: "Resolve a transaction reference to a full locator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		testnet, err := networkFlag(cmd)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *App) error {
			loc, err := app.Links.Parse(ctx, args[0], testnet)
			if err != nil {
				return err
			}
			return printJSON(loc)
		})
	},
}

var recognizeCmd = &cobra.Command{
	Use:   "recognize <link>",
	Short: "Show which link dialect matches the input, without any lookup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := links.Recognize(args[0])
		if err != nil {
			return err
		}
		return printJSON(rec)
	},
}

var linksCmd = &cobra.Command{
	Use:   "links <link>",
	Short: "Render a transaction in every explorer dialect",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		testnet, err := networkFlag(cmd)
		if err != nil {
			return err
		}
		dialects, err := cmd.Flags().GetStringSlice("dialect")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *App) error {
			loc, err := app.Links.Parse(ctx, args[0], testnet)
			if err != nil {
				return err
			}
			res, err := newLinksResponse(loc, dialects)
			if err != nil {
				return err
			}
			return printJSON(res)
		})
	},
}

var mcSeqnoCmd = &cobra.Command{
	Use:   "mc-seqno",
	Short: "Find the first masterchain block that includes a shard block",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		testnet, err := networkFlag(cmd)
		if err != nil {
			return err
		}
		ref, err := shardBlockFlags(cmd)
		if err != nil {
			return err
		}
		network := models.Mainnet
		if testnet != nil {
			network = models.NetworkOf(*testnet)
		}
		return withApp(cmd, func(ctx context.Context, app *App) error {
			res, err := app.Masterchain.Resolve(ctx, ref, network)
			if err != nil {
				return err
			}
			return printJSON(res)
		})
	},
}

func shardBlockFlags(cmd *cobra.Command) (models.ShardBlockRef, error) {
	var ref models.ShardBlockRef
	var err error
	if ref.Workchain, err = cmd.Flags().GetInt32("workchain"); err != nil {
		return ref, err
	}
	if ref.Seqno, err = cmd.Flags().GetUint32("seqno"); err != nil {
		return ref, err
	}
	shard, err := cmd.Flags().GetString("shard")
	if err != nil {
		return ref, err
	}
	if ref.Shard, err = models.ParseShardId(shard); err != nil {
		return ref, err
	}
	return ref, nil
}

var emulateCmd = &cobra.Command{
	Use:   "emulate <link> [link...]",
	Short: "Re-execute transactions and print the step-by-step compute log",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		testnet, err := networkFlag(cmd)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *App) error {
			if len(args) == 1 {
				report, err := app.Runner.EmulateLink(ctx, args[0], testnet)
				if err != nil {
					return err
				}
				return printJSON(report)
			}
			items := app.Runner.EmulateBatch(ctx, args, testnet)
			if err := printJSON(newBatchResponse(items)); err != nil {
				return err
			}
			for _, item := range items {
				if item.Err != nil {
					return fmt.Errorf("some transactions failed to emulate")
				}
			}
			return nil
		})
	},
}

func Exit(code int, msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(code)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		Exit(1, err.Error())
	}
}
