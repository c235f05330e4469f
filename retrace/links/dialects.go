package links

import (
	"fmt"
	"regexp"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/models"
)

// Dialect is one accepted textual form of a transaction reference. Pattern
// uses the named groups host, lt, hash and account; Query maps the same
// names to query parameters for dialects that carry fields there.
// Template is the rendering with {host}, {lt}, {hash} and {account}
// placeholders; parse-only dialects have none.
type Dialect struct {
	Name     string
	Pattern  *regexp.Regexp
	Query    map[string]string
	Hash     models.HashEncoding
	Template string
	Mainnet  string
	Testnet  string
}

func (d Dialect) Renders() bool {
	return len(d.Template) > 0
}

func (d Dialect) host(network models.Network) string {
	if network.IsTestnet() {
		return d.Testnet
	}
	return d.Mainnet
}

const (
	hexHash    = `[0-9a-fA-F]{64}`
	base64Hash = `[A-Za-z0-9+/_-]{43}=?`
	anyHash    = hexHash + `|` + base64Hash
	friendly   = `[A-Za-z0-9+/_-]{48}`
	urlPrefix  = `^https?://(?P<host>[^/?#]+)`
)

// dialects is tried in order, first match wins.
var dialects = []Dialect{
	{
		Name:    "hash",
		Pattern: regexp.MustCompile(`^(?P<hash>` + hexHash + `)$`),
		Hash:    models.HashHex,
	},
	{
		Name:     "ltHash",
		Pattern:  regexp.MustCompile(`^(?P<lt>\d+):(?P<hash>` + anyHash + `)$`),
		Hash:     models.HashHex,
		Template: "{lt}:{hash}",
	},
	{
		Name:     "toncx",
		Pattern:  regexp.MustCompile(urlPrefix + `/tx/(?P<lt>\d+):(?P<hash>` + base64Hash + `):(?P<account>` + friendly + `)/?$`),
		Hash:     models.HashBase64,
		Template: "https://{host}/tx/{lt}:{hash}:{account}",
		Mainnet:  "ton.cx",
		Testnet:  "testnet.ton.cx",
	},
	{
		Name:     "tonscan",
		Pattern:  regexp.MustCompile(urlPrefix + `/tx/(?P<hash>` + anyHash + `)/?$`),
		Hash:     models.HashBase64,
		Template: "https://{host}/tx/{hash}",
		Mainnet:  "tonscan.org",
		Testnet:  "testnet.tonscan.org",
	},
	{
		Name:     "tonviewer",
		Pattern:  regexp.MustCompile(urlPrefix + `/transaction/(?P<hash>` + hexHash + `)/?$`),
		Hash:     models.HashHex,
		Template: "https://{host}/transaction/{hash}",
		Mainnet:  "tonviewer.com",
		Testnet:  "testnet.tonviewer.com",
	},
	{
		Name:     "toncoin",
		Pattern:  regexp.MustCompile(urlPrefix + `/transaction/?\?(?P<query>.+)$`),
		Query:    map[string]string{"account": "account", "lt": "lt", "hash": "hash"},
		Hash:     models.HashHex,
		Template: "https://{host}/transaction?account={account}&lt={lt}&hash={hash}",
		Mainnet:  "explorer.toncoin.org",
		Testnet:  "test-explorer.toncoin.org",
	},
}

var dialectNames = func() mapset.Set[string] {
	names := mapset.NewThreadUnsafeSet[string]()
	for _, d := range dialects {
		if !names.Add(d.Name) {
			panic(fmt.Sprintf("duplicate link dialect %s", d.Name))
		}
	}
	return names
}()
