package links

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/models"
)

// Recognized holds whatever fields a link carries by itself. Lt is zero and
// Address nil when the dialect does not encode them; Network is nil unless
// the host names it.
type Recognized struct {
	Dialect string          `json:"dialect"`
	Lt      uint64          `json:"lt,string,omitempty"`
	Hash    models.Hash     `json:"hash"`
	Address *models.Address `json:"address,omitempty"`
	Network *models.Network `json:"network,omitempty"`
} // @name Recognized

// Complete reports whether the link determines the transaction without a
// backend lookup.
func (r Recognized) Complete() bool {
	return r.Lt > 0 && r.Address != nil && r.Network != nil
}

var schemeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// normalize adds a scheme to links pasted without one, e.g. "ton.cx/tx/...".
func normalize(input string) string {
	input = strings.TrimSpace(input)
	if schemeRe.MatchString(input) {
		return input
	}
	if host, _, ok := strings.Cut(input, "/"); ok && strings.Contains(host, ".") && !strings.Contains(host, ":") {
		return "https://" + input
	}
	return input
}

// networkOfHost treats a "testnet" label or a "test-" prefix as testnet and
// every other host as mainnet.
func networkOfHost(host string) models.Network {
	host = strings.ToLower(host)
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	if strings.HasPrefix(host, "test-") {
		return models.Testnet
	}
	for _, label := range strings.Split(host, ".") {
		if label == "testnet" {
			return models.Testnet
		}
	}
	return models.Mainnet
}

// Recognize matches input against the dialect table without any lookup.
func Recognize(input string) (Recognized, error) {
	link := normalize(input)
	for _, d := range dialects {
		groups := d.Pattern.FindStringSubmatch(link)
		if groups == nil {
			continue
		}
		fields := make(map[string]string, len(groups))
		for i, name := range d.Pattern.SubexpNames() {
			if len(name) > 0 {
				fields[name] = groups[i]
			}
		}
		if d.Query != nil {
			// '+' belongs to standard base64 here, not to form encoding
			query, err := url.ParseQuery(strings.ReplaceAll(fields["query"], "+", "%2B"))
			if err != nil {
				return Recognized{}, models.FormatError{Input: input, Reason: err.Error()}
			}
			for field, param := range d.Query {
				value := query.Get(param)
				if len(value) == 0 {
					return Recognized{}, models.FormatError{Input: input, Reason: "missing query parameter " + param}
				}
				fields[field] = value
			}
		}
		return extract(d, input, fields)
	}
	return Recognized{}, models.UnrecognizedLinkError{Link: input}
}

func extract(d Dialect, input string, fields map[string]string) (Recognized, error) {
	res := Recognized{Dialect: d.Name}
	var err error
	if res.Hash, err = models.ParseHash(fields["hash"]); err != nil {
		return Recognized{}, err
	}
	if value, ok := fields["lt"]; ok {
		res.Lt, err = strconv.ParseUint(value, 10, 64)
		if err != nil {
			return Recognized{}, models.FormatError{Input: input, Reason: "invalid logical time"}
		}
		if res.Lt == 0 {
			return Recognized{}, models.FormatError{Input: input, Reason: "logical time must be positive"}
		}
	}
	if value, ok := fields["account"]; ok {
		addr, err := models.ParseAddress(value)
		if err != nil {
			return Recognized{}, err
		}
		res.Address = &addr
	}
	if host, ok := fields["host"]; ok {
		network := networkOfHost(host)
		res.Network = &network
	}
	return res, nil
}
