package links

import (
	"sort"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/models"
)

// Render returns the locator in every dialect that can be rendered. The
// address is always written bounceable without the testnet flag, the host
// carries the network.
func Render(loc models.TxLocator) map[string]string {
	res := make(map[string]string, len(dialects))
	for _, d := range dialects {
		if d.Renders() {
			res[d.Name] = RenderAs(d, loc)
		}
	}
	return res
}

// RenderSelected renders the locator in the named dialects only. An empty
// selection renders every dialect. Unknown names are a FormatError;
// parse-only dialects are skipped.
func RenderSelected(loc models.TxLocator, names []string) (map[string]string, error) {
	if len(names) == 0 {
		return Render(loc), nil
	}
	selected := mapset.NewThreadUnsafeSet(names...)
	if unknown := selected.Difference(dialectNames); unknown.Cardinality() > 0 {
		bad := unknown.ToSlice()
		sort.Strings(bad)
		return nil, models.FormatError{Input: strings.Join(bad, ","), Reason: "unknown link dialect"}
	}
	res := make(map[string]string, selected.Cardinality())
	for _, d := range dialects {
		if d.Renders() && selected.Contains(d.Name) {
			res[d.Name] = RenderAs(d, loc)
		}
	}
	return res, nil
}

func RenderAs(d Dialect, loc models.TxLocator) string {
	r := strings.NewReplacer(
		"{host}", d.host(loc.Network),
		"{lt}", strconv.FormatUint(loc.Lt, 10),
		"{hash}", loc.Hash.Encode(d.Hash),
		"{account}", loc.Address.WithFlags(true, false).String(),
	)
	return r.Replace(d.Template)
}
