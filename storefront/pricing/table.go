package pricing

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/AntonStoeckl/storefront-orders/storefront/core"
)

//go:embed tariffs.yaml
var embeddedTariffs string

var (
	ErrInvalidTariffTable = errors.New("invalid tariff table")
	ErrDuplicateRegion    = errors.New("duplicate region in tariff table")
	ErrNegativeFee        = errors.New("negative delivery fee in tariff table")
)

// Region is a wilaya, identified by its official code and name.
type Region struct {
	Code int    `json:"code" yaml:"code"`
	Name string `json:"nom" yaml:"name"`
}

// Tariff holds the four optional fees of one region. A nil fee means the combination is unavailable.
type Tariff struct {
	Region        Region `yaml:",inline"`
	ExpressHome   *int64 `yaml:"express_home"`
	ExpressOffice *int64 `yaml:"express_office"`
	EconomyHome   *int64 `yaml:"economy_home"`
	EconomyOffice *int64 `yaml:"economy_office"`
}

// IsAvailable reports whether any of the four fees is set.
func (t Tariff) IsAvailable() bool {
	return t.ExpressHome != nil || t.ExpressOffice != nil || t.EconomyHome != nil || t.EconomyOffice != nil
}

// Fee returns the fee for method and speed; both office networks share the office fee.
func (t Tariff) Fee(method core.Method, speed core.Speed) (int64, bool) {
	var fee *int64

	switch {
	case method == core.MethodHome && speed == core.SpeedExpress:
		fee = t.ExpressHome
	case method.IsOffice() && speed == core.SpeedExpress:
		fee = t.ExpressOffice
	case method == core.MethodHome && speed == core.SpeedEconomy:
		fee = t.EconomyHome
	case method.IsOffice() && speed == core.SpeedEconomy:
		fee = t.EconomyOffice
	}

	if fee == nil {
		return 0, false
	}

	return *fee, true
}

// Table is an immutable tariff table.
type Table struct {
	tariffs []Tariff
	index   map[string]int
}

type tableDocument struct {
	Regions []Tariff `yaml:"regions"`
}

var defaultTable = sync.OnceValues(func() (*Table, error) {
	return LoadTable(strings.NewReader(embeddedTariffs))
})

// DefaultTable returns the embedded table of the 58 wilayas, parsed on first use.
func DefaultTable() (*Table, error) {
	return defaultTable()
}

// LoadTable parses a YAML tariff table. Regions are ordered by code.
// Duplicate codes or names and negative fees are rejected.
func LoadTable(r io.Reader) (*Table, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var doc tableDocument
	if err := decoder.Decode(&doc); err != nil {
		return nil, errors.Join(ErrInvalidTariffTable, err)
	}

	table := &Table{
		tariffs: make([]Tariff, 0, len(doc.Regions)),
		index:   make(map[string]int, 2*len(doc.Regions)),
	}

	sort.SliceStable(doc.Regions, func(i, j int) bool { return doc.Regions[i].Region.Code < doc.Regions[j].Region.Code })

	for _, tariff := range doc.Regions {
		if tariff.Region.Code <= 0 || strings.TrimSpace(tariff.Region.Name) == "" {
			return nil, errors.Join(ErrInvalidTariffTable, fmt.Errorf("region %d %q needs a positive code and a name", tariff.Region.Code, tariff.Region.Name))
		}

		for _, fee := range []*int64{tariff.ExpressHome, tariff.ExpressOffice, tariff.EconomyHome, tariff.EconomyOffice} {
			if fee != nil && *fee < 0 {
				return nil, errors.Join(ErrNegativeFee, fmt.Errorf("region %q", tariff.Region.Name))
			}
		}

		codeKey := strconv.Itoa(tariff.Region.Code)
		nameKey := normalize(tariff.Region.Name)

		if _, exists := table.index[codeKey]; exists {
			return nil, errors.Join(ErrDuplicateRegion, fmt.Errorf("code %d", tariff.Region.Code))
		}

		if _, exists := table.index[nameKey]; exists {
			return nil, errors.Join(ErrDuplicateRegion, fmt.Errorf("name %q", tariff.Region.Name))
		}

		table.index[codeKey] = len(table.tariffs)
		table.index[nameKey] = len(table.tariffs)
		table.tariffs = append(table.tariffs, tariff)
	}

	return table, nil
}

// Lookup finds a region by name (case and surrounding space insensitive) or by its code.
func (t *Table) Lookup(region string) (Tariff, bool) {
	i, ok := t.index[normalize(region)]
	if !ok {
		return Tariff{}, false
	}

	return t.tariffs[i], true
}

// Fee returns the fee for region, method, and speed, or false if the combination is unavailable.
// Unknown regions, methods, and speeds are unavailable.
func (t *Table) Fee(region string, method core.Method, speed core.Speed) (int64, bool) {
	tariff, ok := t.Lookup(region)
	if !ok {
		return 0, false
	}

	return tariff.Fee(method, speed)
}

// Quote wraps Fee for the placement decision.
func (t *Table) Quote(region string, method core.Method, speed core.Speed) core.DeliveryQuote {
	fee, ok := t.Fee(region, method, speed)

	return core.DeliveryQuote{Fee: fee, Available: ok}
}

// IsRegionAvailable reports whether any fee exists for region.
func (t *Table) IsRegionAvailable(region string) bool {
	tariff, ok := t.Lookup(region)

	return ok && tariff.IsAvailable()
}

// AvailableRegions returns the selectable tariffs ordered by code; regions without any fee are left out.
func (t *Table) AvailableRegions() []Tariff {
	result := make([]Tariff, 0, len(t.tariffs))

	for _, tariff := range t.tariffs {
		if tariff.IsAvailable() {
			result = append(result, tariff)
		}
	}

	return result
}

func normalize(region string) string {
	return strings.ToLower(strings.TrimSpace(region))
}
