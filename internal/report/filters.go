package report

import (
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/spf13/cast"

	"festive-study/internal/finance"
)

// NotAvailable is rendered for nil values, such as a break-even month that
// is never reached.
const NotAvailable = "n/a"

var filters = map[string]pongo2.FilterFunction{
	"round": filterRound,
	"money": filterMoney,
}

var setupOnce sync.Once

func registerFilters() {
	setupOnce.Do(func() {
		pongo2.SetAutoescape(false)
		for name, fn := range filters {
			register := pongo2.RegisterFilter
			if pongo2.FilterExists(name) {
				register = pongo2.ReplaceFilter
			}
			if err := register(name, fn); err != nil {
				panic(fmt.Sprintf("report: register filter %s: %v", name, err))
			}
		}
	})
}

// KnownFilter reports whether a placeholder filter can be executed.
func KnownFilter(name string) bool {
	registerFilters()
	return pongo2.FilterExists(name)
}

// MaxRoundDecimals bounds the round filter's argument.
const MaxRoundDecimals = 10

// CheckFilterArg validates a filter's literal argument before rendering.
func CheckFilterArg(f Filter) error {
	if f.Name != "round" || f.Arg == "" {
		return nil
	}
	n, err := strconv.Atoi(f.Arg)
	if err != nil {
		return fmt.Errorf("round takes an integer number of decimals, got %s", f.Arg)
	}
	if n < 0 || n > MaxRoundDecimals {
		return fmt.Errorf("round decimals must be in [0, %d], got %d", MaxRoundDecimals, n)
	}
	return nil
}

// Round rounds half away from zero to the given number of decimals, which
// are clamped to [0, MaxRoundDecimals].
func Round(v float64, decimals int) string {
	decimals = max(0, min(decimals, MaxRoundDecimals))
	p := math.Pow(10, float64(decimals))
	r := math.Round(v*p) / p
	if math.IsInf(v*p, 0) {
		r = v // already integral at this magnitude
	}
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', decimals, 64)
}

func filterRound(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.IsNil() {
		return pongo2.AsValue(NotAvailable), nil
	}
	v, err := toNumber(in)
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:round", OrigError: err}
	}
	decimals := 0
	if param != nil && !param.IsNil() {
		if !param.IsInteger() {
			return nil, &pongo2.Error{Sender: "filter:round", OrigError: fmt.Errorf("invalid decimals %v", param.Interface())}
		}
		decimals = param.Integer()
		if decimals < 0 || decimals > MaxRoundDecimals {
			return nil, &pongo2.Error{Sender: "filter:round", OrigError: fmt.Errorf("decimals %d out of range [0, %d]", decimals, MaxRoundDecimals)}
		}
	}
	return pongo2.AsValue(Round(v, decimals)), nil
}

func filterMoney(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.IsNil() {
		return pongo2.AsValue(NotAvailable), nil
	}
	v, err := toNumber(in)
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:money", OrigError: err}
	}
	return pongo2.AsValue(finance.Euro(v)), nil
}

// toNumber accepts numbers and numeric strings. Booleans are rejected even
// though cast would read them as 0 and 1.
func toNumber(in *pongo2.Value) (float64, error) {
	if in.IsBool() {
		return 0, fmt.Errorf("not a number: %v", in.Interface())
	}
	return cast.ToFloat64E(in.Interface())
}
