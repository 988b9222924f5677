package sim

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Outcome is the result of a password check, fed back into the defense so
// it can update its state.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Defense is an admission policy for login attempts.
//
// Check runs before the password is verified and may block the attempt
// (returning the block reason). Observe runs after verification with the
// outcome. Implementations keep per-trial state only; they are never
// shared across trials.
type Defense interface {
	Check(username, ip string) (allowed bool, reason string, err error)
	Observe(username, ip string, outcome Outcome) error
}

// ParamSpec declares one parameter accepted by a defense: its name and the
// closed range of valid values. All parameters are float64; integral
// parameters (attempt counts, token counts) are validated as whole numbers
// by the consuming defense.
type ParamSpec struct {
	Name string
	Min  float64
	Max  float64
}

// defenseSchemas declares, per defense, the exact parameter set it
// requires. Grids are validated against these before any trial executes.
var defenseSchemas = map[string][]ParamSpec{
	"lockout": {
		{Name: "max_failures", Min: 1, Max: 1000},
		{Name: "lockout_time", Min: 0, Max: 86400},
	},
	"backoff": {
		{Name: "base_delay", Min: 0.001, Max: 3600},
		{Name: "max_delay", Min: 0.001, Max: 86400},
	},
	"rate_limit": {
		{Name: "refill_rate", Min: 0.001, Max: 1000},
		{Name: "max_tokens", Min: 1, Max: 1e6},
	},
	"rate_limit_ip": {
		{Name: "refill_rate", Min: 0.001, Max: 1000},
		{Name: "max_tokens", Min: 1, Max: 1e6},
	},
	"hybrid": {
		{Name: "ip_refill_rate", Min: 0.001, Max: 1000},
		{Name: "ip_max_tokens", Min: 1, Max: 1e6},
		{Name: "account_refill_rate", Min: 0.001, Max: 1000},
		{Name: "account_max_tokens", Min: 1, Max: 1e6},
	},
}

// DefenseNames returns the registered defense names, sorted.
func DefenseNames() []string {
	names := make([]string, 0, len(defenseSchemas))
	for name := range defenseSchemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefenseSchema returns the parameter schema for a defense.
func DefenseSchema(name string) ([]ParamSpec, bool) {
	schema, ok := defenseSchemas[name]
	return schema, ok
}

// ValidateDefenseParams checks params against the defense's declared
// schema: the defense must exist, every required parameter must be
// present and in range, and no unknown parameters are accepted. Values
// are never clamped; violations are errors.
func ValidateDefenseParams(defense string, params map[string]float64) error {
	schema, ok := defenseSchemas[defense]
	if !ok {
		return fmt.Errorf("unknown defense %q (known: %s)", defense, strings.Join(DefenseNames(), ", "))
	}
	declared := make(map[string]ParamSpec, len(schema))
	for _, spec := range schema {
		declared[spec.Name] = spec
		v, present := params[spec.Name]
		if !present {
			return fmt.Errorf("defense %q: missing required parameter %q", defense, spec.Name)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("defense %q: parameter %q is not finite", defense, spec.Name)
		}
		if v < spec.Min || v > spec.Max {
			return fmt.Errorf("defense %q: parameter %q = %v out of range [%v, %v]",
				defense, spec.Name, v, spec.Min, spec.Max)
		}
	}
	for name := range params {
		if _, ok := declared[name]; !ok {
			return fmt.Errorf("defense %q: unknown parameter %q", defense, name)
		}
	}
	return nil
}

// NewDefense constructs the named defense bound to a trial's store and
// clock. Params must already satisfy ValidateDefenseParams.
func NewDefense(name string, store *AccountStore, clock *Clock, params map[string]float64) (Defense, error) {
	if err := ValidateDefenseParams(name, params); err != nil {
		return nil, err
	}
	switch name {
	case "lockout":
		return &lockoutDefense{
			store:       store,
			clock:       clock,
			maxFailures: int(params["max_failures"]),
			lockoutTime: params["lockout_time"],
		}, nil
	case "backoff":
		return &backoffDefense{
			store:     store,
			clock:     clock,
			baseDelay: params["base_delay"],
			maxDelay:  params["max_delay"],
		}, nil
	case "rate_limit":
		return newTokenBucketDefense(clock, params["refill_rate"], params["max_tokens"], keyByAccount), nil
	case "rate_limit_ip":
		return newTokenBucketDefense(clock, params["refill_rate"], params["max_tokens"], keyByIP), nil
	case "hybrid":
		return &hybridDefense{
			ip:      newTokenBucketDefense(clock, params["ip_refill_rate"], params["ip_max_tokens"], keyByIP),
			account: newTokenBucketDefense(clock, params["account_refill_rate"], params["account_max_tokens"], keyByAccount),
		}, nil
	default:
		return nil, fmt.Errorf("unknown defense %q", name)
	}
}

// EncodeParams renders a parameter map as a canonical "k=v;k=v" string
// with sorted keys, used for family identity and the flat trial table.
func EncodeParams(params map[string]float64) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + strconv.FormatFloat(params[k], 'g', -1, 64)
	}
	return strings.Join(parts, ";")
}

// DecodeParams parses the canonical encoding produced by EncodeParams.
func DecodeParams(s string) (map[string]float64, error) {
	params := make(map[string]float64)
	if s == "" {
		return params, nil
	}
	for _, part := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("malformed parameter entry %q", part)
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", k, err)
		}
		params[k] = f
	}
	return params, nil
}

// FamilyKey identifies the set of trials sharing a defense and identical
// parameters, differing only by seed.
func FamilyKey(defense string, params map[string]float64) string {
	return defense + "/" + EncodeParams(params)
}
