// Package settings holds the immutable assumptions that drive one projection
// run: price growth, ILL behaviour, usage weights and channel inclusion toggles.
package settings

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Setting keys accepted by New.
const (
	KeyCostAlacartIncrease        = "cost_alacart_increase"
	KeyCostBigDeal                = "cost_bigdeal"
	KeyCostBigDealIncrease        = "cost_bigdeal_increase"
	KeyCostContentFeePercent      = "cost_content_fee_percent"
	KeyCostILL                    = "cost_ill"
	KeyILLRequestPercentOfDelayed = "ill_request_percent_of_delayed"
	KeyWeightCitation             = "weight_citation"
	KeyWeightAuthorship           = "weight_authorship"
	KeyIncludeBackfile            = "include_backfile"
	KeyIncludeSocialNetworks      = "include_social_networks"
	KeyIncludeBronze              = "include_bronze"
	KeyIncludeSubmittedVersion    = "include_submitted_version"
)

// ErrInvalidSettings is returned when an override is unknown, of the wrong
// type, or outside its allowed range.
var ErrInvalidSettings = errors.New("invalid settings")

// Values is a plain copy of every assumption. Percent fields are percentages,
// not fractions.
type Values struct {
	CostAlacartIncrease        float64 `mapstructure:"cost_alacart_increase" json:"cost_alacart_increase" validate:"gte=0"`
	CostBigDeal                float64 `mapstructure:"cost_bigdeal" json:"cost_bigdeal" validate:"gte=0"`
	CostBigDealIncrease        float64 `mapstructure:"cost_bigdeal_increase" json:"cost_bigdeal_increase" validate:"gte=0"`
	CostContentFeePercent      float64 `mapstructure:"cost_content_fee_percent" json:"cost_content_fee_percent" validate:"gte=0"`
	CostILL                    float64 `mapstructure:"cost_ill" json:"cost_ill" validate:"gte=0"`
	ILLRequestPercentOfDelayed float64 `mapstructure:"ill_request_percent_of_delayed" json:"ill_request_percent_of_delayed" validate:"gte=0,lte=100"`
	WeightCitation             float64 `mapstructure:"weight_citation" json:"weight_citation" validate:"gte=0"`
	WeightAuthorship           float64 `mapstructure:"weight_authorship" json:"weight_authorship" validate:"gte=0"`
	IncludeBackfile            bool    `mapstructure:"include_backfile" json:"include_backfile"`
	IncludeSocialNetworks      bool    `mapstructure:"include_social_networks" json:"include_social_networks"`
	IncludeBronze              bool    `mapstructure:"include_bronze" json:"include_bronze"`
	IncludeSubmittedVersion    bool    `mapstructure:"include_submitted_version" json:"include_submitted_version"`
}

// defaults maps every known key to its default. The type of each default is
// the type an override must have.
var defaults = map[string]any{
	KeyCostAlacartIncrease:        8.0,
	KeyCostBigDeal:                2200000.0,
	KeyCostBigDealIncrease:        5.0,
	KeyCostContentFeePercent:      0.0,
	KeyCostILL:                    5.0,
	KeyILLRequestPercentOfDelayed: 5.0,
	KeyWeightCitation:             10.0,
	KeyWeightAuthorship:           100.0,
	KeyIncludeBackfile:            true,
	KeyIncludeSocialNetworks:      true,
	KeyIncludeBronze:              true,
	KeyIncludeSubmittedVersion:    true,
}

var validate = validator.New()

// Settings is resolved once per run and shared by reference across every
// journal in a portfolio. It has no mutators.
type Settings struct {
	values Values
}

// Default returns the settings built from defaults only.
func Default() *Settings {
	s, err := New(nil)
	if err != nil {
		// Defaults are constants; failing here is a programming error.
		panic(fmt.Sprintf("default settings are invalid: %v", err))
	}
	return s
}

// New layers overrides onto the defaults and validates the result. Unknown
// keys, wrong value types and out-of-range values fail here rather than deep
// inside a projection.
func New(overrides map[string]any) (*Settings, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	normalized, err := checkOverrides(overrides)
	if err != nil {
		return nil, err
	}
	if len(normalized) > 0 {
		if err := v.MergeConfigMap(normalized); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
		}
	}

	var values Values
	if err := v.Unmarshal(&values); err != nil {
		return nil, fmt.Errorf("%w: unable to decode: %v", ErrInvalidSettings, err)
	}

	if err := validate.Struct(values); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return nil, fmt.Errorf("%w: %s must satisfy %s=%s, got %v",
				ErrInvalidSettings, fe.Field(), fe.Tag(), fe.Param(), fe.Value())
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	return &Settings{values: values}, nil
}

// Values returns a copy of the resolved assumptions.
func (s *Settings) Values() Values {
	return s.values
}

// ToMap returns the resolved assumptions keyed by setting name, for reports.
func (s *Settings) ToMap() map[string]any {
	v := s.values
	return map[string]any{
		KeyCostAlacartIncrease:        v.CostAlacartIncrease,
		KeyCostBigDeal:                v.CostBigDeal,
		KeyCostBigDealIncrease:        v.CostBigDealIncrease,
		KeyCostContentFeePercent:      v.CostContentFeePercent,
		KeyCostILL:                    v.CostILL,
		KeyILLRequestPercentOfDelayed: v.ILLRequestPercentOfDelayed,
		KeyWeightCitation:             v.WeightCitation,
		KeyWeightAuthorship:           v.WeightAuthorship,
		KeyIncludeBackfile:            v.IncludeBackfile,
		KeyIncludeSocialNetworks:      v.IncludeSocialNetworks,
		KeyIncludeBronze:              v.IncludeBronze,
		KeyIncludeSubmittedVersion:    v.IncludeSubmittedVersion,
	}
}

// Keys returns every accepted setting key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for key := range defaults {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func checkOverrides(overrides map[string]any) (map[string]any, error) {
	normalized := make(map[string]any, len(overrides))
	for rawKey, value := range overrides {
		key := strings.ToLower(strings.TrimSpace(rawKey))
		def, ok := defaults[key]
		if !ok {
			return nil, fmt.Errorf("%w: unknown setting %q", ErrInvalidSettings, rawKey)
		}
		switch def.(type) {
		case bool:
			b, ok := value.(bool)
			if !ok {
				return nil, fmt.Errorf("%w: %s must be a boolean, got %T", ErrInvalidSettings, key, value)
			}
			normalized[key] = b
		case float64:
			f, ok := toFloat(value)
			if !ok {
				return nil, fmt.Errorf("%w: %s must be numeric, got %T", ErrInvalidSettings, key, value)
			}
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidSettings, key, value)
			}
			normalized[key] = f
		}
	}
	return normalized, nil
}

func toFloat(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
