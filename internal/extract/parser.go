package extract

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/talkincode/prodcatalog/internal/domain"
)

// MaxMaterialDepth bounds how deeply materials may nest in model output.
const MaxMaterialDepth = 32

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type locationLiteral struct {
	Name        string  `mapstructure:"name"`
	Description *string `mapstructure:"description"`
	CountryCode *string `mapstructure:"country_code"`
	Address     *string `mapstructure:"address"`
}

type productLiteral struct {
	Name           string           `mapstructure:"name"`
	Description    *string          `mapstructure:"description"`
	HsCode         *string          `mapstructure:"hs_code"`
	ImageURL       *string          `mapstructure:"image_url"`
	Location       *locationLiteral `mapstructure:"location"`
	WeightKg       *float64         `mapstructure:"weight_kg"`
	RecycledPct    *float64         `mapstructure:"recycled_pct"`
	WastePct       *float64         `mapstructure:"waste_pct"`
	LifetimeAmount *float64         `mapstructure:"lifetime_amount"`
	Materials      []productLiteral `mapstructure:"materials"`
}

// ParseProduct decodes a completion into a product tree. The text is treated
// strictly as data: JSON first, then YAML flow syntax for the single-quoted
// object literals models sometimes produce. Nothing in it is evaluated.
// Every product and location in the result carries a freshly generated id;
// ids present in the text are ignored.
func ParseProduct(text string) (domain.Product, error) {
	raw, err := decodeLiteral(text)
	if err != nil {
		return domain.Product{}, err
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return domain.Product{}, &ExtractionParseError{Reason: "re-encoding literal", Err: err}
	}
	if err := validateShape(data); err != nil {
		return domain.Product{}, &ExtractionParseError{Reason: "unexpected shape", Err: err}
	}

	var lit productLiteral
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       coerceScalars,
		WeaklyTypedInput: true,
		Result:           &lit,
	})
	if err != nil {
		return domain.Product{}, &ExtractionParseError{Reason: "building decoder", Err: err}
	}
	if err := decoder.Decode(raw); err != nil {
		return domain.Product{}, &ExtractionParseError{Reason: "decoding fields", Err: err}
	}

	return lit.toProduct("", 0)
}

func decodeLiteral(text string) (map[string]interface{}, error) {
	body := sanitizeResponse(text)
	if body == "" {
		return nil, &ExtractionParseError{Reason: "empty model response"}
	}

	var v interface{}
	jsonErr := json.UnmarshalFromString(body, &v)
	if jsonErr != nil {
		if !strings.HasPrefix(body, "{") {
			return nil, &ExtractionParseError{Reason: "response is not an object literal", Err: jsonErr}
		}
		v = nil
		if err := yaml.Unmarshal([]byte(body), &v); err != nil {
			return nil, &ExtractionParseError{Reason: "response is not a structured literal", Err: jsonErr}
		}
	}

	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, &ExtractionParseError{Reason: fmt.Sprintf("expected an object literal, got %T", v)}
	}
	return obj, nil
}

// sanitizeResponse strips markdown fences and any prose around the outermost
// object.
func sanitizeResponse(rsp string) string {
	rsp = strings.TrimSpace(rsp)
	if strings.HasPrefix(rsp, "```") {
		if nl := strings.IndexByte(rsp, '\n'); nl >= 0 {
			rsp = rsp[nl+1:]
		}
		rsp = strings.TrimSuffix(strings.TrimSpace(rsp), "```")
	}
	start := strings.IndexByte(rsp, '{')
	end := strings.LastIndexByte(rsp, '}')
	if start >= 0 && end > start {
		rsp = rsp[start : end+1]
	}
	return strings.TrimSpace(rsp)
}

var (
	productLiteralType  = reflect.TypeOf(productLiteral{})
	locationLiteralType = reflect.TypeOf(locationLiteral{})
)

// coerceScalars is the mapstructure hook that turns the loosely typed values
// a model emits into the field types: "20%" and "0.1" become numbers, "None"
// and "null" become absent, a bare string becomes a named location or
// material.
func coerceScalars(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	target := to
	optional := false
	if target.Kind() == reflect.Ptr {
		target = target.Elem()
		optional = true
	}

	s, isString := data.(string)
	if isString && optional && isNullish(s) {
		return nil, nil
	}

	switch {
	case target == productLiteralType || target == locationLiteralType:
		if isString {
			return map[string]interface{}{"name": s}, nil
		}
	case target.Kind() == reflect.Float64:
		if isString {
			f, err := cast.ToFloat64E(trimUnit(s))
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, fmt.Errorf("%q is not a number", s)
			}
			return f, nil
		}
	case target.Kind() == reflect.String:
		if !isString && data != nil {
			return cast.ToStringE(data)
		}
	}
	return data, nil
}

func isNullish(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "null", "nil", "n/a":
		return true
	}
	return false
}

func trimUnit(s string) string {
	s = strings.TrimSpace(s)
	for _, unit := range []string{"%", "kg"} {
		s = strings.TrimSpace(strings.TrimSuffix(s, unit))
	}
	return s
}

func (l *productLiteral) toProduct(path string, depth int) (domain.Product, error) {
	if depth > MaxMaterialDepth {
		return domain.Product{}, &ExtractionParseError{
			Reason: fmt.Sprintf("materials nested deeper than %d levels", MaxMaterialDepth),
		}
	}
	name := strings.TrimSpace(l.Name)
	if isNullish(name) {
		return domain.Product{}, &ExtractionParseError{Reason: "missing " + path + "name"}
	}

	for field, v := range map[string]*float64{
		"weight_kg":       l.WeightKg,
		"recycled_pct":    l.RecycledPct,
		"waste_pct":       l.WastePct,
		"lifetime_amount": l.LifetimeAmount,
	} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return domain.Product{}, &ExtractionParseError{Reason: "non-finite " + path + field}
		}
	}

	p := domain.NewProduct(name)
	p.Description = optionalText(l.Description)
	p.HsCode = optionalText(l.HsCode)
	p.ImageURL = optionalText(l.ImageURL)
	p.WeightKg = l.WeightKg
	p.RecycledPct = l.RecycledPct
	p.WastePct = l.WastePct
	p.LifetimeAmount = l.LifetimeAmount

	if l.Location != nil {
		locName := strings.TrimSpace(l.Location.Name)
		if isNullish(locName) {
			return domain.Product{}, &ExtractionParseError{Reason: "missing " + path + "location.name"}
		}
		loc := domain.NewLocation(locName)
		loc.Description = optionalText(l.Location.Description)
		loc.CountryCode = optionalText(l.Location.CountryCode)
		loc.Address = optionalText(l.Location.Address)
		p.Location = &loc
	}

	for i := range l.Materials {
		m, err := l.Materials[i].toProduct(fmt.Sprintf("%smaterials[%d].", path, i), depth+1)
		if err != nil {
			return domain.Product{}, err
		}
		p.Materials = append(p.Materials, m)
	}
	return p, nil
}

func optionalText(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if isNullish(v) {
		return nil
	}
	return &v
}
