package uci

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ChizhovVadim/counteruci/pkg/common"
)

var ErrNoSuchOption = errors.New("no such option")

const emptyString = "<empty>"

type Option interface {
	UciName() string
	UciString() string
	Set(s string) error
}

type BoolOption struct {
	Name  string
	Value *bool
}

func (opt *BoolOption) UciName() string {
	return opt.Name
}

func (opt *BoolOption) UciString() string {
	return fmt.Sprintf("option name %v type %v default %v",
		opt.Name, "check", *opt.Value)
}

func (opt *BoolOption) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("option %v: %w", opt.Name, err)
	}
	*opt.Value = v
	return nil
}

// IntOption is a spin option. Values outside [Min, Max] are clamped.
type IntOption struct {
	Name  string
	Min   int
	Max   int
	Value *int
}

func (opt *IntOption) UciName() string {
	return opt.Name
}

func (opt *IntOption) UciString() string {
	return fmt.Sprintf("option name %v type %v default %v min %v max %v",
		opt.Name, "spin", *opt.Value, opt.Min, opt.Max)
}

func (opt *IntOption) Set(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("option %v: %w", opt.Name, err)
	}
	*opt.Value = common.Clamp(v, opt.Min, opt.Max)
	return nil
}

// FloatOption is advertised and set as a spin holding the value times 100.
type FloatOption struct {
	Name  string
	Min   int
	Max   int
	Value *float64
}

func (opt *FloatOption) UciName() string {
	return opt.Name
}

func (opt *FloatOption) UciString() string {
	return fmt.Sprintf("option name %v type %v default %v min %v max %v",
		opt.Name, "spin", int(math.Round(*opt.Value*100)), opt.Min, opt.Max)
}

func (opt *FloatOption) Set(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("option %v: %w", opt.Name, err)
	}
	*opt.Value = float64(common.Clamp(v, opt.Min, opt.Max)) / 100
	return nil
}

// StringOption keeps the raw value. OnChange, when set, runs before the
// value is stored and may reject it.
type StringOption struct {
	Name     string
	Value    *string
	OnChange func(value string) error
}

func (opt *StringOption) UciName() string {
	return opt.Name
}

func (opt *StringOption) UciString() string {
	var value = *opt.Value
	if value == "" {
		value = emptyString
	}
	return fmt.Sprintf("option name %v type %v default %v",
		opt.Name, "string", value)
}

func (opt *StringOption) Set(s string) error {
	if s == emptyString {
		s = ""
	}
	if opt.OnChange != nil {
		if err := opt.OnChange(s); err != nil {
			return fmt.Errorf("option %v: %w", opt.Name, err)
		}
	}
	*opt.Value = s
	return nil
}

// parseSetOption splits "setoption name <Name> value <Value>". The name may
// contain spaces. The value part is optional.
func parseSetOption(line string) (name, value string, err error) {
	var fields = strings.Fields(line)
	var nameIndex = common.FindIndexString(fields, "name")
	if nameIndex < 0 || nameIndex+1 >= len(fields) {
		return "", "", errors.New("invalid setoption arguments")
	}
	var valueIndex = common.FindIndexString(fields, "value")
	if valueIndex < 0 {
		return strings.Join(fields[nameIndex+1:], " "), "", nil
	}
	if valueIndex <= nameIndex+1 {
		return "", "", errors.New("invalid setoption arguments")
	}
	return strings.Join(fields[nameIndex+1:valueIndex], " "),
		strings.Join(fields[valueIndex+1:], " "), nil
}

func findOption(options []Option, name string) Option {
	for _, option := range options {
		if strings.EqualFold(option.UciName(), name) {
			return option
		}
	}
	return nil
}
