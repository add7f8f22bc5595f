package normalize

import (
	"github.com/roach88/nemhist/internal/ir"
)

// Vocabulary names used in UNMAPPED_ENUM_VALUE errors.
const (
	DispatchTypeVocabulary = "dispatch_type"
	ServiceVocabulary      = "service"
)

// Service names.
const (
	Energy    = "energy"
	RaiseReg  = "raise_reg"
	LowerReg  = "lower_reg"
	Raise6s   = "raise_6s"
	Raise60s  = "raise_60s"
	Raise5min = "raise_5min"
	Lower6s   = "lower_6s"
	Lower60s  = "lower_60s"
	Lower5min = "lower_5min"
)

var dispatchTypes = map[string]string{
	"GENERATOR": "generator",
	"LOAD":      "load",
}

var services = map[string]string{
	"ENERGY":     Energy,
	"RAISEREG":   RaiseReg,
	"LOWERREG":   LowerReg,
	"RAISE6SEC":  Raise6s,
	"RAISE60SEC": Raise60s,
	"RAISE5MIN":  Raise5min,
	"LOWER6SEC":  Lower6s,
	"LOWER60SEC": Lower60s,
	"LOWER5MIN":  Lower5min,
}

// DispatchType maps an MMS DISPATCHTYPE code.
func DispatchType(code string) (string, error) {
	if name, ok := dispatchTypes[code]; ok {
		return name, nil
	}
	return "", ir.NewUnmappedEnumValue(DispatchTypeVocabulary, code)
}

// Service maps an MMS BIDTYPE code.
func Service(code string) (string, error) {
	if name, ok := services[code]; ok {
		return name, nil
	}
	return "", ir.NewUnmappedEnumValue(ServiceVocabulary, code)
}
