package handlers

import (
	"reflect"
	"sync"

	"github.com/SscSPs/easysplit_backend/internal/dto"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var registerValidatorsOnce sync.Once

// RegisterValidators hands decimal.Decimal fields to gin's validator as their
// exact string form and adds decimal_gt0 for strictly positive amounts.
func RegisterValidators() {
	registerValidatorsOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
			_ = v.RegisterValidation("decimal_gt0", decimalGreaterThanZero)
		}
	})
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

func decimalGreaterThanZero(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	return err == nil && d.IsPositive()
}

// validateAllocationLists applies the AllocationRequest binding rules to lists
// carried by dto.Optional, which the validator does not descend into.
func validateAllocationLists(lists ...dto.Optional[[]dto.AllocationRequest]) error {
	for _, list := range lists {
		entries, ok := list.Get()
		if !ok {
			continue
		}
		for i := range entries {
			if err := binding.Validator.ValidateStruct(&entries[i]); err != nil {
				return err
			}
		}
	}
	return nil
}
