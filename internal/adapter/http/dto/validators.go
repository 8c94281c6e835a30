package dto

import (
	"reflect"
	"strings"

	"pooled-multisender/internal/core/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("account_id", validateAccountID)
		_ = v.RegisterValidation("amount", validateAmount)
	}
}

// validateAccountID accepts well-formed account ids.
func validateAccountID(fl validator.FieldLevel) bool {
	return domain.IsValidAccountID(fl.Field().String())
}

// validateAmount accepts base-10 integers within the u128 range.
func validateAmount(fl validator.FieldLevel) bool {
	_, err := domain.ParseAmount(fl.Field().String())
	return err == nil
}

// TrimStruct trims surrounding whitespace from every exported string field
// of a struct pointer, descending into nested structs and slices of structs.
func TrimStruct(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	trimFields(rv.Elem())
}

func trimFields(rv reflect.Value) {
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(strings.TrimSpace(f.String()))
		case reflect.Struct:
			trimFields(f)
		case reflect.Slice:
			for j := 0; j < f.Len(); j++ {
				switch e := f.Index(j); e.Kind() {
				case reflect.Struct:
					trimFields(e)
				case reflect.String:
					e.SetString(strings.TrimSpace(e.String()))
				}
			}
		}
	}
}

// ToOperations converts validated operation requests into domain operations.
func ToOperations(reqs []OperationRequest) ([]domain.Operation, error) {
	ops := make([]domain.Operation, 0, len(reqs))
	for _, r := range reqs {
		amount, err := domain.ParseAmount(r.Amount)
		if err != nil {
			return nil, err
		}
		ops = append(ops, domain.Operation{Recipient: r.AccountID, Amount: amount})
	}
	return ops, nil
}
