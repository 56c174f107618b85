package validator

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
)

const tagEthAddress = "eth_address"

// IsValidAddress returns is an address valid or not
func IsValidAddress(address string) bool {
	checksum := common.HexToAddress(address).Hex()
	return strings.ToLower(checksum) == strings.ToLower(address)
}

// New returns a validator knowing the eth_address tag, empty values pass so it composes with omitempty and required
func New() (*validator.Validate, error) {
	v := validator.New()
	if err := v.RegisterValidation(tagEthAddress, validateEthAddress); err != nil {
		return nil, err
	}
	return v, nil
}

func validateEthAddress(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || IsValidAddress(s)
}

type CustomValidator struct {
	validator *validator.Validate
}

func NewCustomValidator(v *validator.Validate) *CustomValidator {
	return &CustomValidator{v}
}

func (v *CustomValidator) Validate(i interface{}) error {
	if err := v.validator.Struct(i); err != nil {
		return err
	}
	return nil
}
