package converter

import (
	"fmt"

	"github.com/you-humble/paystack-checkout/internal/client/dto"
	"github.com/you-humble/paystack-checkout/internal/model"
)

func InitializeParamsToPaystack(params model.GatewayInitializeParams) (dto.PaystackInitializeRequest, error) {
	minor, ok := model.ToMinor(params.Amount)
	if !ok {
		return dto.PaystackInitializeRequest{}, fmt.Errorf("amount %s does not fit in minor units", params.Amount)
	}

	return dto.PaystackInitializeRequest{
		Email:       params.Email,
		Amount:      minor,
		CallbackURL: params.CallbackURL,
	}, nil
}

func PaystackInitializeToModel(data dto.PaystackInitializeData) *model.InitializeResult {
	return &model.InitializeResult{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        data.Reference,
	}
}

func PaystackVerifyToModel(data dto.PaystackVerifyData) *model.GatewayTransaction {
	return &model.GatewayTransaction{
		Reference:       data.Reference,
		Status:          data.Status,
		AmountMinor:     data.Amount,
		Currency:        data.Currency,
		Channel:         data.Channel,
		GatewayResponse: data.GatewayResponse,
		PaidAt:          data.PaidAt,
	}
}
