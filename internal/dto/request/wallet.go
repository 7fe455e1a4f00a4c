package request

type AddMoneyRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}
