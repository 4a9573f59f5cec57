package models

type BalanceRequest struct {
	AccountID string `json:"accountId" binding:"required"`
}

type BalanceResult struct {
	Success       bool   `json:"success"`
	AccountID     string `json:"accountId"`
	AssetCode     string `json:"assetCode"`
	AssetIssuer   string `json:"assetIssuer"`
	Balance       string `json:"balance"`
	NativeBalance string `json:"nativeBalance"`
}

// AssetInfo describes the asset and network this service operates on.
type AssetInfo struct {
	Code        string `json:"code"`
	Issuer      string `json:"issuer"`
	Network     string `json:"network"`
	Distributor string `json:"distributor,omitempty"`
}
