package models

// FundRequest credits a user account from the distributing authority.
type FundRequest struct {
	DestinationAccountID string `json:"destinationAccountId" binding:"required"`
	Amount               string `json:"amount" binding:"required"`
}

type TransferRequest struct {
	DestinationAccountID string `json:"destinationAccountId" binding:"required"`
	Amount               string `json:"amount" binding:"required"`
}

// IssueRequest mints supply from the issuing authority into the distributor.
type IssueRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// OperationResult is returned for every submitted transaction.
type OperationResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	TransactionID string `json:"transactionId"`
	ExplorerURL   string `json:"explorerUrl"`
}
