package models

import "time"

type Stats struct {
	FundCount      int64     `json:"fund_count"`
	TransferCount  int64     `json:"transfer_count"`
	IssueCount     int64     `json:"issue_count"`
	TrustlineCount int64     `json:"trustline_count"`
	BalanceQueries int64     `json:"balance_queries"`
	FailureCount   int64     `json:"failure_count"`
	Submissions    int64     `json:"submissions"`
	StartTime      time.Time `json:"start_time"`
	LastUpdateTime time.Time `json:"last_update_time"`
}
