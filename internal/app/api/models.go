// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

package api

// ErrorMessage is the JSON body of every error response.
type ErrorMessage struct {
	Error []string `json:"error"`
}

func NewSingleMessageError(msg string) ErrorMessage {
	return ErrorMessage{Error: []string{msg}}
}

type SchemaQuota struct {
	QuotaID  int   `json:"quotaID"`
	Cap      int   `json:"cap"`
	Filled   int   `json:"filled"`
	Deadline int64 `json:"deadline"`
}

type SchemaCircle struct {
	CircleID          string        `json:"circleID"`
	Name              string        `json:"name"`
	Creator           string        `json:"creator"`
	Status            string        `json:"status"`
	TargetValue       int64         `json:"targetValue"`
	TotalInstallments int           `json:"totalInstallments"`
	InstallmentAmount int64         `json:"installmentAmount"`
	NumUsers          int           `json:"numUsers"`
	NumRounds         int           `json:"numRounds"`
	ExitFeeBps        int64         `json:"exitFeeBps"`
	StartTime         int64         `json:"startTime"`
	Duration          int64         `json:"duration"`
	RoundDuration     int64         `json:"roundDuration"`
	EnrolledCount     int           `json:"enrolledCount"`
	CurrentPhase      int           `json:"currentPhase"`
	Quotas            []SchemaQuota `json:"quotas"`
}

type SchemaMember struct {
	Address          string `json:"address"`
	Enrolled         bool   `json:"enrolled"`
	Active           bool   `json:"active"`
	QuotaID          int    `json:"quotaID,omitempty"`
	InstallmentsPaid int    `json:"installmentsPaid,omitempty"`
	TotalPaid        int64  `json:"totalPaid,omitempty"`
	PositionStatus   string `json:"positionStatus,omitempty"`
	ClaimBalance     int64  `json:"claimBalance"`
}

type SchemaDraw struct {
	RequestID string   `json:"requestID"`
	Completed bool     `json:"completed"`
	Order     []string `json:"order,omitempty"`
}

type SchemaSettlement struct {
	Winner     string `json:"winner"`
	Amount     int64  `json:"amount"`
	Proof      string `json:"proof"`
	RedeemedAt int64  `json:"redeemedAt"`
}

type SchemaRound struct {
	QuotaID      int               `json:"quotaID"`
	RoundIndex   int               `json:"roundIndex"`
	Pot          int64             `json:"pot"`
	Closeable    bool              `json:"closeable"`
	Snapshotted  bool              `json:"snapshotted"`
	Participants []string          `json:"participants,omitempty"`
	Settled      bool              `json:"settled"`
	Draw         *SchemaDraw       `json:"draw,omitempty"`
	Settlement   *SchemaSettlement `json:"settlement,omitempty"`
}
